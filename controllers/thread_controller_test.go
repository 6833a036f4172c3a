package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sproutapp/forum/auth"
	"github.com/sproutapp/forum/ingest"
	"github.com/sproutapp/forum/middleware"
	"github.com/sproutapp/forum/models"
	"github.com/sproutapp/forum/service"
	"github.com/sproutapp/forum/store"
)

type nullBlobs struct{}

func (nullBlobs) Store(ctx context.Context, folder, name string, r io.Reader, size int64, contentType string) (string, error) {
	return "mem://" + folder + "/" + name, nil
}

func (nullBlobs) Delete(ctx context.Context, url string) error { return nil }

func newTestRouter(t *testing.T) (*gin.Engine, *auth.JWTGate) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "forum.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Thread{}, &models.Reply{}, &models.Like{}))

	svc := service.NewEngagement(
		store.NewThreadStore(db),
		store.NewReplyStore(db),
		store.NewLikeStore(db),
		ingest.New(nullBlobs{}, 0),
	)
	gate := auth.NewJWTGate("test-secret")

	r := gin.New()
	threadController := NewThreadController(svc)
	replyController := NewReplyController(svc)

	api := r.Group("/api/v1")
	api.GET("/threads", threadController.ListThreads)
	api.GET("/threads/:id", threadController.GetThread)

	authed := middleware.AuthRequired(gate)
	api.POST("/threads", authed, threadController.CreateThread)
	api.PUT("/threads/:id", authed, threadController.UpdateThread)
	api.DELETE("/threads/:id", authed, threadController.DeleteThread)
	api.POST("/threads/:id/like", authed, threadController.ToggleThreadLike)
	api.POST("/threads/:id/replies", authed, replyController.CreateReply)
	api.PUT("/replies/:id", authed, replyController.UpdateReply)
	api.DELETE("/replies/:id", authed, replyController.DeleteReply)
	api.POST("/replies/:id/like", authed, replyController.ToggleReplyLike)

	return r, gate
}

func tokenFor(t *testing.T, gate *auth.JWTGate, id auth.Identity) string {
	t.Helper()
	token, err := gate.Issue(id, time.Hour)
	require.NoError(t, err)
	return token
}

func doJSON(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Code    int                    `json:"code"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestReadsArePublic(t *testing.T) {
	r, gate := newTestRouter(t)
	token := tokenFor(t, gate, auth.Identity{UserID: 1, Name: "alice"})

	w := doJSON(r, http.MethodPost, "/api/v1/threads", token, gin.H{
		"title":   "Cactus watering schedule",
		"content": "How often do you water desert cacti in winter?",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	thread := decodeData(t, w)["thread"].(map[string]interface{})
	threadID := uint(thread["id"].(float64))

	// List and detail need no token.
	w = doJSON(r, http.MethodGet, "/api/v1/threads", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/v1/threads/%d", threadID), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMutationsRequireAuth(t *testing.T) {
	r, _ := newTestRouter(t)

	body := gin.H{"title": "hello there", "content": "long enough content here"}
	for _, req := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/threads"},
		{http.MethodPut, "/api/v1/threads/1"},
		{http.MethodDelete, "/api/v1/threads/1"},
		{http.MethodPost, "/api/v1/threads/1/like"},
		{http.MethodPost, "/api/v1/threads/1/replies"},
		{http.MethodPut, "/api/v1/replies/1"},
		{http.MethodDelete, "/api/v1/replies/1"},
		{http.MethodPost, "/api/v1/replies/1/like"},
	} {
		w := doJSON(r, req.method, req.path, "", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", req.method, req.path)
	}
}

func TestRejectsMalformedBearer(t *testing.T) {
	r, _ := newTestRouter(t)
	body, _ := json.Marshal(gin.H{"title": "hello there", "content": "long enough content here"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/threads", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/threads", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListThreadsPerPage(t *testing.T) {
	r, gate := newTestRouter(t)
	token := tokenFor(t, gate, auth.Identity{UserID: 1, Name: "alice"})

	for i := 0; i < 3; i++ {
		w := doJSON(r, http.MethodPost, "/api/v1/threads", token, gin.H{
			"title":   fmt.Sprintf("Watering question number %d", i),
			"content": "Another question about how much water is too much water.",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(r, http.MethodGet, "/api/v1/threads?page=2&per_page=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	items := data["items"].([]interface{})
	assert.Len(t, items, 1)
	pagination := data["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), pagination["page"])
	assert.Equal(t, float64(2), pagination["per_page"])
	assert.Equal(t, float64(3), pagination["total"])
	assert.Equal(t, float64(2), pagination["total_pages"])
}

func TestCreateAndGetThread(t *testing.T) {
	r, gate := newTestRouter(t)
	token := tokenFor(t, gate, auth.Identity{UserID: 1, Name: "alice", Role: auth.RoleMember})

	w := doJSON(r, http.MethodPost, "/api/v1/threads", token, gin.H{
		"title":   "Yellowing pothos leaves",
		"content": "The lower leaves keep turning yellow even though I water sparingly.",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := decodeData(t, w)
	thread := data["thread"].(map[string]interface{})
	id := uint(thread["id"].(float64))
	assert.Equal(t, "alice", thread["author_name"])
	assert.Equal(t, "active", thread["status"])

	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/v1/threads/%d", id), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeData(t, w)
	thread = data["thread"].(map[string]interface{})
	assert.Equal(t, float64(1), thread["views_count"])
}

func TestCreateThreadValidationError(t *testing.T) {
	r, gate := newTestRouter(t)
	token := tokenFor(t, gate, auth.Identity{UserID: 1, Name: "alice"})

	w := doJSON(r, http.MethodPost, "/api/v1/threads", token, gin.H{
		"title":   "hi",
		"content": "content that is long enough to pass validation",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var envelope struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 40021, envelope.Code)
}

func TestReplyAndLikeFlow(t *testing.T) {
	r, gate := newTestRouter(t)
	aliceToken := tokenFor(t, gate, auth.Identity{UserID: 1, Name: "alice"})
	bobToken := tokenFor(t, gate, auth.Identity{UserID: 2, Name: "bob"})

	w := doJSON(r, http.MethodPost, "/api/v1/threads", aliceToken, gin.H{
		"title":   "Spider plant propagation",
		"content": "Sharing my setup for rooting spiderettes in water.",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	thread := decodeData(t, w)["thread"].(map[string]interface{})
	threadID := uint(thread["id"].(float64))

	// Bob replies; alice gets an inline notification.
	w = doJSON(r, http.MethodPost, fmt.Sprintf("/api/v1/threads/%d/replies", threadID), bobToken, gin.H{
		"content": "how long until roots show?",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decodeData(t, w)
	require.Contains(t, data, "notification")
	n := data["notification"].(map[string]interface{})
	assert.Equal(t, "comment", n["type"])
	assert.Equal(t, "bob", n["actor_name"])

	// Bob likes the thread.
	w = doJSON(r, http.MethodPost, fmt.Sprintf("/api/v1/threads/%d/like", threadID), bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeData(t, w)
	assert.Equal(t, true, data["liked"])
	assert.Equal(t, float64(1), data["like_count"])

	// Toggling again removes the like and carries no notification.
	w = doJSON(r, http.MethodPost, fmt.Sprintf("/api/v1/threads/%d/like", threadID), bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeData(t, w)
	assert.Equal(t, false, data["liked"])
	assert.Equal(t, float64(0), data["like_count"])
	assert.NotContains(t, data, "notification")
}

func TestDeleteThreadForbiddenForNonAuthor(t *testing.T) {
	r, gate := newTestRouter(t)
	aliceToken := tokenFor(t, gate, auth.Identity{UserID: 1, Name: "alice"})
	bobToken := tokenFor(t, gate, auth.Identity{UserID: 2, Name: "bob"})

	w := doJSON(r, http.MethodPost, "/api/v1/threads", aliceToken, gin.H{
		"title":   "Grow light recommendations",
		"content": "Looking for a full-spectrum light for a dark corner.",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	thread := decodeData(t, w)["thread"].(map[string]interface{})
	threadID := uint(thread["id"].(float64))

	w = doJSON(r, http.MethodDelete, fmt.Sprintf("/api/v1/threads/%d", threadID), bobToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodDelete, fmt.Sprintf("/api/v1/threads/%d", threadID), aliceToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetThreadInvalidID(t *testing.T) {
	r, gate := newTestRouter(t)
	token := tokenFor(t, gate, auth.Identity{UserID: 1, Name: "alice"})

	w := doJSON(r, http.MethodGet, "/api/v1/threads/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/api/v1/threads/999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
