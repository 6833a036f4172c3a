package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sproutapp/forum/apperr"
	"github.com/sproutapp/forum/auth"
	"github.com/sproutapp/forum/ingest"
	"github.com/sproutapp/forum/middleware"
	"github.com/sproutapp/forum/models"
	"github.com/sproutapp/forum/service"
	"github.com/sproutapp/forum/utils"
)

const threadListCachePrefix = "cache:threads:list:"

// ThreadController exposes thread CRUD and thread like toggles over HTTP.
type ThreadController struct {
	svc *service.Engagement
}

// NewThreadController creates a new ThreadController instance.
func NewThreadController(svc *service.Engagement) *ThreadController {
	return &ThreadController{svc: svc}
}

// CreateThread accepts either a JSON body or a multipart form with
// attachments and creates the thread in a single pass.
func (t *ThreadController) CreateThread(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	in := service.CreateThreadInput{Actor: identity}

	if strings.HasPrefix(ctx.ContentType(), "multipart/form-data") {
		form, err := ctx.MultipartForm()
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40020, "invalid multipart payload")
			return
		}
		in.Title = firstValue(form.Value["title"])
		in.Content = firstValue(form.Value["content"])
		in.AuthorName = firstValue(form.Value["author_name"])
		for _, fh := range form.File["attachments"] {
			in.Files = append(in.Files, ingest.FromMultipart(fh))
		}
	} else {
		var req struct {
			Title      string `json:"title"`
			Content    string `json:"content"`
			AuthorName string `json:"author_name"`
		}
		if err := ctx.ShouldBindJSON(&req); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
			return
		}
		in.Title = req.Title
		in.Content = req.Content
		in.AuthorName = req.AuthorName
	}

	thread, err := t.svc.CreateThread(ctx.Request.Context(), in)
	if err != nil {
		respondError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(threadListCachePrefix)
	ctx.JSON(http.StatusCreated, utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{"thread": thread}})
}

// ListThreads returns one page of active threads, newest first.
func (t *ThreadController) ListThreads(ctx *gin.Context) {
	page, perPage := parsePagination(ctx.Query("page"), ctx.Query("per_page"))

	cacheKey := fmt.Sprintf("%spage=%d:size=%d", threadListCachePrefix, page, perPage)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	threads, total, err := t.svc.ListThreads(ctx.Request.Context(), page, perPage)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to list threads")
		return
	}

	payload := gin.H{
		"items": threads,
		"pagination": gin.H{
			"page":        page,
			"per_page":    perPage,
			"total":       total,
			"total_pages": int((total + int64(perPage) - 1) / int64(perPage)),
		},
	}
	// Wrap in standard response and cache
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	utils.Success(ctx, payload)
}

// GetThread returns a single thread with its replies. Never cached: every
// hit counts one page view.
func (t *ThreadController) GetThread(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	thread, replies, err := t.svc.GetThread(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"thread": thread, "replies": replies})
}

// UpdateThread applies a partial update to title, content or status.
func (t *ThreadController) UpdateThread(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	var req struct {
		Title   *string              `json:"title"`
		Content *string              `json:"content"`
		Status  *models.ThreadStatus `json:"status"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	thread, err := t.svc.UpdateThread(ctx.Request.Context(), id, identity, service.UpdateThreadPatch{
		Title:   req.Title,
		Content: req.Content,
		Status:  req.Status,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(threadListCachePrefix)
	utils.Success(ctx, gin.H{"thread": thread})
}

// DeleteThread removes a thread with its replies and likes.
func (t *ThreadController) DeleteThread(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	if err := t.svc.DeleteThread(ctx.Request.Context(), id, identity); err != nil {
		respondError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(threadListCachePrefix)
	utils.Success(ctx, gin.H{"deleted": true})
}

// ToggleThreadLike flips the caller's like on a thread.
func (t *ThreadController) ToggleThreadLike(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	result, n, err := t.svc.ToggleLike(ctx.Request.Context(), models.ThreadTarget(id), identity)
	if err != nil {
		respondError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(threadListCachePrefix)
	payload := gin.H{"liked": result.Liked, "like_count": result.LikeCount}
	if n != nil {
		payload["notification"] = n
	}
	utils.Success(ctx, payload)
}

// respondError maps service errors onto the uniform JSON envelope.
func respondError(ctx *gin.Context, err error) {
	e := apperr.From(err)
	utils.Error(ctx, e.Status, e.Code, e.Message)
}

func requireIdentity(ctx *gin.Context) (auth.Identity, bool) {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return auth.Identity{}, false
	}
	return identity, true
}

func parseID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40025, "invalid id")
		return 0, false
	}
	return uint(id), true
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	perPage := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		perPage = s
	}
	return page, perPage
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
