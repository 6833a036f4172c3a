package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sproutapp/forum/models"
	"github.com/sproutapp/forum/service"
	"github.com/sproutapp/forum/utils"
)

// ReplyController exposes reply CRUD and reply like toggles over HTTP.
type ReplyController struct {
	svc *service.Engagement
}

// NewReplyController creates a new ReplyController instance.
func NewReplyController(svc *service.Engagement) *ReplyController {
	return &ReplyController{svc: svc}
}

// CreateReply posts a reply on a thread. The thread author's notification,
// when one applies, rides back in the response payload.
func (r *ReplyController) CreateReply(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}
	threadID, ok := parseID(ctx)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	reply, n, err := r.svc.CreateReply(ctx.Request.Context(), threadID, req.Content, identity)
	if err != nil {
		respondError(ctx, err)
		return
	}

	// replies_count shows up on list pages
	utils.InvalidateByPrefix(threadListCachePrefix)
	payload := gin.H{"reply": reply}
	if n != nil {
		payload["notification"] = n
	}
	ctx.JSON(http.StatusCreated, utils.JSONResponse{Code: 0, Message: "success", Data: payload})
}

// UpdateReply lets the author edit their reply.
func (r *ReplyController) UpdateReply(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	reply, err := r.svc.UpdateReply(ctx.Request.Context(), id, req.Content, identity)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"reply": reply})
}

// DeleteReply removes the author's reply.
func (r *ReplyController) DeleteReply(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	if err := r.svc.DeleteReply(ctx.Request.Context(), id, identity); err != nil {
		respondError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(threadListCachePrefix)
	utils.Success(ctx, gin.H{"deleted": true})
}

// ToggleReplyLike flips the caller's like on a reply.
func (r *ReplyController) ToggleReplyLike(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	result, n, err := r.svc.ToggleLike(ctx.Request.Context(), models.ReplyTarget(id), identity)
	if err != nil {
		respondError(ctx, err)
		return
	}

	payload := gin.H{"liked": result.Liked, "like_count": result.LikeCount}
	if n != nil {
		payload["notification"] = n
	}
	utils.Success(ctx, payload)
}
