// Package service orchestrates the forum's business rules: validation,
// ownership checks, the thread status machine, and the wiring between
// stores, attachment ingestion and notifications.
package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/sproutapp/forum/apperr"
	"github.com/sproutapp/forum/auth"
	"github.com/sproutapp/forum/ingest"
	"github.com/sproutapp/forum/models"
	"github.com/sproutapp/forum/notify"
	"github.com/sproutapp/forum/store"
	"github.com/sproutapp/forum/utils"
)

const (
	minTitleLen   = 5
	minContentLen = 10
	minReplyLen   = 5
)

// Engagement implements thread, reply and like operations.
type Engagement struct {
	threads  *store.ThreadStore
	replies  *store.ReplyStore
	likes    *store.LikeStore
	ingestor *ingest.Ingestor
}

// NewEngagement wires the service from its dependencies.
func NewEngagement(threads *store.ThreadStore, replies *store.ReplyStore, likes *store.LikeStore, ingestor *ingest.Ingestor) *Engagement {
	return &Engagement{threads: threads, replies: replies, likes: likes, ingestor: ingestor}
}

// CreateThreadInput carries everything needed to create a thread. Files are
// optional attachments already decoded from the request.
type CreateThreadInput struct {
	Title      string
	Content    string
	AuthorName string
	Actor      auth.Identity
	Files      []ingest.File
}

// UpdateThreadPatch lists the permitted thread mutations. Nil fields are
// left untouched.
type UpdateThreadPatch struct {
	Title   *string
	Content *string
	Status  *models.ThreadStatus
}

// ToggleResult is the outcome of a like toggle.
type ToggleResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// CreateThread validates input, ingests attachments, and persists the thread
// with all counters at zero and status active.
func (e *Engagement) CreateThread(ctx context.Context, in CreateThreadInput) (*models.Thread, error) {
	title := utils.Sanitize(strings.TrimSpace(in.Title))
	if utf8.RuneCountInString(title) < minTitleLen {
		return nil, apperr.Validation(40021, "title must be at least 5 characters")
	}
	content := utils.Sanitize(strings.TrimSpace(in.Content))
	if utf8.RuneCountInString(content) < minContentLen {
		return nil, apperr.Validation(40022, "content must be at least 10 characters")
	}

	authorName := strings.TrimSpace(in.AuthorName)
	if authorName == "" {
		authorName = in.Actor.Name
	}

	attachments, err := e.ingestor.Ingest(ctx, in.Files)
	if err != nil {
		return nil, err
	}

	thread := models.Thread{
		Title:       title,
		Content:     content,
		AuthorName:  authorName,
		AuthorID:    in.Actor.UserID,
		Status:      models.ThreadActive,
		Attachments: attachments,
	}
	if err := e.threads.Create(&thread); err != nil {
		// No orphaned blobs when the row insert fails.
		e.ingestor.Discard(ctx, attachments)
		return nil, apperr.Internal(50020, "failed to create thread")
	}
	return &thread, nil
}

// GetThread loads a thread with its replies ordered oldest first, counting
// one page view per call.
func (e *Engagement) GetThread(ctx context.Context, id uint) (*models.Thread, []models.Reply, error) {
	thread, err := e.threads.GetAndCountView(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound(40401, "thread not found")
		}
		return nil, nil, err
	}
	replies, err := e.replies.ListByThread(id)
	if err != nil {
		return nil, nil, err
	}
	return thread, replies, nil
}

// ListThreads returns one page of active threads, newest first.
func (e *Engagement) ListThreads(ctx context.Context, page, perPage int) ([]models.Thread, int64, error) {
	return e.threads.ListActive(page, perPage)
}

// UpdateThread applies the patch when the actor is the author or a
// moderator. Status changes go through here only; there are no automatic
// transitions.
func (e *Engagement) UpdateThread(ctx context.Context, id uint, actor auth.Identity, patch UpdateThreadPatch) (*models.Thread, error) {
	thread, err := e.loadThread(id)
	if err != nil {
		return nil, err
	}
	if thread.AuthorID != actor.UserID && !actor.Moderator() {
		return nil, apperr.Forbidden(40301, "you can only update your own threads")
	}

	if patch.Title != nil {
		title := utils.Sanitize(strings.TrimSpace(*patch.Title))
		if utf8.RuneCountInString(title) < minTitleLen {
			return nil, apperr.Validation(40021, "title must be at least 5 characters")
		}
		thread.Title = title
	}
	if patch.Content != nil {
		content := utils.Sanitize(strings.TrimSpace(*patch.Content))
		if utf8.RuneCountInString(content) < minContentLen {
			return nil, apperr.Validation(40022, "content must be at least 10 characters")
		}
		thread.Content = content
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, apperr.Validation(40023, "invalid thread status")
		}
		thread.Status = *patch.Status
	}

	if err := e.threads.Update(thread); err != nil {
		return nil, apperr.Internal(50021, "failed to update thread")
	}
	return thread, nil
}

// DeleteThread removes the thread and cascades to its replies and all likes
// targeting the thread or its replies. Author or moderator only.
func (e *Engagement) DeleteThread(ctx context.Context, id uint, actor auth.Identity) error {
	thread, err := e.loadThread(id)
	if err != nil {
		return err
	}
	if thread.AuthorID != actor.UserID && !actor.Moderator() {
		return apperr.Forbidden(40302, "you can only delete your own threads")
	}
	if err := e.threads.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(40401, "thread not found")
		}
		return apperr.Internal(50022, "failed to delete thread")
	}
	return nil
}

// CreateReply inserts a reply on a non-closed thread, incrementing the
// parent's replies_count atomically with the insert. The comment
// notification for the thread author rides back on the response.
func (e *Engagement) CreateReply(ctx context.Context, threadID uint, content string, actor auth.Identity) (*models.Reply, *notify.Notification, error) {
	thread, err := e.loadThread(threadID)
	if err != nil {
		return nil, nil, err
	}
	if thread.Status == models.ThreadClosed {
		return nil, nil, apperr.Conflict(40901, "thread is closed")
	}

	content = utils.Sanitize(strings.TrimSpace(content))
	if utf8.RuneCountInString(content) < minReplyLen {
		return nil, nil, apperr.Validation(40024, "reply must be at least 5 characters")
	}

	reply := models.Reply{
		ThreadID:   threadID,
		AuthorID:   actor.UserID,
		AuthorName: actor.Name,
		Content:    content,
	}
	if err := e.replies.Create(&reply); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound(40401, "thread not found")
		}
		return nil, nil, apperr.Internal(50023, "failed to create reply")
	}

	n := notify.Build(notify.EventComment, actor.UserID, actor.Name, thread.AuthorID, thread.ID, thread.Title)
	return &reply, n, nil
}

// UpdateReply lets the author edit their reply content.
func (e *Engagement) UpdateReply(ctx context.Context, id uint, content string, actor auth.Identity) (*models.Reply, error) {
	reply, err := e.loadReply(id)
	if err != nil {
		return nil, err
	}
	if reply.AuthorID != actor.UserID {
		return nil, apperr.Forbidden(40303, "you can only edit your own replies")
	}

	content = utils.Sanitize(strings.TrimSpace(content))
	if utf8.RuneCountInString(content) < minReplyLen {
		return nil, apperr.Validation(40024, "reply must be at least 5 characters")
	}
	reply.Content = content
	if err := e.replies.Update(reply); err != nil {
		return nil, apperr.Internal(50024, "failed to update reply")
	}
	return reply, nil
}

// DeleteReply removes the author's reply, decrements the parent's
// replies_count (floored at zero) and deletes likes on the reply.
func (e *Engagement) DeleteReply(ctx context.Context, id uint, actor auth.Identity) error {
	reply, err := e.loadReply(id)
	if err != nil {
		return err
	}
	if reply.AuthorID != actor.UserID {
		return apperr.Forbidden(40304, "you can only delete your own replies")
	}
	if err := e.replies.Delete(reply); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(40402, "reply not found")
		}
		return apperr.Internal(50025, "failed to delete reply")
	}
	return nil
}

// ToggleLike flips the actor's like on the target. Two consecutive calls
// return to the original state. Liking another user's thread additionally
// produces a notification for its author.
func (e *Engagement) ToggleLike(ctx context.Context, target models.LikeTarget, actor auth.Identity) (ToggleResult, *notify.Notification, error) {
	liked, count, err := e.likes.Toggle(target, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if target.Kind == models.TargetReply {
				return ToggleResult{}, nil, apperr.NotFound(40402, "reply not found")
			}
			return ToggleResult{}, nil, apperr.NotFound(40401, "thread not found")
		}
		return ToggleResult{}, nil, apperr.Internal(50026, "failed to toggle like")
	}

	result := ToggleResult{Liked: liked, LikeCount: count}
	if !liked || target.Kind != models.TargetThread {
		return result, nil, nil
	}
	thread, err := e.threads.Get(target.ID)
	if err != nil {
		// Like landed but the thread vanished since; skip the notification.
		return result, nil, nil
	}
	n := notify.Build(notify.EventLike, actor.UserID, actor.Name, thread.AuthorID, thread.ID, thread.Title)
	return result, n, nil
}

func (e *Engagement) loadThread(id uint) (*models.Thread, error) {
	thread, err := e.threads.Get(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(40401, "thread not found")
		}
		return nil, apperr.Internal(50027, "failed to load thread")
	}
	return thread, nil
}

func (e *Engagement) loadReply(id uint) (*models.Reply, error) {
	reply, err := e.replies.Get(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(40402, "reply not found")
		}
		return nil, apperr.Internal(50028, "failed to load reply")
	}
	return reply, nil
}
