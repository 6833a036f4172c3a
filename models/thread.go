package models

import (
	"time"

	"gorm.io/datatypes"
)

// ThreadStatus is the lifecycle state of a discussion thread. Transitions are
// explicit only: closing blocks new replies, pinning raises display priority
// without blocking replies.
type ThreadStatus string

const (
	ThreadActive ThreadStatus = "active"
	ThreadClosed ThreadStatus = "closed"
	ThreadPinned ThreadStatus = "pinned"
)

// Valid reports whether s is one of the known thread statuses.
func (s ThreadStatus) Valid() bool {
	switch s {
	case ThreadActive, ThreadClosed, ThreadPinned:
		return true
	}
	return false
}

// Thread represents a top-level discussion post.
//
// RepliesCount and LikesCount are denormalized and must equal the number of
// live reply rows and like rows targeting the thread; they are only mutated
// through atomic SQL expressions in the store layer.
type Thread struct {
	ID           uint                            `gorm:"primaryKey" json:"id"`
	Title        string                          `gorm:"size:255;not null" json:"title"`
	Content      string                          `gorm:"type:text;not null" json:"content"`
	AuthorName   string                          `gorm:"size:64;not null" json:"author_name"`
	AuthorID     uint                            `gorm:"index;not null" json:"author_id"`
	Status       ThreadStatus                    `gorm:"size:16;not null;default:'active'" json:"status"`
	ViewsCount   uint                            `gorm:"not null;default:0" json:"views_count"`
	RepliesCount uint                            `gorm:"not null;default:0" json:"replies_count"`
	LikesCount   uint                            `gorm:"not null;default:0" json:"likes_count"`
	Attachments  datatypes.JSONSlice[Attachment] `json:"attachments"`
	CreatedAt    time.Time                       `json:"created_at"`
	UpdatedAt    time.Time                       `json:"updated_at"`
}
