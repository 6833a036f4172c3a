package models

import "time"

// TargetKind discriminates what a like applies to.
type TargetKind string

const (
	TargetThread TargetKind = "thread"
	TargetReply  TargetKind = "reply"
)

// LikeTarget identifies the entity a like applies to as a tagged union
// instead of two nullable foreign keys.
type LikeTarget struct {
	Kind TargetKind
	ID   uint
}

// ThreadTarget builds a LikeTarget for a thread.
func ThreadTarget(id uint) LikeTarget { return LikeTarget{Kind: TargetThread, ID: id} }

// ReplyTarget builds a LikeTarget for a reply.
func ReplyTarget(id uint) LikeTarget { return LikeTarget{Kind: TargetReply, ID: id} }

// Like records one user's reaction on one target. The composite unique index
// is what makes toggling well-defined: at most one row may exist per
// (target, user), and a racing duplicate insert fails at the database.
type Like struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	TargetType TargetKind `gorm:"size:16;not null;uniqueIndex:uniq_like_target_user" json:"target_type"`
	TargetID   uint       `gorm:"not null;uniqueIndex:uniq_like_target_user" json:"target_id"`
	UserID     uint       `gorm:"not null;uniqueIndex:uniq_like_target_user;index" json:"user_id"`
	CreatedAt  time.Time  `json:"created_at"`
}
