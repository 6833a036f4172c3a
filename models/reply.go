package models

import "time"

// Reply is a response nested under exactly one thread. Only its author may
// edit or delete it.
type Reply struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ThreadID   uint      `gorm:"index;not null" json:"thread_id"`
	AuthorID   uint      `gorm:"index;not null" json:"author_id"`
	AuthorName string    `gorm:"size:64;not null" json:"author_name"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	LikesCount uint      `gorm:"not null;default:0" json:"likes_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
