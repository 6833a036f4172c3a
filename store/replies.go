package store

import (
	"gorm.io/gorm"

	"github.com/sproutapp/forum/models"
)

// ReplyStore persists replies and keeps the parent thread's replies_count in
// step with the row count.
type ReplyStore struct {
	db *gorm.DB
}

// NewReplyStore creates a ReplyStore.
func NewReplyStore(db *gorm.DB) *ReplyStore {
	return &ReplyStore{db: db}
}

// Get loads a reply by id.
func (s *ReplyStore) Get(id uint) (*models.Reply, error) {
	var reply models.Reply
	if err := s.db.First(&reply, id).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}

// ListByThread returns all replies of a thread ordered by creation time
// ascending.
func (s *ReplyStore) ListByThread(threadID uint) ([]models.Reply, error) {
	var replies []models.Reply
	err := s.db.Where("thread_id = ?", threadID).Order("created_at ASC, id ASC").Find(&replies).Error
	return replies, err
}

// Create inserts the reply and increments the parent thread's replies_count
// in the same transaction, so a reply is never observable without its
// counter update.
func (s *ReplyStore) Create(reply *models.Reply) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reply).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Thread{}).Where("id = ?", reply.ThreadID).
			UpdateColumn("replies_count", gorm.Expr("replies_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Update saves an edited reply.
func (s *ReplyStore) Update(reply *models.Reply) error {
	return s.db.Save(reply).Error
}

// Delete removes the reply, decrements the parent's replies_count (floored
// at zero), and deletes likes targeting the reply, all in one transaction.
func (s *ReplyStore) Delete(reply *models.Reply) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Reply{}, reply.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Model(&models.Thread{}).
			Where("id = ? AND replies_count > 0", reply.ThreadID).
			UpdateColumn("replies_count", gorm.Expr("replies_count - 1")).Error; err != nil {
			return err
		}
		return tx.Where("target_type = ? AND target_id = ?", models.TargetReply, reply.ID).
			Delete(&models.Like{}).Error
	})
}
