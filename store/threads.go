// Package store implements persistence for threads, replies and likes on
// GORM. All denormalized counters are mutated through SQL expressions, never
// read-modify-write, and every multi-row mutation runs in one transaction.
package store

import (
	"gorm.io/gorm"

	"github.com/sproutapp/forum/models"
)

// ThreadStore persists threads.
type ThreadStore struct {
	db *gorm.DB
}

// NewThreadStore creates a ThreadStore.
func NewThreadStore(db *gorm.DB) *ThreadStore {
	return &ThreadStore{db: db}
}

// Create inserts a new thread row.
func (s *ThreadStore) Create(thread *models.Thread) error {
	return s.db.Create(thread).Error
}

// Get loads a thread by id.
func (s *ThreadStore) Get(id uint) (*models.Thread, error) {
	var thread models.Thread
	if err := s.db.First(&thread, id).Error; err != nil {
		return nil, err
	}
	return &thread, nil
}

// GetAndCountView loads a thread and bumps its views_count by exactly one.
// The increment is a SQL expression so concurrent page views never lose
// updates; it is intentionally non-idempotent.
func (s *ThreadStore) GetAndCountView(id uint) (*models.Thread, error) {
	res := s.db.Model(&models.Thread{}).Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + 1"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return s.Get(id)
}

// ListActive returns one page of active threads, newest first, plus the
// total count of active threads.
func (s *ThreadStore) ListActive(page, perPage int) ([]models.Thread, int64, error) {
	var threads []models.Thread
	var total int64

	q := s.db.Model(&models.Thread{}).Where("status = ?", models.ThreadActive)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * perPage
	if err := q.Order("created_at DESC").Offset(offset).Limit(perPage).Find(&threads).Error; err != nil {
		return nil, 0, err
	}
	return threads, total, nil
}

// Update saves mutable thread fields.
func (s *ThreadStore) Update(thread *models.Thread) error {
	return s.db.Save(thread).Error
}

// Delete removes the thread, all its replies, and every like targeting the
// thread or any of its replies, in one transaction.
func (s *ThreadStore) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("target_type = ? AND target_id IN (?)",
			models.TargetReply,
			tx.Model(&models.Reply{}).Select("id").Where("thread_id = ?", id),
		).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("target_type = ? AND target_id = ?", models.TargetThread, id).
			Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("thread_id = ?", id).Delete(&models.Reply{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Thread{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
