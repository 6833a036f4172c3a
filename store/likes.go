package store

import (
	"gorm.io/gorm"

	"github.com/sproutapp/forum/models"
)

// LikeStore persists per-user reactions and keeps the target's likes_count
// consistent with the like rows.
type LikeStore struct {
	db *gorm.DB
}

// NewLikeStore creates a LikeStore.
func NewLikeStore(db *gorm.DB) *LikeStore {
	return &LikeStore{db: db}
}

// Toggle creates the like if absent or removes it if present, adjusting the
// target's likes_count in the same transaction. The unique index on
// (target_type, target_id, user_id) serializes racing toggles from the same
// user: the losing concurrent create fails with a duplicate key error and
// rolls back, so two toggles never both succeed as "create".
//
// Returns whether the target is now liked by the user and the resulting
// like count. A missing target yields gorm.ErrRecordNotFound.
func (s *LikeStore) Toggle(target models.LikeTarget, userID uint) (liked bool, count int64, err error) {
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("target_type = ? AND target_id = ? AND user_id = ?",
			target.Kind, target.ID, userID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected > 0 {
			liked = false
			if err := adjustLikesCount(tx, target, -1); err != nil {
				return err
			}
		} else {
			liked = true
			like := models.Like{TargetType: target.Kind, TargetID: target.ID, UserID: userID}
			if err := tx.Create(&like).Error; err != nil {
				return err
			}
			if err := adjustLikesCount(tx, target, +1); err != nil {
				return err
			}
		}

		return readLikesCount(tx, target, &count)
	})
	if err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

// adjustLikesCount applies an atomic increment or clamped decrement on the
// target row. An increment touching zero rows means the target is gone.
func adjustLikesCount(tx *gorm.DB, target models.LikeTarget, delta int) error {
	q := tx.Model(targetModel(target)).Where("id = ?", target.ID)
	if delta > 0 {
		res := q.UpdateColumn("likes_count", gorm.Expr("likes_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}
	return q.Where("likes_count > 0").
		UpdateColumn("likes_count", gorm.Expr("likes_count - 1")).Error
}

func readLikesCount(tx *gorm.DB, target models.LikeTarget, out *int64) error {
	return tx.Model(targetModel(target)).Where("id = ?", target.ID).
		Select("likes_count").Scan(out).Error
}

func targetModel(target models.LikeTarget) interface{} {
	if target.Kind == models.TargetReply {
		return &models.Reply{}
	}
	return &models.Thread{}
}
