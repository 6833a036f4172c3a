package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sproutapp/forum/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "forum.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Thread{}, &models.Reply{}, &models.Like{}))
	return db
}

func seedThread(t *testing.T, db *gorm.DB) *models.Thread {
	t.Helper()
	thread := models.Thread{
		Title:      "Humidity for calatheas",
		Content:    "Mine keeps getting crispy edges despite daily misting.",
		AuthorName: "alice",
		AuthorID:   1,
		Status:     models.ThreadActive,
	}
	require.NoError(t, db.Create(&thread).Error)
	return &thread
}

func TestLikeUniqueIndexRejectsDuplicate(t *testing.T) {
	db := newTestDB(t)
	thread := seedThread(t, db)

	first := models.Like{TargetType: models.TargetThread, TargetID: thread.ID, UserID: 2}
	require.NoError(t, db.Create(&first).Error)

	// A second row for the same (target, user) triple must fail at the
	// database; this is what serializes racing toggles.
	dup := models.Like{TargetType: models.TargetThread, TargetID: thread.ID, UserID: 2}
	assert.Error(t, db.Create(&dup).Error)

	// Same user on a different target kind with the same numeric id is a
	// distinct row, not a conflict.
	other := models.Like{TargetType: models.TargetReply, TargetID: thread.ID, UserID: 2}
	assert.NoError(t, db.Create(&other).Error)

	var rows int64
	require.NoError(t, db.Model(&models.Like{}).Count(&rows).Error)
	assert.Equal(t, int64(2), rows)
}

func TestToggleRecoversFromRacingInsert(t *testing.T) {
	db := newTestDB(t)
	thread := seedThread(t, db)
	likes := NewLikeStore(db)

	// Simulate a toggle that lost the race: the row already exists before
	// this toggle runs, so it resolves as an unlike.
	won := models.Like{TargetType: models.TargetThread, TargetID: thread.ID, UserID: 2}
	require.NoError(t, db.Create(&won).Error)
	require.NoError(t, db.Model(&models.Thread{}).Where("id = ?", thread.ID).
		UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error)

	liked, count, err := likes.Toggle(models.ThreadTarget(thread.ID), 2)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, int64(0), count)

	var rows int64
	require.NoError(t, db.Model(&models.Like{}).Count(&rows).Error)
	assert.Zero(t, rows)
}
