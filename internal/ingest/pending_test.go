package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupPendingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS pending_uploads (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  entity TEXT NOT NULL,
  object_key TEXT NOT NULL UNIQUE,
  secure_url TEXT NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func TestPendingRepoRecordAndClear(t *testing.T) {
	db := setupPendingTestDB(t)
	repo, err := NewPendingRepo(db)
	require.NoError(t, err)

	ctx := context.Background()
	staged := []StagedFile{
		{OriginalName: "a.png", Title: "a", ObjectKey: "vision_cms/home/a.png", SecureURL: "https://storage.googleapis.com/vision-media/vision_cms/home/a.png"},
		{OriginalName: "b.png", Title: "b", ObjectKey: "vision_cms/home/b.png", SecureURL: "https://storage.googleapis.com/vision-media/vision_cms/home/b.png"},
	}
	require.NoError(t, repo.Record(ctx, "home", staged))

	var count int64
	require.NoError(t, db.Table("pending_uploads").Count(&count).Error)
	assert.Equal(t, int64(2), count)

	require.NoError(t, repo.Clear(ctx, []string{"vision_cms/home/a.png"}))
	require.NoError(t, db.Table("pending_uploads").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// Clearing nothing is a no-op, not an error.
	require.NoError(t, repo.Clear(ctx, nil))
}

func TestPendingRepoListStale(t *testing.T) {
	db := setupPendingTestDB(t)
	repo, err := NewPendingRepo(db)
	require.NoError(t, err)

	ctx := context.Background()
	old := time.Now().Add(-2 * time.Hour).UTC()
	fresh := time.Now().UTC()

	require.NoError(t, db.Exec(
		`INSERT INTO pending_uploads (entity, object_key, secure_url, created_at) VALUES (?, ?, ?, ?)`,
		"team", "vision_cms/team/old.png", "https://storage.googleapis.com/vision-media/vision_cms/team/old.png", old,
	).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO pending_uploads (entity, object_key, secure_url, created_at) VALUES (?, ?, ?, ?)`,
		"team", "vision_cms/team/new.png", "https://storage.googleapis.com/vision-media/vision_cms/team/new.png", fresh,
	).Error)

	stale, err := repo.ListStale(ctx, time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "vision_cms/team/old.png", stale[0].ObjectKey)
	assert.Equal(t, "team", stale[0].Entity)
}
