package content

import (
	"context"
	"testing"

	"github.com/lumenworks/vision-cms-backend/pkg/db/models"
	pkgerrors "github.com/lumenworks/vision-cms-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupContentTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS showcase (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  image TEXT NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`,
		`CREATE TABLE IF NOT EXISTS products (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  image TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL DEFAULT 0,
  features TEXT NOT NULL DEFAULT '',
  style TEXT NOT NULL DEFAULT '',
  quantity TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`,
		`CREATE TABLE IF NOT EXISTS internship (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  requirement TEXT NOT NULL DEFAULT '',
  duration TEXT NOT NULL DEFAULT '',
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`,
	}
	for _, ddl := range statements {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func showcaseSection(t *testing.T) Section {
	t.Helper()
	section, ok := Sections()["showcase"]
	require.True(t, ok)
	return section
}

func TestRepositoryRoundTrip(t *testing.T) {
	db := setupContentTestDB(t)
	repo := NewRepository(db)
	section := showcaseSection(t)
	ctx := context.Background()

	require.NoError(t, db.Exec(
		`INSERT INTO showcase (title, description, image) VALUES (?, ?, ?)`,
		"spring", "seasonal drop", "https://storage.googleapis.com/vision-media/vision_cms/showcase/spring.png",
	).Error)

	listed, err := repo.List(ctx, section)
	require.NoError(t, err)
	rows, ok := listed.(*[]models.ShowcaseItem)
	require.True(t, ok)
	require.Len(t, *rows, 1)

	got := (*rows)[0]
	assert.Equal(t, "spring", got.Title)
	assert.Equal(t, "seasonal drop", got.Description)
	assert.Equal(t, "https://storage.googleapis.com/vision-media/vision_cms/showcase/spring.png", got.Image)
	assert.NotZero(t, got.ID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestRepositoryGetImage(t *testing.T) {
	db := setupContentTestDB(t)
	repo := NewRepository(db)
	section := showcaseSection(t)
	ctx := context.Background()

	require.NoError(t, db.Exec(
		`INSERT INTO showcase (title, description, image) VALUES (?, ?, ?)`,
		"a", "", "https://storage.googleapis.com/vision-media/vision_cms/showcase/a.png",
	).Error)

	url, err := repo.GetImage(ctx, section, 1)
	require.NoError(t, err)
	assert.Equal(t, "https://storage.googleapis.com/vision-media/vision_cms/showcase/a.png", url)

	_, err = repo.GetImage(ctx, section, 999)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestRepositoryUpdateAndDelete(t *testing.T) {
	db := setupContentTestDB(t)
	repo := NewRepository(db)
	section := showcaseSection(t)
	ctx := context.Background()

	require.NoError(t, db.Exec(
		`INSERT INTO showcase (title, description, image) VALUES (?, ?, ?)`,
		"old", "old text", "https://storage.googleapis.com/vision-media/vision_cms/showcase/x.png",
	).Error)

	affected, err := repo.Update(ctx, section, 1, map[string]any{"title": "new", "description": "new text"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.Update(ctx, section, 42, map[string]any{"title": "nope"})
	require.NoError(t, err)
	assert.Zero(t, affected)

	affected, err = repo.Delete(ctx, section, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.Delete(ctx, section, 1)
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestRepositoryTruncateAndImageURLs(t *testing.T) {
	db := setupContentTestDB(t)
	repo := NewRepository(db)
	section := showcaseSection(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b"} {
		require.NoError(t, db.Exec(
			`INSERT INTO showcase (title, description, image) VALUES (?, ?, ?)`,
			name, "", "https://storage.googleapis.com/vision-media/vision_cms/showcase/"+name+".png",
		).Error)
	}

	urls, err := repo.ImageURLs(ctx, section)
	require.NoError(t, err)
	assert.Len(t, urls, 2)

	require.NoError(t, repo.Truncate(ctx, section))
	var count int64
	require.NoError(t, db.Table("showcase").Count(&count).Error)
	assert.Zero(t, count)
}

func TestRepositoryImageReferenced(t *testing.T) {
	db := setupContentTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Exec(
		`INSERT INTO showcase (title, description, image) VALUES (?, ?, ?)`,
		"live", "", "https://storage.googleapis.com/vision-media/vision_cms/showcase/live.png",
	).Error)

	referenced, err := repo.ImageReferenced(ctx, "showcase", "https://storage.googleapis.com/vision-media/vision_cms/showcase/live.png")
	require.NoError(t, err)
	assert.True(t, referenced)

	referenced, err = repo.ImageReferenced(ctx, "showcase", "https://storage.googleapis.com/vision-media/vision_cms/showcase/gone.png")
	require.NoError(t, err)
	assert.False(t, referenced)

	referenced, err = repo.ImageReferenced(ctx, "no-such-section", "anything")
	require.NoError(t, err)
	assert.False(t, referenced)
}

func TestRepositoryCareersCRUD(t *testing.T) {
	db := setupContentTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	posting := &models.Internship{
		Title:       "Backend Intern",
		Description: "Work on the CMS",
		Requirement: "Go basics",
		Duration:    "3 months",
	}
	require.NoError(t, repo.CreateCareer(ctx, posting))
	assert.NotZero(t, posting.ID)

	rows, err := repo.ListCareers(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Backend Intern", rows[0].Title)

	affected, err := repo.UpdateCareer(ctx, posting.ID, map[string]any{"duration": "6 months"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.DeleteCareer(ctx, posting.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}
