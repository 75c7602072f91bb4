package content

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/lumenworks/vision-cms-backend/internal/ingest"
	pkgerrors "github.com/lumenworks/vision-cms-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubUploader struct {
	mu    sync.Mutex
	calls int
}

func (s *stubUploader) ObjectKey(entity, filename string) string {
	return "vision_cms/" + entity + "/" + filename
}

func (s *stubUploader) Upload(_ context.Context, objectKey string, _ []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return "https://storage.googleapis.com/vision-media/" + objectKey, nil
}

type stubDeleter struct {
	mu      sync.Mutex
	failFor string
	deleted []string
}

func (s *stubDeleter) Delete(_ context.Context, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor != "" && strings.Contains(objectKey, s.failFor) {
		return errors.New("remote delete failed")
	}
	s.deleted = append(s.deleted, objectKey)
	return nil
}

type stubExecer struct {
	query string
	args  []any
}

func (s *stubExecer) Exec(_ context.Context, query string, args ...any) *gorm.DB {
	s.query = query
	s.args = args
	return &gorm.DB{}
}

type stubPending struct{}

func (stubPending) Record(context.Context, string, []ingest.StagedFile) error { return nil }
func (stubPending) Clear(context.Context, []string) error                     { return nil }

type contentFixture struct {
	service *Service
	db      *gorm.DB
	deleter *stubDeleter
	execer  *stubExecer
}

func newContentFixture(t *testing.T) *contentFixture {
	t.Helper()

	db := setupContentTestDB(t)
	deleter := &stubDeleter{}
	execer := &stubExecer{}

	stager, err := ingest.NewStager(&stubUploader{}, nil, nil)
	require.NoError(t, err)
	cleanup, err := ingest.NewCoordinator(deleter, nil, nil)
	require.NoError(t, err)
	ingestor, err := ingest.NewService(stager, execer, stubPending{}, cleanup, nil, nil, nil)
	require.NoError(t, err)

	service, err := NewService(ingestor, stager, NewRepository(db), cleanup, nil)
	require.NoError(t, err)
	return &contentFixture{service: service, db: db, deleter: deleter, execer: execer}
}

func TestCreateProductsBuildsEightColumnRows(t *testing.T) {
	f := newContentFixture(t)

	files := []ingest.File{
		{Name: "shirt.png", Data: []byte("a")},
		{Name: "hat.png", Data: []byte("b")},
	}
	fields := map[string]string{
		"description": "summer gear",
		"price":       "19.99",
		"features":    "cotton",
		"style":       "casual",
		"quantity":    "100",
		"category":    "apparel",
	}
	result, err := f.service.Create(context.Background(), "products", files, fields)
	require.NoError(t, err)
	assert.Equal(t, 2, result.RequestedFiles)
	assert.Equal(t, 2, result.InsertedRows)

	assert.True(t, strings.HasPrefix(f.execer.query,
		"INSERT INTO products (image, title, description, price, features, style, quantity, category) VALUES"))
	assert.Len(t, f.execer.args, 16)
	assert.Equal(t, "shirt", f.execer.args[1])
	assert.Equal(t, "hat", f.execer.args[9])
}

func TestCreateProductsRejectsInvalidPrice(t *testing.T) {
	f := newContentFixture(t)

	files := []ingest.File{{Name: "shirt.png", Data: []byte("a")}}
	_, err := f.service.Create(context.Background(), "products", files, map[string]string{"price": "not-a-number"})
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestCreateValuesRequiresDescription(t *testing.T) {
	f := newContentFixture(t)

	files := []ingest.File{{Name: "trust.png", Data: []byte("a")}}
	_, err := f.service.Create(context.Background(), "values", files, nil)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestCreateUnknownSection(t *testing.T) {
	f := newContentFixture(t)

	_, err := f.service.Create(context.Background(), "unknown", []ingest.File{{Name: "x.png", Data: []byte("a")}}, nil)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestUpdateWithoutFilePreservesImage(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	original := "https://storage.googleapis.com/vision-media/vision_cms/showcase/keep.png"
	require.NoError(t, f.db.Exec(
		`INSERT INTO showcase (title, description, image) VALUES (?, ?, ?)`,
		"keep", "old", original,
	).Error)

	updated, err := f.service.Update(ctx, "showcase", 1, map[string]string{"description": "new"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "new", updated["description"])

	var image string
	require.NoError(t, f.db.Table("showcase").Select("image").Where("id = ?", 1).Scan(&image).Error)
	assert.Equal(t, original, image)
	assert.Empty(t, f.deleter.deleted)
}

func TestUpdateWithFileSwapsRemoteObject(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	original := "https://storage.googleapis.com/vision-media/vision_cms/showcase/old.png"
	require.NoError(t, f.db.Exec(
		`INSERT INTO showcase (title, description, image) VALUES (?, ?, ?)`,
		"old", "old", original,
	).Error)

	file := &ingest.File{Name: "new.png", Data: []byte("fresh")}
	updated, err := f.service.Update(ctx, "showcase", 1, map[string]string{"description": "swapped"}, file)
	require.NoError(t, err)

	newImage, ok := updated["image"].(string)
	require.True(t, ok)
	assert.NotEqual(t, original, newImage)
	assert.Contains(t, newImage, "vision_cms/showcase/")

	require.Len(t, f.deleter.deleted, 1)
	assert.Equal(t, "vision_cms/showcase/old.png", f.deleter.deleted[0])

	var image string
	require.NoError(t, f.db.Table("showcase").Select("image").Where("id = ?", 1).Scan(&image).Error)
	assert.Equal(t, newImage, image)
}

func TestUpdateMissingRecordIs404BeforeUpload(t *testing.T) {
	f := newContentFixture(t)

	file := &ingest.File{Name: "new.png", Data: []byte("fresh")}
	_, err := f.service.Update(context.Background(), "showcase", 999, nil, file)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
	assert.Empty(t, f.deleter.deleted)
}

func TestDeleteMissingRecordMakesNoRemoteCalls(t *testing.T) {
	f := newContentFixture(t)

	err := f.service.Delete(context.Background(), "showcase", 123)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
	assert.Empty(t, f.deleter.deleted)
}

func TestDeleteRemovesRowAndRemoteObject(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Exec(
		`INSERT INTO showcase (title, description, image) VALUES (?, ?, ?)`,
		"gone", "", "https://storage.googleapis.com/vision-media/vision_cms/showcase/gone.png",
	).Error)

	require.NoError(t, f.service.Delete(ctx, "showcase", 1))
	assert.Equal(t, []string{"vision_cms/showcase/gone.png"}, f.deleter.deleted)

	var count int64
	require.NoError(t, f.db.Table("showcase").Count(&count).Error)
	assert.Zero(t, count)
}

func TestTruncateSurvivesRemoteDeleteFailures(t *testing.T) {
	f := newContentFixture(t)
	f.deleter.failFor = "stuck"
	ctx := context.Background()

	for _, name := range []string{"ok", "stuck"} {
		require.NoError(t, f.db.Exec(
			`INSERT INTO showcase (title, description, image) VALUES (?, ?, ?)`,
			name, "", "https://storage.googleapis.com/vision-media/vision_cms/showcase/"+name+".png",
		).Error)
	}

	require.NoError(t, f.service.Truncate(ctx, "showcase"))

	var count int64
	require.NoError(t, f.db.Table("showcase").Count(&count).Error)
	assert.Zero(t, count)
	assert.Equal(t, []string{"vision_cms/showcase/ok.png"}, f.deleter.deleted)
}

func TestTruncateRejectsNonTruncatableSection(t *testing.T) {
	f := newContentFixture(t)

	err := f.service.Truncate(context.Background(), "team")
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestCareerLifecycle(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	posting, err := f.service.CreateCareer(ctx, CareerInput{
		Title:       "Platform Intern",
		Description: "Help run the backend",
		Requirement: "Curiosity",
		Duration:    "6 months",
	})
	require.NoError(t, err)
	assert.NotZero(t, posting.ID)

	require.NoError(t, f.service.UpdateCareer(ctx, posting.ID, CareerInput{
		Title:    "Platform Intern",
		Duration: "12 months",
	}))

	rows, err := f.service.ListCareers(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "12 months", rows[0].Duration)

	require.NoError(t, f.service.DeleteCareer(ctx, posting.ID))
	err = f.service.DeleteCareer(ctx, posting.ID)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestCreateCareerRequiresTitle(t *testing.T) {
	f := newContentFixture(t)

	_, err := f.service.CreateCareer(context.Background(), CareerInput{Description: "no title"})
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}
