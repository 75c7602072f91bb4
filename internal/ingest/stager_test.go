package ingest

import (
	"context"
	"errors"
	"path"
	"strings"
	"sync"
	"testing"

	pkgerrors "github.com/lumenworks/vision-cms-backend/pkg/errors"
)

type fakeUploader struct {
	mu      sync.Mutex
	failFor map[string]error
	calls   []string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{failFor: make(map[string]error)}
}

func (f *fakeUploader) ObjectKey(entity, filename string) string {
	return path.Join("vision_cms", entity, filename)
}

func (f *fakeUploader) Upload(_ context.Context, objectKey string, _ []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, objectKey)
	for name, err := range f.failFor {
		if strings.Contains(objectKey, name) {
			return "", err
		}
	}
	return "https://storage.googleapis.com/vision-media/" + objectKey, nil
}

func newTestStager(t *testing.T, uploader Uploader) *Stager {
	t.Helper()
	stager, err := NewStager(uploader, nil, nil)
	if err != nil {
		t.Fatalf("NewStager returned error: %v", err)
	}
	return stager
}

func TestStageLenientPreservesInputOrder(t *testing.T) {
	uploader := newFakeUploader()
	stager := newTestStager(t, uploader)

	files := []File{
		{Name: "first.png", Data: []byte("a"), ContentType: "image/png"},
		{Name: "second.png", Data: []byte("b"), ContentType: "image/png"},
		{Name: "third.png", Data: []byte("c"), ContentType: "image/png"},
	}
	staged, err := stager.Stage(context.Background(), "showcase", files, PolicyLenient)
	if err != nil {
		t.Fatalf("Stage returned error: %v", err)
	}
	if len(staged) != 3 {
		t.Fatalf("expected 3 staged files, got %d", len(staged))
	}
	for i, want := range []string{"first", "second", "third"} {
		if staged[i].Title != want {
			t.Fatalf("staged[%d].Title = %q, want %q", i, staged[i].Title, want)
		}
		if !strings.HasPrefix(staged[i].SecureURL, "https://storage.googleapis.com/") {
			t.Fatalf("staged[%d] missing secure url, got %q", i, staged[i].SecureURL)
		}
	}
}

func TestStageLenientSkipsEmptyAndFailedFiles(t *testing.T) {
	uploader := newFakeUploader()
	uploader.failFor["broken"] = errors.New("boom")
	stager := newTestStager(t, uploader)

	files := []File{
		{Name: "keep.png", Data: []byte("a")},
		{Name: "empty.png"},
		{Name: "broken.png", Data: []byte("b")},
		{Name: "also-keep.png", Data: []byte("c")},
	}
	staged, err := stager.Stage(context.Background(), "team", files, PolicyLenient)
	if err != nil {
		t.Fatalf("Stage returned error: %v", err)
	}
	if len(staged) != 2 {
		t.Fatalf("expected 2 staged files, got %d", len(staged))
	}
	if staged[0].Title != "keep" || staged[1].Title != "also-keep" {
		t.Fatalf("unexpected staged order: %q, %q", staged[0].Title, staged[1].Title)
	}
}

func TestStageLenientAllFailed(t *testing.T) {
	uploader := newFakeUploader()
	uploader.failFor["a.png"] = errors.New("boom")
	stager := newTestStager(t, uploader)

	files := []File{
		{Name: "a.png", Data: []byte("x")},
		{Name: "empty.png"},
	}
	_, err := stager.Stage(context.Background(), "home", files, PolicyLenient)
	if err == nil {
		t.Fatal("expected error when nothing staged")
	}
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeUpload {
		t.Fatalf("expected upload error, got %v", err)
	}
}

func TestStageStrictAbortsOnFailure(t *testing.T) {
	uploader := newFakeUploader()
	uploader.failFor["bad"] = errors.New("boom")
	stager := newTestStager(t, uploader)

	files := []File{
		{Name: "good.png", Data: []byte("a")},
		{Name: "bad.png", Data: []byte("b")},
	}
	if _, err := stager.Stage(context.Background(), "products", files, PolicyStrict); err == nil {
		t.Fatal("expected strict staging to fail")
	}
}

func TestStageRejectsEmptyBatch(t *testing.T) {
	stager := newTestStager(t, newFakeUploader())
	_, err := stager.Stage(context.Background(), "home", nil, PolicyLenient)
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestObjectKeysAreUniquePerUpload(t *testing.T) {
	uploader := newFakeUploader()
	stager := newTestStager(t, uploader)

	files := []File{
		{Name: "same.png", Data: []byte("a")},
		{Name: "same.png", Data: []byte("b")},
	}
	staged, err := stager.Stage(context.Background(), "partners", files, PolicyLenient)
	if err != nil {
		t.Fatalf("Stage returned error: %v", err)
	}
	if staged[0].ObjectKey == staged[1].ObjectKey {
		t.Fatalf("expected unique object keys, both were %q", staged[0].ObjectKey)
	}
	for _, s := range staged {
		if !strings.HasPrefix(s.ObjectKey, "vision_cms/partners/") {
			t.Fatalf("object key %q not namespaced under entity", s.ObjectKey)
		}
	}
}
