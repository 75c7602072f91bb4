package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// barrierDeleter blocks every Delete until the expected number of calls are
// in flight, so sequential execution fails instead of hanging.
type barrierDeleter struct {
	mu      sync.Mutex
	arrived int
	expect  int
	release chan struct{}
}

func (b *barrierDeleter) Delete(_ context.Context, _ string) error {
	b.mu.Lock()
	b.arrived++
	if b.arrived == b.expect {
		close(b.release)
	}
	b.mu.Unlock()

	select {
	case <-b.release:
		return nil
	case <-time.After(2 * time.Second):
		return errors.New("delete never ran concurrently")
	}
}

func TestDeleteURLsAggregatesFailures(t *testing.T) {
	deleter := &fakeDeleter{failFor: map[string]bool{"stuck": true}}
	coordinator, err := NewCoordinator(deleter, nil, nil)
	if err != nil {
		t.Fatalf("NewCoordinator returned error: %v", err)
	}

	urls := []string{
		"https://storage.googleapis.com/vision-media/vision_cms/home/a.png",
		"https://storage.googleapis.com/vision-media/vision_cms/home/stuck.png",
		"https://storage.googleapis.com/vision-media/vision_cms/home/b.png",
	}
	err = coordinator.DeleteURLs(context.Background(), urls)
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	// Failures must not stop the remaining deletes.
	if len(deleter.deleted) != 2 {
		t.Fatalf("expected 2 successful deletes, got %d", len(deleter.deleted))
	}
}

func TestDeleteURLsRunConcurrently(t *testing.T) {
	deleter := &barrierDeleter{expect: 3, release: make(chan struct{})}
	coordinator, err := NewCoordinator(deleter, nil, nil)
	if err != nil {
		t.Fatalf("NewCoordinator returned error: %v", err)
	}

	urls := []string{
		"https://storage.googleapis.com/vision-media/vision_cms/home/a.png",
		"https://storage.googleapis.com/vision-media/vision_cms/home/b.png",
		"https://storage.googleapis.com/vision-media/vision_cms/home/c.png",
	}
	if err := coordinator.DeleteURLs(context.Background(), urls); err != nil {
		t.Fatalf("concurrent deletes failed: %v", err)
	}
}

func TestDeleteURLsSkipsForeignHosts(t *testing.T) {
	deleter := &fakeDeleter{failFor: map[string]bool{}}
	coordinator, err := NewCoordinator(deleter, nil, nil)
	if err != nil {
		t.Fatalf("NewCoordinator returned error: %v", err)
	}

	urls := []string{"https://cdn.example.com/image.png"}
	if err := coordinator.DeleteURLs(context.Background(), urls); err != nil {
		t.Fatalf("foreign urls should be skipped, got %v", err)
	}
	if len(deleter.deleted) != 0 {
		t.Fatalf("expected no deletes, got %d", len(deleter.deleted))
	}
}

func TestDeleteKeysReturnsOnlyFailures(t *testing.T) {
	deleter := &fakeDeleter{failFor: map[string]bool{"bad": true}}
	coordinator, err := NewCoordinator(deleter, nil, nil)
	if err != nil {
		t.Fatalf("NewCoordinator returned error: %v", err)
	}

	failed := coordinator.DeleteKeys(context.Background(), []string{
		"vision_cms/team/good.png",
		"vision_cms/team/bad.png",
	})
	if len(failed) != 1 || failed[0] != "vision_cms/team/bad.png" {
		t.Fatalf("unexpected failed keys %v", failed)
	}
}
