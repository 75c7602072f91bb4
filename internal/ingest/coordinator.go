package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lumenworks/vision-cms-backend/pkg/logger"
	"github.com/lumenworks/vision-cms-backend/pkg/metrics"
	"github.com/lumenworks/vision-cms-backend/pkg/storage/gcs"
	"go.uber.org/multierr"
)

// RemoteDeleter is the object store delete surface.
type RemoteDeleter interface {
	Delete(ctx context.Context, objectKey string) error
}

// Coordinator performs best-effort remote object deletes for replace, delete,
// truncate, and compensation paths. An object that is already gone counts as
// deleted.
type Coordinator struct {
	deleter RemoteDeleter
	metrics *metrics.IngestMetrics
	logg    *logger.Logger
}

// NewCoordinator wires a cleanup coordinator over the deleter.
func NewCoordinator(deleter RemoteDeleter, m *metrics.IngestMetrics, logg *logger.Logger) (*Coordinator, error) {
	if deleter == nil {
		return nil, fmt.Errorf("remote deleter required")
	}
	return &Coordinator{deleter: deleter, metrics: m, logg: logg}, nil
}

// DeleteKeys attempts every delete regardless of individual failures and
// returns the keys that could not be removed.
func (c *Coordinator) DeleteKeys(ctx context.Context, objectKeys []string) []string {
	var failed []string
	for _, key := range objectKeys {
		if err := c.deleteOne(ctx, key); err != nil {
			failed = append(failed, key)
		}
	}
	return failed
}

// DeleteURLs resolves public object URLs back to keys and deletes them
// concurrently, attempting every delete and aggregating per-object failures
// into a single error. Rows whose URLs do not point at the object store are
// skipped.
func (c *Coordinator) DeleteURLs(ctx context.Context, urls []string) error {
	keys := make([]string, 0, len(urls))
	for _, raw := range urls {
		key, err := gcs.ObjectKeyFromURL(raw)
		if err != nil {
			if c.logg != nil {
				c.logg.Warn(ctx, fmt.Sprintf("skipping unmanaged media url %q: %v", raw, err))
			}
			continue
		}
		keys = append(keys, key)
	}

	deleteErrs := make([]error, len(keys))
	var wg sync.WaitGroup
	for i, key := range keys {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.deleteOne(ctx, key); err != nil {
				deleteErrs[i] = fmt.Errorf("deleting %s: %w", key, err)
			}
		}()
	}
	wg.Wait()

	return multierr.Combine(deleteErrs...)
}

func (c *Coordinator) deleteOne(ctx context.Context, objectKey string) error {
	err := c.deleter.Delete(ctx, objectKey)
	switch {
	case err == nil:
		c.observe("ok")
		return nil
	case errors.Is(err, gcs.ErrObjectNotFound):
		c.observe("missing")
		return nil
	default:
		c.observe("failed")
		if c.logg != nil {
			c.logg.Warn(ctx, fmt.Sprintf("remote delete failed for %s: %v", objectKey, err))
		}
		return err
	}
}

func (c *Coordinator) observe(outcome string) {
	if c.metrics != nil {
		c.metrics.IncRemoteDelete(outcome)
	}
}
