package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/lumenworks/vision-cms-backend/pkg/db/models"
	"github.com/lumenworks/vision-cms-backend/pkg/logger"
)

const (
	defaultPendingRetention = time.Hour
	defaultOrphanBatchSize  = 200
)

// OrphanCleanupJobParams configure the orphan cleanup job.
type OrphanCleanupJobParams struct {
	Logger    *logger.Logger
	Pending   stalePendingStore
	Remote    remoteKeyDeleter
	Refs      referenceChecker
	Retention time.Duration
	BatchSize int
}

type stalePendingStore interface {
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]models.PendingUpload, error)
	Clear(ctx context.Context, objectKeys []string) error
}

type remoteKeyDeleter interface {
	DeleteKeys(ctx context.Context, objectKeys []string) []string
}

// referenceChecker reports whether a stored URL is still referenced by a
// live content row. A stale pending mark can outlive a successful insert,
// so the job must not assume every candidate is an orphan.
type referenceChecker interface {
	ImageReferenced(ctx context.Context, entity, imageURL string) (bool, error)
}

// NewOrphanCleanupJob builds the job that reconciles pending_uploads rows
// whose batch insert never completed: the remote objects are deleted and
// the bookkeeping rows cleared.
func NewOrphanCleanupJob(params OrphanCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Pending == nil {
		return nil, fmt.Errorf("pending store required")
	}
	if params.Remote == nil {
		return nil, fmt.Errorf("remote deleter required")
	}
	if params.Refs == nil {
		return nil, fmt.Errorf("reference checker required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultPendingRetention
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultOrphanBatchSize
	}
	return &orphanCleanupJob{
		logg:      params.Logger,
		pending:   params.Pending,
		remote:    params.Remote,
		refs:      params.Refs,
		retention: retention,
		batchSize: batchSize,
		now:       time.Now,
	}, nil
}

type orphanCleanupJob struct {
	logg      *logger.Logger
	pending   stalePendingStore
	remote    remoteKeyDeleter
	refs      referenceChecker
	retention time.Duration
	batchSize int
	now       func() time.Time
}

func (j *orphanCleanupJob) Name() string { return "orphan-cleanup" }

func (j *orphanCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	rows, err := j.pending.ListStale(ctx, cutoff, j.batchSize)
	if err != nil {
		return fmt.Errorf("query stale pending uploads: %w", err)
	}
	if len(rows) == 0 {
		j.logg.Info(ctx, "no stale pending uploads")
		return nil
	}

	// A mark can outlive its insert when the post-insert clear failed, so
	// split candidates into settled rows (URL referenced by a content row,
	// keep the object) and true orphans (delete the object).
	settled := make([]string, 0, len(rows))
	orphaned := make([]string, 0, len(rows))
	for _, row := range rows {
		referenced, err := j.refs.ImageReferenced(ctx, row.Entity, row.SecureURL)
		if err != nil {
			return fmt.Errorf("check reference for %s: %w", row.ObjectKey, err)
		}
		if referenced {
			settled = append(settled, row.ObjectKey)
		} else {
			orphaned = append(orphaned, row.ObjectKey)
		}
	}

	var failed []string
	if len(orphaned) > 0 {
		failed = j.remote.DeleteKeys(ctx, orphaned)
	}
	retained := make(map[string]struct{}, len(failed))
	for _, key := range failed {
		retained[key] = struct{}{}
	}
	cleared := make([]string, 0, len(rows))
	cleared = append(cleared, settled...)
	for _, key := range orphaned {
		if _, ok := retained[key]; ok {
			continue
		}
		cleared = append(cleared, key)
	}
	if len(cleared) > 0 {
		if err := j.pending.Clear(ctx, cleared); err != nil {
			return fmt.Errorf("clear pending uploads: %w", err)
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":     cutoff,
		"candidates": len(rows),
		"settled":    len(settled),
		"deleted":    len(cleared) - len(settled),
		"failed":     len(failed),
	})
	j.logg.Info(logCtx, "orphan cleanup complete")
	if len(failed) > 0 {
		return fmt.Errorf("orphan cleanup: %d remote deletes failed", len(failed))
	}
	return nil
}
