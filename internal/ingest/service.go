package ingest

import (
	"context"
	"fmt"

	pkgerrors "github.com/lumenworks/vision-cms-backend/pkg/errors"
	"github.com/lumenworks/vision-cms-backend/pkg/logger"
	"github.com/lumenworks/vision-cms-backend/pkg/metrics"
	"gorm.io/gorm"
)

// EntityBatch describes how one content section turns staged files into rows.
type EntityBatch struct {
	// Entity names the section; it prefixes object keys and metric labels.
	Entity string
	// Table and Columns define the batch insert target. Column order must
	// match MapRow's output order.
	Table   string
	Columns []string
	// Policy selects lenient or strict upload handling for this section.
	Policy Policy
	// MapRow produces one row of column values for a staged file, combining
	// it with the non-file form fields.
	MapRow func(staged StagedFile, fields map[string]string) ([]any, error)
}

// Execer is the write surface of the database client.
type Execer interface {
	Exec(ctx context.Context, query string, args ...any) *gorm.DB
}

// CleanupNotifier publishes orphaned object keys for asynchronous retry when
// synchronous compensation fails.
type CleanupNotifier interface {
	NotifyOrphan(ctx context.Context, entity, objectKey string) error
}

// Result reports what an ingestion run achieved.
type Result struct {
	RequestedFiles int
	InsertedRows   int
}

// Service runs the ingestion pipeline: stage files in the object store,
// record them as pending, persist all rows in one multi-row INSERT, then
// clear the pending marks. Persistence failure triggers compensating deletes
// so the store does not accumulate orphans.
type Service struct {
	stager   *Stager
	execer   Execer
	pending  PendingStore
	cleanup  *Coordinator
	notifier CleanupNotifier
	metrics  *metrics.IngestMetrics
	logg     *logger.Logger
}

// NewService wires the ingestion pipeline. The notifier may be nil; orphans
// are then left to the reconciliation job alone.
func NewService(stager *Stager, execer Execer, pending PendingStore, cleanup *Coordinator, notifier CleanupNotifier, m *metrics.IngestMetrics, logg *logger.Logger) (*Service, error) {
	if stager == nil {
		return nil, fmt.Errorf("stager required")
	}
	if execer == nil {
		return nil, fmt.Errorf("db execer required")
	}
	if pending == nil {
		return nil, fmt.Errorf("pending store required")
	}
	if cleanup == nil {
		return nil, fmt.Errorf("cleanup coordinator required")
	}
	return &Service{
		stager:   stager,
		execer:   execer,
		pending:  pending,
		cleanup:  cleanup,
		notifier: notifier,
		metrics:  m,
		logg:     logg,
	}, nil
}

// Ingest stages files and persists one row per staged file. The returned
// result distinguishes requested files from inserted rows so callers can
// surface partial successes under the lenient policy.
func (s *Service) Ingest(ctx context.Context, batch EntityBatch, files []File, fields map[string]string) (Result, error) {
	if s.logg != nil {
		ctx = s.logg.WithEntity(ctx, batch.Entity)
	}

	staged, err := s.stager.Stage(ctx, batch.Entity, files, batch.Policy)
	if err != nil {
		return Result{RequestedFiles: len(files)}, err
	}

	if err := s.pending.Record(ctx, batch.Entity, staged); err != nil {
		s.compensate(ctx, batch.Entity, staged)
		return Result{RequestedFiles: len(files)}, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "failed to persist records")
	}

	rows := make([][]any, 0, len(staged))
	for _, sf := range staged {
		row, err := batch.MapRow(sf, fields)
		if err != nil {
			s.compensate(ctx, batch.Entity, staged)
			return Result{RequestedFiles: len(files)}, err
		}
		if len(row) != len(batch.Columns) {
			s.compensate(ctx, batch.Entity, staged)
			return Result{RequestedFiles: len(files)}, pkgerrors.New(pkgerrors.CodeInternal,
				fmt.Sprintf("row has %d values for %d columns", len(row), len(batch.Columns)))
		}
		rows = append(rows, row)
	}

	query, err := BuildInsert(batch.Table, batch.Columns, len(rows))
	if err != nil {
		s.compensate(ctx, batch.Entity, staged)
		return Result{RequestedFiles: len(files)}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building insert")
	}

	if err := s.execer.Exec(ctx, query, FlattenRows(rows)...).Error; err != nil {
		s.compensate(ctx, batch.Entity, staged)
		return Result{RequestedFiles: len(files)}, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "failed to persist records")
	}

	keys := objectKeys(staged)
	if err := s.pending.Clear(ctx, keys); err != nil && s.logg != nil {
		// Rows are in place; the reconciliation job sees the stored URL is
		// referenced and drops the leftover mark without touching the object.
		s.logg.Warn(ctx, fmt.Sprintf("clearing pending uploads failed: %v", err))
	}

	if s.metrics != nil {
		s.metrics.AddRowsInserted(batch.Entity, len(rows))
	}
	if s.logg != nil {
		s.logg.Info(ctx, fmt.Sprintf("persisted %d of %d requested files", len(rows), len(files)))
	}
	return Result{RequestedFiles: len(files), InsertedRows: len(rows)}, nil
}

// compensate tears down staged objects after a failed persistence attempt.
// Keys it manages to delete lose their pending mark; the rest stay pending
// and are handed to the async cleanup path.
func (s *Service) compensate(ctx context.Context, entity string, staged []StagedFile) {
	keys := objectKeys(staged)
	failed := s.cleanup.DeleteKeys(ctx, keys)

	failedSet := make(map[string]struct{}, len(failed))
	for _, key := range failed {
		failedSet[key] = struct{}{}
	}
	cleared := make([]string, 0, len(keys))
	for _, key := range keys {
		if _, ok := failedSet[key]; !ok {
			cleared = append(cleared, key)
		}
	}
	if err := s.pending.Clear(ctx, cleared); err != nil && s.logg != nil {
		s.logg.Warn(ctx, fmt.Sprintf("clearing compensated uploads failed: %v", err))
	}

	if s.notifier == nil {
		return
	}
	for _, key := range failed {
		if err := s.notifier.NotifyOrphan(ctx, entity, key); err != nil && s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("publishing orphan %s failed: %v", key, err))
		}
	}
}

func objectKeys(staged []StagedFile) []string {
	keys := make([]string, 0, len(staged))
	for _, s := range staged {
		keys = append(keys, s.ObjectKey)
	}
	return keys
}
