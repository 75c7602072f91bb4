package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/lumenworks/vision-cms-backend/pkg/db/models"
	"gorm.io/gorm"
)

// PendingStore tracks objects uploaded ahead of their database rows. Entries
// are recorded before the batch insert and cleared once it commits; leftovers
// mark orphaned objects for the reconciliation job.
type PendingStore interface {
	Record(ctx context.Context, entity string, staged []StagedFile) error
	Clear(ctx context.Context, objectKeys []string) error
}

// PendingRepo is the GORM-backed PendingStore.
type PendingRepo struct {
	db *gorm.DB
}

// NewPendingRepo binds a GORM DB to pending-upload bookkeeping.
func NewPendingRepo(db *gorm.DB) (*PendingRepo, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db required")
	}
	return &PendingRepo{db: db}, nil
}

// Record inserts one pending row per staged file.
func (r *PendingRepo) Record(ctx context.Context, entity string, staged []StagedFile) error {
	if len(staged) == 0 {
		return nil
	}
	rows := make([]models.PendingUpload, 0, len(staged))
	for _, s := range staged {
		rows = append(rows, models.PendingUpload{
			Entity:    entity,
			ObjectKey: s.ObjectKey,
			SecureURL: s.SecureURL,
		})
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// Clear removes pending rows for the given object keys.
func (r *PendingRepo) Clear(ctx context.Context, objectKeys []string) error {
	if len(objectKeys) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("object_key IN ?", objectKeys).
		Delete(&models.PendingUpload{}).Error
}

// ListStale returns pending rows older than cutoff, oldest first.
func (r *PendingRepo) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]models.PendingUpload, error) {
	var rows []models.PendingUpload
	q := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
