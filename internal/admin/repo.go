package admin

import (
	"context"
	"errors"

	"github.com/lumenworks/vision-cms-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles admin account persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to admin operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Count returns how many admin accounts exist.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AdminAccount{}).Count(&count).Error
	return count, err
}

// Create persists a new admin account.
func (r *Repository) Create(ctx context.Context, account *models.AdminAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// FindByEmail loads an account by email; a missing account returns nil.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.AdminAccount, error) {
	var account models.AdminAccount
	err := r.db.WithContext(ctx).Where("email = ?", email).Take(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// SetLocked flips the lockout flag for one account.
func (r *Repository) SetLocked(ctx context.Context, id int64, locked bool) error {
	return r.db.WithContext(ctx).
		Model(&models.AdminAccount{}).
		Where("id = ?", id).
		Update("is_locked", locked).Error
}
