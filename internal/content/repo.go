package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/lumenworks/vision-cms-backend/pkg/db/models"
	pkgerrors "github.com/lumenworks/vision-cms-backend/pkg/errors"
	"gorm.io/gorm"
)

// Repository handles content row persistence for every section.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to content operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List loads all rows of a section, newest first, into the section's typed
// slice.
func (r *Repository) List(ctx context.Context, section Section) (any, error) {
	dest := section.NewList()
	if err := r.db.WithContext(ctx).
		Table(section.Table).
		Order("created_at DESC").
		Find(dest).Error; err != nil {
		return nil, err
	}
	return dest, nil
}

// GetImage returns the stored image URL for one row, or a not-found error.
func (r *Repository) GetImage(ctx context.Context, section Section, id int64) (string, error) {
	var row struct {
		Image string
	}
	err := r.db.WithContext(ctx).
		Table(section.Table).
		Select("image").
		Where("id = ?", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "Record not found")
	}
	if err != nil {
		return "", err
	}
	return row.Image, nil
}

// Update applies column updates to one row and reports how many rows matched.
func (r *Repository) Update(ctx context.Context, section Section, id int64, updates map[string]any) (int64, error) {
	if len(updates) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}
	res := r.db.WithContext(ctx).
		Table(section.Table).
		Where("id = ?", id).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// Delete removes one row and reports how many rows matched.
func (r *Repository) Delete(ctx context.Context, section Section, id int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", section.Table), id)
	return res.RowsAffected, res.Error
}

// ImageURLs collects every stored image URL of a section.
func (r *Repository) ImageURLs(ctx context.Context, section Section) ([]string, error) {
	var urls []string
	if err := r.db.WithContext(ctx).
		Table(section.Table).
		Pluck("image", &urls).Error; err != nil {
		return nil, err
	}
	return urls, nil
}

// ImageReferenced reports whether a stored image URL is referenced by a row
// of the named section. Unknown sections hold no references.
func (r *Repository) ImageReferenced(ctx context.Context, entity, imageURL string) (bool, error) {
	section, ok := Sections()[entity]
	if !ok {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Table(section.Table).
		Where("image = ?", imageURL).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Truncate clears a section's table.
func (r *Repository) Truncate(ctx context.Context, section Section) error {
	return r.db.WithContext(ctx).
		Exec(fmt.Sprintf("DELETE FROM %s", section.Table)).Error
}

// Careers rows are plain CRUD without media.

// ListCareers returns all internship postings, newest first.
func (r *Repository) ListCareers(ctx context.Context) ([]models.Internship, error) {
	var rows []models.Internship
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateCareer persists one internship posting.
func (r *Repository) CreateCareer(ctx context.Context, posting *models.Internship) error {
	return r.db.WithContext(ctx).Create(posting).Error
}

// UpdateCareer applies updates to one posting and reports matched rows.
func (r *Repository) UpdateCareer(ctx context.Context, id int64, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Internship{}).
		Where("id = ?", id).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// DeleteCareer removes one posting and reports matched rows.
func (r *Repository) DeleteCareer(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Internship{})
	return res.RowsAffected, res.Error
}

// ListCategories returns all product categories in key order.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	if err := r.db.WithContext(ctx).
		Order("cat_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateCategory persists one category label.
func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// UpdateCategory renames one category and reports matched rows.
func (r *Repository) UpdateCategory(ctx context.Context, catID int64, label string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("cat_id = ?", catID).
		Update("id", label)
	return res.RowsAffected, res.Error
}

// DeleteCategory removes one category and reports matched rows.
func (r *Repository) DeleteCategory(ctx context.Context, catID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("cat_id = ?", catID).
		Delete(&models.Category{})
	return res.RowsAffected, res.Error
}
