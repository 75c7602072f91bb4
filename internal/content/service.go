package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/lumenworks/vision-cms-backend/internal/ingest"
	"github.com/lumenworks/vision-cms-backend/pkg/db/models"
	pkgerrors "github.com/lumenworks/vision-cms-backend/pkg/errors"
	"github.com/lumenworks/vision-cms-backend/pkg/logger"
)

// Service exposes the content operations behind the HTTP surface: batch
// creation through the ingestion pipeline, reads, field updates with optional
// image replacement, deletes, and section truncation.
type Service struct {
	sections map[string]Section
	ingestor *ingest.Service
	stager   *ingest.Stager
	repo     *Repository
	cleanup  *ingest.Coordinator
	logg     *logger.Logger
}

// NewService wires the content service over the ingestion pipeline.
func NewService(ingestor *ingest.Service, stager *ingest.Stager, repo *Repository, cleanup *ingest.Coordinator, logg *logger.Logger) (*Service, error) {
	if ingestor == nil {
		return nil, fmt.Errorf("ingest service required")
	}
	if stager == nil {
		return nil, fmt.Errorf("stager required")
	}
	if repo == nil {
		return nil, fmt.Errorf("repository required")
	}
	if cleanup == nil {
		return nil, fmt.Errorf("cleanup coordinator required")
	}
	return &Service{
		sections: Sections(),
		ingestor: ingestor,
		stager:   stager,
		repo:     repo,
		cleanup:  cleanup,
		logg:     logg,
	}, nil
}

// Lookup resolves a route segment to its section.
func (s *Service) Lookup(name string) (Section, error) {
	section, ok := s.sections[strings.ToLower(name)]
	if !ok {
		return Section{}, pkgerrors.New(pkgerrors.CodeNotFound, "Record not found")
	}
	return section, nil
}

// Sections lists the registered sections.
func (s *Service) Sections() []Section {
	out := make([]Section, 0, len(s.sections))
	for _, section := range s.sections {
		out = append(out, section)
	}
	return out
}

// Create stages the uploaded files and persists one row per staged file.
func (s *Service) Create(ctx context.Context, name string, files []ingest.File, fields map[string]string) (ingest.Result, error) {
	section, err := s.Lookup(name)
	if err != nil {
		return ingest.Result{}, err
	}
	return s.ingestor.Ingest(ctx, section.Batch(), files, fields)
}

// List returns all rows of a section, newest first.
func (s *Service) List(ctx context.Context, name string) (any, error) {
	section, err := s.Lookup(name)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, section)
}

// Update applies the section's updatable fields to one row. When a
// replacement file is provided the old remote object is deleted best-effort,
// the new file uploaded under strict policy, and the image column updated in
// the same statement. A missing row is a 404 before any remote call.
func (s *Service) Update(ctx context.Context, name string, id int64, fields map[string]string, file *ingest.File) (map[string]any, error) {
	section, err := s.Lookup(name)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	for fieldName, column := range section.FieldColumns {
		value, ok := fields[fieldName]
		if !ok {
			continue
		}
		if fieldName == "price" {
			price, err := parsePrice(value)
			if err != nil {
				return nil, err
			}
			updates[column] = price
			continue
		}
		updates[column] = value
	}

	if file != nil {
		oldURL, err := s.repo.GetImage(ctx, section, id)
		if err != nil {
			return nil, err
		}
		if oldURL != "" {
			// Old object removal must never block the swap.
			if err := s.cleanup.DeleteURLs(ctx, []string{oldURL}); err != nil && s.logg != nil {
				s.logg.Warn(ctx, fmt.Sprintf("removing replaced object failed: %v", err))
			}
		}
		staged, err := s.stager.Stage(ctx, section.Name, []ingest.File{*file}, ingest.PolicyStrict)
		if err != nil {
			return nil, err
		}
		updates["image"] = staged[0].SecureURL
	}

	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}

	affected, err := s.repo.Update(ctx, section, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "failed to persist records")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Record not found")
	}

	result := map[string]any{"id": id}
	for column, value := range updates {
		result[column] = value
	}
	return result, nil
}

// Delete removes one row after a best-effort delete of its remote object.
// The row must exist before any remote call is made.
func (s *Service) Delete(ctx context.Context, name string, id int64) error {
	section, err := s.Lookup(name)
	if err != nil {
		return err
	}

	imageURL, err := s.repo.GetImage(ctx, section, id)
	if err != nil {
		return err
	}
	if imageURL != "" {
		if err := s.cleanup.DeleteURLs(ctx, []string{imageURL}); err != nil && s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("remote delete during row delete failed: %v", err))
		}
	}

	affected, err := s.repo.Delete(ctx, section, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "failed to persist records")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Record not found")
	}
	return nil
}

// Truncate clears a truncatable section. Remote deletions are attempted for
// every stored object first; their failures are logged and never veto the
// table clear.
func (s *Service) Truncate(ctx context.Context, name string) error {
	section, err := s.Lookup(name)
	if err != nil {
		return err
	}
	if !section.Truncatable {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("section %q cannot be truncated", section.Name))
	}

	urls, err := s.repo.ImageURLs(ctx, section)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "failed to persist records")
	}
	if err := s.cleanup.DeleteURLs(ctx, urls); err != nil && s.logg != nil {
		s.logg.Warn(ctx, fmt.Sprintf("remote deletes during truncate failed: %v", err))
	}

	if err := s.repo.Truncate(ctx, section); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "failed to persist records")
	}
	return nil
}

// CareerInput carries the fields of an internship posting.
type CareerInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Requirement string `json:"requirement"`
	Duration    string `json:"duration"`
}

// ListCareers returns all internship postings, newest first.
func (s *Service) ListCareers(ctx context.Context) ([]models.Internship, error) {
	return s.repo.ListCareers(ctx)
}

// CreateCareer persists a new internship posting and returns it with its
// generated id.
func (s *Service) CreateCareer(ctx context.Context, input CareerInput) (*models.Internship, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	posting := &models.Internship{
		Title:       input.Title,
		Description: input.Description,
		Requirement: input.Requirement,
		Duration:    input.Duration,
	}
	if err := s.repo.CreateCareer(ctx, posting); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "failed to persist records")
	}
	return posting, nil
}

// UpdateCareer applies the posting fields to one row.
func (s *Service) UpdateCareer(ctx context.Context, id int64, input CareerInput) error {
	updates := map[string]any{
		"title":       input.Title,
		"description": input.Description,
		"requirement": input.Requirement,
		"duration":    input.Duration,
	}
	affected, err := s.repo.UpdateCareer(ctx, id, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "failed to persist records")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Record not found")
	}
	return nil
}

// DeleteCareer removes one posting.
func (s *Service) DeleteCareer(ctx context.Context, id int64) error {
	affected, err := s.repo.DeleteCareer(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "failed to persist records")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Record not found")
	}
	return nil
}

// CategoryInput carries a product category label.
type CategoryInput struct {
	Label string `json:"id" validate:"required"`
}

// ListCategories returns all product categories.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.ListCategories(ctx)
}

// CreateCategory persists a new category label and returns it with its
// generated key.
func (s *Service) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	if strings.TrimSpace(input.Label) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category label is required")
	}
	category := &models.Category{Label: input.Label}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "failed to persist records")
	}
	return category, nil
}

// UpdateCategory renames one category.
func (s *Service) UpdateCategory(ctx context.Context, catID int64, input CategoryInput) error {
	if strings.TrimSpace(input.Label) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "category label is required")
	}
	affected, err := s.repo.UpdateCategory(ctx, catID, input.Label)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "failed to persist records")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Record not found")
	}
	return nil
}

// DeleteCategory removes one category.
func (s *Service) DeleteCategory(ctx context.Context, catID int64) error {
	affected, err := s.repo.DeleteCategory(ctx, catID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "failed to persist records")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Record not found")
	}
	return nil
}
