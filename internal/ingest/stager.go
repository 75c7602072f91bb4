package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/lumenworks/vision-cms-backend/pkg/errors"
	"github.com/lumenworks/vision-cms-backend/pkg/logger"
	"github.com/lumenworks/vision-cms-backend/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Policy controls how the stager treats per-file upload failures.
type Policy int

const (
	// PolicyLenient skips files that fail to upload and stages the rest.
	PolicyLenient Policy = iota
	// PolicyStrict fails the whole batch on the first upload error.
	PolicyStrict
)

// StagedFile is one file that landed in the object store and is ready to be
// persisted as a row.
type StagedFile struct {
	OriginalName string
	Title        string
	ObjectKey    string
	SecureURL    string
}

// Uploader is the object store surface the stager depends on.
type Uploader interface {
	ObjectKey(entity, filename string) string
	Upload(ctx context.Context, objectKey string, data []byte, contentType string) (string, error)
}

// Stager fans uploads out to the object store concurrently, preserving the
// order of the incoming files in its results.
type Stager struct {
	uploader Uploader
	metrics  *metrics.IngestMetrics
	logg     *logger.Logger
}

// NewStager builds a stager over the given uploader.
func NewStager(uploader Uploader, m *metrics.IngestMetrics, logg *logger.Logger) (*Stager, error) {
	if uploader == nil {
		return nil, fmt.Errorf("uploader required")
	}
	return &Stager{uploader: uploader, metrics: m, logg: logg}, nil
}

// Stage uploads files for entity and returns the staged results in input
// order. Under PolicyLenient, files with empty buffers or failed uploads are
// dropped from the result; under PolicyStrict any failure aborts the batch.
// A batch where nothing staged is an error under either policy.
func (s *Stager) Stage(ctx context.Context, entity string, files []File, policy Policy) ([]StagedFile, error) {
	if len(files) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "No files were uploaded")
	}

	if policy == PolicyStrict {
		return s.stageStrict(ctx, entity, files)
	}
	return s.stageLenient(ctx, entity, files)
}

func (s *Stager) stageStrict(ctx context.Context, entity string, files []File) ([]StagedFile, error) {
	staged := make([]StagedFile, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, file := range files {
		if file.Empty() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("file %q is empty", file.Name))
		}
		g.Go(func() error {
			result, err := s.uploadOne(gctx, entity, file)
			if err != nil {
				s.observe(entity, "failed")
				return err
			}
			s.observe(entity, "ok")
			staged[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpload, err, "Failed to upload images")
	}
	return staged, nil
}

func (s *Stager) stageLenient(ctx context.Context, entity string, files []File) ([]StagedFile, error) {
	results := make([]*StagedFile, len(files))
	var wg sync.WaitGroup
	for i, file := range files {
		if file.Empty() {
			s.observe(entity, "skipped")
			if s.logg != nil {
				s.logg.Warn(ctx, fmt.Sprintf("skipping empty upload %q", file.Name))
			}
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.uploadOne(ctx, entity, file)
			if err != nil {
				s.observe(entity, "failed")
				if s.logg != nil {
					s.logg.Warn(ctx, fmt.Sprintf("upload failed for %q: %v", file.Name, err))
				}
				return
			}
			s.observe(entity, "ok")
			results[i] = &result
		}()
	}
	wg.Wait()

	staged := make([]StagedFile, 0, len(files))
	for _, r := range results {
		if r != nil {
			staged = append(staged, *r)
		}
	}
	if len(staged) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUpload, "No files could be uploaded")
	}
	return staged, nil
}

func (s *Stager) uploadOne(ctx context.Context, entity string, file File) (StagedFile, error) {
	objectKey := s.uploader.ObjectKey(entity, uuid.NewString()+"-"+sanitizeFileName(file.Name))
	start := time.Now()
	secureURL, err := s.uploader.Upload(ctx, objectKey, file.Data, file.ContentType)
	if err != nil {
		return StagedFile{}, err
	}
	if s.metrics != nil {
		s.metrics.ObserveUploadDuration(entity, time.Since(start))
	}
	return StagedFile{
		OriginalName: file.Name,
		Title:        DeriveTitle(file.Name),
		ObjectKey:    objectKey,
		SecureURL:    secureURL,
	}, nil
}

func (s *Stager) observe(entity, outcome string) {
	if s.metrics != nil {
		s.metrics.IncUpload(entity, outcome)
	}
}
