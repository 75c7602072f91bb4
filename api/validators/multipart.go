package validators

import (
	"io"
	"net/http"

	"github.com/lumenworks/vision-cms-backend/internal/ingest"
	"github.com/lumenworks/vision-cms-backend/pkg/config"
	pkgerrors "github.com/lumenworks/vision-cms-backend/pkg/errors"
)

// FilesField is the multipart field that carries uploaded images.
const FilesField = "images"

// maxFieldLen caps text form fields well above any legitimate description.
const maxFieldLen = 10000

// ParseMultipartMedia reads a multipart form into uploadable files plus the
// remaining text fields. File size and count are capped by config.
func ParseMultipartMedia(r *http.Request, cfg config.MediaConfig) ([]ingest.File, map[string]string, error) {
	maxBytes := int64(cfg.MaxUploadMB) << 20
	if maxBytes <= 0 {
		maxBytes = 50 << 20
	}
	maxFiles := cfg.MaxFilesPerForm
	if maxFiles <= 0 {
		maxFiles = 20
	}

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	if r.MultipartForm == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "multipart form required")
	}

	headers := r.MultipartForm.File[FilesField]
	if len(headers) > maxFiles {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "too many files").
			WithDetails(map[string]any{"max": maxFiles, "got": len(headers)})
	}

	files := make([]ingest.File, 0, len(headers))
	for _, header := range headers {
		if header.Size > maxBytes {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "file exceeds size limit").
				WithDetails(map[string]any{"file": header.Filename, "max_mb": cfg.MaxUploadMB})
		}
		part, err := header.Open()
		if err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unable to read uploaded file")
		}
		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unable to read uploaded file")
		}
		files = append(files, ingest.File{
			Name:        header.Filename,
			Data:        data,
			ContentType: header.Header.Get("Content-Type"),
		})
	}

	fields := make(map[string]string, len(r.MultipartForm.Value))
	for key, values := range r.MultipartForm.Value {
		if len(values) == 0 {
			continue
		}
		fields[key] = SanitizeString(values[0], maxFieldLen)
	}

	return files, fields, nil
}
