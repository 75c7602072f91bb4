package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lumenworks/vision-cms-backend/api/responses"
	"github.com/lumenworks/vision-cms-backend/api/validators"
	"github.com/lumenworks/vision-cms-backend/internal/content"
	"github.com/lumenworks/vision-cms-backend/internal/ingest"
	"github.com/lumenworks/vision-cms-backend/pkg/config"
	pkgerrors "github.com/lumenworks/vision-cms-backend/pkg/errors"
	"github.com/lumenworks/vision-cms-backend/pkg/logger"
	"github.com/lumenworks/vision-cms-backend/pkg/types"
)

// ContentList returns every row of a section, newest first.
func ContentList(svc *content.Service, logg *logger.Logger, section string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context(), section)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ContentCreate ingests a multipart batch of images plus shared form fields.
func ContentCreate(svc *content.Service, media config.MediaConfig, logg *logger.Logger, section string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		files, fields, err := validators.ParseMultipartMedia(r, media)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Create(r.Context(), section, files, fields)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, types.CreateResult{
			Message:        "Images uploaded",
			RequestedFiles: result.RequestedFiles,
			InsertedRows:   result.InsertedRows,
		})
	}
}

// ContentUpdate applies the section's updatable fields to one row and,
// when the form carries a file, replaces the stored image.
func ContentUpdate(svc *content.Service, media config.MediaConfig, logg *logger.Logger, section string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fields, file, err := updatePayload(r, media)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), section, id, fields, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// ContentDelete removes one row and its remote object.
func ContentDelete(svc *content.Service, logg *logger.Logger, section string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), section, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "Record deleted"})
	}
}

// ContentTruncate clears a truncatable section.
func ContentTruncate(svc *content.Service, logg *logger.Logger, section string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Truncate(r.Context(), section); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "All records deleted"})
	}
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid id").
			WithDetails(map[string]any{"id": raw})
	}
	return id, nil
}

// updatePayload reads either a multipart form (fields plus an optional
// replacement image) or a plain JSON object of fields.
func updatePayload(r *http.Request, media config.MediaConfig) (map[string]string, *ingest.File, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/") {
		files, fields, err := validators.ParseMultipartMedia(r, media)
		if err != nil {
			return nil, nil, err
		}
		if len(files) > 1 {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "only one replacement image is allowed")
		}
		if len(files) == 1 {
			return fields, &files[0], nil
		}
		return fields, nil, nil
	}

	var fields map[string]string
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body")
	}
	return fields, nil, nil
}
