package validators

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lumenworks/vision-cms-backend/pkg/config"
	pkgerrors "github.com/lumenworks/vision-cms-backend/pkg/errors"
)

func multipartRequest(t *testing.T, files map[string][]byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, data := range files {
		part, err := writer.CreateFormFile(FilesField, name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/home", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestParseMultipartMedia(t *testing.T) {
	req := multipartRequest(t,
		map[string][]byte{"banner.png": []byte("png-bytes")},
		map[string]string{"description": "  hero banner  "},
	)

	files, fields, err := ParseMultipartMedia(req, config.MediaConfig{MaxUploadMB: 50, MaxFilesPerForm: 20})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
	if files[0].Name != "banner.png" {
		t.Fatalf("file name = %q", files[0].Name)
	}
	if string(files[0].Data) != "png-bytes" {
		t.Fatalf("file data = %q", files[0].Data)
	}
	if fields["description"] != "hero banner" {
		t.Fatalf("description = %q, want trimmed value", fields["description"])
	}
}

func TestParseMultipartMediaRejectsTooManyFiles(t *testing.T) {
	req := multipartRequest(t, map[string][]byte{
		"a.png": []byte("a"),
		"b.png": []byte("b"),
		"c.png": []byte("c"),
	}, nil)

	_, _, err := ParseMultipartMedia(req, config.MediaConfig{MaxUploadMB: 50, MaxFilesPerForm: 2})
	if err == nil {
		t.Fatalf("expected file count error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseMultipartMediaRejectsNonMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/home", bytes.NewReader([]byte(`{"json":true}`)))
	req.Header.Set("Content-Type", "application/json")

	_, _, err := ParseMultipartMedia(req, config.MediaConfig{MaxUploadMB: 50, MaxFilesPerForm: 20})
	if err == nil {
		t.Fatalf("expected error for non-multipart body")
	}
}
