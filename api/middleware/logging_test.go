package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lumenworks/vision-cms-backend/pkg/logger"
)

func TestLoggingRecordsDownstreamStatus(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "middleware-test"})

	var rec *statusRecorder
	handler := Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		rec = w.(*statusRecorder)
		w.WriteHeader(http.StatusTeapot)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/home", nil))

	if resp.Code != http.StatusTeapot {
		t.Fatalf("status not forwarded, got %d", resp.Code)
	}
	if rec.status != http.StatusTeapot {
		t.Fatalf("recorded status = %d, want %d", rec.status, http.StatusTeapot)
	}
}

func TestLoggingDefaultsImplicitOK(t *testing.T) {
	handler := Logging(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected implicit 200, got %d", resp.Code)
	}
}
