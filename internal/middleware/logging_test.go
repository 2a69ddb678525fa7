package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func loggedHandler(buf *bytes.Buffer, next http.Handler) http.Handler {
	logger := slog.New(slog.NewTextHandler(buf, nil))
	return RequestLogger(logger)(next)
}

func TestRequestLoggerPassesThrough(t *testing.T) {
	var buf bytes.Buffer
	handler := loggedHandler(&buf, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "hello" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "hello")
	}

	out := buf.String()
	if !strings.Contains(out, "status=200") {
		t.Errorf("log missing default status: %q", out)
	}
	if !strings.Contains(out, "bytes=5") {
		t.Errorf("log missing response size: %q", out)
	}
	if !strings.Contains(out, "level=INFO") {
		t.Errorf("expected info level for 200: %q", out)
	}
}

func TestRequestLoggerLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusNotFound, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		handler := loggedHandler(&buf, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/x", nil))

		out := buf.String()
		if !strings.Contains(out, "level="+tt.level) {
			t.Errorf("status %d: expected level %s in %q", tt.status, tt.level, out)
		}
	}
}
