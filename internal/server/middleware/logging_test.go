package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short"))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	w := httptest.NewRecorder()

	Logging(logger)(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "short", w.Body.String())

	out := buf.String()
	assert.Contains(t, out, "HTTP request")
	assert.Contains(t, out, "status=418")
	assert.Contains(t, out, "path=/api/sessions")
	assert.Contains(t, out, "bytes_written=5")
	assert.Contains(t, out, "level=WARN")
}

func TestLogging_ErrorLevelOn5xx(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	req := httptest.NewRequest(http.MethodGet, "/process", nil)
	w := httptest.NewRecorder()

	Logging(logger)(next).ServeHTTP(w, req)

	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestLoggingWithSkip(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	wrapped := LoggingWithSkip(logger, []string{"/health"})(next)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	wrapped.ServeHTTP(httptest.NewRecorder(), req)
	assert.Empty(t, buf.String())

	req = httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	wrapped.ServeHTTP(httptest.NewRecorder(), req)
	assert.Contains(t, buf.String(), "path=/api/sessions")
}
