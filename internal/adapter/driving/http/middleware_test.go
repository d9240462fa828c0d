package httphandler

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoveryMiddleware_ConvertsPanicTo500(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	h := recoveryMiddleware(logger, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/drive/files", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestRecoveryMiddleware_ReRaisesAbortHandler(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	h := recoveryMiddleware(logger, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	rec := httptest.NewRecorder()
	require.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/drive/stream", nil))
	})
}

func TestLoggingMiddleware_PreservesHandlerStatus(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	h := loggingMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPartialContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/drive/stream", nil))

	assert.Equal(t, http.StatusPartialContent, rec.Code)
}
