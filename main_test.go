package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"dinehub/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger_PassesResponseThrough(t *testing.T) {
	handler := requestLogger(logger.NewLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cart/t1/s1", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
}

func TestRequestLogger_KeepsFlusherForEventStreams(t *testing.T) {
	handler := requestLogger(logger.NewLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := w.(http.Flusher)
		require.True(t, ok, "wrapped writer must still flush for SSE")
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events/tenant/t1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
