package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMiddlewareStoresRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := echo.New()
	e.Use(Middleware(zap.New(core)))
	e.GET("/ping", func(c echo.Context) error {
		FromContext(c).Info("handler")
		Ctx(c.Request().Context()).Info("service")
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDKey, "req-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	entries := logs.All()
	require.Len(t, entries, 3)
	for _, entry := range entries {
		assert.Equal(t, "req-1", entry.ContextMap()["request_id"])
	}
	assert.Equal(t, "HTTP request completed", entries[2].Message)
	assert.EqualValues(t, http.StatusNoContent, entries[2].ContextMap()["status"])
}

func TestMiddlewareLogsClientErrorsAsWarnings(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := echo.New()
	e.Use(Middleware(zap.New(core)))
	e.GET("/missing", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "HTTP request rejected", entries[0].Message)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
}

func TestCtxFallsBackToGlobal(t *testing.T) {
	global := zap.NewNop()
	SetLogger(global)
	assert.Same(t, global, Ctx(context.Background()))
}
