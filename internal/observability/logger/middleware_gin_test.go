package logger

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGinMiddlewareLogsRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)

	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{
		ErrorClassifier: func(error) (string, string) { return "client_error", "boom" },
	}))
	r.GET("/teams/:team_id", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
		c.Status(http.StatusConflict)
	})

	req := httptest.NewRequest(http.MethodGet, "/teams/7", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "req-1", rec.Header().Get(HeaderRequestID))
	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "/teams/:team_id", fields["route"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "boom", fields["error_code"])
}

func TestGinMiddlewareGeneratesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{}))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
}

func TestRequestLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, requestLevel(http.StatusInternalServerError, "", true))
	assert.Equal(t, zapcore.ErrorLevel, requestLevel(http.StatusServiceUnavailable, "server_error", false))
	assert.Equal(t, zapcore.WarnLevel, requestLevel(http.StatusTooManyRequests, "rate_limited", false))
	assert.Equal(t, zapcore.InfoLevel, requestLevel(http.StatusNotFound, "client_error", false))
}
