package logger

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	obscontext "github.com/smallbiznis/teamroster/internal/observability/context"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const HeaderRequestID = "X-Request-Id"

// MiddlewareConfig controls request logging behavior.
type MiddlewareConfig struct {
	Debug bool
	// ErrorClassifier maps the last handler error to a (type, code) pair.
	ErrorClassifier func(err error) (string, string)
	// QuietRoutes are logged at debug regardless of outcome.
	QuietRoutes []string
}

// GinMiddleware writes one http_request line per request. It runs ahead of
// the auth and team middleware, so actor and team fields are read back from
// the request context once the chain has returned.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	quiet := make(map[string]struct{}, len(cfg.QuietRoutes)+2)
	for _, route := range append([]string{"/metrics", "/health"}, cfg.QuietRoutes...) {
		quiet[strings.ToLower(route)] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		requestID := ensureRequestID(c)
		c.Request = c.Request.WithContext(obscontext.WithRequestID(c.Request.Context(), requestID))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()

		var errorType string
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.Int64("bytes_in", max(c.Request.ContentLength, 0)),
			zap.Int("bytes_out", max(c.Writer.Size(), 0)),
		}
		if lastErr := c.Errors.Last(); lastErr != nil {
			var errorCode string
			if cfg.ErrorClassifier != nil {
				errorType, errorCode = cfg.ErrorClassifier(lastErr.Err)
			}
			fields = append(fields,
				zap.String("error_type", errorType),
				zap.String("error_code", errorCode),
			)
			if cfg.Debug {
				fields = append(fields, zap.Stack("stack"))
			}
		}

		_, isQuiet := quiet[strings.ToLower(route)]
		if ce := FromContext(c.Request.Context()).Check(requestLevel(status, errorType, isQuiet), "http_request"); ce != nil {
			ce.Write(fields...)
		}
	}
}

func requestLevel(status int, errorType string, quiet bool) zapcore.Level {
	switch {
	case quiet:
		return zap.DebugLevel
	case status >= http.StatusInternalServerError:
		return zap.ErrorLevel
	case status == http.StatusTooManyRequests, errorType == "rate_limited":
		return zap.WarnLevel
	default:
		return zap.InfoLevel
	}
}

func ensureRequestID(c *gin.Context) string {
	requestID := strings.TrimSpace(c.GetHeader(HeaderRequestID))
	if requestID == "" || len(requestID) > 128 {
		requestID = uuid.NewString()
	}
	c.Set("request_id", requestID)
	c.Header(HeaderRequestID, requestID)
	return requestID
}
