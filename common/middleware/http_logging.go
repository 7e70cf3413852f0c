package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xtopay/checkout-backend/common/logger"
)

// quietPaths are hit by load balancer health checks and only logged at debug.
var quietPaths = map[string]bool{"/health": true}

// RequestLogger writes one "http_request" entry when a request finishes.
// The entry carries the matched route template next to the raw path, and
// the client reference when the route has one.
//
// Usage:
//
//	router.Use(logger.RequestID(), middleware.RequestLogger(log))
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		req := c.Request
		fields := []zap.Field{
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.String("route", c.FullPath()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if req.URL.RawQuery != "" {
			fields = append(fields, zap.String("query", req.URL.RawQuery))
		}
		if ref := c.Param("clientReference"); ref != "" {
			fields = append(fields, zap.String("client_reference", ref))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if ce := logger.With(req.Context(), log).Check(levelFor(req.URL.Path, status), "http_request"); ce != nil {
			ce.Write(fields...)
		}
	}
}

func levelFor(path string, status int) zapcore.Level {
	switch {
	case status >= 500:
		return zapcore.ErrorLevel
	case status >= 400:
		return zapcore.WarnLevel
	case quietPaths[path]:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}
