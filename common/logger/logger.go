package logger

import (
	"context"
	"io"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// RequestIDHeader is read from and echoed on every response.
const RequestIDHeader = "X-Request-ID"

type ctxKey struct{}

// New builds a zap logger for the given environment. Production emits JSON
// with an ISO8601 "timestamp"; anything else uses the colored console encoder.
// When cloudWatch is non-nil every entry is also written there as JSON.
func New(env string, cloudWatch io.Writer) (*zap.Logger, error) {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if cloudWatch == nil {
		return config.Build()
	}

	level := zap.NewAtomicLevelAt(config.Level.Level())

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(config.EncoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)

	// CloudWatch receives plain JSON regardless of the console encoder.
	cwEncoderConfig := config.EncoderConfig
	cwEncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	cwCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(cwEncoderConfig),
		zapcore.AddSync(cloudWatch),
		level,
	)

	return zap.New(zapcore.NewTee(consoleCore, cwCore), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// RequestID assigns every request an id, taken from X-Request-ID when the
// caller sent one. The id is stored on the gin context and on the request
// context so services can log it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), requestID))
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// WithRequestID returns a copy of ctx carrying requestID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// RequestIDFrom extracts the request id from ctx, or "" if absent.
func RequestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if ginCtx, ok := ctx.(*gin.Context); ok {
		return ginCtx.GetString(RequestIDKey)
	}
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}

// With returns l annotated with the request id carried by ctx, if any.
func With(ctx context.Context, l *zap.Logger) *zap.Logger {
	if id := RequestIDFrom(ctx); id != "" {
		return l.With(zap.String("request_id", id))
	}
	return l
}
