package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xtopay/checkout-backend/common/logger"
)

func TestNew_TeesToCloudWatchWriter(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.New("production", &buf)
	require.NoError(t, err)

	l.Info("checkout_initiated", zap.String("client_reference", "DEMO-1"))
	_ = l.Sync()

	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "checkout_initiated", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "DEMO-1", entry["client_reference"])
	assert.Contains(t, entry, "timestamp")
}

func TestNew_WithoutWriter(t *testing.T) {
	l, err := logger.New("development", nil)
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestRequestID_PropagatesHeaderAndContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(logger.RequestID())

	var fromGin, fromRequest string
	r.GET("/x", func(c *gin.Context) {
		fromGin = logger.RequestIDFrom(c)
		fromRequest = logger.RequestIDFrom(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(logger.RequestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", fromGin)
	assert.Equal(t, "req-123", fromRequest)
	assert.Equal(t, "req-123", w.Header().Get(logger.RequestIDHeader))
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(logger.RequestID())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Len(t, w.Header().Get(logger.RequestIDHeader), 36)
}

func TestWith_AddsRequestIDField(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := logger.WithRequestID(context.Background(), "req-9")
	logger.With(ctx, base).Info("hello")
	logger.With(context.Background(), base).Info("bare")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-9", entries[0].ContextMap()["request_id"])
	_, ok := entries[1].ContextMap()["request_id"]
	assert.False(t, ok)
}
