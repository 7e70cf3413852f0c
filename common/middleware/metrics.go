package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	awspkg "github.com/xtopay/checkout-backend/pkg/aws"
)

// MetricsRecorder is the subset of awspkg.MetricsClient used here.
type MetricsRecorder interface {
	IsEnabled() bool
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
	RecordLatency(ctx context.Context, metricName string, duration time.Duration, dimensions map[string]string) error
}

// MetricsMiddleware records request count, latency and error counts.
// Points are shipped off the request goroutine.
func MetricsMiddleware(metrics MetricsRecorder, serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil || !metrics.IsEnabled() {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)
		statusCode := c.Writer.Status()

		// FullPath keeps the :clientReference param out of the dimension.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		dimensions := map[string]string{
			"Service": serviceName,
			"Method":  c.Request.Method,
			"Path":    path,
			"Status":  statusClass(statusCode),
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_ = metrics.RecordCount(ctx, awspkg.MetricHTTPRequests, dimensions)
			_ = metrics.RecordLatency(ctx, awspkg.MetricHTTPLatency, duration, dimensions)

			switch {
			case statusCode >= 500:
				_ = metrics.RecordCount(ctx, awspkg.MetricHTTPErrors, dimensions)
				_ = metrics.RecordCount(ctx, awspkg.MetricHTTP5xx, dimensions)
			case statusCode >= 400:
				_ = metrics.RecordCount(ctx, awspkg.MetricHTTPErrors, dimensions)
				_ = metrics.RecordCount(ctx, awspkg.MetricHTTP4xx, dimensions)
			}
		}()
	}
}

// statusClass buckets a status code as "2xx", "4xx" and so on.
func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}
