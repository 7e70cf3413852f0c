package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// MetricsRecorder is the subset of the CloudWatch client the services use.
type MetricsRecorder interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
}

// recordCount ships a counter off the request goroutine.
func recordCount(metrics MetricsRecorder, log *zap.Logger, metric string, dimensions map[string]string) {
	if metrics == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metrics.RecordCount(ctx, metric, dimensions); err != nil {
			log.Debug("Failed to record metric", zap.String("metric", metric), zap.Error(err))
		}
	}()
}
