package aws

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// DefaultNamespace is used when CLOUDWATCH_NAMESPACE is unset.
const DefaultNamespace = "Xtopay/Checkout"

type cloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// MetricsClient wraps AWS CloudWatch Metrics operations
type MetricsClient struct {
	client    cloudWatchAPI
	namespace string
	enabled   bool
}

// NewMetricsClient creates a CloudWatch Metrics client. A disabled client
// accepts every call and sends nothing.
func NewMetricsClient(cfg aws.Config, namespace string, enabled bool) *MetricsClient {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &MetricsClient{
		client:    cloudwatch.NewFromConfig(cfg),
		namespace: namespace,
		enabled:   enabled,
	}
}

// PutMetric sends a single metric data point to CloudWatch
func (m *MetricsClient) PutMetric(ctx context.Context, metricName string, value float64, unit types.StandardUnit, dimensions map[string]string) error {
	if m == nil || !m.enabled {
		return nil
	}

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(metricName),
				Value:      aws.Float64(value),
				Unit:       unit,
				Timestamp:  aws.Time(time.Now()),
				Dimensions: toDimensions(dimensions),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to put metric: %w", err)
	}

	return nil
}

// toDimensions sorts by name so identical maps produce identical requests.
func toDimensions(dimensions map[string]string) []types.Dimension {
	keys := make([]string, 0, len(dimensions))
	for k := range dimensions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	dims := make([]types.Dimension, 0, len(keys))
	for _, k := range keys {
		dims = append(dims, types.Dimension{
			Name:  aws.String(k),
			Value: aws.String(dimensions[k]),
		})
	}
	return dims
}

// RecordCount increments a counter metric
func (m *MetricsClient) RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error {
	return m.PutMetric(ctx, metricName, 1, types.StandardUnitCount, dimensions)
}

// RecordLatency records a latency/duration metric in milliseconds
func (m *MetricsClient) RecordLatency(ctx context.Context, metricName string, duration time.Duration, dimensions map[string]string) error {
	return m.PutMetric(ctx, metricName, float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions)
}

// IsEnabled returns whether CloudWatch metrics are enabled
func (m *MetricsClient) IsEnabled() bool {
	return m != nil && m.enabled
}

const (
	// HTTP metrics
	MetricHTTPRequests = "HTTPRequests"
	MetricHTTPErrors   = "HTTPErrors"
	MetricHTTPLatency  = "HTTPLatency"
	MetricHTTP4xx      = "HTTP4xxErrors"
	MetricHTTP5xx      = "HTTP5xxErrors"

	// Checkout metrics
	MetricCheckoutsInitiated = "CheckoutsInitiated"
	MetricCheckoutsCancelled = "CheckoutsCancelled"

	// Cache metrics
	MetricCacheHits   = "CacheHits"
	MetricCacheMisses = "CacheMisses"
)
