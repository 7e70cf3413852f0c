package aws

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

// DefaultLogGroup is used when CLOUDWATCH_LOG_GROUP is unset.
const DefaultLogGroup = "/xtopay/checkout"

// maxLogBatch keeps well under the PutLogEvents limit of 10,000 events.
const maxLogBatch = 100

type cloudWatchLogsAPI interface {
	CreateLogGroup(ctx context.Context, params *cloudwatchlogs.CreateLogGroupInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogGroupOutput, error)
	PutRetentionPolicy(ctx context.Context, params *cloudwatchlogs.PutRetentionPolicyInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutRetentionPolicyOutput, error)
	CreateLogStream(ctx context.Context, params *cloudwatchlogs.CreateLogStreamInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error)
	PutLogEvents(ctx context.Context, params *cloudwatchlogs.PutLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error)
}

// CloudWatchLogsClient is an io.Writer that buffers log lines and ships
// them to a CloudWatch Logs stream in batches.
type CloudWatchLogsClient struct {
	client        cloudWatchLogsAPI
	logGroupName  string
	logStreamName string

	mu            sync.Mutex
	pending       []types.InputLogEvent
	sequenceToken *string
}

// NewCloudWatchLogsClient ensures the log group exists and opens a fresh
// stream named after the service and start time.
func NewCloudWatchLogsClient(ctx context.Context, cfg aws.Config, logGroupName, serviceName string) (*CloudWatchLogsClient, error) {
	if logGroupName == "" {
		logGroupName = DefaultLogGroup
	}
	c := newCloudWatchLogsClient(cloudwatchlogs.NewFromConfig(cfg), logGroupName, fmt.Sprintf("%s-%d", serviceName, time.Now().Unix()))

	if err := c.ensureLogGroup(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure log group: %w", err)
	}
	if err := c.createLogStream(ctx); err != nil {
		return nil, fmt.Errorf("failed to create log stream: %w", err)
	}
	return c, nil
}

func newCloudWatchLogsClient(api cloudWatchLogsAPI, group, stream string) *CloudWatchLogsClient {
	return &CloudWatchLogsClient{
		client:        api,
		logGroupName:  group,
		logStreamName: stream,
	}
}

func (c *CloudWatchLogsClient) ensureLogGroup(ctx context.Context) error {
	_, err := c.client.CreateLogGroup(ctx, &cloudwatchlogs.CreateLogGroupInput{
		LogGroupName: aws.String(c.logGroupName),
	})
	if err != nil {
		var existsErr *types.ResourceAlreadyExistsException
		if !errors.As(err, &existsErr) {
			return err
		}
	}

	_, err = c.client.PutRetentionPolicy(ctx, &cloudwatchlogs.PutRetentionPolicyInput{
		LogGroupName:    aws.String(c.logGroupName),
		RetentionInDays: aws.Int32(30),
	})
	if err != nil {
		return fmt.Errorf("failed to set retention policy: %w", err)
	}
	return nil
}

func (c *CloudWatchLogsClient) createLogStream(ctx context.Context) error {
	_, err := c.client.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  aws.String(c.logGroupName),
		LogStreamName: aws.String(c.logStreamName),
	})
	return err
}

// Write implements io.Writer. p is copied since zap reuses its buffers.
// Shipping failures are reported on stderr and never fail the write.
func (c *CloudWatchLogsClient) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = append(c.pending, types.InputLogEvent{
		Message:   aws.String(string(p)),
		Timestamp: aws.Int64(time.Now().UnixMilli()),
	})
	if len(c.pending) >= maxLogBatch {
		c.flushLocked(context.Background())
	}
	return len(p), nil
}

// Sync flushes buffered events. zap calls it through zapcore.AddSync.
func (c *CloudWatchLogsClient) Sync() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushLocked(context.Background())
}

// Run flushes on every tick until ctx is done, then flushes once more.
func (c *CloudWatchLogsClient) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = c.Sync()
			return
		case <-ticker.C:
			_ = c.Sync()
		}
	}
}

func (c *CloudWatchLogsClient) flushLocked(ctx context.Context) error {
	if len(c.pending) == 0 {
		return nil
	}
	events := c.pending
	c.pending = nil

	out, err := c.client.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  aws.String(c.logGroupName),
		LogStreamName: aws.String(c.logStreamName),
		LogEvents:     events,
		SequenceToken: c.sequenceToken,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "CloudWatch write error: %v\n", err)
		return fmt.Errorf("failed to put log events: %w", err)
	}
	c.sequenceToken = out.NextSequenceToken
	return nil
}
