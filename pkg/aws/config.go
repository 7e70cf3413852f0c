package aws

import (
	"context"
	"fmt"
	"os"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

// DefaultRegion is used when neither the shared config nor AWS_REGION set one.
const DefaultRegion = "eu-west-1"

// EndpointFromEnv returns the LocalStack style override, preferring
// AWS_SNS_ENDPOINT over the generic AWS_ENDPOINT.
func EndpointFromEnv() string {
	if v := os.Getenv("AWS_SNS_ENDPOINT"); v != "" {
		return v
	}
	return os.Getenv("AWS_ENDPOINT")
}

// LoadAWSConfig loads the default SDK config. When an endpoint override is
// present every client built from the config targets it instead of AWS.
func LoadAWSConfig(ctx context.Context) (sdkaws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return cfg, fmt.Errorf("failed to load aws config: %w", err)
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}

	if endpoint := EndpointFromEnv(); endpoint != "" {
		cfg.BaseEndpoint = sdkaws.String(endpoint)
	}

	return cfg, nil
}
