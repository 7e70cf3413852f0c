package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type secretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsClient reads Secrets Manager values and caches them for the
// lifetime of the process.
type SecretsClient struct {
	client secretsAPI
	cache  map[string]string
	mu     sync.RWMutex
}

// NewSecretsClient builds a client from an already loaded SDK config.
func NewSecretsClient(cfg sdkaws.Config) *SecretsClient {
	return newSecretsClient(secretsmanager.NewFromConfig(cfg))
}

func newSecretsClient(api secretsAPI) *SecretsClient {
	return &SecretsClient{client: api, cache: make(map[string]string)}
}

// GetSecret returns the string value of a secret, fetching it only once.
func (s *SecretsClient) GetSecret(ctx context.Context, name string) (string, error) {
	if v, ok := s.cached(name); ok {
		return v, nil
	}

	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: sdkaws.String(name)})
	if err != nil {
		return "", fmt.Errorf("failed to get secret %s: %w", name, err)
	}
	value := sdkaws.ToString(out.SecretString)
	if value == "" {
		return "", fmt.Errorf("secret %s has no string value", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[name] = value
	return value, nil
}

func (s *SecretsClient) cached(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.cache[name]
	return v, ok
}

// GetSecretMap reads a secret holding a flat JSON object of strings.
func (s *SecretsClient) GetSecretMap(ctx context.Context, name string) (map[string]string, error) {
	raw, err := s.GetSecret(ctx, name)
	if err != nil {
		return nil, err
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("secret %s is not a JSON object: %w", name, err)
	}
	return m, nil
}
