package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xtopay/checkout-backend/models"
)

// BusinessCachePrefix namespaces business rows in Redis.
const BusinessCachePrefix = "business:"

// BusinessCache is a read-through cache of business rows keyed by business id.
type BusinessCache interface {
	Get(ctx context.Context, businessID string) (*models.Business, bool, error)
	Set(ctx context.Context, business *models.Business) error
}

type redisCmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// cachedBusiness mirrors models.Business. The api_id/api_key pair is kept
// only as its digest.
type cachedBusiness struct {
	ID         uint      `json:"id"`
	BusinessID string    `json:"business_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Currency   string    `json:"currency"`
	LogoURL    string    `json:"logo_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Credential string    `json:"credential_sha256"`
}

// RedisBusinessCache stores business rows as JSON with a fixed TTL.
type RedisBusinessCache struct {
	redis redisCmdable
	ttl   time.Duration
}

// NewRedisBusinessCache returns nil when client is nil so callers can treat
// a missing Redis as "no cache".
func NewRedisBusinessCache(client *redis.Client, ttl time.Duration) BusinessCache {
	if client == nil {
		return nil
	}
	return &RedisBusinessCache{redis: client, ttl: ttl}
}

func key(businessID string) string {
	return BusinessCachePrefix + businessID
}

// Get reports (nil, false, nil) on a miss.
func (c *RedisBusinessCache) Get(ctx context.Context, businessID string) (*models.Business, bool, error) {
	raw, err := c.redis.Get(ctx, key(businessID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key(businessID), err)
	}

	var cb cachedBusiness
	if err := json.Unmarshal(raw, &cb); err != nil {
		return nil, false, fmt.Errorf("decode cached business %s: %w", businessID, err)
	}
	return &models.Business{
		ID:         cb.ID,
		BusinessID: cb.BusinessID,
		Name:       cb.Name,
		Email:      cb.Email,
		Currency:   cb.Currency,
		LogoURL:    cb.LogoURL,
		CreatedAt:  cb.CreatedAt,
		UpdatedAt:  cb.UpdatedAt,

		CredentialHash: cb.Credential,
	}, true, nil
}

func (c *RedisBusinessCache) Set(ctx context.Context, b *models.Business) error {
	raw, err := json.Marshal(cachedBusiness{
		ID:         b.ID,
		BusinessID: b.BusinessID,
		Name:       b.Name,
		Email:      b.Email,
		Currency:   b.Currency,
		LogoURL:    b.LogoURL,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
		Credential: b.Digest(),
	})
	if err != nil {
		return err
	}
	if err := c.redis.Set(ctx, key(b.BusinessID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key(b.BusinessID), err)
	}
	return nil
}
