package tenant

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCache shares resolved tenants across instances so a slug rename or
// deactivation invalidated on one node is seen by all.
type redisCache struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisCache returns a Redis-backed Cache. keyPrefix defaults to
// "tenant:slug:".
func NewRedisCache(client redis.UniversalClient, keyPrefix string) Cache {
	if keyPrefix == "" {
		keyPrefix = "tenant:slug:"
	}
	return &redisCache{client: client, keyPrefix: keyPrefix}
}

func (c *redisCache) Get(ctx context.Context, slug string) (*Tenant, bool) {
	data, err := c.client.Get(ctx, c.keyPrefix+slug).Bytes()
	if err != nil {
		return nil, false
	}
	var t Tenant
	if err := json.Unmarshal(data, &t); err != nil {
		// Corrupt entry, drop it rather than serve garbage.
		_ = c.client.Del(ctx, c.keyPrefix+slug).Err()
		return nil, false
	}
	return &t, true
}

func (c *redisCache) Set(ctx context.Context, slug string, t *Tenant, ttl time.Duration) {
	data, err := json.Marshal(t)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, c.keyPrefix+slug, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, slug string) {
	_ = c.client.Del(ctx, c.keyPrefix+slug).Err()
}

func (c *redisCache) Close() error { return nil }
