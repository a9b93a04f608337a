package registry

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// DefaultCachePrefix namespaces tenant cache keys in a shared Redis.
const DefaultCachePrefix = "tenant:"

// RedisClient is the slice of the go-redis surface the cache needs.
// *redis.Client, *redis.ClusterClient, and redis.UniversalClient all
// satisfy it.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisCache is a tenant.Cache backed by Redis, so that resolution
// results are shared across application instances and survive restarts.
// Failures degrade to cache misses: Redis being down slows resolution
// down but never breaks it.
type RedisCache struct {
	client RedisClient
	prefix string
	log    *slog.Logger
}

// RedisCacheOption configures a RedisCache.
type RedisCacheOption func(*RedisCache)

// WithCachePrefix overrides the key prefix.
func WithCachePrefix(prefix string) RedisCacheOption {
	return func(c *RedisCache) {
		c.prefix = prefix
	}
}

// WithCacheLogger sets the logger for degraded-mode warnings.
func WithCacheLogger(log *slog.Logger) RedisCacheOption {
	return func(c *RedisCache) {
		if log != nil {
			c.log = log
		}
	}
}

// NewRedisCache creates a tenant cache on an existing Redis client. The
// client's lifecycle stays with the caller; Close on the cache does not
// close it.
func NewRedisCache(client RedisClient, opts ...RedisCacheOption) *RedisCache {
	c := &RedisCache{
		client: client,
		prefix: DefaultCachePrefix,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ tenant.Cache = (*RedisCache)(nil)

// Get retrieves a tenant from cache by resolution key.
func (c *RedisCache) Get(ctx context.Context, key string) (*tenant.Tenant, bool) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WarnContext(ctx, "tenant cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var t tenant.Tenant
	if err := json.Unmarshal(raw, &t); err != nil {
		// An undecodable entry is worse than a miss: drop it.
		c.log.WarnContext(ctx, "dropping corrupt tenant cache entry", "key", key, "error", err)
		_ = c.client.Del(ctx, c.prefix+key).Err()
		return nil, false
	}
	return &t, true
}

// Set stores a tenant under the resolution key for the given TTL.
// Entries without a positive TTL are not stored, so a misconfigured TTL
// can never pin stale records forever. Only routing fields land in
// Redis: Tenant excludes the settings document from its JSON shape, and
// the resolution path never loads it in the first place.
func (c *RedisCache) Set(ctx context.Context, key string, t *tenant.Tenant, ttl time.Duration) {
	if t == nil || ttl <= 0 {
		return
	}

	raw, err := json.Marshal(t)
	if err != nil {
		c.log.WarnContext(ctx, "failed to encode tenant for cache", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "tenant cache write failed", "key", key, "error", err)
	}
}

// Delete removes a single resolution key.
func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		c.log.WarnContext(ctx, "tenant cache delete failed", "key", key, "error", err)
	}
}

// Close implements tenant.Cache. The Redis client is shared and owned
// by the caller, so there is nothing to release here.
func (c *RedisCache) Close() error {
	return nil
}
