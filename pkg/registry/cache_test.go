package registry_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/registry"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// fakeRedis scripts the three commands RedisCache issues, answering
// with go-redis result constructors so no server is needed.
type fakeRedis struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	deleted []string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.data[key] = value.([]byte)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			delete(f.data, key)
			n++
		}
		f.deleted = append(f.deleted, key)
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisCache(t *testing.T) {
	t.Parallel()

	t.Run("round-trips routing fields", func(t *testing.T) {
		t.Parallel()

		rdb := newFakeRedis()
		cache := registry.NewRedisCache(rdb)
		want := storedTenant()

		cache.Set(context.Background(), "acme", &want, time.Minute)

		got, ok := cache.Get(context.Background(), "acme")
		require.True(t, ok)
		want.Settings = nil
		assert.Equal(t, &want, got)
	})

	t.Run("settings never land in redis", func(t *testing.T) {
		t.Parallel()

		rdb := newFakeRedis()
		cache := registry.NewRedisCache(rdb)
		want := storedTenant()
		want.Settings = []byte(`{"webhook_secret":"whsec_123"}`)

		cache.Set(context.Background(), "acme", &want, time.Minute)

		assert.NotContains(t, string(rdb.data["tenant:acme"]), "whsec_123")

		got, ok := cache.Get(context.Background(), "acme")
		require.True(t, ok)
		assert.Nil(t, got.Settings)
	})

	t.Run("prefixes keys", func(t *testing.T) {
		t.Parallel()

		rdb := newFakeRedis()
		cache := registry.NewRedisCache(rdb)
		want := storedTenant()

		cache.Set(context.Background(), "acme", &want, time.Minute)
		assert.Contains(t, rdb.data, "tenant:acme")
	})

	t.Run("custom prefix", func(t *testing.T) {
		t.Parallel()

		rdb := newFakeRedis()
		cache := registry.NewRedisCache(rdb, registry.WithCachePrefix("app:tenants:"))
		want := storedTenant()

		cache.Set(context.Background(), "acme", &want, time.Minute)
		assert.Contains(t, rdb.data, "app:tenants:acme")
	})

	t.Run("misses on unknown keys", func(t *testing.T) {
		t.Parallel()

		cache := registry.NewRedisCache(newFakeRedis())

		_, ok := cache.Get(context.Background(), "nobody")
		assert.False(t, ok)
	})

	t.Run("redis failures degrade to misses", func(t *testing.T) {
		t.Parallel()

		rdb := newFakeRedis()
		rdb.getErr = errors.New("connection refused")
		cache := registry.NewRedisCache(rdb)

		_, ok := cache.Get(context.Background(), "acme")
		assert.False(t, ok)
	})

	t.Run("write failures are swallowed", func(t *testing.T) {
		t.Parallel()

		rdb := newFakeRedis()
		rdb.setErr = errors.New("read only replica")
		cache := registry.NewRedisCache(rdb)
		want := storedTenant()

		cache.Set(context.Background(), "acme", &want, time.Minute) // must not panic
		_, ok := cache.Get(context.Background(), "acme")
		assert.False(t, ok)
	})

	t.Run("ignores non-positive TTLs", func(t *testing.T) {
		t.Parallel()

		rdb := newFakeRedis()
		cache := registry.NewRedisCache(rdb)
		want := storedTenant()

		cache.Set(context.Background(), "acme", &want, 0)
		cache.Set(context.Background(), "acme", &want, -time.Minute)
		assert.Empty(t, rdb.data)
	})

	t.Run("passes the TTL through", func(t *testing.T) {
		t.Parallel()

		rdb := newFakeRedis()
		cache := registry.NewRedisCache(rdb)
		want := storedTenant()

		cache.Set(context.Background(), "acme", &want, 5*time.Minute)
		assert.Equal(t, 5*time.Minute, rdb.ttls["tenant:acme"])
	})

	t.Run("drops corrupt entries", func(t *testing.T) {
		t.Parallel()

		rdb := newFakeRedis()
		rdb.data["tenant:acme"] = []byte(`{"key": not json`)
		cache := registry.NewRedisCache(rdb)

		_, ok := cache.Get(context.Background(), "acme")
		assert.False(t, ok)
		assert.Contains(t, rdb.deleted, "tenant:acme")
	})

	t.Run("deletes entries", func(t *testing.T) {
		t.Parallel()

		rdb := newFakeRedis()
		cache := registry.NewRedisCache(rdb)
		want := storedTenant()

		cache.Set(context.Background(), "acme", &want, time.Minute)
		cache.Delete(context.Background(), "acme")

		_, ok := cache.Get(context.Background(), "acme")
		assert.False(t, ok)
	})

	t.Run("close leaves the shared client alone", func(t *testing.T) {
		t.Parallel()

		rdb := newFakeRedis()
		cache := registry.NewRedisCache(rdb)
		want := storedTenant()

		require.NoError(t, cache.Close())

		// The client keeps working after the cache is closed.
		cache.Set(context.Background(), "acme", &want, time.Minute)
		_, ok := cache.Get(context.Background(), "acme")
		assert.True(t, ok)
	})
}

func TestInvalidateTenantWithRedisCache(t *testing.T) {
	t.Parallel()

	rdb := newFakeRedis()
	cache := registry.NewRedisCache(rdb)
	tn := storedTenant()

	// The same tenant cached under every identifier it resolves by.
	cache.Set(context.Background(), tn.ID.String(), &tn, time.Minute)
	cache.Set(context.Background(), tn.Key, &tn, time.Minute)
	cache.Set(context.Background(), tn.Subdomain, &tn, time.Minute)

	tenant.InvalidateTenant(context.Background(), cache, &tn)

	for _, key := range []string{tn.ID.String(), tn.Key, tn.Subdomain} {
		_, ok := cache.Get(context.Background(), key)
		assert.False(t, ok, "key %q must be evicted", key)
	}
}
