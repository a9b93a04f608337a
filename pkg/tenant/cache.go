package tenant

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Cache is the interface for tenant caching implementations.
type Cache interface {
	// Get retrieves a tenant from cache by key.
	Get(ctx context.Context, key string) (*Tenant, bool)

	// Set stores a tenant in cache with the given TTL.
	Set(ctx context.Context, key string, tenant *Tenant, ttl time.Duration)

	// Delete removes a tenant from cache. Call it after status changes
	// so routing picks up the new status before the TTL expires.
	Delete(ctx context.Context, key string)

	// Close releases any resources held by the cache.
	Close() error
}

// DefaultCacheSize is the default maximum number of items in the cache.
const DefaultCacheSize = 1000

// memoryCache is the default in-memory cache: a TTL map with LRU
// eviction once maxSize is reached.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently used
	maxSize int
	stop    chan struct{}
	done    chan struct{}
	closed  bool
}

type cacheEntry struct {
	key       string
	tenant    *Tenant
	expiresAt time.Time
}

// NewInMemoryCache creates a new in-memory cache with automatic cleanup.
func NewInMemoryCache() Cache {
	return NewInMemoryCacheWithSize(DefaultCacheSize)
}

// NewInMemoryCacheWithSize creates a new in-memory cache with the given
// size limit.
func NewInMemoryCacheWithSize(maxSize int) Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}

	c := &memoryCache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.cleanup()

	return c
}

// Get retrieves a tenant from cache.
func (c *memoryCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	entry := elem.Value.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.remove(elem)
		return nil, false
	}

	c.order.MoveToFront(elem)
	return entry.tenant, true
}

// Set stores a tenant in cache.
func (c *memoryCache) Set(ctx context.Context, key string, tenant *Tenant, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.tenant = tenant
		entry.expiresAt = time.Now().Add(ttl)
		c.order.MoveToFront(elem)
		return
	}

	if len(c.entries) >= c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest)
		}
	}

	elem := c.order.PushFront(&cacheEntry{
		key:       key,
		tenant:    tenant,
		expiresAt: time.Now().Add(ttl),
	})
	c.entries[key] = elem
}

// Delete removes a tenant from cache.
func (c *memoryCache) Delete(ctx context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.remove(elem)
	}
}

// remove unlinks an element. Caller must hold c.mu.
func (c *memoryCache) remove(elem *list.Element) {
	entry := elem.Value.(*cacheEntry)
	delete(c.entries, entry.key)
	c.order.Remove(elem)
}

// cleanup periodically evicts expired entries.
func (c *memoryCache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *memoryCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for _, elem := range c.entries {
		if now.After(elem.Value.(*cacheEntry).expiresAt) {
			c.remove(elem)
		}
	}
}

// Close stops the cleanup goroutine and waits for it to finish.
func (c *memoryCache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.stop)
	<-c.done
	return nil
}

// InvalidateTenant removes every cache entry the tenant can be resolved
// under: its ID, key, and subdomain. Call it after any mutation that
// changes routing (status, subdomain) so instances stop serving the old
// record before the TTL runs out.
func InvalidateTenant(ctx context.Context, c Cache, t *Tenant) {
	if c == nil || t == nil {
		return
	}
	c.Delete(ctx, t.ID.String())
	if t.Key != "" {
		c.Delete(ctx, t.Key)
	}
	if t.Subdomain != "" {
		c.Delete(ctx, t.Subdomain)
	}
}

// noOpCache is a cache that doesn't cache anything.
// Useful for testing or when caching should be disabled.
type noOpCache struct{}

// NewNoOpCache creates a cache that doesn't cache.
func NewNoOpCache() Cache {
	return &noOpCache{}
}

func (n *noOpCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	return nil, false
}

func (n *noOpCache) Set(ctx context.Context, key string, tenant *Tenant, ttl time.Duration) {
}

func (n *noOpCache) Delete(ctx context.Context, key string) {
}

func (n *noOpCache) Close() error {
	return nil
}
