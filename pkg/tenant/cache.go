package tenant

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Cache stores resolved tenants keyed by slug.
type Cache interface {
	Get(ctx context.Context, slug string) (*Tenant, bool)
	Set(ctx context.Context, slug string, t *Tenant, ttl time.Duration)
	// Delete invalidates a slug. Called on rename and deactivation so
	// stale resolutions do not outlive the admin action.
	Delete(ctx context.Context, slug string)
	Close() error
}

// DefaultCacheSize bounds the in-memory cache.
const DefaultCacheSize = 1000

type memoryCacheEntry struct {
	slug      string
	tenant    *Tenant
	expiresAt time.Time
}

// memoryCache is an LRU cache with per-entry TTL.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently used
	maxSize int
}

// NewMemoryCache returns an in-memory LRU cache with the default size.
func NewMemoryCache() Cache {
	return NewMemoryCacheWithSize(DefaultCacheSize)
}

// NewMemoryCacheWithSize returns an in-memory LRU cache bounded to
// maxSize entries.
func NewMemoryCacheWithSize(maxSize int) Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &memoryCache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
	}
}

func (c *memoryCache) Get(ctx context.Context, slug string) (*Tenant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[slug]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*memoryCacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.order.Remove(el)
		delete(c.entries, slug)
		return nil, false
	}
	c.order.MoveToFront(el)
	return entry.tenant, true
}

func (c *memoryCache) Set(ctx context.Context, slug string, t *Tenant, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[slug]; ok {
		entry := el.Value.(*memoryCacheEntry)
		entry.tenant = t
		entry.expiresAt = time.Now().Add(ttl)
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*memoryCacheEntry).slug)
		}
	}

	c.entries[slug] = c.order.PushFront(&memoryCacheEntry{
		slug:      slug,
		tenant:    t,
		expiresAt: time.Now().Add(ttl),
	})
}

func (c *memoryCache) Delete(ctx context.Context, slug string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[slug]; ok {
		c.order.Remove(el)
		delete(c.entries, slug)
	}
}

func (c *memoryCache) Close() error { return nil }

// noopCache disables caching. Every request hits the directory.
type noopCache struct{}

// NewNoopCache returns a cache that never stores anything.
func NewNoopCache() Cache { return noopCache{} }

func (noopCache) Get(ctx context.Context, slug string) (*Tenant, bool) { return nil, false }
func (noopCache) Set(ctx context.Context, slug string, t *Tenant, ttl time.Duration) {
}
func (noopCache) Delete(ctx context.Context, slug string) {}
func (noopCache) Close() error                            { return nil }
