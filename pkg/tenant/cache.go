package tenant

import (
	"context"
	"sync"
	"time"
)

// Cache is the interface for tenant caching implementations.
type Cache interface {
	Get(ctx context.Context, key string) (*Tenant, bool)
	Set(ctx context.Context, key string, tenant *Tenant, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Close() error
}

type cacheEntry struct {
	tenant    *Tenant
	expiresAt time.Time
}

// memoryCache is the default in-memory cache with TTL eviction.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry

	stopCleanup chan struct{}
	cleanupOnce sync.Once
}

// NewMemoryCache creates an in-memory tenant cache with a background
// sweep that evicts expired entries.
func NewMemoryCache() Cache {
	c := &memoryCache{
		entries:     make(map[string]cacheEntry),
		stopCleanup: make(chan struct{}),
	}

	go c.cleanupLoop()

	return c
}

func (c *memoryCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.tenant, true
}

func (c *memoryCache) Set(ctx context.Context, key string, tenant *Tenant, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		tenant:    tenant,
		expiresAt: time.Now().Add(ttl),
	}
}

func (c *memoryCache) Delete(ctx context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

func (c *memoryCache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.After(entry.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		case <-c.stopCleanup:
			return
		}
	}
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *memoryCache) Close() error {
	c.cleanupOnce.Do(func() {
		close(c.stopCleanup)
	})
	return nil
}
