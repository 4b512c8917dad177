package location

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is a small in-memory TTL cache for variant sets. The location
// directory changes rarely, so a short TTL keeps repeated searches from
// hitting the store for every candidate.
type MemoryCache struct {
	mu    sync.RWMutex
	store map[string]cacheEntry
	ttl   time.Duration
}

type cacheEntry struct {
	variants []string
	ts       time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{store: make(map[string]cacheEntry), ttl: ttl}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]string, bool) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Since(e.ts) > c.ttl {
		c.mu.Lock()
		delete(c.store, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.variants, true
}

func (c *MemoryCache) Set(_ context.Context, key string, variants []string) {
	c.mu.Lock()
	c.store[key] = cacheEntry{variants: variants, ts: time.Now()}
	c.mu.Unlock()
}
