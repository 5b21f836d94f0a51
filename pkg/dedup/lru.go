package dedup

import (
	"context"
	"sync"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRUCache is the default dedup backend: a bounded, TTL-expiring,
// process-local cache (§4.2 "default implementation: bounded in-memory
// LRU with TTL eviction"). Safe for concurrent use; expirable.LRU
// serializes internally, the extra mutex here only protects the
// get-then-add check-then-act.
type LRUCache struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, struct{}]
}

// NewLRUCache builds the default dedup cache from Config, applying
// documented defaults for unset fields.
func NewLRUCache(cfg Config) *LRUCache {
	cfg = cfg.withDefaults()
	return &LRUCache{
		cache: expirable.NewLRU[string, struct{}](cfg.MaxEntries, nil, cfg.TTL),
	}
}

// ShouldSkip reports whether key was already seen within the TTL
// window, recording it as seen either way (§4.2). Never errors: an
// in-process cache has no failure mode that should fail a validation
// call open or closed.
func (c *LRUCache) ShouldSkip(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.cache.Get(key); ok {
		return true, nil
	}
	c.cache.Add(key, struct{}{})
	return false, nil
}

// Reset clears the cache.
func (c *LRUCache) Reset(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Purge()
	return nil
}

// Len reports the current entry count, used by tests.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}
