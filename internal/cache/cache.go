// Package cache provides a small TTL cache for values that are expensive to
// compute and tolerate brief staleness, such as catalog-wide counts.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache stores values by key until they expire or are invalidated.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	// Invalidate drops key so the next Get misses.
	Invalidate(key string)
	// Flush drops every key.
	Flush()
}

// TTLCache is an in-process Cache with a fixed expiry per entry.
type TTLCache struct {
	items *gocache.Cache
}

var _ Cache = (*TTLCache)(nil)

// NewTTL creates a cache whose entries live for ttl. Expired entries are
// purged every 2*ttl.
func NewTTL(ttl time.Duration) *TTLCache {
	return &TTLCache{items: gocache.New(ttl, ttl*2)}
}

// Get returns the value for key if it has not expired.
func (c *TTLCache) Get(key string) (any, bool) {
	return c.items.Get(key)
}

// Set stores value under key with the default expiry.
func (c *TTLCache) Set(key string, value any) {
	c.items.Set(key, value, gocache.DefaultExpiration)
}

// Invalidate removes key.
func (c *TTLCache) Invalidate(key string) {
	c.items.Delete(key)
}

// Flush removes every key.
func (c *TTLCache) Flush() {
	c.items.Flush()
}

// Nop is a Cache that never stores anything.
type Nop struct{}

// Get always misses.
func (Nop) Get(string) (any, bool) { return nil, false }

// Set discards the value.
func (Nop) Set(string, any) {}

// Invalidate does nothing.
func (Nop) Invalidate(string) {}

// Flush does nothing.
func (Nop) Flush() {}
