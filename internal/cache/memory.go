package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps recent search results in memory with TTL eviction,
// so a re-poll of an unchanged feed never re-walks the corpus.
type MemoryCache struct {
	entries *gocache.Cache
}

// NewMemoryCache creates a memory cache with the given default TTL and
// sweep interval.
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{entries: gocache.New(defaultTTL, cleanupInterval)}
}

// Get returns the cached value for key.
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	val, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	return val.([]byte), true
}

// Set stores value under key. A zero ttl falls back to the default.
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	c.entries.Set(key, value, ttl)
	return nil
}

// Delete removes the entry for key.
func (c *MemoryCache) Delete(key string) error {
	c.entries.Delete(key)
	return nil
}

// Clear drops every entry.
func (c *MemoryCache) Clear() error {
	c.entries.Flush()
	return nil
}
