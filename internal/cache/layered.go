package cache

import "time"

// LayeredCache composes the memory and disk caches: memory absorbs the
// hot path within a run, disk carries results across runs.
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache builds the two layers over a shared key space.
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

// Get checks memory first, then disk. A disk hit is promoted into the
// memory layer at the default TTL.
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, ok := c.memory.Get(key); ok {
		return val, true
	}
	val, ok := c.disk.Get(key)
	if !ok {
		return nil, false
	}
	_ = c.memory.Set(key, val, 0)
	return val, true
}

// Set writes through to both layers.
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(key, value, ttl); err != nil {
		return err
	}
	return c.disk.Set(key, value, ttl)
}

// Delete removes the entry from both layers.
func (c *LayeredCache) Delete(key string) error {
	memErr := c.memory.Delete(key)
	if err := c.disk.Delete(key); err != nil {
		return err
	}
	return memErr
}

// Clear drops both layers.
func (c *LayeredCache) Clear() error {
	if err := c.memory.Clear(); err != nil {
		return err
	}
	return c.disk.Clear()
}
