package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DiskCache persists cached search results under the coordination
// directory so they survive processor restarts. One file per key.
type DiskCache struct {
	dir        string
	defaultTTL time.Duration
}

// NewDiskCache creates a disk cache rooted at dir. ttl applies to
// entries stored without an explicit TTL.
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{dir: dir, defaultTTL: ttl}
}

type storedResult struct {
	Value   []byte    `json:"value"`
	Expires time.Time `json:"expires"`
}

// Get returns the cached value for key. Expired entries are removed on
// read; there is no background sweeper.
func (c *DiskCache) Get(key string) ([]byte, bool) {
	raw, err := os.ReadFile(c.entryPath(key))
	if err != nil {
		return nil, false
	}

	var stored storedResult
	if err := json.Unmarshal(raw, &stored); err != nil {
		_ = os.Remove(c.entryPath(key))
		return nil, false
	}
	if time.Now().After(stored.Expires) {
		_ = os.Remove(c.entryPath(key))
		return nil, false
	}
	return stored.Value, true
}

// Set stores value under key. A zero ttl falls back to the default.
func (c *DiskCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	raw, err := json.Marshal(storedResult{
		Value:   value,
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if err := os.WriteFile(c.entryPath(key), raw, 0644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Delete removes the entry for key.
func (c *DiskCache) Delete(key string) error {
	return os.Remove(c.entryPath(key))
}

// Clear removes the whole cache directory.
func (c *DiskCache) Clear() error {
	return os.RemoveAll(c.dir)
}

func (c *DiskCache) entryPath(key string) string {
	return filepath.Join(c.dir, key+".cache")
}
