package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// SearchKey generates a cache key for a corpus search. The file-type
// filter is part of the identity: the same pattern restricted to CSV
// files and unrestricted are different result sets.
func SearchKey(pattern, fileType string) string {
	hash := sha256.Sum256([]byte(pattern + "\x00" + fileType))
	return "gapfill:v1:" + hex.EncodeToString(hash[:])
}
