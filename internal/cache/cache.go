// Package cache stores cleaned page text between research runs so
// repeated topics do not refetch the same sources.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for page-text caching.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// PageKey generates a cache key for a fetched URL.
func PageKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "docureel:page:v1:" + hex.EncodeToString(hash[:])
}
