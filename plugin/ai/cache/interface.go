// Package cache keeps raw LLM extraction responses so that repeated requests
// for the same prompt skip the model round trip.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// CacheService defines the cache service interface.
type CacheService interface {
	// Get retrieves a value from cache.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value in cache. A non-positive ttl uses the default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Invalidate removes entries; pattern supports a trailing * wildcard.
	Invalidate(ctx context.Context, pattern string) error
}

// Key builds a cache key "<namespace>:<sha256 of parts>".
func Key(namespace string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return namespace + ":" + hex.EncodeToString(h.Sum(nil))
}
