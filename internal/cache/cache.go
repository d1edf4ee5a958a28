// Package cache stores LLM extraction results keyed by contract content so
// repeated analyses of unchanged documents never re-bill the provider.
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

// Key generates a cache key from the provider, model and contract text.
// Identical text under a different filename hits the same entry; changing
// the provider or model invalidates it.
func Key(provider, model, text string) string {
	hash := sha256.Sum256([]byte(provider + "\x00" + model + "\x00" + text))
	return "rightscan:v1:" + hex.EncodeToString(hash[:])
}
