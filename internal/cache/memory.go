package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache answers repeat lookups within a single run. Entries expire on
// their own TTL; a background sweep reclaims expired ones.
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache creates a memory cache whose entries default to ttl
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	cleanup := ttl / 2
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &MemoryCache{store: gocache.New(ttl, cleanup)}
}

// Get returns the cached extraction payload for key
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	if val, found := c.store.Get(key); found {
		return val.([]byte), true
	}
	return nil, false
}

// Set stores an extraction payload; ttl 0 means the cache default
func (c *MemoryCache) Set(key string, payload []byte, ttl time.Duration) error {
	c.store.Set(key, payload, ttl)
	return nil
}

// Delete removes one entry
func (c *MemoryCache) Delete(key string) error {
	c.store.Delete(key)
	return nil
}

// Clear drops every entry
func (c *MemoryCache) Clear() error {
	c.store.Flush()
	return nil
}
