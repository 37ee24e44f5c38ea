package llm

// catalog.go caches fetched model catalogs process-wide. Entries are keyed
// by provider plus a hash of the API key, so changing the key in settings
// invalidates the cache implicitly. No explicit invalidation endpoint is
// needed beyond the caller's force-refresh flag.

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

const catalogTTL = 12 * time.Hour

type catalogEntry struct {
	models    map[string]string
	fetchedAt time.Time
}

type catalogCache struct {
	mu      sync.Mutex
	entries map[string]catalogEntry
	now     func() time.Time // stubbed in tests
}

func newCatalogCache() *catalogCache {
	return &catalogCache{
		entries: make(map[string]catalogEntry),
		now:     time.Now,
	}
}

// catalogKey derives the cache key. Only a short hash of the API key is
// kept so the secret never sits in memory beyond the provider that owns it.
func catalogKey(providerID, apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return providerID + ":" + hex.EncodeToString(sum[:8])
}

// get returns the cached catalog for the key if present and fresh.
func (c *catalogCache) get(key string) (map[string]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.fetchedAt) > catalogTTL {
		return nil, false
	}
	return copyCatalog(e.models), true
}

func (c *catalogCache) put(key string, models map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = catalogEntry{models: copyCatalog(models), fetchedAt: c.now()}
}
