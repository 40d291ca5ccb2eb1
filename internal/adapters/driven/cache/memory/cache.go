// Package memory provides an in-process query embedding cache backed by go-cache.
package memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/custodia-labs/refrag/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.EmbeddingCache = (*Cache)(nil)

// Cache stores query vectors in process memory.
type Cache struct {
	items *gocache.Cache
}

// New creates a cache whose entries expire after ttl by default.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{items: gocache.New(ttl, 10*time.Minute)}
}

// Get returns the cached vector for key.
func (c *Cache) Get(_ context.Context, key string) ([]float32, bool) {
	v, ok := c.items.Get(key)
	if !ok {
		return nil, false
	}
	vec, ok := v.([]float32)
	return vec, ok
}

// Set stores vec under key. A zero ttl uses the cache default.
func (c *Cache) Set(_ context.Context, key string, vec []float32, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.items.Set(key, vec, ttl)
	return nil
}

// Close flushes all entries.
func (c *Cache) Close() error {
	c.items.Flush()
	return nil
}
