// Package redis provides a query embedding cache shared across processes through Redis.
package redis

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/refrag/internal/core/ports/driven"
	"github.com/custodia-labs/refrag/internal/logger"
)

// Ensure Cache implements the interface.
var _ driven.EmbeddingCache = (*Cache)(nil)

// Cache stores query vectors as little-endian float32 blobs.
type Cache struct {
	client *goredis.Client
}

// New connects to the Redis server at url and checks it responds.
func New(ctx context.Context, url string) (*Cache, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return NewWithClient(client), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *goredis.Client) *Cache {
	return &Cache{client: client}
}

// Get returns the cached vector for key. Redis errors count as misses.
func (c *Cache) Get(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			logger.Warn("redis get %s: %v", key, err)
		}
		return nil, false
	}
	if len(data)%4 != 0 {
		return nil, false
	}
	return decodeVector(data), true
}

// Set stores vec under key with the given ttl.
func (c *Cache) Set(ctx context.Context, key string, vec []float32, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, encodeVector(vec), ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the client.
func (c *Cache) Close() error {
	return c.client.Close()
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(data []byte) []float32 {
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec
}
