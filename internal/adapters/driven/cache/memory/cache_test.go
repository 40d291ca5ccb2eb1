package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := New(time.Minute)

	_, ok := c.Get(ctx, "emb:m:abc")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "emb:m:abc", []float32{1, 2}, 0))
	vec, ok := c.Get(ctx, "emb:m:abc")
	assert.True(t, ok)
	assert.Equal(t, []float32{1, 2}, vec)
}

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := New(time.Minute)

	require.NoError(t, c.Set(ctx, "k", []float32{1}, 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestCache_Close(t *testing.T) {
	ctx := context.Background()
	c := New(0)
	require.NoError(t, c.Set(ctx, "k", []float32{1}, 0))

	require.NoError(t, c.Close())

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}
