package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryMenuCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryMenuCache(time.Minute)
	c.now = func() time.Time { return now }

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	gen, err := c.Generation(ctx)
	require.NoError(t, err)

	menu := []byte(`[{"id":1}]`)
	stored, err := c.Set(ctx, gen, menu)
	require.NoError(t, err)
	assert.True(t, stored)
	menu[0] = 'x'

	got, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, string(got))

	now = now.Add(time.Minute)
	_, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire after the ttl")

	_, err = c.Set(ctx, gen, []byte(`[]`))
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx))
	_, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryMenuCacheRejectsStaleGeneration(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryMenuCache(time.Minute)

	before, err := c.Generation(ctx)
	require.NoError(t, err)

	// A write lands between the reader's generation check and its Set.
	require.NoError(t, c.Invalidate(ctx))

	stored, err := c.Set(ctx, before, []byte(`[]`))
	require.NoError(t, err)
	assert.False(t, stored)
	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	after, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)

	stored, err = c.Set(ctx, after, []byte(`[{"id":1}]`))
	require.NoError(t, err)
	assert.True(t, stored)
}

func TestNewRedisMenuCacheRequiresClient(t *testing.T) {
	_, err := NewRedisMenuCache(nil, time.Minute)
	assert.Error(t, err)
}

func TestRedisMenuCache(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379", DB: 3})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	defer client.Close()

	c, err := NewRedisMenuCache(client, time.Minute)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx))

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Positive(t, gen)

	stored, err := c.Set(ctx, gen, []byte(`[{"id":1}]`))
	require.NoError(t, err)
	assert.True(t, stored)
	got, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, string(got))

	ttl, err := client.TTL(ctx, c.key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.Invalidate(ctx))
	_, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err = c.Set(ctx, gen, []byte(`[]`))
	require.NoError(t, err)
	assert.False(t, stored, "stale generation must not be cached")
	_, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
