package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestKeyDiffersOnSqlTypeAndMapperID(t *testing.T) {
	a := Key("user.findById", "SELECT 1", "SELECT")
	b := Key("user.findByIdOther", "SELECT 1", "SELECT")
	c := Key("user.findById", "SELECT 2", "SELECT")
	require.NotEqual(t, a, b)
	require.NotEqual(t, a, c)
	require.Equal(t, a, Key("user.findById", "SELECT 1", "SELECT"))
}

func TestLRUCacheFirstSightNeverSkipped(t *testing.T) {
	c := NewLRUCache(Config{MaxEntries: 10, TTL: time.Minute})
	ctx := context.Background()

	skip, err := c.ShouldSkip(ctx, "k1")
	require.NoError(t, err)
	require.False(t, skip)

	skip, err = c.ShouldSkip(ctx, "k1")
	require.NoError(t, err)
	require.True(t, skip)
}

func TestLRUCacheExpiresAfterTTL(t *testing.T) {
	c := NewLRUCache(Config{MaxEntries: 10, TTL: 10 * time.Millisecond})
	ctx := context.Background()

	_, _ = c.ShouldSkip(ctx, "k1")
	time.Sleep(30 * time.Millisecond)

	skip, err := c.ShouldSkip(ctx, "k1")
	require.NoError(t, err)
	require.False(t, skip)
}

func TestLRUCacheEvictsOverCapacity(t *testing.T) {
	c := NewLRUCache(Config{MaxEntries: 2, TTL: time.Minute})
	ctx := context.Background()

	_, _ = c.ShouldSkip(ctx, "k1")
	_, _ = c.ShouldSkip(ctx, "k2")
	_, _ = c.ShouldSkip(ctx, "k3")

	require.LessOrEqual(t, c.Len(), 2)
}

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisCacheFromClient(client, time.Minute, nil), mr
}

func TestRedisCacheFirstSightNeverSkipped(t *testing.T) {
	c, _ := newTestRedisCache(t)
	ctx := context.Background()

	skip, err := c.ShouldSkip(ctx, "k1")
	require.NoError(t, err)
	require.False(t, skip)

	skip, err = c.ShouldSkip(ctx, "k1")
	require.NoError(t, err)
	require.True(t, skip)
}

func TestRedisCacheFailsOpenWhenUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCacheFromClient(client, time.Minute, nil)
	mr.Close()

	skip, err := c.ShouldSkip(context.Background(), "k1")
	require.NoError(t, err)
	require.False(t, skip, "a cache outage must never force a skip")
}

func TestRedisCacheReset(t *testing.T) {
	c, mr := newTestRedisCache(t)
	ctx := context.Background()

	_, _ = c.ShouldSkip(ctx, "k1")
	_, _ = c.ShouldSkip(ctx, "k2")
	require.NoError(t, c.Reset(ctx))

	skip, err := c.ShouldSkip(ctx, "k1")
	require.NoError(t, err)
	require.False(t, skip)
	_ = mr
}
