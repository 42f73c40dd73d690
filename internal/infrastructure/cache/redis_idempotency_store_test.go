package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*miniredis.Miniredis, *RedisIdempotencyStore) {
	t.Helper()
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return m, NewRedisIdempotencyStoreWithClient(client, "")
}

func TestRedisIdempotencyStoreMarkProcessed(t *testing.T) {
	_, store := newRedisStore(t)
	ctx := context.Background()

	isNew, err := store.MarkProcessed(ctx, "user-events:company-group:1-0", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = store.MarkProcessed(ctx, "user-events:company-group:1-0", time.Hour)
	require.NoError(t, err)
	assert.False(t, isNew)
}

func TestRedisIdempotencyStoreIsProcessed(t *testing.T) {
	m, store := newRedisStore(t)
	ctx := context.Background()

	processed, err := store.IsProcessed(ctx, "never-seen")
	require.NoError(t, err)
	assert.False(t, processed)

	_, err = store.MarkProcessed(ctx, "seen", time.Hour)
	require.NoError(t, err)
	processed, err = store.IsProcessed(ctx, "seen")
	require.NoError(t, err)
	assert.True(t, processed)

	// Keys expire with their TTL
	m.FastForward(2 * time.Hour)
	processed, err = store.IsProcessed(ctx, "seen")
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestRedisIdempotencyStoreKeyPrefix(t *testing.T) {
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisIdempotencyStoreWithClient(client, "custom:")
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "abc", time.Hour)
	require.NoError(t, err)
	assert.True(t, m.Exists("custom:abc"))
}

func TestRedisIdempotencyStoreSharedClientClose(t *testing.T) {
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	store := NewRedisIdempotencyStoreWithClient(client, "")

	// A store on a shared client must not close it
	require.NoError(t, store.Close())
	assert.NoError(t, client.Ping(context.Background()).Err())
	_ = client.Close()
}
