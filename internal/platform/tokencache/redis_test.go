package tokencache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(rdb), mr
}

func TestStoreAndGet(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Store(ctx, "admin", "id-1", "tok-1", time.Hour))

	token, err := cache.Get(ctx, "admin", "id-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
}

func TestStoreOverwrites(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Store(ctx, "user", "id-2", "old", time.Hour))
	require.NoError(t, cache.Store(ctx, "user", "id-2", "new", time.Hour))

	token, err := cache.Get(ctx, "user", "id-2")
	require.NoError(t, err)
	assert.Equal(t, "new", token)
}

func TestTokensKeyedByRole(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Store(ctx, "admin", "id-3", "admin-tok", time.Hour))

	_, err := cache.Get(ctx, "user", "id-3")
	assert.Error(t, err) // same id, different tenant
}

func TestStoreExpires(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Store(ctx, "admin", "id-4", "tok", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := cache.Get(ctx, "admin", "id-4")
	assert.Error(t, err)
}
