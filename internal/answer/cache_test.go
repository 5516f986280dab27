package answer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/propcortex/propcortex/testing"
)

func testCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestCacheFetchMissThenHit(t *testing.T) {
	cache, _ := testCache(t)
	ctx := context.Background()

	key, err := cache.Key(ctx, "pnl_summary", "|||2024||0")
	require.NoError(t, err)

	calls := 0
	loader := func() (string, error) {
		calls++
		return "net $1,900.00", nil
	}

	first, err := cache.Fetch(ctx, key, loader)
	require.NoError(t, err)
	assert.Equal(t, "net $1,900.00", first)
	assert.Equal(t, 1, calls)

	second, err := cache.Fetch(ctx, key, loader)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls, "hit must not re-render")
}

func TestCacheBumpInvalidates(t *testing.T) {
	cache, _ := testCache(t)
	ctx := context.Background()

	before, err := cache.Key(ctx, "pnl_summary", "fp")
	require.NoError(t, err)
	_, err = cache.Fetch(ctx, before, func() (string, error) { return "stale", nil })
	require.NoError(t, err)

	require.NoError(t, cache.Bump(ctx))

	after, err := cache.Key(ctx, "pnl_summary", "fp")
	require.NoError(t, err)
	assert.NotEqual(t, before, after, "version bump must change the key")

	fresh, err := cache.Fetch(ctx, after, func() (string, error) { return "fresh", nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", fresh)
}

func TestCacheLoaderErrorIsNotStored(t *testing.T) {
	cache, _ := testCache(t)
	ctx := context.Background()

	key, err := cache.Key(ctx, "breakdown", "fp")
	require.NoError(t, err)

	boom := errors.New("render failed")
	_, err = cache.Fetch(ctx, key, func() (string, error) { return "", boom })
	require.ErrorIs(t, err, boom)

	got, err := cache.Fetch(ctx, key, func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestCacheNilClientPassesThrough(t *testing.T) {
	cache := NewCache(nil, time.Minute)
	ctx := context.Background()

	key, err := cache.Key(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a:b", key)

	got, err := cache.Fetch(ctx, key, func() (string, error) { return "direct", nil })
	require.NoError(t, err)
	assert.Equal(t, "direct", got)

	require.NoError(t, cache.Bump(ctx))
}

func TestCacheEntriesExpire(t *testing.T) {
	cache, mr := testCache(t)
	ctx := context.Background()

	key, err := cache.Key(ctx, "pnl_summary", "fp")
	require.NoError(t, err)

	calls := 0
	loader := func() (string, error) {
		calls++
		return "answer", nil
	}
	_, err = cache.Fetch(ctx, key, loader)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = cache.Fetch(ctx, key, loader)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "expired entry should be rendered again")
}
