package sqlite

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache(t *testing.T) (*Cache, *testClock) {
	t.Helper()
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	clock := &testClock{now: time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)}
	cache.now = clock.Now
	return cache, clock
}

func TestCache_SetGet(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "k1", []byte(`{"rows":[]}`), time.Hour))

	payload, ok, err := cache.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte(`{"rows":[]}`), payload)
}

func TestCache_SetReplaces(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k1", []byte("old"), time.Hour))
	require.NoError(t, cache.Set(ctx, "k1", []byte("new"), time.Hour))

	payload, ok, err := cache.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("new"), payload)
}

func TestCache_Expiry(t *testing.T) {
	cache, clock := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k1", []byte("v"), time.Hour))

	clock.Advance(59 * time.Minute)
	_, ok, err := cache.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)

	clock.Advance(2 * time.Minute)
	_, ok, err = cache.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok, "expired entries are misses")
}

func TestCache_Delete(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k1", []byte("v"), time.Hour))
	require.NoError(t, cache.Delete(ctx, "k1"))
	require.NoError(t, cache.Delete(ctx, "k1"), "deleting a missing key is not an error")

	_, ok, err := cache.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_PurgeExpiredOnly(t *testing.T) {
	cache, clock := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "short", []byte("v"), time.Minute))
	require.NoError(t, cache.Set(ctx, "long", []byte("v"), time.Hour))

	clock.Advance(5 * time.Minute)
	n, err := cache.Purge(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, ok, err := cache.Get(ctx, "long")
	require.NoError(t, err)
	assert.True(t, ok, "valid entries survive an expired-only purge")
}

func TestCache_PurgeAll(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", []byte("v"), time.Hour))
	require.NoError(t, cache.Set(ctx, "b", []byte("v"), time.Hour))

	n, err := cache.Purge(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stats, err := cache.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalEntries)
}

func TestCache_Stats(t *testing.T) {
	cache, clock := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "short", []byte("12345"), time.Minute))
	require.NoError(t, cache.Set(ctx, "long", []byte("1234567890"), time.Hour))
	clock.Advance(5 * time.Minute)

	stats, err := cache.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 1, stats.ValidEntries)
	assert.Equal(t, 1, stats.ExpiredEntries)
	assert.Equal(t, int64(15), stats.SizeBytes)
}

func TestCache_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	cache, err := NewCache(dir)
	require.NoError(t, err)
	require.NoError(t, cache.Set(context.Background(), "k1", []byte("persisted"), time.Hour))
	require.NoError(t, cache.Close())

	reopened, err := NewCache(dir)
	require.NoError(t, err)
	defer reopened.Close()

	payload, ok, err := reopened.Get(context.Background(), "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("persisted"), payload)
}
