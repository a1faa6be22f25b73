package cache

import (
	"context"
	"testing"
	"time"

	"perfume-generator/internal/infrastructure/config"
	"perfume-generator/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestManager(maxSize int, ttl time.Duration) (*CacheManager, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := newManager(maxSize, ttl)
	m.now = clock.now
	return m, clock
}

func TestManagerGetSet(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(10, time.Hour)

	_, err := m.Get(ctx, "prompt")
	assert.ErrorIs(t, err, common.ErrCacheMiss)

	require.NoError(t, m.Set(ctx, "prompt", "reply"))

	got, err := m.Get(ctx, "prompt")
	require.NoError(t, err)
	assert.Equal(t, "reply", got)

	stats := m.GetStats()
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
	assert.Equal(t, 1, stats["size"])
	assert.InDelta(t, 0.5, stats["hit_ratio"], 0.0001)
}

func TestManagerExpiry(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(10, time.Minute)

	require.NoError(t, m.Set(ctx, "prompt", "reply"))
	clock.advance(2 * time.Minute)

	_, err := m.Get(ctx, "prompt")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	assert.Equal(t, 0, m.GetStats()["size"])
	assert.Equal(t, int64(1), m.GetStats()["evictions"])
}

func TestManagerEvictsLeastUsed(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(2, time.Hour)

	require.NoError(t, m.Set(ctx, "a", "1"))
	clock.advance(time.Second)
	require.NoError(t, m.Set(ctx, "b", "2"))

	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "c", "3"))

	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	_, err = m.Get(ctx, "a")
	assert.NoError(t, err)
	_, err = m.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestManagerOverwriteDoesNotEvict(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(1, time.Hour)

	require.NoError(t, m.Set(ctx, "a", "1"))
	require.NoError(t, m.Set(ctx, "a", "2"))

	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "2", got)
	assert.Equal(t, int64(0), m.GetStats()["evictions"])
}

func TestManagerClose(t *testing.T) {
	ctx := context.Background()
	m := NewManager(config.CacheConfig{MaxSize: 5, TTL: time.Hour, CleanupInterval: time.Millisecond})

	require.NoError(t, m.Set(ctx, "a", "1"))
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	_, err := m.Get(ctx, "a")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
}

func TestKeyIsStable(t *testing.T) {
	assert.Equal(t, Key("abc"), Key("abc"))
	assert.NotEqual(t, Key("abc"), Key("abd"))
	assert.Len(t, Key("abc"), 64)
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		store, err := NewStore(ctx, &config.Config{Cache: config.CacheConfig{Enabled: false}})
		require.NoError(t, err)
		assert.Nil(t, store)
	})

	t.Run("memory", func(t *testing.T) {
		store, err := NewStore(ctx, &config.Config{Cache: config.CacheConfig{
			Enabled: true, Backend: config.CacheBackendMemory, MaxSize: 10, TTL: time.Hour,
		}})
		require.NoError(t, err)
		require.IsType(t, &CacheManager{}, store)
		assert.NoError(t, store.Close())
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := NewStore(ctx, &config.Config{Cache: config.CacheConfig{Enabled: true, Backend: "memcached"}})
		assert.Error(t, err)
	})

	t.Run("unreachable redis", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		_, err := NewStore(ctx, &config.Config{
			Cache: config.CacheConfig{Enabled: true, Backend: config.CacheBackendRedis, TTL: time.Hour},
			Redis: config.RedisConfig{Addr: "127.0.0.1:1"},
		})
		assert.Error(t, err)
	})
}
