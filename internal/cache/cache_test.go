package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondscope/internal/shared/testutil"
)

func newTestCache(t *testing.T, size int) (*Cache, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)
	return New(size, nil, logger), handler
}

func counting(calls *atomic.Int32, v any) func() (any, error) {
	return func() (any, error) {
		calls.Add(1)
		return v, nil
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		name     string
		fn1, fn2 string
		a1, a2   any
		same     bool
	}{
		{"same fn and args", "donor_stats", "donor_stats", []string{"ACME"}, []string{"ACME"}, true},
		{"different args", "donor_stats", "donor_stats", []string{"ACME"}, []string{"BETA"}, false},
		{"different fn", "donor_stats", "correlate", []string{"ACME"}, []string{"ACME"}, false},
		{"nil args", "global_stats", "global_stats", nil, nil, true},
		{"struct args", "donors", "donors", struct{ Limit int }{10}, struct{ Limit int }{10}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k1, err := Key(tt.fn1, tt.a1)
			require.NoError(t, err)
			k2, err := Key(tt.fn2, tt.a2)
			require.NoError(t, err)
			if tt.same {
				assert.Equal(t, k1, k2)
			} else {
				assert.NotEqual(t, k1, k2)
			}
			assert.Contains(t, k1, tt.fn1+":")
		})
	}

	t.Run("unencodable args", func(t *testing.T) {
		_, err := Key("bad", make(chan int))
		assert.Error(t, err)
	})
}

func TestCacheDo(t *testing.T) {
	ctx := context.Background()

	t.Run("miss then hit", func(t *testing.T) {
		c, _ := newTestCache(t, 4)
		var calls atomic.Int32

		v, err := c.Do(ctx, "global_stats", nil, counting(&calls, 42))
		require.NoError(t, err)
		assert.Equal(t, 42, v)

		v, err = c.Do(ctx, "global_stats", nil, counting(&calls, 99))
		require.NoError(t, err)
		assert.Equal(t, 42, v)

		assert.Equal(t, int32(1), calls.Load())
		stats := c.Stats()
		assert.Equal(t, uint64(1), stats.Hits)
		assert.Equal(t, uint64(1), stats.Misses)
		assert.Equal(t, 1, stats.Entries)
	})

	t.Run("errors are not cached", func(t *testing.T) {
		c, _ := newTestCache(t, 4)
		boom := errors.New("boom")

		_, err := c.Do(ctx, "league", nil, func() (any, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 0, c.Stats().Entries)

		v, err := c.Do(ctx, "league", nil, func() (any, error) { return "ok", nil })
		require.NoError(t, err)
		assert.Equal(t, "ok", v)
	})

	t.Run("fifo eviction ignores reads", func(t *testing.T) {
		c, _ := newTestCache(t, 2)
		var calls atomic.Int32

		_, _ = c.Do(ctx, "f", 1, counting(&calls, 1))
		_, _ = c.Do(ctx, "f", 2, counting(&calls, 2))
		// reading 1 must not protect it from eviction
		_, _ = c.Do(ctx, "f", 1, counting(&calls, 1))
		_, _ = c.Do(ctx, "f", 3, counting(&calls, 3))
		assert.Equal(t, int32(3), calls.Load())

		_, _ = c.Do(ctx, "f", 1, counting(&calls, 1))
		assert.Equal(t, int32(4), calls.Load(), "oldest entry should have been evicted")

		stats := c.Stats()
		assert.Equal(t, 2, stats.Entries)
		assert.Equal(t, uint64(2), stats.Evictions)
	})

	t.Run("concurrent misses share one computation", func(t *testing.T) {
		c, _ := newTestCache(t, 4)
		var calls atomic.Int32
		release := make(chan struct{})

		var wg sync.WaitGroup
		results := make([]any, 8)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], _ = c.Do(ctx, "slow", nil, func() (any, error) {
					calls.Add(1)
					<-release
					return "done", nil
				})
			}(i)
		}
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())
		for _, r := range results {
			assert.Equal(t, "done", r)
		}
	})

	t.Run("context cancellation stops waiting", func(t *testing.T) {
		c, _ := newTestCache(t, 4)
		release := make(chan struct{})
		defer close(release)

		cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		_, err := c.Do(cctx, "slow", nil, func() (any, error) {
			<-release
			return 1, nil
		})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestCacheInvalidation(t *testing.T) {
	ctx := context.Background()
	fill := func(c *Cache) {
		for _, args := range []string{"ACME", "BETA"} {
			_, _ = c.Do(ctx, "donor_stats", args, func() (any, error) { return args, nil })
		}
		_, _ = c.Do(ctx, "global_stats", nil, func() (any, error) { return 1, nil })
	}

	t.Run("invalidate one entry", func(t *testing.T) {
		c, _ := newTestCache(t, 8)
		fill(c)

		assert.True(t, c.Invalidate("donor_stats", "ACME"))
		assert.False(t, c.Invalidate("donor_stats", "ACME"))
		assert.Equal(t, 2, c.Stats().Entries)
		assert.Zero(t, c.Stats().Evictions)
	})

	t.Run("invalidate function", func(t *testing.T) {
		c, handler := newTestCache(t, 8)
		fill(c)

		assert.Equal(t, 2, c.InvalidateFunc("donor_stats"))
		assert.Equal(t, 1, c.Stats().Entries)
		assert.Zero(t, c.InvalidateFunc("unknown"))
		assert.True(t, handler.ContainsAttr("fn", "donor_stats"))
	})

	t.Run("purge", func(t *testing.T) {
		c, handler := newTestCache(t, 8)
		fill(c)

		assert.Equal(t, 3, c.Purge())
		assert.Equal(t, 0, c.Stats().Entries)
		assert.Zero(t, c.Stats().Evictions)
		assert.True(t, handler.ContainsMessage("cache purged"))
	})

	t.Run("purge during compute discards the result", func(t *testing.T) {
		c, _ := newTestCache(t, 8)
		started := make(chan struct{})
		release := make(chan struct{})

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = c.Do(ctx, "global_stats", nil, func() (any, error) {
				close(started)
				<-release
				return "stale", nil
			})
		}()
		<-started
		c.Purge()
		close(release)
		<-done

		assert.Equal(t, 0, c.Stats().Entries)
	})
}

func TestNewDefaults(t *testing.T) {
	c := New(0, nil, nil)
	assert.Equal(t, DefaultMaxEntries, c.Stats().Capacity)
}
