// Package cache memoizes analysis results keyed by function name and
// arguments. Nothing is cached implicitly: callers route computations
// through Do and decide when entries go stale.
package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2/simplelru"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"

	"bondscope/internal/infrastructure"
)

// DefaultMaxEntries bounds a cache created with a non-positive size.
const DefaultMaxEntries = 256

// Stats is a snapshot of cache usage.
type Stats struct {
	Entries   int    `json:"entries"`
	Capacity  int    `json:"capacity"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

type entry struct {
	fn    string
	value any
}

// Cache is a bounded read-through result cache. Entries are evicted oldest
// first; reads do not refresh an entry's position. Concurrent misses on the
// same key share one computation.
type Cache struct {
	mu         sync.Mutex
	entries    *lru.LRU[string, entry]
	capacity   int
	generation uint64
	removing   bool
	group      singleflight.Group

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64

	metrics *infrastructure.AnalysisMetrics
	logger  *slog.Logger
}

// New creates a cache holding at most maxEntries results. metrics may be nil.
func New(maxEntries int, metrics *infrastructure.AnalysisMetrics, logger *slog.Logger) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cache{
		capacity: maxEntries,
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "cache")),
	}
	// NewLRU only fails for a non-positive size.
	c.entries, _ = lru.NewLRU[string, entry](maxEntries, func(string, entry) {
		// runs under c.mu
		if !c.removing {
			c.evictions.Add(1)
		}
	})
	return c
}

// Key derives the cache key for fn called with args. args must be JSON
// encodable; nil is allowed.
func Key(fn string, args any) (string, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("cache key for %s: %w", fn, err)
	}
	sum := blake2b.Sum256(data)
	return fn + ":" + hex.EncodeToString(sum[:]), nil
}

// Do returns the cached result of fn(args), calling compute on a miss.
// Errors are returned to every waiter and never cached. If ctx ends while
// waiting, Do returns ctx.Err() and the computation finishes in the
// background for later callers.
func (c *Cache) Do(ctx context.Context, fn string, args any, compute func() (any, error)) (any, error) {
	key, err := Key(fn, args)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	e, ok := c.entries.Peek(key)
	gen := c.generation
	c.mu.Unlock()

	c.metrics.RecordCacheLookup(ctx, fn, ok)
	if ok {
		c.hits.Add(1)
		return e.value, nil
	}
	c.misses.Add(1)

	ch := c.group.DoChan(key, func() (any, error) {
		v, err := compute()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		// a purge during compute means v may be built from stale data
		if c.generation == gen {
			c.entries.Add(key, entry{fn: fn, value: v})
		}
		c.mu.Unlock()
		return v, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate drops the entry for fn(args), reporting whether one existed.
func (c *Cache) Invalidate(fn string, args any) bool {
	key, err := Key(fn, args)
	if err != nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remove(key)
}

// InvalidateFunc drops every entry computed by fn and returns how many.
func (c *Cache) InvalidateFunc(fn string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, key := range c.entries.Keys() {
		if e, ok := c.entries.Peek(key); ok && e.fn == fn {
			c.remove(key)
			n++
		}
	}
	if n > 0 {
		c.logger.Debug("cache entries invalidated", slog.String("fn", fn), slog.Int("count", n))
	}
	return n
}

// Purge drops every entry and returns how many there were. Computations
// already running when Purge is called do not store their results.
func (c *Cache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.entries.Len()
	c.removing = true
	c.entries.Purge()
	c.removing = false
	c.generation++
	c.logger.Info("cache purged", slog.Int("count", n))
	return n
}

// Stats returns current usage counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	n := c.entries.Len()
	c.mu.Unlock()
	return Stats{
		Entries:   n,
		Capacity:  c.capacity,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

// remove deletes key without counting an eviction. c.mu must be held.
func (c *Cache) remove(key string) bool {
	c.removing = true
	defer func() { c.removing = false }()
	return c.entries.Remove(key)
}
