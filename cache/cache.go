package cache

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/stratcache/internal/inflight"
	"github.com/IvanBrykalov/stratcache/store"
	"github.com/IvanBrykalov/stratcache/strategy"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("cache: closed")

// cache dispatches gets to strategies over one backing store.
// All methods are safe for concurrent use by multiple goroutines.
type cache[K comparable, V any] struct {
	st  store.Store[K, V] // backing store behind the cacheability guard
	env strategy.Env[K, V]
	opt Options[K, V]

	// bg owns detached revalidations; mu orders spawns against Close.
	mu     sync.RWMutex
	closed bool
	bg     errgroup.Group
}

// New constructs a cache with the provided Options.
// Defaults:
//   - store "memory" bounded by MaxAgeSeconds/MaxEntries
//   - nil Metrics -> NoopMetrics
//   - nil Logger  -> slog.Default()
func New[K comparable, V any](opt Options[K, V]) (Cache[K, V], error) {
	opt = opt.withDefaults()

	backing, err := openStore(opt)
	if err != nil {
		return nil, err
	}

	// Revalidation dedup lives with the store when it can; otherwise each
	// cache instance gets its own marker set.
	var flights store.FlightTracker[K]
	if ft, ok := backing.(store.FlightTracker[K]); ok {
		flights = ft
	} else {
		flights = &inflight.Set[K]{}
	}

	c := &cache[K, V]{
		st: guardedStore[K, V]{
			Store:     backing,
			cacheable: opt.Cacheable,
			log:       opt.Logger,
		},
		opt: opt,
	}
	c.env = strategy.Env[K, V]{
		Store:       c.st,
		Flights:     flights,
		Go:          c.spawn,
		Logger:      opt.Logger,
		Instrument:  c.instrument,
		OnCoalesced: opt.Metrics.Coalesced,
	}

	// return pointer-to-impl as the interface (avoids unexported-return lint)
	return c, nil
}

// ---- Cache[K,V] implementation ----

// Get answers a get for key using plan (nil => CacheOnly).
func (c *cache[K, V]) Get(ctx context.Context, key K, plan strategy.Plan[K, V]) (V, bool, error) {
	if c.isClosed() {
		var zero V
		return zero, false, ErrClosed
	}
	if plan == nil {
		plan = strategy.UseCacheOnly[K, V]()
	}
	return plan.Execute(ctx, c.env, key)
}

// Set stores k→v unless v is not cacheable.
func (c *cache[K, V]) Set(ctx context.Context, k K, v V) error {
	if c.isClosed() {
		return ErrClosed
	}
	return c.st.Set(ctx, k, v)
}

// Delete removes k if present.
func (c *cache[K, V]) Delete(ctx context.Context, k K) error {
	if c.isClosed() {
		return ErrClosed
	}
	return c.st.Delete(ctx, k)
}

// Keys returns all known keys in unspecified order.
func (c *cache[K, V]) Keys(ctx context.Context) ([]K, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}
	return c.st.Keys(ctx)
}

// Flush removes every entry.
func (c *cache[K, V]) Flush(ctx context.Context) error {
	if c.isClosed() {
		return ErrClosed
	}
	return c.st.Flush(ctx)
}

// Close marks the cache closed and waits for background revalidations.
// A revalidation whose fetcher never returns keeps Close waiting; use
// Options.FetchTimeout to bound it.
func (c *cache[K, V]) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return c.bg.Wait()
}

// ---- helpers ----

func (c *cache[K, V]) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// spawn runs a detached revalidation on the cache's group. Work spawned
// after Close (by a Get that raced it) runs untracked so the caller never
// blocks on it.
func (c *cache[K, V]) spawn(fn func()) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		go fn()
		return
	}
	c.bg.Go(func() error {
		fn()
		return nil
	})
}

// instrument applies FetchTimeout and reports every fetch to Metrics.
func (c *cache[K, V]) instrument(kind strategy.Kind, fetch strategy.Fetcher[V]) strategy.Fetcher[V] {
	fetch = strategy.WithTimeout(fetch, c.opt.FetchTimeout)
	return func(ctx context.Context) (V, error) {
		v, err := fetch(ctx)
		c.opt.Metrics.Fetch(kind, err)
		return v, err
	}
}
