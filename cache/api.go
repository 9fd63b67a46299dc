package cache

import (
	"context"

	"github.com/IvanBrykalov/stratcache/strategy"
)

// Cache answers gets through a caching strategy on top of a store.
// All methods are safe for concurrent use by multiple goroutines.
type Cache[K comparable, V any] interface {
	// Get answers a get for key using plan. A nil plan means CacheOnly.
	// The boolean reports presence; absence is not an error.
	Get(ctx context.Context, key K, plan strategy.Plan[K, V]) (V, bool, error)

	// Set stores k→v unless the cacheability predicate rejects v.
	Set(ctx context.Context, k K, v V) error

	// Delete removes k if present.
	Delete(ctx context.Context, k K) error

	// Keys returns all known keys in unspecified order.
	Keys(ctx context.Context) ([]K, error)

	// Flush removes every entry.
	Flush(ctx context.Context) error

	// Close marks the cache closed and waits for outstanding background
	// revalidations. Later calls return ErrClosed. Close is idempotent.
	Close() error
}
