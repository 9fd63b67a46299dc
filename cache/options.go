package cache

import (
	"log/slog"
	"math"
	"time"

	"github.com/IvanBrykalov/stratcache/store"
)

// StoreMemory is the name of the built-in in-memory store.
const StoreMemory = "memory"

// StoreConfig is what a store factory receives: the validated bounds and
// the hooks configured on the cache.
type StoreConfig[K comparable, V any] struct {
	MaxAge     time.Duration
	MaxEntries int
	OnEvict    func(k K, v V, reason store.EvictReason)
	Metrics    store.Metrics
	Clock      store.Clock
}

// StoreFactory builds a store from the cache's configuration.
type StoreFactory[K comparable, V any] func(cfg StoreConfig[K, V]) (store.Store[K, V], error)

// Options configures the cache. Zero values are safe;
// sane defaults are applied in New():
//   - negative, NaN or overflowing MaxAgeSeconds, negative MaxEntries => 0,
//     with a warning
//   - empty Store         => "memory"
//   - empty FallbackStore => "memory" (unless DisableFallback)
//   - nil Cacheable       => everything but absent values is cacheable
//   - nil Metrics         => NoopMetrics
//   - nil Logger          => slog.Default()
type Options[K comparable, V any] struct {
	// Bounds for the built-in store (and hints for factories).
	MaxAgeSeconds float64 // 0 = entries never expire; fractions allowed
	MaxEntries    int     // 0 = no entry bound

	// Store selection, in order of precedence: StoreInstance, StoreFactory,
	// then the built-in store named by Store.
	Store         string
	StoreInstance store.Store[K, V]
	StoreFactory  StoreFactory[K, V]

	// FallbackStore is used in place of an unknown Store name.
	// DisableFallback turns an unknown name into ErrUnsupportedStore.
	FallbackStore   string
	DisableFallback bool

	// Cacheable rejects values that must not reach the store. Rejected
	// values are still returned to the caller, just not written.
	Cacheable func(v V) bool

	// FetchTimeout bounds each fetcher invocation (0 = no timeout).
	FetchTimeout time.Duration

	// Observability
	// OnEvict is called on store evictions under the store lock; keep callbacks lightweight.
	OnEvict func(k K, v V, reason store.EvictReason)
	Metrics Metrics
	Logger  *slog.Logger

	// Clock allows overriding time source (tests). Nil => time.Now().
	Clock store.Clock
}

// maxAgeSecondsLimit bounds the ages a time.Duration can hold.
var maxAgeSecondsLimit = float64(math.MaxInt64) / float64(time.Second)

// withDefaults coerces invalid values and fills in defaults, logging each
// coercion.
func (o Options[K, V]) withDefaults() Options[K, V] {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Metrics == nil {
		o.Metrics = NoopMetrics{}
	}
	if !(o.MaxAgeSeconds >= 0) || o.MaxAgeSeconds >= maxAgeSecondsLimit {
		o.Logger.Warn("cache: invalid max age, using 0 (no expiry)", "max_age_seconds", o.MaxAgeSeconds)
		o.MaxAgeSeconds = 0
	}
	if o.MaxEntries < 0 {
		o.Logger.Warn("cache: negative max entries, using 0 (unbounded)", "max_entries", o.MaxEntries)
		o.MaxEntries = 0
	}
	if o.Store == "" {
		o.Store = StoreMemory
	}
	if o.FallbackStore == "" {
		o.FallbackStore = StoreMemory
	}
	if o.FetchTimeout < 0 {
		o.FetchTimeout = 0
	}
	return o
}

func (o Options[K, V]) storeConfig() StoreConfig[K, V] {
	return StoreConfig[K, V]{
		MaxAge:     time.Duration(o.MaxAgeSeconds * float64(time.Second)),
		MaxEntries: o.MaxEntries,
		OnEvict:    o.OnEvict,
		Metrics:    o.Metrics,
		Clock:      o.Clock,
	}
}
