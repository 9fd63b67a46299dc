package cache

import (
	"github.com/IvanBrykalov/stratcache/store"
	"github.com/IvanBrykalov/stratcache/strategy"
)

// Metrics exposes cache-level observability hooks. Store hooks (hits,
// misses, evictions, size) are fed by the built-in memory store; the rest
// are fed by the facade.
type Metrics interface {
	store.Metrics

	// Fetch is called after every fetcher invocation; err is its result.
	Fetch(kind strategy.Kind, err error)
	// Coalesced is called when a revalidation is skipped because one is
	// already in flight for the key.
	Coalesced(kind strategy.Kind)
}

// NoopMetrics is a drop-in Metrics implementation that does nothing.
// It is safe for concurrent use and intended as the default when
// no observability backend is configured.
type NoopMetrics struct{ store.NoopMetrics }

func (NoopMetrics) Fetch(strategy.Kind, error) {}
func (NoopMetrics) Coalesced(strategy.Kind)    {}

// Ensure NoopMetrics implements the Metrics interface at compile time.
var _ Metrics = NoopMetrics{}
