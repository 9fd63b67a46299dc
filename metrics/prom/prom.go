// Package prom exports cache metrics to Prometheus.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/stratcache/cache"
	"github.com/IvanBrykalov/stratcache/store"
	"github.com/IvanBrykalov/stratcache/strategy"
)

// Adapter implements cache.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evicts    *prometheus.CounterVec
	sizeEnt   prometheus.Gauge
	fetches   *prometheus.CounterVec
	coalesced *prometheus.CounterVec
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	opts := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		}
	}
	a := &Adapter{
		hits:   prometheus.NewCounter(opts("hits_total", "Store hits")),
		misses: prometheus.NewCounter(opts("misses_total", "Store misses, including expired entries")),
		evicts: prometheus.NewCounterVec(
			opts("evictions_total", "Store evictions by reason"),
			[]string{"reason"},
		),
		sizeEnt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "size_entries",
			Help:        "Number of resident entries",
			ConstLabels: constLabels,
		}),
		fetches: prometheus.NewCounterVec(
			opts("fetches_total", "Fetcher invocations by strategy and result"),
			[]string{"strategy", "result"},
		),
		coalesced: prometheus.NewCounterVec(
			opts("coalesced_total", "Revalidations skipped because one was already in flight"),
			[]string{"strategy"},
		),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.sizeEnt, a.fetches, a.coalesced)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter with a reason label.
func (a *Adapter) Evict(r store.EvictReason) {
	a.evicts.WithLabelValues(r.String()).Inc()
}

// Size updates the resident entries gauge.
func (a *Adapter) Size(entries int) {
	a.sizeEnt.Set(float64(entries))
}

// Fetch counts one fetcher invocation.
func (a *Adapter) Fetch(kind strategy.Kind, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	a.fetches.WithLabelValues(kind.String(), result).Inc()
}

// Coalesced counts one skipped revalidation.
func (a *Adapter) Coalesced(kind strategy.Kind) {
	a.coalesced.WithLabelValues(kind.String()).Inc()
}

// Compile-time check: ensure Adapter implements cache.Metrics.
var _ cache.Metrics = (*Adapter)(nil)
