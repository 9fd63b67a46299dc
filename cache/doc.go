// Package cache is the facade of stratcache: it validates options, selects
// and builds the backing store, and answers gets through one of five
// caching strategies (see package strategy).
//
// Design
//
//   - Storage: the default store ("memory", package store/memory) keeps a
//     map plus an intrusive, key-linked MRU↔LRU list. Bounds are an entry
//     count (MaxEntries) and an absolute age since the last write
//     (MaxAgeSeconds). Any store.Store may be supplied instead, as an
//     instance or through a factory.
//
//   - Strategies: each Get carries a strategy.Plan, a closed set of variants
//     that each hold only what they need (FetchOnly never sees the store).
//     A nil plan means CacheOnly.
//
//   - Revalidation: StaleWhileRevalidate returns cached values at once and
//     refreshes them on a background group owned by the cache. At most one
//     revalidation per key is in flight; the marker lives under the memory
//     store's lock, or in a per-cache set for other stores. Close waits for
//     outstanding revalidations.
//
//   - Cacheability: Options.Cacheable filters values before they reach the
//     store. Absent values (nil interfaces) are never stored.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size from the memory
//     store and Fetch/Coalesced from the facade. NoopMetrics is the default;
//     package metrics/prom exports them to Prometheus.
//
// Basic usage
//
//	c, err := cache.New[string, string](cache.Options[string, string]{MaxEntries: 1024})
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	load := func(ctx context.Context) (string, error) { return db.Lookup(ctx, "user:1") }
//	v, ok, err := c.Get(ctx, "user:1", strategy.UseCacheFirst[string, string](load))
//
// Stale-while-revalidate
//
//	v, ok, err := c.Get(ctx, "user:1", strategy.UseStaleWhileRevalidate[string, string](load,
//	    func(err error) { log.Printf("refresh user:1: %v", err) }))
//
// From a config file
//
//	cfg, err := cache.LoadConfig("cache.yaml")
//	opt := cache.WithConfig(cache.Options[string, []byte]{}, cfg)
//	kind, _ := cfg.Kind()
//	plan, err := strategy.NewPlan[string, []byte](kind, load, nil)
package cache
