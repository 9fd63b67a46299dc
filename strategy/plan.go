package strategy

import (
	"context"
	"fmt"
)

// Plan is one strategy together with exactly the parameters it needs.
// The set of variants is closed: Plans are built only by the Use*
// constructors (or NewPlan) in this package.
type Plan[K comparable, V any] interface {
	// Kind reports which strategy the plan runs.
	Kind() Kind
	// Execute answers a get for key.
	Execute(ctx context.Context, env Env[K, V], key K) (V, bool, error)

	sealed()
}

type cacheOnly[K comparable, V any] struct{}

type fetchOnly[K comparable, V any] struct{ fetch Fetcher[V] }

type cacheFirst[K comparable, V any] struct{ fetch Fetcher[V] }

type fetchFirst[K comparable, V any] struct{ fetch Fetcher[V] }

type staleWhileRevalidate[K comparable, V any] struct {
	fetch   Fetcher[V]
	onError ErrorHandler
}

// UseCacheOnly answers from the store only.
func UseCacheOnly[K comparable, V any]() Plan[K, V] { return cacheOnly[K, V]{} }

// UseFetchOnly answers from fetch only; the store is never touched.
func UseFetchOnly[K comparable, V any](fetch Fetcher[V]) Plan[K, V] {
	return fetchOnly[K, V]{fetch: fetch}
}

// UseCacheFirst answers from the store, falling back to fetch on a miss.
func UseCacheFirst[K comparable, V any](fetch Fetcher[V]) Plan[K, V] {
	return cacheFirst[K, V]{fetch: fetch}
}

// UseFetchFirst answers from fetch, falling back to the store on failure.
func UseFetchFirst[K comparable, V any](fetch Fetcher[V]) Plan[K, V] {
	return fetchFirst[K, V]{fetch: fetch}
}

// UseStaleWhileRevalidate answers from the store and refreshes it in the
// background. onError may be nil.
func UseStaleWhileRevalidate[K comparable, V any](fetch Fetcher[V], onError ErrorHandler) Plan[K, V] {
	return staleWhileRevalidate[K, V]{fetch: fetch, onError: onError}
}

// NewPlan builds the plan for kind. It is the bridge from configuration
// (strategy names) to the closed set of variants. Kinds that fetch require
// a non-nil fetch; onError is only used by StaleWhileRevalidate.
func NewPlan[K comparable, V any](kind Kind, fetch Fetcher[V], onError ErrorHandler) (Plan[K, V], error) {
	if kind.NeedsFetcher() && fetch == nil {
		return nil, fmt.Errorf("%w (strategy %s)", ErrNilFetcher, kind)
	}
	switch kind {
	case KindCacheOnly:
		return UseCacheOnly[K, V](), nil
	case KindFetchOnly:
		return UseFetchOnly[K, V](fetch), nil
	case KindCacheFirst:
		return UseCacheFirst[K, V](fetch), nil
	case KindFetchFirst:
		return UseFetchFirst[K, V](fetch), nil
	case KindStaleWhileRevalidate:
		return UseStaleWhileRevalidate[K, V](fetch, onError), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedStrategy, kind)
	}
}

func (cacheOnly[K, V]) Kind() Kind { return KindCacheOnly }
func (cacheOnly[K, V]) sealed()    {}
func (cacheOnly[K, V]) Execute(ctx context.Context, env Env[K, V], key K) (V, bool, error) {
	return CacheOnly(ctx, env.Store, key)
}

func (fetchOnly[K, V]) Kind() Kind { return KindFetchOnly }
func (fetchOnly[K, V]) sealed()    {}
func (p fetchOnly[K, V]) Execute(ctx context.Context, env Env[K, V], _ K) (V, bool, error) {
	return FetchOnly(ctx, env.instrument(KindFetchOnly, p.fetch))
}

func (cacheFirst[K, V]) Kind() Kind { return KindCacheFirst }
func (cacheFirst[K, V]) sealed()    {}
func (p cacheFirst[K, V]) Execute(ctx context.Context, env Env[K, V], key K) (V, bool, error) {
	return CacheFirst(ctx, env.Store, key, env.instrument(KindCacheFirst, p.fetch))
}

func (fetchFirst[K, V]) Kind() Kind { return KindFetchFirst }
func (fetchFirst[K, V]) sealed()    {}
func (p fetchFirst[K, V]) Execute(ctx context.Context, env Env[K, V], key K) (V, bool, error) {
	return FetchFirst(ctx, env.Store, key, env.instrument(KindFetchFirst, p.fetch))
}

func (staleWhileRevalidate[K, V]) Kind() Kind { return KindStaleWhileRevalidate }
func (staleWhileRevalidate[K, V]) sealed()    {}
func (p staleWhileRevalidate[K, V]) Execute(ctx context.Context, env Env[K, V], key K) (V, bool, error) {
	return StaleWhileRevalidate(ctx, env, key, p.fetch, p.onError)
}
