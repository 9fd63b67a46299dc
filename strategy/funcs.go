package strategy

import (
	"context"

	"github.com/IvanBrykalov/stratcache/store"
)

// CacheOnly returns whatever st holds for key.
func CacheOnly[K comparable, V any](ctx context.Context, st store.Store[K, V], key K) (V, bool, error) {
	if st == nil {
		var zero V
		return zero, false, ErrNilStore
	}
	return st.Get(ctx, key)
}

// FetchOnly invokes fetch and returns its result. No store is involved;
// fetch failures propagate.
func FetchOnly[V any](ctx context.Context, fetch Fetcher[V]) (V, bool, error) {
	var zero V
	if fetch == nil {
		return zero, false, ErrNilFetcher
	}
	v, err := fetch(ctx)
	if err != nil {
		return zero, false, err
	}
	return v, !store.IsAbsent(v), nil
}

// CacheFirst answers from st on a hit. On a miss it fetches, writes the
// result to st and returns it; failures on the miss path propagate.
func CacheFirst[K comparable, V any](ctx context.Context, st store.Store[K, V], key K, fetch Fetcher[V]) (V, bool, error) {
	var zero V
	if err := check(st, fetch); err != nil {
		return zero, false, err
	}

	v, ok, err := st.Get(ctx, key)
	if err != nil {
		return zero, false, err
	}
	if ok {
		return v, true, nil
	}
	return fetchAndStore(ctx, st, key, fetch)
}

// FetchFirst fetches and writes the result to st. If fetch fails, the error
// is dropped and whatever st holds for key is returned instead (possibly
// nothing). A failing write-back is returned as a store error.
func FetchFirst[K comparable, V any](ctx context.Context, st store.Store[K, V], key K, fetch Fetcher[V]) (V, bool, error) {
	var zero V
	if err := check(st, fetch); err != nil {
		return zero, false, err
	}

	v, err := fetch(ctx)
	if err != nil {
		return st.Get(ctx, key)
	}
	if err := st.Set(ctx, key, v); err != nil {
		return zero, false, store.Wrap("set", err)
	}
	return v, !store.IsAbsent(v), nil
}

func check[K comparable, V any](st store.Store[K, V], fetch Fetcher[V]) error {
	if fetch == nil {
		return ErrNilFetcher
	}
	if st == nil {
		return ErrNilStore
	}
	return nil
}

// fetchAndStore runs fetch once and writes a successful result to st.
func fetchAndStore[K comparable, V any](ctx context.Context, st store.Store[K, V], key K, fetch Fetcher[V]) (V, bool, error) {
	var zero V
	v, err := fetch(ctx)
	if err != nil {
		return zero, false, err
	}
	if err := st.Set(ctx, key, v); err != nil {
		return zero, false, store.Wrap("set", err)
	}
	return v, !store.IsAbsent(v), nil
}
