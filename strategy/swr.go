package strategy

import (
	"context"
	"fmt"

	"github.com/IvanBrykalov/stratcache/store"
)

// StaleWhileRevalidate answers from the store and refreshes it without
// making the caller wait.
//
//   - Hit: the cached value is returned at once and fetch-and-store runs in
//     a detached task (env.Go). The task uses ctx's values but not its
//     cancellation. Its failures, including a panicking fetcher or a failing
//     write-back, go to onError, or are logged at Warn when onError is nil.
//     They never reach the caller.
//   - Miss: the caller waits for fetch-and-store. On failure the result is
//     absent with a nil error; the failure goes to onError, or is logged at
//     Warn when onError is nil.
//
// At most one revalidation per key is outstanding: the key is marked in the
// flight tracker before fetching and unmarked once the fetch settles. A call
// that finds its key already marked skips fetching. It still returns the
// cached value on a hit, and returns absent on a miss.
//
// A nil fetch fails with ErrNilFetcher before the store is touched.
func StaleWhileRevalidate[K comparable, V any](ctx context.Context, env Env[K, V], key K, fetch Fetcher[V], onError ErrorHandler) (V, bool, error) {
	var zero V
	if err := check(env.Store, fetch); err != nil {
		return zero, false, err
	}
	flights := env.flights()
	if flights == nil {
		return zero, false, ErrNoFlightTracker
	}
	fetch = env.instrument(KindStaleWhileRevalidate, fetch)

	v, ok, err := env.Store.Get(ctx, key)
	if err != nil {
		return zero, false, err
	}

	if !flights.BeginFlight(key) {
		env.coalesced(KindStaleWhileRevalidate)
		if ok {
			return v, true, nil
		}
		return zero, false, nil
	}

	if ok {
		bg := context.WithoutCancel(ctx)
		env.spawn(func() {
			defer flights.EndFlight(key)
			defer func() {
				if r := recover(); r != nil {
					env.logger().Error("revalidation error handler panicked", "key", key, "panic", r)
				}
			}()
			if err := revalidate(bg, env.Store, key, fetch); err != nil {
				env.report(key, err, onError)
			}
		})
		return v, true, nil
	}

	defer flights.EndFlight(key)
	nv, found, err := fetchAndStore(ctx, env.Store, key, fetch)
	if err != nil {
		env.report(key, err, onError)
		return zero, false, nil
	}
	return nv, found, nil
}

// revalidate is the background body: fetch-and-store with panics turned
// into errors.
func revalidate[K comparable, V any](ctx context.Context, st store.Store[K, V], key K, fetch Fetcher[V]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strategy: fetcher panicked: %v", r)
		}
	}()
	_, _, err = fetchAndStore(ctx, st, key, fetch)
	return err
}

// report routes a swallowed failure to onError, or logs it.
func (e Env[K, V]) report(key K, err error, onError ErrorHandler) {
	if onError != nil {
		onError(err)
		return
	}
	e.logger().Warn("stale-while-revalidate fetch failed",
		"key", key,
		"store_error", store.IsStoreError(err),
		"err", err,
	)
}
