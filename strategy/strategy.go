// Package strategy implements the read-through/write-back policies that
// combine a store.Store with a caller-supplied fetcher:
//
//   - CacheOnly: answer from the store only.
//   - FetchOnly: answer from the fetcher only; the store is never touched.
//   - CacheFirst: answer from the store, falling back to fetch-and-store.
//   - FetchFirst: fetch-and-store, falling back to the store on fetch failure.
//   - StaleWhileRevalidate: answer from the store and refresh it in the
//     background; on a miss, wait for the fetch instead.
//
// The functions hold no state. StaleWhileRevalidate coordinates concurrent
// callers through a store.FlightTracker so that at most one revalidation per
// key is outstanding.
package strategy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IvanBrykalov/stratcache/store"
)

// ErrInvalidArgument is the base error for arguments rejected before any
// store access. It is never worth retrying.
var ErrInvalidArgument = errors.New("strategy: invalid argument")

var (
	// ErrUnsupportedStrategy is returned for an unknown strategy name.
	ErrUnsupportedStrategy = fmt.Errorf("%w: unsupported strategy", ErrInvalidArgument)
	// ErrNilFetcher is returned when a strategy that fetches gets no fetcher.
	ErrNilFetcher = fmt.Errorf("%w: fetcher is nil", ErrInvalidArgument)
	// ErrNilStore is returned when a strategy that reads or writes gets no store.
	ErrNilStore = fmt.Errorf("%w: store is nil", ErrInvalidArgument)
	// ErrNoFlightTracker is returned by StaleWhileRevalidate when neither the
	// Env nor the store can track in-flight revalidations.
	ErrNoFlightTracker = fmt.Errorf("%w: no flight tracker", ErrInvalidArgument)
)

// Fetcher produces a fresh value. It is invoked at most once per strategy
// call.
type Fetcher[V any] func(ctx context.Context) (V, error)

// ErrorHandler receives fetch (and background write-back) failures that a
// strategy recovers from instead of returning.
type ErrorHandler func(err error)

// Kind names one of the five strategies.
type Kind int

// The five strategies. The zero Kind is CacheOnly.
const (
	KindCacheOnly Kind = iota
	KindFetchOnly
	KindCacheFirst
	KindFetchFirst
	KindStaleWhileRevalidate
)

var kindNames = [...]string{
	KindCacheOnly:            "CacheOnly",
	KindFetchOnly:            "FetchOnly",
	KindCacheFirst:           "CacheFirst",
	KindFetchFirst:           "FetchFirst",
	KindStaleWhileRevalidate: "StaleWhileRevalidate",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// NeedsFetcher reports whether the strategy invokes a fetcher.
func (k Kind) NeedsFetcher() bool { return k != KindCacheOnly }

// ParseKind maps a strategy name (as produced by Kind.String) to its Kind.
// Names are case-sensitive.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedStrategy, name)
}

// WithTimeout bounds every invocation of fetch by d. A non-positive d
// returns fetch unchanged.
func WithTimeout[V any](fetch Fetcher[V], d time.Duration) Fetcher[V] {
	if fetch == nil || d <= 0 {
		return fetch
	}
	return func(ctx context.Context) (V, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return fetch(ctx)
	}
}

// Env carries what a strategy needs besides the key and the fetcher.
// Only Store is required, and only by strategies that touch the store.
type Env[K comparable, V any] struct {
	Store store.Store[K, V]

	// Flights dedups revalidations. Nil => the store itself, if it
	// implements store.FlightTracker.
	Flights store.FlightTracker[K]

	// Go runs detached background work. Nil => a plain goroutine.
	Go func(func())

	// Logger receives swallowed failures. Nil => slog.Default().
	Logger *slog.Logger

	// Instrument, if set, wraps every fetcher before it is invoked.
	Instrument func(kind Kind, fetch Fetcher[V]) Fetcher[V]

	// OnCoalesced, if set, is called when a revalidation is skipped because
	// one is already in flight for the key.
	OnCoalesced func(kind Kind)
}

func (e Env[K, V]) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

func (e Env[K, V]) spawn(fn func()) {
	if e.Go != nil {
		e.Go(fn)
		return
	}
	go fn()
}

func (e Env[K, V]) flights() store.FlightTracker[K] {
	if e.Flights != nil {
		return e.Flights
	}
	if ft, ok := e.Store.(store.FlightTracker[K]); ok {
		return ft
	}
	return nil
}

func (e Env[K, V]) instrument(kind Kind, fetch Fetcher[V]) Fetcher[V] {
	if e.Instrument == nil || fetch == nil {
		return fetch
	}
	return e.Instrument(kind, fetch)
}

func (e Env[K, V]) coalesced(kind Kind) {
	if e.OnCoalesced != nil {
		e.OnCoalesced(kind)
	}
}
