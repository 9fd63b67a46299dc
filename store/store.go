// Package store defines the contract every cache backend satisfies, together
// with the small set of hooks (clock, metrics, eviction reasons) shared by
// backends and the strategy layer.
package store

import (
	"context"
	"errors"
	"fmt"
)

// Store is the minimal key/value contract the strategy layer relies on.
//
// Absence is a regular return value (ok == false), never an error. The error
// return exists for backends that can fail (I/O, network); such failures
// should be reported as *Error so callers can tell them apart from fetcher
// failures. The in-memory backend never returns a non-nil error.
type Store[K comparable, V any] interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key K) (V, bool, error)
	// Set stores value under key. Storing an absent value is a no-op.
	Set(ctx context.Context, key K, value V) error
	// Delete removes key if present.
	Delete(ctx context.Context, key K) error
	// Keys returns all known keys in unspecified order.
	Keys(ctx context.Context) ([]K, error)
	// Flush removes every entry.
	Flush(ctx context.Context) error
}

// FlightTracker marks keys with an outstanding revalidation fetch.
//
// BeginFlight must atomically check and insert: it returns false when key is
// already in flight. EndFlight removes the marker. Stores that implement this
// interface keep the marker under the same mutex as their mutations.
type FlightTracker[K comparable] interface {
	BeginFlight(key K) bool
	EndFlight(key K)
}

// Clock provides time in UnixNano; useful for deterministic tests.
type Clock interface{ NowUnixNano() int64 }

// EvictReason explains why an entry was removed by the store itself.
type EvictReason int

const (
	// EvictTTL: the entry outlived the store's max age.
	EvictTTL EvictReason = iota
	// EvictCapacity: the entry was the LRU tail when the entry bound was hit.
	EvictCapacity
)

// String returns a stable label for the reason.
func (r EvictReason) String() string {
	switch r {
	case EvictTTL:
		return "ttl"
	case EvictCapacity:
		return "capacity"
	default:
		return "unknown"
	}
}

// Metrics exposes store-level observability hooks.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int)
}

// NoopMetrics is a drop-in Metrics implementation that does nothing.
type NoopMetrics struct{}

func (NoopMetrics) Hit()              {}
func (NoopMetrics) Miss()             {}
func (NoopMetrics) Evict(EvictReason) {}
func (NoopMetrics) Size(int)          {}

var _ Metrics = NoopMetrics{}

// Error reports a failure of the storage backend itself.
type Error struct {
	Op  string // get, set, delete, keys, flush
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

// IsStoreError reports whether err (or anything it wraps) is a *Error.
func IsStoreError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}

// Wrap returns err as a *Error for op, leaving nil and existing *Error
// values untouched.
func Wrap(op string, err error) error {
	if err == nil || IsStoreError(err) {
		return err
	}
	return &Error{Op: op, Err: err}
}

// IsAbsent reports whether v is the absent sentinel: a nil interface value.
// Stores never keep absent values.
func IsAbsent[V any](v V) bool {
	return any(v) == nil
}
