// Package memory implements an in-process store.Store with LRU and TTL
// eviction over an intrusive, key-linked recency list.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/IvanBrykalov/stratcache/store"
)

// Options configures a Store. Zero values are safe:
//   - MaxAge <= 0     => entries never expire
//   - MaxEntries <= 0 => no entry bound
//   - nil Metrics     => store.NoopMetrics
//   - nil Clock       => time.Now()
type Options[K comparable, V any] struct {
	MaxAge     time.Duration
	MaxEntries int

	// OnEvict is called for every TTL or capacity eviction, under the store
	// lock; keep callbacks lightweight. Explicit Delete/Flush do not call it.
	OnEvict func(k K, v V, reason store.EvictReason)
	Metrics store.Metrics
	Clock   store.Clock
}

// Store is a bounded in-memory key/value table.
// All methods are safe for concurrent use by multiple goroutines.
type Store[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu      sync.Mutex
	m       map[K]*entry[K, V]
	head    link[K] // MRU
	tail    link[K] // LRU
	flights map[K]struct{}

	maxAge     int64 // nanoseconds, 0 = unbounded
	maxEntries int   // 0 = unbounded
	opt        Options[K, V]
}

// New constructs an empty Store.
func New[K comparable, V any](opt Options[K, V]) *Store[K, V] {
	if opt.Metrics == nil {
		opt.Metrics = store.NoopMetrics{}
	}
	s := &Store[K, V]{
		m:       make(map[K]*entry[K, V]),
		flights: make(map[K]struct{}),
		opt:     opt,
	}
	if opt.MaxAge > 0 {
		s.maxAge = int64(opt.MaxAge)
	}
	if opt.MaxEntries > 0 {
		s.maxEntries = opt.MaxEntries
	}
	return s
}

var _ store.Store[string, any] = (*Store[string, any])(nil)

var _ store.FlightTracker[string] = (*Store[string, any])(nil)

// Get returns the value for key and promotes it to the head.
// Expired entries are deleted and reported as a miss. A read never
// refreshes the entry's write time.
func (s *Store[K, V]) Get(_ context.Context, key K) (V, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	e, ok := s.m[key]
	if !ok {
		s.opt.Metrics.Miss()
		return zero, false, nil
	}
	if s.expiredLocked(e) {
		s.evictLocked(key, store.EvictTTL)
		s.opt.Metrics.Size(len(s.m))
		s.opt.Metrics.Miss()
		return zero, false, nil
	}

	s.moveToFront(key, e)
	s.opt.Metrics.Hit()
	return e.val, true, nil
}

// Set stores value under key as the most recently used entry.
// Absent values are ignored. When a bound is configured, expired tail
// entries are swept and, if the store is full, the LRU tail is evicted
// before the insert.
func (s *Store[K, V]) Set(_ context.Context, key K, value V) error {
	if store.IsAbsent(value) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxAge > 0 || s.maxEntries > 0 {
		s.pruneLocked()
	}
	s.prependLocked(key, value)
	s.opt.Metrics.Size(len(s.m))
	return nil
}

// Delete removes key if present.
func (s *Store[K, V]) Delete(_ context.Context, key K) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[key]; ok {
		s.removeLocked(key)
		s.opt.Metrics.Size(len(s.m))
	}
	return nil
}

// Keys returns all resident keys in map order (not recency order).
// Expired entries that have not been swept yet are included.
func (s *Store[K, V]) Keys(_ context.Context) ([]K, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]K, 0, len(s.m))
	for k := range s.m {
		keys = append(keys, k)
	}
	return keys, nil
}

// Flush drops every entry. In-flight markers are left alone; their owners
// release them when their fetch settles.
func (s *Store[K, V]) Flush(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m = make(map[K]*entry[K, V])
	s.head, s.tail = link[K]{}, link[K]{}
	s.opt.Metrics.Size(0)
	return nil
}

// Len returns the number of resident entries.
func (s *Store[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// Head returns the most recently used key.
func (s *Store[K, V]) Head() (K, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.head.key, s.head.ok
}

// Tail returns the least recently used key.
func (s *Store[K, V]) Tail() (K, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tail.key, s.tail.ok
}

// BeginFlight marks key as being revalidated. It returns false if a
// revalidation for key is already outstanding.
func (s *Store[K, V]) BeginFlight(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.flights[key]; busy {
		return false
	}
	s.flights[key] = struct{}{}
	return true
}

// EndFlight clears the in-flight marker for key.
func (s *Store[K, V]) EndFlight(key K) {
	s.mu.Lock()
	delete(s.flights, key)
	s.mu.Unlock()
}

// -------------------- internals (mu held) --------------------

func (s *Store[K, V]) now() int64 {
	if s.opt.Clock != nil {
		return s.opt.Clock.NowUnixNano()
	}
	return time.Now().UnixNano()
}

func (s *Store[K, V]) expiredLocked(e *entry[K, V]) bool {
	if s.maxAge <= 0 {
		return false
	}
	return s.now()-e.updated > s.maxAge
}

// pruneLocked sweeps expired entries starting at the tail and stopping at
// the first survivor, then evicts the tail if the entry bound is reached.
// The list is ordered by access, not by write time, so the sweep is
// bounded by the expired run at the tail rather than a full scan.
func (s *Store[K, V]) pruneLocked() {
	if s.maxAge > 0 {
		for cur := s.tail; cur.ok; {
			e := s.m[cur.key]
			if !s.expiredLocked(e) {
				break
			}
			prev := e.prev
			s.evictLocked(cur.key, store.EvictTTL)
			cur = prev
		}
	}
	if s.maxEntries > 0 && len(s.m) >= s.maxEntries && s.tail.ok {
		s.evictLocked(s.tail.key, store.EvictCapacity)
	}
}

// prependLocked writes key at the head. A key already at the head is
// updated in place; any other prior entry is replaced by a fresh one.
func (s *Store[K, V]) prependLocked(key K, value V) {
	now := s.now()
	if s.head.is(key) {
		e := s.m[key]
		e.val = value
		e.updated = now
		return
	}

	if _, ok := s.m[key]; ok {
		s.removeLocked(key)
	}
	e := &entry[K, V]{val: value, updated: now}
	s.m[key] = e
	s.linkFront(key, e)
}

// linkFront links an unlinked entry at the head in O(1).
func (s *Store[K, V]) linkFront(key K, e *entry[K, V]) {
	e.prev = link[K]{}
	e.next = s.head
	if s.head.ok {
		s.m[s.head.key].prev = to(key)
	}
	s.head = to(key)
	if !s.tail.ok {
		s.tail = to(key)
	}
}

// unlink splices e out of the list in O(1), fixing head/tail when e was an
// endpoint. The map entry is left in place.
func (s *Store[K, V]) unlink(e *entry[K, V]) {
	if e.prev.ok {
		s.m[e.prev.key].next = e.next
	} else {
		s.head = e.next
	}
	if e.next.ok {
		s.m[e.next.key].prev = e.prev
	} else {
		s.tail = e.prev
	}
	e.prev, e.next = link[K]{}, link[K]{}
}

// moveToFront promotes key to the head without touching its write time.
func (s *Store[K, V]) moveToFront(key K, e *entry[K, V]) {
	if s.head.is(key) {
		return
	}
	s.unlink(e)
	s.linkFront(key, e)
}

// removeLocked unlinks key and drops it from the table.
func (s *Store[K, V]) removeLocked(key K) {
	e := s.m[key]
	s.unlink(e)
	delete(s.m, key)
}

// evictLocked removes key, reports the eviction and calls OnEvict.
func (s *Store[K, V]) evictLocked(key K, reason store.EvictReason) {
	e := s.m[key]
	s.removeLocked(key)
	s.opt.Metrics.Evict(reason)
	if cb := s.opt.OnEvict; cb != nil {
		cb(key, e.val, reason)
	}
}
