// Package inflight tracks keys that have an outstanding fetch.
package inflight

import "sync"

// Set is a keyed in-flight marker for stores that do not track flights
// themselves. The zero value is ready to use.
//
// Concurrency notes:
//   - BeginFlight checks and inserts under one lock hold, so two callers can never
//     both observe "not in flight" for the same key.
//   - Unlike a singleflight group, followers do not wait for the leader:
//     BeginFlight simply reports false and the caller skips its own fetch.
type Set[K comparable] struct {
	mu sync.Mutex
	m  map[K]struct{}
}

// BeginFlight marks key as in flight. It returns false if key was already
// marked; the caller must not fetch in that case.
func (s *Set[K]) BeginFlight(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.m == nil {
		s.m = make(map[K]struct{})
	}
	if _, ok := s.m[key]; ok {
		return false
	}
	s.m[key] = struct{}{}
	return true
}

// EndFlight removes the marker for key. Ending a key that is not in flight
// is a no-op.
func (s *Set[K]) EndFlight(key K) {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
}

// Len returns the number of keys currently in flight.
func (s *Set[K]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
