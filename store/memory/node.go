package memory

// link is a key-based list pointer; ok == false means "no neighbor".
type link[K comparable] struct {
	key K
	ok  bool
}

func to[K comparable](k K) link[K] { return link[K]{key: k, ok: true} }

func (l link[K]) is(k K) bool { return l.ok && l.key == k }

// entry is one resident item. Links name neighbor keys rather than
// pointing at neighbor entries, so the map is the only owner of entries.
type entry[K comparable, V any] struct {
	val V

	// Write time in UnixNano. Reads never touch it.
	updated int64

	// next points toward the tail (LRU), prev toward the head (MRU).
	next link[K]
	prev link[K]
}
