package weakhash

import (
	"fmt"
	"iter"
)

// WeakKeyMap maps weakly held keys to strongly held values. An association
// disappears once its key's referent is destroyed.
//
// Keys passed in must be live strong handles. Values are held like any other
// Go value, so the map co-owns them until the entry is erased or purged.
type WeakKeyMap[K, V any] struct {
	t *table[K, V]
}

// NewWeakKeyMap returns an empty map whose keys are held through keys.
func NewWeakKeyMap[K, V any](keys Liveness[K], hasher Hasher[K], cfg Config) (*WeakKeyMap[K, V], error) {
	if keys == nil {
		return nil, fmt.Errorf("weak key map keys: %w", ErrNilLiveness)
	}
	t, err := newTable[K, V](keys, nil, hasher, cfg)
	if err != nil {
		return nil, err
	}
	return &WeakKeyMap[K, V]{t: t}, nil
}

// Insert maps key to value, replacing the value of an equal live key in place.
// It reports whether a new entry was created.
func (m *WeakKeyMap[K, V]) Insert(key K, value V) bool {
	return m.t.insert(key, value)
}

// InsertAll inserts every pair of seq and returns how many were new.
func (m *WeakKeyMap[K, V]) InsertAll(seq iter.Seq2[K, V]) int {
	return m.t.insertAll(seq)
}

// Get returns the value mapped to key. It reports false both when key was
// never inserted and when its entry expired.
func (m *WeakKeyMap[K, V]) Get(key K) (V, bool) {
	v, ok := m.t.get(key)
	if !ok {
		var zero V
		return zero, false
	}
	release(m.t.shape.keys, v.key)
	return v.value, true
}

// LoadOrStore returns the value mapped to key if there is a live entry.
// Otherwise it maps key to value and returns value.
func (m *WeakKeyMap[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	v, loaded := m.t.loadOrStore(key, value)
	if loaded {
		release(m.t.shape.keys, v.key)
	}
	return v.value, loaded
}

// Contains reports whether key has a live entry.
func (m *WeakKeyMap[K, V]) Contains(key K) bool {
	return m.t.contains(key)
}

// Count returns 1 if key has a live entry and 0 otherwise.
func (m *WeakKeyMap[K, V]) Count(key K) int {
	if m.t.contains(key) {
		return 1
	}
	return 0
}

// Delete removes key's entry and reports whether there was a live one.
func (m *WeakKeyMap[K, V]) Delete(key K) bool {
	return m.t.erase(key)
}

// All yields every live association. The key handle is only valid until the
// loop body returns; modifying the map during the loop panics.
func (m *WeakKeyMap[K, V]) All() iter.Seq2[K, V] {
	return m.t.all
}

// Keys yields every live key.
func (m *WeakKeyMap[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range m.t.all {
			if !yield(k) {
				return
			}
		}
	}
}

// Values yields the value of every live association.
func (m *WeakKeyMap[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range m.t.all {
			if !yield(v) {
				return
			}
		}
	}
}

// Clone returns a map with the same configuration holding the currently live
// associations.
func (m *WeakKeyMap[K, V]) Clone() *WeakKeyMap[K, V] {
	return &WeakKeyMap[K, V]{t: m.t.clone()}
}

// Len returns the number of stored entries. Entries whose key expired since
// the last purge are still counted.
func (m *WeakKeyMap[K, V]) Len() int { return m.t.size }

// IsEmpty reports whether Len is zero.
func (m *WeakKeyMap[K, V]) IsEmpty() bool { return m.t.size == 0 }

// BucketCount returns the number of buckets.
func (m *WeakKeyMap[K, V]) BucketCount() int { return len(m.t.buckets) }

// LoadFactor returns Len divided by BucketCount.
func (m *WeakKeyMap[K, V]) LoadFactor() float64 { return m.t.loadFactor() }

// MaxLoadFactor returns the load factor above which inserts grow the map.
func (m *WeakKeyMap[K, V]) MaxLoadFactor() float64 { return m.t.maxLoad }

// SetMaxLoadFactor changes the growth threshold, growing the map if needed.
func (m *WeakKeyMap[K, V]) SetMaxLoadFactor(f float64) error { return m.t.setMaxLoadFactor(f) }

// Rehash rebuilds the map with at least n buckets, dropping expired entries.
func (m *WeakKeyMap[K, V]) Rehash(n int) error { return m.t.rehash(n) }

// Reserve grows the map so that n entries fit under the maximum load factor.
func (m *WeakKeyMap[K, V]) Reserve(n int) error { return m.t.reserve(n) }

// PurgeExpired removes every expired entry and returns how many there were.
// Afterwards Len is exact.
func (m *WeakKeyMap[K, V]) PurgeExpired() int { return m.t.purgeExpired() }

// Clear removes every entry, keeping the bucket count.
func (m *WeakKeyMap[K, V]) Clear() { m.t.clear() }
