package weakhash

import (
	"fmt"
	"iter"
)

// WeakWeakMap maps weakly held keys to weakly held values. An association
// disappears as soon as either referent is destroyed, even if the other one
// is still alive.
type WeakWeakMap[K, V any] struct {
	t *table[K, V]
}

// NewWeakWeakMap returns an empty map holding keys through keys and values
// through values.
func NewWeakWeakMap[K, V any](keys Liveness[K], values Liveness[V], hasher Hasher[K], cfg Config) (*WeakWeakMap[K, V], error) {
	if keys == nil || values == nil {
		return nil, fmt.Errorf("weak-weak map: %w", ErrNilLiveness)
	}
	t, err := newTable[K, V](keys, values, hasher, cfg)
	if err != nil {
		return nil, err
	}
	return &WeakWeakMap[K, V]{t: t}, nil
}

// Insert maps key to value, replacing an equal live key's association in
// place. It reports whether a new entry was created.
func (m *WeakWeakMap[K, V]) Insert(key K, value V) bool {
	return m.t.insert(key, value)
}

// InsertAll inserts every pair of seq and returns how many were new.
func (m *WeakWeakMap[K, V]) InsertAll(seq iter.Seq2[K, V]) int {
	return m.t.insertAll(seq)
}

// Get returns a strong handle to the value mapped to key, owned by the
// caller. It reports false when key is absent or either side expired.
func (m *WeakWeakMap[K, V]) Get(key K) (V, bool) {
	v, ok := m.t.get(key)
	if !ok {
		var zero V
		return zero, false
	}
	release(m.t.shape.keys, v.key)
	return v.value, true
}

// LoadOrStore returns a new strong handle to the value mapped to key if the
// association is live. Otherwise it maps key to value and returns value.
func (m *WeakWeakMap[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	v, loaded := m.t.loadOrStore(key, value)
	if loaded {
		release(m.t.shape.keys, v.key)
	}
	return v.value, loaded
}

// Contains reports whether key has a live association.
func (m *WeakWeakMap[K, V]) Contains(key K) bool {
	return m.t.contains(key)
}

// Count returns 1 if key has a live association and 0 otherwise.
func (m *WeakWeakMap[K, V]) Count(key K) int {
	if m.t.contains(key) {
		return 1
	}
	return 0
}

// Delete removes key's association and reports whether there was a live one.
func (m *WeakWeakMap[K, V]) Delete(key K) bool {
	return m.t.erase(key)
}

// All yields every live association. Both handles are only valid until the
// loop body returns.
func (m *WeakWeakMap[K, V]) All() iter.Seq2[K, V] {
	return m.t.all
}

// Keys yields every live key.
func (m *WeakWeakMap[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range m.t.all {
			if !yield(k) {
				return
			}
		}
	}
}

// Values yields every live value.
func (m *WeakWeakMap[K, V]) Values() iter.Seq[V] {
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
func (m *WeakWeakMap[K, V]) Clone() *WeakWeakMap[K, V] {
	return &WeakWeakMap[K, V]{t: m.t.clone()}
}

// Len returns the number of stored associations. Associations whose key or
// value expired since the last purge are still counted.
func (m *WeakWeakMap[K, V]) Len() int { return m.t.size }

// IsEmpty reports whether Len is zero.
func (m *WeakWeakMap[K, V]) IsEmpty() bool { return m.t.size == 0 }

// BucketCount returns the number of buckets.
func (m *WeakWeakMap[K, V]) BucketCount() int { return len(m.t.buckets) }

// LoadFactor returns Len divided by BucketCount.
func (m *WeakWeakMap[K, V]) LoadFactor() float64 { return m.t.loadFactor() }

// MaxLoadFactor returns the load factor above which inserts grow the map.
func (m *WeakWeakMap[K, V]) MaxLoadFactor() float64 { return m.t.maxLoad }

// SetMaxLoadFactor changes the growth threshold, growing the map if needed.
func (m *WeakWeakMap[K, V]) SetMaxLoadFactor(f float64) error { return m.t.setMaxLoadFactor(f) }

// Rehash rebuilds the map with at least n buckets, dropping expired
// associations.
func (m *WeakWeakMap[K, V]) Rehash(n int) error { return m.t.rehash(n) }

// Reserve grows the map so that n associations fit under the maximum load
// factor.
func (m *WeakWeakMap[K, V]) Reserve(n int) error { return m.t.reserve(n) }

// PurgeExpired removes every expired association and returns how many there
// were. Afterwards Len is exact.
func (m *WeakWeakMap[K, V]) PurgeExpired() int { return m.t.purgeExpired() }

// Clear removes every association, keeping the bucket count.
func (m *WeakWeakMap[K, V]) Clear() { m.t.clear() }
