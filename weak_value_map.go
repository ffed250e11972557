package weakhash

import (
	"fmt"
	"iter"
)

// WeakValueMap maps strongly held keys to weakly held values. An association
// disappears once its value's referent is destroyed.
//
// Values handed out by Get and LoadOrStore are strong handles owned by the
// caller; with Counted liveness they must be released.
type WeakValueMap[K, V any] struct {
	t *table[K, V]
}

// NewWeakValueMap returns an empty map whose values are held through values.
func NewWeakValueMap[K, V any](values Liveness[V], hasher Hasher[K], cfg Config) (*WeakValueMap[K, V], error) {
	if values == nil {
		return nil, fmt.Errorf("weak value map values: %w", ErrNilLiveness)
	}
	t, err := newTable[K, V](nil, values, hasher, cfg)
	if err != nil {
		return nil, err
	}
	return &WeakValueMap[K, V]{t: t}, nil
}

// Insert maps key to value, replacing the value of an equal key in place.
// It reports whether a new entry was created.
func (m *WeakValueMap[K, V]) Insert(key K, value V) bool {
	return m.t.insert(key, value)
}

// InsertAll inserts every pair of seq and returns how many were new.
func (m *WeakValueMap[K, V]) InsertAll(seq iter.Seq2[K, V]) int {
	return m.t.insertAll(seq)
}

// Get returns a strong handle to the value mapped to key. It reports false
// both when key was never inserted and when its value expired.
func (m *WeakValueMap[K, V]) Get(key K) (V, bool) {
	v, ok := m.t.get(key)
	return v.value, ok
}

// LoadOrStore returns a new strong handle to the value mapped to key if it is
// still live. Otherwise it maps key to value and returns value itself, whose
// ownership stays with the caller.
func (m *WeakValueMap[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	v, loaded := m.t.loadOrStore(key, value)
	return v.value, loaded
}

// Contains reports whether key has a live entry.
func (m *WeakValueMap[K, V]) Contains(key K) bool {
	return m.t.contains(key)
}

// Count returns 1 if key has a live entry and 0 otherwise.
func (m *WeakValueMap[K, V]) Count(key K) int {
	if m.t.contains(key) {
		return 1
	}
	return 0
}

// Delete removes key's entry and reports whether there was a live one.
func (m *WeakValueMap[K, V]) Delete(key K) bool {
	return m.t.erase(key)
}

// All yields every live association. The value handle is only valid until
// the loop body returns; modifying the map during the loop panics.
func (m *WeakValueMap[K, V]) All() iter.Seq2[K, V] {
	return m.t.all
}

// Keys yields the key of every live association.
func (m *WeakValueMap[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range m.t.all {
			if !yield(k) {
				return
			}
		}
	}
}

// Values yields every live value.
func (m *WeakValueMap[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range m.t.all {
			if !yield(v) {
				return
			}
		}
	}
}

// Submap reports whether every live key of m is a live key of other and
// equal reports true for the two values.
func (m *WeakValueMap[K, V]) Submap(other *WeakValueMap[K, V], equal func(a, b V) bool) bool {
	for k, v := range m.t.all {
		w, ok := other.t.get(k)
		if !ok {
			return false
		}
		same := func() bool {
			defer other.t.shape.unlock(w)
			return equal(v, w.value)
		}()
		if !same {
			return false
		}
	}
	return true
}

// Equal reports whether m and other have the same live keys mapped to values
// that equal considers the same.
func (m *WeakValueMap[K, V]) Equal(other *WeakValueMap[K, V], equal func(a, b V) bool) bool {
	return m.Submap(other, equal) && other.Submap(m, func(V, V) bool { return true })
}

// Clone returns a map with the same configuration holding the currently live
// associations.
func (m *WeakValueMap[K, V]) Clone() *WeakValueMap[K, V] {
	return &WeakValueMap[K, V]{t: m.t.clone()}
}

// Len returns the number of stored entries. Entries whose value expired since
// the last purge are still counted.
func (m *WeakValueMap[K, V]) Len() int { return m.t.size }

// IsEmpty reports whether Len is zero.
func (m *WeakValueMap[K, V]) IsEmpty() bool { return m.t.size == 0 }

// BucketCount returns the number of buckets.
func (m *WeakValueMap[K, V]) BucketCount() int { return len(m.t.buckets) }

// LoadFactor returns Len divided by BucketCount.
func (m *WeakValueMap[K, V]) LoadFactor() float64 { return m.t.loadFactor() }

// MaxLoadFactor returns the load factor above which inserts grow the map.
func (m *WeakValueMap[K, V]) MaxLoadFactor() float64 { return m.t.maxLoad }

// SetMaxLoadFactor changes the growth threshold, growing the map if needed.
func (m *WeakValueMap[K, V]) SetMaxLoadFactor(f float64) error { return m.t.setMaxLoadFactor(f) }

// Rehash rebuilds the map with at least n buckets, dropping expired entries.
func (m *WeakValueMap[K, V]) Rehash(n int) error { return m.t.rehash(n) }

// Reserve grows the map so that n entries fit under the maximum load factor.
func (m *WeakValueMap[K, V]) Reserve(n int) error { return m.t.reserve(n) }

// PurgeExpired removes every expired entry and returns how many there were.
func (m *WeakValueMap[K, V]) PurgeExpired() int { return m.t.purgeExpired() }

// Clear removes every entry, keeping the bucket count.
func (m *WeakValueMap[K, V]) Clear() { m.t.clear() }
