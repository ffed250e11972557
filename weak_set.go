package weakhash

import (
	"fmt"
	"iter"
)

// WeakSet is a set of weakly held elements. An element disappears once its
// referent is destroyed.
//
// Together with LoadOrStore it is a canonicalization table: the first live
// element equal to a probe is the canonical one.
type WeakSet[K any] struct {
	t *table[K, struct{}]
}

// NewWeakSet returns an empty set whose elements are held through elems.
func NewWeakSet[K any](elems Liveness[K], hasher Hasher[K], cfg Config) (*WeakSet[K], error) {
	if elems == nil {
		return nil, fmt.Errorf("weak set elements: %w", ErrNilLiveness)
	}
	t, err := newTable[K, struct{}](elems, nil, hasher, cfg)
	if err != nil {
		return nil, err
	}
	return &WeakSet[K]{t: t}, nil
}

// Insert adds elem, replacing an equal live element. It reports whether the
// set grew.
func (s *WeakSet[K]) Insert(elem K) bool {
	return s.t.insert(elem, struct{}{})
}

// InsertAll inserts every element of seq and returns how many were new.
func (s *WeakSet[K]) InsertAll(seq iter.Seq[K]) int {
	inserted := 0
	for k := range seq {
		if s.Insert(k) {
			inserted++
		}
	}
	return inserted
}

// Find returns a strong handle to the live element equal to elem, owned by
// the caller.
func (s *WeakSet[K]) Find(elem K) (K, bool) {
	v, ok := s.t.get(elem)
	return v.key, ok
}

// LoadOrStore returns a new strong handle to the live element equal to elem
// if there is one. Otherwise it adds elem and returns it.
func (s *WeakSet[K]) LoadOrStore(elem K) (actual K, loaded bool) {
	v, loaded := s.t.loadOrStore(elem, struct{}{})
	return v.key, loaded
}

// Contains reports whether a live element equals elem.
func (s *WeakSet[K]) Contains(elem K) bool {
	return s.t.contains(elem)
}

// Delete removes the element equal to elem and reports whether there was a
// live one.
func (s *WeakSet[K]) Delete(elem K) bool {
	return s.t.erase(elem)
}

// All yields every live element. Handles are only valid until the loop body
// returns; modifying the set during the loop panics.
func (s *WeakSet[K]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range s.t.all {
			if !yield(k) {
				return
			}
		}
	}
}

// Clone returns a set with the same configuration holding the currently live
// elements.
func (s *WeakSet[K]) Clone() *WeakSet[K] {
	return &WeakSet[K]{t: s.t.clone()}
}

// Len returns the number of stored elements, including expired ones that
// were not purged yet.
func (s *WeakSet[K]) Len() int { return s.t.size }

// IsEmpty reports whether Len is zero.
func (s *WeakSet[K]) IsEmpty() bool { return s.t.size == 0 }

// BucketCount returns the number of buckets.
func (s *WeakSet[K]) BucketCount() int { return len(s.t.buckets) }

// LoadFactor returns Len divided by BucketCount.
func (s *WeakSet[K]) LoadFactor() float64 { return s.t.loadFactor() }

// MaxLoadFactor returns the load factor above which inserts grow the set.
func (s *WeakSet[K]) MaxLoadFactor() float64 { return s.t.maxLoad }

// SetMaxLoadFactor changes the growth threshold, growing the set if needed.
func (s *WeakSet[K]) SetMaxLoadFactor(f float64) error { return s.t.setMaxLoadFactor(f) }

// Rehash rebuilds the set with at least n buckets, dropping expired elements.
func (s *WeakSet[K]) Rehash(n int) error { return s.t.rehash(n) }

// Reserve grows the set so that n elements fit under the maximum load factor.
func (s *WeakSet[K]) Reserve(n int) error { return s.t.reserve(n) }

// PurgeExpired removes every expired element and returns how many there were.
func (s *WeakSet[K]) PurgeExpired() int { return s.t.purgeExpired() }

// Clear removes every element, keeping the bucket count.
func (s *WeakSet[K]) Clear() { s.t.clear() }
