// Package rc provides reference-counted handles with non-owning companions.
//
// A Ptr co-owns its value: the value is destroyed when the last Ptr sharing it
// is released. A Weak observes the same value without keeping it alive and can
// be upgraded to a fresh Ptr for as long as at least one Ptr remains.
//
// Destruction is deterministic, which makes rc handles the natural weak
// reference type for tables that must observe an owner dropping a value at a
// precise point rather than whenever the garbage collector runs.
//
// Counts are maintained atomically, so a Weak may be upgraded or tested on one
// goroutine while the owner releases the value on another.
package rc

import "sync/atomic"

type box[T any] struct {
	value  T
	strong atomic.Int64
	drop   func(*T)
}

// Ptr is a strong, counted handle. The zero Ptr holds nothing.
//
// Ptr values are copied freely; the count tracks ownership, not copies. Every
// Ptr obtained from New, Clone or Weak.Upgrade must be paired with exactly one
// Release.
type Ptr[T any] struct {
	b *box[T]
}

// New returns the first owner of value.
func New[T any](value T) Ptr[T] {
	return NewWithDrop(value, nil)
}

// NewWithDrop is like New, but calls drop once when the last owner releases
// the value.
func NewWithDrop[T any](value T, drop func(*T)) Ptr[T] {
	b := &box[T]{value: value, drop: drop}
	b.strong.Store(1)
	return Ptr[T]{b: b}
}

// Get returns a pointer to the shared value, or nil for the zero Ptr.
func (p Ptr[T]) Get() *T {
	if p.b == nil {
		return nil
	}
	return &p.b.value
}

// IsNil reports whether p is the zero Ptr.
func (p Ptr[T]) IsNil() bool {
	return p.b == nil
}

// Count returns the current number of owners.
func (p Ptr[T]) Count() int64 {
	if p.b == nil {
		return 0
	}
	return p.b.strong.Load()
}

// Clone registers another owner and returns its handle.
//
// Cloning a value whose count already reached zero panics.
func (p Ptr[T]) Clone() Ptr[T] {
	if p.b == nil {
		return p
	}
	if _, ok := p.Downgrade().Upgrade(); !ok {
		panic("rc: clone of released value")
	}
	return p
}

// Release gives up one ownership. The value is destroyed when the count
// reaches zero.
func (p Ptr[T]) Release() {
	if p.b == nil {
		return
	}
	n := p.b.strong.Add(-1)
	if n < 0 {
		panic("rc: release of released value")
	}
	if n == 0 && p.b.drop != nil {
		p.b.drop(&p.b.value)
	}
}

// Downgrade returns a non-owning reference to p's value.
func (p Ptr[T]) Downgrade() Weak[T] {
	return Weak[T]{b: p.b}
}

// Weak is a non-owning handle. The zero Weak is always expired.
type Weak[T any] struct {
	b *box[T]
}

// Upgrade returns a new owner of the value, or false once it was destroyed.
// A destroyed value is never resurrected.
func (w Weak[T]) Upgrade() (Ptr[T], bool) {
	if w.b == nil {
		return Ptr[T]{}, false
	}
	for {
		n := w.b.strong.Load()
		if n <= 0 {
			return Ptr[T]{}, false
		}
		if w.b.strong.CompareAndSwap(n, n+1) {
			return Ptr[T]{b: w.b}, true
		}
	}
}

// Expired reports whether the value was destroyed. Once true, it stays true.
func (w Weak[T]) Expired() bool {
	return w.b == nil || w.b.strong.Load() <= 0
}
