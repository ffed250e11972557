package weakhash

import (
	"weak"

	"github.com/mcheviron/weakhash/rc"
)

// Ref is a non-owning reference to a value whose strong handles have type S.
type Ref[S any] interface {
	// TryLock returns a strong handle that keeps the referent alive until it
	// is passed to the owning Liveness's Release, or false once the referent
	// was destroyed. It never mutates any table.
	TryLock() (S, bool)

	// Expired reports whether the referent was destroyed. Once it returns
	// true it never returns false again.
	Expired() bool
}

// Liveness maps a strong handle type to its non-owning reference type.
//
// Tables call Downgrade when an entry is created and Release on every handle
// they obtained from Ref.TryLock for their own use. Implementations must be
// stateless.
type Liveness[S any] interface {
	Downgrade(strong S) Ref[S]
	Release(strong S)
}

// Pointers returns the liveness trait of garbage-collected pointers. A
// referent expires once the collector reclaims it, which happens at some point
// after the last ordinary pointer to it is dropped.
func Pointers[T any]() Liveness[*T] {
	return pointers[T]{}
}

type pointers[T any] struct{}

func (pointers[T]) Downgrade(strong *T) Ref[*T] {
	return pointerRef[T]{p: weak.Make(strong)}
}

func (pointers[T]) Release(*T) {}

type pointerRef[T any] struct {
	p weak.Pointer[T]
}

func (r pointerRef[T]) TryLock() (*T, bool) {
	v := r.p.Value()
	return v, v != nil
}

func (r pointerRef[T]) Expired() bool {
	return r.p.Value() == nil
}

// Counted returns the liveness trait of rc handles. A referent expires as soon
// as its last rc.Ptr is released.
func Counted[T any]() Liveness[rc.Ptr[T]] {
	return counted[T]{}
}

type counted[T any] struct{}

func (counted[T]) Downgrade(strong rc.Ptr[T]) Ref[rc.Ptr[T]] {
	return countedRef[T]{w: strong.Downgrade()}
}

func (counted[T]) Release(strong rc.Ptr[T]) {
	strong.Release()
}

type countedRef[T any] struct {
	w rc.Weak[T]
}

func (r countedRef[T]) TryLock() (rc.Ptr[T], bool) {
	return r.w.Upgrade()
}

func (r countedRef[T]) Expired() bool {
	return r.w.Expired()
}
