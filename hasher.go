package weakhash

import (
	"hash/maphash"

	"github.com/mcheviron/weakhash/rc"
)

// A Hasher defines a hash function and an equivalence relation over the
// strong form of keys.
//
// Hash must write a hash of its argument to the provided *maphash.Hash, and
// Equal must report whether two keys are equivalent. If Equal(x, y) is true
// then Hash must produce the same output for x and y.
//
// Tables only ever pass live strong keys to a Hasher.
type Hasher[K any] interface {
	Hash(h *maphash.Hash, key K)
	Equal(x, y K) bool
}

// Comparable hashes and compares keys with the language's own equality. For
// pointer keys this is identity.
func Comparable[K comparable]() Hasher[K] {
	return comparableHasher[K]{}
}

type comparableHasher[K comparable] struct{}

func (comparableHasher[K]) Hash(h *maphash.Hash, key K) {
	maphash.WriteComparable(h, key)
}

func (comparableHasher[K]) Equal(x, y K) bool {
	return x == y
}

// Pointee hashes and compares pointers by the values they point to, so a
// lookup may use a different object that is equal to the stored one.
func Pointee[T comparable]() Hasher[*T] {
	return pointeeHasher[T]{}
}

type pointeeHasher[T comparable] struct{}

func (pointeeHasher[T]) Hash(h *maphash.Hash, key *T) {
	maphash.WriteComparable(h, *key)
}

func (pointeeHasher[T]) Equal(x, y *T) bool {
	return x == y || *x == *y
}

// CountedValue hashes and compares rc handles by the values they share.
func CountedValue[T comparable]() Hasher[rc.Ptr[T]] {
	return countedHasher[T]{}
}

type countedHasher[T comparable] struct{}

func (countedHasher[T]) Hash(h *maphash.Hash, key rc.Ptr[T]) {
	maphash.WriteComparable(h, *key.Get())
}

func (countedHasher[T]) Equal(x, y rc.Ptr[T]) bool {
	return x == y || *x.Get() == *y.Get()
}

// HasherFuncs adapts a pair of functions to a Hasher.
type HasherFuncs[K any] struct {
	HashFunc  func(h *maphash.Hash, key K)
	EqualFunc func(x, y K) bool
}

// Hash calls f.HashFunc.
func (f HasherFuncs[K]) Hash(h *maphash.Hash, key K) {
	f.HashFunc(h, key)
}

// Equal calls f.EqualFunc.
func (f HasherFuncs[K]) Equal(x, y K) bool {
	return f.EqualFunc(x, y)
}
