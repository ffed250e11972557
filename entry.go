package weakhash

// field holds one component of an entry, either strongly or through a Ref.
type field[S any] struct {
	strong S
	ref    Ref[S]
}

func makeField[S any](live Liveness[S], strong S) field[S] {
	if live == nil {
		return field[S]{strong: strong}
	}
	return field[S]{ref: live.Downgrade(strong)}
}

func (f *field[S]) expired() bool {
	return f.ref != nil && f.ref.Expired()
}

// lock returns the strong form of f. A weak field yields a handle that must
// be given back with release.
func (f *field[S]) lock() (S, bool) {
	if f.ref == nil {
		return f.strong, true
	}
	return f.ref.TryLock()
}

func release[S any](live Liveness[S], strong S) {
	if live != nil {
		live.Release(strong)
	}
}

// entry is the single stored element shape behind every table.
//
// Which of key and value is weak depends only on the Liveness each was built
// with: weak key (map), weak value (map), both (map), or a weak key with an
// empty value (set). hash is computed from the live key when the entry is
// created and is never recomputed.
type entry[K, V any] struct {
	key   field[K]
	value field[V]
	hash  uint64
}

// expired reports whether any weak field has expired. An expired entry is a
// tombstone: it matches nothing and is never yielded.
func (e *entry[K, V]) expired() bool {
	return e.key.expired() || e.value.expired()
}

// view is the strong form of an entry, produced by locking every weak field.
type view[K, V any] struct {
	key   K
	value V
}

type shape[K, V any] struct {
	keys   Liveness[K]
	values Liveness[V]
}

func (s shape[K, V]) newEntry(key K, value V, hash uint64) entry[K, V] {
	return entry[K, V]{
		key:   makeField(s.keys, key),
		value: makeField(s.values, value),
		hash:  hash,
	}
}

// lock returns the strong form of e, or false if any weak field expired. On
// success the caller owns the view and must pass it to unlock.
func (s shape[K, V]) lock(e *entry[K, V]) (view[K, V], bool) {
	k, ok := e.key.lock()
	if !ok {
		return view[K, V]{}, false
	}
	v, ok := e.value.lock()
	if !ok {
		release(s.keys, k)
		return view[K, V]{}, false
	}
	return view[K, V]{key: k, value: v}, true
}

func (s shape[K, V]) unlock(v view[K, V]) {
	release(s.keys, v.key)
	release(s.values, v.value)
}

// lockKey locks only the key, for comparisons. A weak-weak entry whose value
// expired still reports false.
func (s shape[K, V]) lockKey(e *entry[K, V]) (K, bool) {
	if e.value.expired() {
		var zero K
		return zero, false
	}
	return e.key.lock()
}
