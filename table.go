package weakhash

import (
	"fmt"
	"hash/maphash"
	"iter"

	"go.uber.org/zap"
)

// table is the engine behind every facade: a chained hash table whose entries
// may hold weak fields.
//
// size counts stored entries, which includes tombstones that were not purged
// yet, so it over-approximates the live count. Every walk over a chain unlinks
// the tombstones it meets; PurgeExpired and rehash make size exact.
//
// A table is not safe for concurrent use.
type table[K, V any] struct {
	cfg     Config
	shape   shape[K, V]
	hasher  Hasher[K]
	seed    maphash.Seed
	buckets []chain[K, V]
	mask    uint64
	size    int
	maxLoad float64
	free    freeList[K, V]

	// iterators counts running iterations. While non-zero, writes panic and
	// only the outermost iterator may unlink tombstones.
	iterators int

	logger  *zap.Logger
	metrics *tableMetrics
}

func newTable[K, V any](keys Liveness[K], values Liveness[V], hasher Hasher[K], config Config) (*table[K, V], error) {
	if hasher == nil {
		return nil, ErrNilHasher
	}
	cfg, err := config.Build()
	if err != nil {
		return nil, err
	}
	metrics, err := newTableMetrics(cfg.Meter, cfg.Name)
	if err != nil {
		return nil, err
	}

	t := &table[K, V]{
		cfg:     cfg,
		shape:   shape[K, V]{keys: keys, values: values},
		hasher:  hasher,
		seed:    maphash.MakeSeed(),
		maxLoad: cfg.MaxLoadFactor,
		free:    newFreeList[K, V](cfg.FreeListSize),
		logger:  cfg.Logger.With(zap.String("table", cfg.Name)),
		metrics: metrics,
	}
	t.setBuckets(cfg.BucketCount)
	return t, nil
}

func (t *table[K, V]) setBuckets(n int) {
	t.buckets = make([]chain[K, V], n)
	t.mask = uint64(n - 1)
}

func (t *table[K, V]) hashOf(key K) uint64 {
	var h maphash.Hash
	h.SetSeed(t.seed)
	t.hasher.Hash(&h, key)
	return h.Sum64()
}

func (t *table[K, V]) bucketFor(hash uint64) *chain[K, V] {
	return &t.buckets[hash&t.mask]
}

func (t *table[K, V]) checkWrite() {
	if t.iterators > 0 {
		panic(ErrMutatedDuringIteration)
	}
}

func (t *table[K, V]) unlink(c *chain[K, V], n *node[K, V]) {
	c.remove(n)
	t.free.put(n)
	t.size--
}

// matches locks n's key just long enough to compare it with key.
func (t *table[K, V]) matches(n *node[K, V], key K, hash uint64) bool {
	if n.entry.hash != hash {
		return false
	}
	k, ok := t.shape.lockKey(&n.entry)
	if !ok {
		return false
	}
	eq := t.hasher.Equal(k, key)
	release(t.shape.keys, k)
	return eq
}

// lookup walks the chain key hashes to and returns the first live node whose
// key equals key. Tombstones passed on the way are unlinked unless an
// iterator is running.
func (t *table[K, V]) lookup(key K) (*node[K, V], uint64) {
	hash := t.hashOf(key)
	c := t.bucketFor(hash)
	purge := t.iterators == 0

	purged := 0
	var found *node[K, V]
	for n := c.head; n != nil; {
		next := n.next
		if n.entry.expired() {
			if purge {
				t.unlink(c, n)
				purged++
			}
		} else if t.matches(n, key, hash) {
			found = n
			break
		}
		n = next
	}
	t.metrics.recordPurged(purgeLazy, purged)
	return found, hash
}

// get returns the locked view of key's entry. The caller owns the view.
func (t *table[K, V]) get(key K) (view[K, V], bool) {
	n, _ := t.lookup(key)
	if n == nil {
		return view[K, V]{}, false
	}
	return t.shape.lock(&n.entry)
}

func (t *table[K, V]) contains(key K) bool {
	n, _ := t.lookup(key)
	return n != nil
}

// insert stores key and value. If a live entry with an equal key exists, its
// node is reused and both fields are replaced; insert then reports false.
func (t *table[K, V]) insert(key K, value V) bool {
	t.checkWrite()

	n, hash := t.lookup(key)
	if n != nil {
		n.entry = t.shape.newEntry(key, value, hash)
		t.metrics.recordInsert(true)
		return false
	}

	t.add(key, value, hash)
	return true
}

func (t *table[K, V]) add(key K, value V, hash uint64) {
	n := t.free.get()
	n.entry = t.shape.newEntry(key, value, hash)
	t.bucketFor(hash).pushBack(n)
	t.size++
	t.metrics.recordInsert(false)
	t.maybeGrow()
}

// loadOrStore returns the live entry for key if there is one, locked and owned
// by the caller. Otherwise it stores key and value and returns them as given.
func (t *table[K, V]) loadOrStore(key K, value V) (view[K, V], bool) {
	t.checkWrite()

	n, hash := t.lookup(key)
	if n != nil {
		if v, ok := t.shape.lock(&n.entry); ok {
			return v, true
		}
		// Expired between the walk and the lock.
		n.entry = t.shape.newEntry(key, value, hash)
		t.metrics.recordInsert(true)
		return view[K, V]{key: key, value: value}, false
	}

	t.add(key, value, hash)
	return view[K, V]{key: key, value: value}, false
}

func (t *table[K, V]) erase(key K) bool {
	t.checkWrite()

	n, hash := t.lookup(key)
	if n == nil {
		return false
	}
	t.unlink(t.bucketFor(hash), n)
	t.metrics.recordErase()
	return true
}

func (t *table[K, V]) overloaded(size int) bool {
	return float64(size) > t.maxLoad*float64(len(t.buckets))
}

// maybeGrow restores the load factor bound after an insert. Tombstones are
// swept first; the table then grows unless the sweep left it comfortably
// below the bound, which keeps sweeps amortized across inserts.
func (t *table[K, V]) maybeGrow() {
	if !t.overloaded(t.size) {
		return
	}
	t.sweep(purgeSweep)
	if t.overloaded(t.size * 4 / 3) {
		t.resize(max(2*len(t.buckets), minBuckets(t.size, t.maxLoad)))
	}
}

// sweep unlinks every tombstone and returns how many there were.
func (t *table[K, V]) sweep(reason string) int {
	removed := 0
	for i := range t.buckets {
		c := &t.buckets[i]
		for n := c.head; n != nil; {
			next := n.next
			if n.entry.expired() {
				t.unlink(c, n)
				removed++
			}
			n = next
		}
	}
	t.metrics.recordPurged(reason, removed)
	t.logger.Debug("purged expired entries",
		zap.String("reason", reason),
		zap.Int("removed", removed),
		zap.Int("size", t.size),
		zap.Int("buckets", len(t.buckets)))
	return removed
}

func (t *table[K, V]) purgeExpired() int {
	t.checkWrite()
	return t.sweep(purgeSweep)
}

// resize moves every surviving node into a new bucket array of n buckets,
// placing it by its cached hash. Tombstones are dropped on the way.
func (t *table[K, V]) resize(n int) {
	old := t.buckets
	t.setBuckets(n)

	dropped := 0
	for i := range old {
		for nd := old[i].head; nd != nil; {
			next := nd.next
			if nd.entry.expired() {
				t.free.put(nd)
				t.size--
				dropped++
			} else {
				t.bucketFor(nd.entry.hash).pushBack(nd)
			}
			nd = next
		}
	}

	t.metrics.recordRehash()
	t.metrics.recordPurged(purgeRehash, dropped)
	t.logger.Debug("rehashed",
		zap.Int("from", len(old)),
		zap.Int("to", n),
		zap.Int("dropped", dropped),
		zap.Int("size", t.size))
}

// rehash rebuilds the table with at least n buckets, and at least as many as
// the live entries need under the maximum load factor.
func (t *table[K, V]) rehash(n int) error {
	if n <= 0 || n > maxBucketCount {
		return fmt.Errorf("rehash to %d buckets: %w", n, ErrInvalidBucketCount)
	}
	t.checkWrite()

	t.sweep(purgeRehash)
	t.resize(max(roundUpPow2(n), minBuckets(t.size, t.maxLoad)))
	return nil
}

// reserve grows the table so that n entries fit without exceeding the maximum
// load factor. It never shrinks the table.
func (t *table[K, V]) reserve(n int) error {
	if n < 0 || float64(n)/t.maxLoad > maxBucketCount {
		return fmt.Errorf("reserve %d entries: %w", n, ErrInvalidCapacity)
	}
	t.checkWrite()

	if need := minBuckets(n, t.maxLoad); need > len(t.buckets) {
		t.resize(need)
	}
	return nil
}

func (t *table[K, V]) setMaxLoadFactor(f float64) error {
	if err := validLoadFactor(f); err != nil {
		return err
	}
	t.checkWrite()

	t.maxLoad = f
	t.maybeGrow()
	return nil
}

func (t *table[K, V]) clear() {
	t.checkWrite()

	for i := range t.buckets {
		c := &t.buckets[i]
		for n := c.head; n != nil; {
			next := n.next
			t.free.put(n)
			n = next
		}
		*c = chain[K, V]{}
	}
	t.size = 0
}

func (t *table[K, V]) loadFactor() float64 {
	return float64(t.size) / float64(len(t.buckets))
}

// all yields the strong form of every live entry, buckets in index order and
// each chain in insertion order. Handles are released when yield returns or
// panics.
func (t *table[K, V]) all(yield func(K, V) bool) {
	t.iterators++
	purged := 0
	defer func() {
		t.iterators--
		t.metrics.recordPurged(purgeIterate, purged)
	}()

	for i := range t.buckets {
		c := &t.buckets[i]
		for n := c.head; n != nil; {
			next := n.next
			v, ok := t.shape.lock(&n.entry)
			if !ok {
				if t.iterators == 1 {
					t.unlink(c, n)
					purged++
				}
				n = next
				continue
			}
			more := func() bool {
				defer t.shape.unlock(v)
				return yield(v.key, v.value)
			}()
			if !more {
				return
			}
			n = next
		}
	}
}

// clone returns a table with the same configuration holding the entries of t
// that are live now.
func (t *table[K, V]) clone() *table[K, V] {
	c := &table[K, V]{
		cfg:     t.cfg,
		shape:   t.shape,
		hasher:  t.hasher,
		seed:    maphash.MakeSeed(),
		maxLoad: t.maxLoad,
		free:    newFreeList[K, V](t.cfg.FreeListSize),
		logger:  t.logger,
		metrics: t.metrics,
	}
	c.setBuckets(max(t.cfg.BucketCount, minBuckets(t.size, t.maxLoad)))
	for k, v := range t.all {
		c.insert(k, v)
	}
	return c
}

func (t *table[K, V]) insertAll(seq iter.Seq2[K, V]) int {
	inserted := 0
	for k, v := range seq {
		if t.insert(k, v) {
			inserted++
		}
	}
	return inserted
}
