package weakhash_test

import (
	"hash/maphash"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcheviron/weakhash"
	"github.com/mcheviron/weakhash/rc"
)

type payload struct {
	id   int
	next *payload
}

// collectUntil runs the collector until done reports true or it gives up.
func collectUntil(done func() bool) bool {
	for i := 0; i < 20; i++ {
		runtime.GC()
		if done() {
			return true
		}
	}
	return false
}

func TestPointersRef(t *testing.T) {
	live := weakhash.Pointers[payload]()
	p := &payload{id: 1}
	ref := live.Downgrade(p)

	got, ok := ref.TryLock()
	require.True(t, ok)
	assert.Same(t, p, got)
	assert.False(t, ref.Expired())
	live.Release(got)
	runtime.KeepAlive(p)

	p, got = nil, nil
	assert.True(t, collectUntil(ref.Expired))
	_, ok = ref.TryLock()
	assert.False(t, ok)
}

func TestCountedRef(t *testing.T) {
	live := weakhash.Counted[int]()
	p := rc.New(5)
	ref := live.Downgrade(p)

	got, ok := ref.TryLock()
	require.True(t, ok)
	assert.EqualValues(t, 2, p.Count())
	live.Release(got)
	assert.EqualValues(t, 1, p.Count())

	p.Release()
	assert.True(t, ref.Expired())
	_, ok = ref.TryLock()
	assert.False(t, ok)
}

func TestWeakKeyMapCollectedKeys(t *testing.T) {
	m, err := weakhash.NewWeakKeyMap[*payload, string](weakhash.Pointers[payload](), weakhash.Pointee[payload](), weakhash.NewConfig())
	require.NoError(t, err)

	kept := &payload{id: 1}
	m.Insert(kept, "kept")
	m.Insert(&payload{id: 2}, "dropped")
	assert.True(t, m.Contains(&payload{id: 1}))

	assert.True(t, collectUntil(func() bool { return !m.Contains(&payload{id: 2}) }))
	v, ok := m.Get(&payload{id: 1})
	require.True(t, ok)
	assert.Equal(t, "kept", v)
	runtime.KeepAlive(kept)
}

func TestComparableHasherUsesIdentity(t *testing.T) {
	h := weakhash.Comparable[*payload]()
	a, b := &payload{id: 1}, &payload{id: 1}
	assert.True(t, h.Equal(a, a))
	assert.False(t, h.Equal(a, b))
}

func TestPointeeHasher(t *testing.T) {
	h := weakhash.Pointee[payload]()
	a, b := &payload{id: 1}, &payload{id: 1}
	assert.True(t, h.Equal(a, b))
	assert.False(t, h.Equal(a, &payload{id: 2}))

	seed := maphash.MakeSeed()
	sum := func(p *payload) uint64 {
		var mh maphash.Hash
		mh.SetSeed(seed)
		h.Hash(&mh, p)
		return mh.Sum64()
	}
	assert.Equal(t, sum(a), sum(b))
}

func TestHasherFuncs(t *testing.T) {
	fold := weakhash.HasherFuncs[string]{
		HashFunc: func(h *maphash.Hash, key string) {
			h.WriteString(strings.ToLower(key))
		},
		EqualFunc: strings.EqualFold,
	}
	m, err := weakhash.NewWeakValueMap[string, rc.Ptr[int]](weakhash.Counted[int](), fold, weakhash.NewConfig())
	require.NoError(t, err)

	v := rc.New(1)
	m.Insert("Key", v)
	got, ok := m.Get("KEY")
	require.True(t, ok)
	assert.Equal(t, 1, *got.Get())
	got.Release()
}
