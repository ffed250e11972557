package weakhash_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcheviron/weakhash"
	"github.com/mcheviron/weakhash/rc"
)

func newWeakWeakMap(t *testing.T) *weakhash.WeakWeakMap[rc.Ptr[int], rc.Ptr[string]] {
	t.Helper()
	m, err := weakhash.NewWeakWeakMap[rc.Ptr[int], rc.Ptr[string]](
		weakhash.Counted[int](), weakhash.Counted[string](), weakhash.CountedValue[int](), weakhash.NewConfig())
	require.NoError(t, err)
	return m
}

func TestWeakWeakMapValueExpiryHidesLiveKey(t *testing.T) {
	m := newWeakWeakMap(t)
	k, v := rc.New(1), rc.New("one")
	require.True(t, m.Insert(k, v))

	got, ok := m.Get(rc.New(1))
	require.True(t, ok)
	assert.Equal(t, "one", *got.Get())
	got.Release()
	assert.EqualValues(t, 1, k.Count())

	v.Release()
	_, ok = m.Get(rc.New(1))
	assert.False(t, ok)
	assert.False(t, m.Contains(k))
	assert.Equal(t, 0, m.Len())
	assert.EqualValues(t, 1, k.Count())
}

func TestWeakWeakMapKeyExpiry(t *testing.T) {
	m := newWeakWeakMap(t)
	k, v := rc.New(2), rc.New("two")
	m.Insert(k, v)

	k.Release()
	assert.Equal(t, 0, m.Count(rc.New(2)))
	assert.EqualValues(t, 1, v.Count())
}

func TestWeakWeakMapReinsertAfterValueExpiry(t *testing.T) {
	m := newWeakWeakMap(t)
	k := rc.New(3)
	v := rc.New("three")
	m.Insert(k, v)
	v.Release()

	// The tombstone is not a match, so the key gets a new entry.
	fresh := rc.New("drei")
	assert.True(t, m.Insert(k, fresh))
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 0, m.PurgeExpired())

	got, loaded := m.LoadOrStore(rc.New(3), rc.New("ignored"))
	require.True(t, loaded)
	assert.Equal(t, "drei", *got.Get())
	got.Release()
}

func TestWeakWeakMapIteration(t *testing.T) {
	m := newWeakWeakMap(t)
	keys := []rc.Ptr[int]{rc.New(1), rc.New(2), rc.New(3), rc.New(4)}
	values := []rc.Ptr[string]{rc.New("a"), rc.New("b"), rc.New("c"), rc.New("d")}
	for i := range keys {
		m.Insert(keys[i], values[i])
	}
	keys[0].Release()
	values[2].Release()

	got := map[int]string{}
	for k, v := range m.All() {
		got[*k.Get()] = *v.Get()
	}
	assert.Equal(t, map[int]string{2: "b", 4: "d"}, got)
	assert.Equal(t, 2, m.Len())

	n := 0
	for range m.Keys() {
		n++
	}
	for range m.Values() {
		n++
	}
	assert.Equal(t, 4, n)

	c := m.Clone()
	assert.Equal(t, 2, c.Len())
	keys[1].Release()
	assert.False(t, c.Contains(rc.New(2)))
}

func TestWeakWeakMapDelete(t *testing.T) {
	m := newWeakWeakMap(t)
	k, v := rc.New(5), rc.New("five")
	m.Insert(k, v)

	assert.True(t, m.Delete(rc.New(5)))
	assert.True(t, m.IsEmpty())
	assert.EqualValues(t, 1, k.Count())
	assert.EqualValues(t, 1, v.Count())
}

func TestWeakWeakMapNilLiveness(t *testing.T) {
	_, err := weakhash.NewWeakWeakMap[rc.Ptr[int], rc.Ptr[string]](
		weakhash.Counted[int](), nil, weakhash.CountedValue[int](), weakhash.NewConfig())
	assert.ErrorIs(t, err, weakhash.ErrNilLiveness)
}

func TestWeakWeakMapSizeManagement(t *testing.T) {
	m := newWeakWeakMap(t)
	keys := make([]rc.Ptr[int], 20)
	values := make([]rc.Ptr[string], 20)
	for i := range keys {
		keys[i], values[i] = rc.New(i), rc.New("v")
		m.Insert(keys[i], values[i])
	}
	values[0].Release()
	keys[1].Release()

	assert.Equal(t, 20, m.Len())
	assert.Equal(t, 2, m.PurgeExpired())
	assert.Equal(t, 18, m.Len())

	require.NoError(t, m.Reserve(100))
	assert.Equal(t, 128, m.BucketCount())
	require.NoError(t, m.Rehash(32))
	assert.Equal(t, 32, m.BucketCount())
	assert.ErrorIs(t, m.Reserve(-1), weakhash.ErrInvalidCapacity)

	require.NoError(t, m.SetMaxLoadFactor(0.5))
	assert.Equal(t, 0.5, m.MaxLoadFactor())
	assert.LessOrEqual(t, m.LoadFactor(), 0.5)

	m.Clear()
	assert.True(t, m.IsEmpty())
}
