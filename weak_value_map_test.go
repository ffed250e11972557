package weakhash_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcheviron/weakhash"
	"github.com/mcheviron/weakhash/rc"
)

func newValueMap(t *testing.T) *weakhash.WeakValueMap[string, rc.Ptr[int]] {
	t.Helper()
	m, err := weakhash.NewWeakValueMap[string, rc.Ptr[int]](weakhash.Counted[int](), weakhash.Comparable[string](), weakhash.NewConfig())
	require.NoError(t, err)
	return m
}

func sameInt(a, b rc.Ptr[int]) bool { return *a.Get() == *b.Get() }

func TestWeakValueMapGetHandsOutHandles(t *testing.T) {
	m := newValueMap(t)
	v := rc.New(10)
	require.True(t, m.Insert("ten", v))
	assert.EqualValues(t, 1, v.Count())

	got, ok := m.Get("ten")
	require.True(t, ok)
	assert.Same(t, v.Get(), got.Get())
	assert.EqualValues(t, 2, v.Count())
	got.Release()

	v.Release()
	_, ok = m.Get("ten")
	assert.False(t, ok)
	assert.False(t, m.Contains("ten"))
	assert.Equal(t, 0, m.Len())
}

func TestWeakValueMapReplace(t *testing.T) {
	m := newValueMap(t)
	old, fresh := rc.New(1), rc.New(2)
	m.Insert("k", old)
	assert.False(t, m.Insert("k", fresh))

	old.Release()
	got, ok := m.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, *got.Get())
	got.Release()
	assert.Equal(t, 1, m.Count("k"))
}

func TestWeakValueMapLoadOrStore(t *testing.T) {
	m := newValueMap(t)
	v := rc.New(5)

	got, loaded := m.LoadOrStore("five", v)
	assert.False(t, loaded)
	assert.Same(t, v.Get(), got.Get())
	assert.EqualValues(t, 1, v.Count())

	other := rc.New(6)
	got, loaded = m.LoadOrStore("five", other)
	assert.True(t, loaded)
	assert.Equal(t, 5, *got.Get())
	got.Release()
	other.Release()

	v.Release()
	other = rc.New(7)
	got, loaded = m.LoadOrStore("five", other)
	assert.False(t, loaded)
	assert.Equal(t, 7, *got.Get())
	other.Release()
}

func TestWeakValueMapSubmapAndEqual(t *testing.T) {
	a, b := newValueMap(t), newValueMap(t)
	one, two, three := rc.New(1), rc.New(2), rc.New(3)
	otherOne := rc.New(1)

	a.Insert("one", one)
	a.Insert("two", two)
	b.Insert("one", otherOne)
	b.Insert("two", two)
	b.Insert("three", three)

	assert.True(t, a.Submap(b, sameInt))
	assert.False(t, b.Submap(a, sameInt))
	assert.False(t, a.Equal(b, sameInt))

	// An expired value drops out of both relations.
	three.Release()
	assert.True(t, a.Equal(b, sameInt))
	assert.True(t, b.Equal(a, sameInt))

	other := rc.New(20)
	b.Insert("two", other)
	assert.False(t, a.Submap(b, sameInt))
	assert.EqualValues(t, 1, other.Count())
}

func TestWeakValueMapIteration(t *testing.T) {
	m := newValueMap(t)
	values := []rc.Ptr[int]{rc.New(1), rc.New(2), rc.New(3)}
	for i, v := range values {
		m.Insert(string(rune('a'+i)), v)
	}
	values[1].Release()

	got := map[string]int{}
	for k, v := range m.All() {
		got[k] = *v.Get()
	}
	assert.Equal(t, map[string]int{"a": 1, "c": 3}, got)

	keys := 0
	for range m.Keys() {
		keys++
	}
	assert.Equal(t, 2, keys)
	for v := range m.Values() {
		assert.EqualValues(t, 2, v.Count())
	}
	assert.EqualValues(t, 1, values[0].Count())
}

func TestWeakValueMapClone(t *testing.T) {
	m := newValueMap(t)
	v := rc.New(1)
	m.Insert("one", v)

	c := m.Clone()
	assert.True(t, c.Equal(m, sameInt))
	v.Release()
	assert.False(t, c.Contains("one"))
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 1, m.PurgeExpired())
}

func TestWeakValueMapNilLiveness(t *testing.T) {
	_, err := weakhash.NewWeakValueMap[string, rc.Ptr[int]](nil, weakhash.Comparable[string](), weakhash.NewConfig())
	assert.ErrorIs(t, err, weakhash.ErrNilLiveness)
}

func TestWeakValueMapSubmapReleasesOnPanic(t *testing.T) {
	a, b := newValueMap(t), newValueMap(t)
	v := rc.New(1)
	a.Insert("one", v)
	b.Insert("one", v)

	assert.Panics(t, func() {
		a.Submap(b, func(rc.Ptr[int], rc.Ptr[int]) bool { panic("compare") })
	})
	assert.EqualValues(t, 1, v.Count())

	v.Release()
	assert.False(t, a.Contains("one"))
	assert.False(t, b.Contains("one"))
}
