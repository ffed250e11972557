package weakhash

// freeList recycles unlinked nodes so that churn from purging and
// re-inserting does not allocate on every insert.
type freeList[K, V any] struct {
	nodes []*node[K, V]
}

func newFreeList[K, V any](size int) freeList[K, V] {
	return freeList[K, V]{
		nodes: make([]*node[K, V], 0, size),
	}
}

func (f *freeList[K, V]) get() *node[K, V] {
	if len(f.nodes) == 0 {
		return &node[K, V]{}
	}

	n := f.nodes[len(f.nodes)-1]
	f.nodes[len(f.nodes)-1] = nil
	f.nodes = f.nodes[:len(f.nodes)-1]
	return n
}

// put clears n, dropping its references, and keeps it if there is room.
func (f *freeList[K, V]) put(n *node[K, V]) {
	*n = node[K, V]{}
	if len(f.nodes) < cap(f.nodes) {
		f.nodes = append(f.nodes, n)
	}
}

func (f *freeList[K, V]) len() int {
	return len(f.nodes)
}

func (f *freeList[K, V]) cap() int {
	return cap(f.nodes)
}
