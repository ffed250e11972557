package weakhash

import (
	"testing"
)

func TestFreeListGet(t *testing.T) {
	fl := newFreeList[int, string](10)

	n := &node[int, string]{}
	fl.put(n)

	got := fl.get()

	if got != n {
		t.Errorf("Expected node to be %p, got %p", n, got)
	}
}

func TestFreeListGetEmptyAllocates(t *testing.T) {
	fl := newFreeList[int, string](10)

	if fl.get() == nil {
		t.Errorf("Expected a fresh node from an empty free list")
	}
}

func TestFreeListPutClearsNode(t *testing.T) {
	fl := newFreeList[int, string](10)

	n := &node[int, string]{}
	n.entry.value.strong = "held"
	n.next = &node[int, string]{}
	fl.put(n)

	if fl.nodes[0].entry.value.strong != "" || fl.nodes[0].next != nil {
		t.Errorf("Expected recycled node to be cleared, got %+v", fl.nodes[0])
	}
}

func TestFreeListLen(t *testing.T) {
	fl := newFreeList[int, string](10)

	fl.put(&node[int, string]{})

	if fl.len() != 1 {
		t.Errorf("Expected free list length to be 1, got %d", fl.len())
	}
}

func TestFreeListCap(t *testing.T) {
	fl := newFreeList[int, string](2)

	for i := 0; i < 5; i++ {
		fl.put(&node[int, string]{})
	}

	if fl.cap() != 2 {
		t.Errorf("Expected free list capacity to be 2, got %d", fl.cap())
	}
	if fl.len() != 2 {
		t.Errorf("Expected free list to stop at its capacity, got %d", fl.len())
	}
}
