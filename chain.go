package weakhash

// node holds one entry in a bucket chain.
type node[K, V any] struct {
	next  *node[K, V]
	prev  *node[K, V]
	entry entry[K, V]
}

// chain is the bucket: a doubly linked list of nodes in insertion order.
type chain[K, V any] struct {
	head *node[K, V]
	tail *node[K, V]
}

func (c *chain[K, V]) pushBack(n *node[K, V]) {
	n.next = nil
	n.prev = c.tail
	if c.tail == nil {
		c.head = n
		c.tail = n
		return
	}
	c.tail.next = n
	c.tail = n
}

func (c *chain[K, V]) remove(n *node[K, V]) {
	if n == nil {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}

	n.next = nil
	n.prev = nil
}

func (c *chain[K, V]) len() int {
	count := 0
	for n := c.head; n != nil; n = n.next {
		count++
	}
	return count
}
