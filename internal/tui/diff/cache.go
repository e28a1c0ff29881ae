package diff

// rowKey identifies one rendered row. Every input that can change the row's
// bytes is part of the key, so a hit is always safe to reuse verbatim.
type rowKey struct {
	index    int
	scrollX  int
	width    int
	cursor   bool
	selStart int // -1 when no selection
	selEnd   int
	comment  bool
}

// rowCache is a fixed-capacity LRU keyed by rowKey. Entries live in a slice
// arena linked into a most-recent-first list; eviction pops the tail.
type rowCache struct {
	capacity int
	index    map[rowKey]int
	arena    []rowEntry
	head     int
	tail     int
	free     []int
}

type rowEntry struct {
	key        rowKey
	row        string
	prev, next int
}

const noEntry = -1

func newRowCache(capacity int) *rowCache {
	if capacity < 1 {
		capacity = 1
	}
	return &rowCache{
		capacity: capacity,
		index:    make(map[rowKey]int, capacity),
		arena:    make([]rowEntry, 0, capacity),
		head:     noEntry,
		tail:     noEntry,
	}
}

// Get returns the cached row and marks it most recently used.
func (c *rowCache) Get(key rowKey) (string, bool) {
	i, ok := c.index[key]
	if !ok {
		return "", false
	}
	c.moveToFront(i)
	return c.arena[i].row, true
}

// Put inserts a row, evicting the least recently used entry at capacity.
func (c *rowCache) Put(key rowKey, row string) {
	if i, ok := c.index[key]; ok {
		c.arena[i].row = row
		c.moveToFront(i)
		return
	}

	var i int
	switch {
	case len(c.free) > 0:
		i = c.free[len(c.free)-1]
		c.free = c.free[:len(c.free)-1]
	case len(c.arena) < c.capacity:
		i = len(c.arena)
		c.arena = append(c.arena, rowEntry{})
	default:
		i = c.evictTail()
	}

	c.arena[i] = rowEntry{key: key, row: row, prev: noEntry, next: noEntry}
	c.index[key] = i
	c.pushFront(i)
}

// Clear drops every entry but keeps the arena allocation.
func (c *rowCache) Clear() {
	clear(c.index)
	c.arena = c.arena[:0]
	c.free = c.free[:0]
	c.head = noEntry
	c.tail = noEntry
}

func (c *rowCache) Len() int { return len(c.index) }

func (c *rowCache) evictTail() int {
	i := c.tail
	c.unlink(i)
	delete(c.index, c.arena[i].key)
	return i
}

func (c *rowCache) moveToFront(i int) {
	if c.head == i {
		return
	}
	c.unlink(i)
	c.pushFront(i)
}

func (c *rowCache) pushFront(i int) {
	c.arena[i].prev = noEntry
	c.arena[i].next = c.head
	if c.head != noEntry {
		c.arena[c.head].prev = i
	}
	c.head = i
	if c.tail == noEntry {
		c.tail = i
	}
}

func (c *rowCache) unlink(i int) {
	e := c.arena[i]
	if e.prev != noEntry {
		c.arena[e.prev].next = e.next
	} else {
		c.head = e.next
	}
	if e.next != noEntry {
		c.arena[e.next].prev = e.prev
	} else {
		c.tail = e.prev
	}
	c.arena[i].prev = noEntry
	c.arena[i].next = noEntry
}
