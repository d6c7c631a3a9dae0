package pipeline

import "sync"

// Cursor tracks which offsets of one partition are fully processed
// (durably published or intentionally dropped) and reports the highest
// contiguous offset that is safe to commit. An offset that was tracked but
// never resolved pins the cursor immediately before it.
type Cursor struct {
	mu        sync.Mutex
	head      *entry
	tail      *entry
	committed int64
	resolved  bool // at least one offset has been resolved
}

type entry struct {
	offset int64
	done   bool
	next   *entry
}

func NewCursor() *Cursor { return &Cursor{committed: -1} }

// Track registers offset as in flight. Offsets must arrive in ascending
// per-partition order, which is what a broker partition log guarantees.
func (c *Cursor) Track(offset int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := &entry{offset: offset}
	if c.tail == nil {
		c.head, c.tail = e, e
		return
	}
	c.tail.next = e
	c.tail = e
}

// Resolve marks a tracked offset as fully processed.
func (c *Cursor) Resolve(offset int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for e := c.head; e != nil; e = e.next {
		if e.offset == offset {
			e.done = true
			return
		}
		if e.offset > offset {
			return
		}
	}
}

// Advance consumes the resolved prefix and returns the highest offset now
// safe to commit. moved is false when the cursor has not changed since the
// last call, or when nothing has resolved yet.
func (c *Cursor) Advance() (offset int64, moved bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.head != nil && c.head.done {
		c.committed = c.head.offset
		c.head = c.head.next
		moved = true
	}
	if c.head == nil {
		c.tail = nil
	}
	if moved {
		c.resolved = true
	}
	return c.committed, moved
}

// Committed returns the highest offset handed out by Advance so far.
// ok is false before the first advancement.
func (c *Cursor) Committed() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.committed, c.resolved
}

// Pending reports how many tracked offsets are still unresolved or not yet
// consumed by Advance.
func (c *Cursor) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for e := c.head; e != nil; e = e.next {
		n++
	}
	return n
}
