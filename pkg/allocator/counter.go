package allocator

import "sync"

// Counter hands out the sequence numbers used in generated names. It is a
// hint only: uniqueness comes from the collision check.
type Counter struct {
	mu   sync.Mutex
	next int
}

// NewCounter returns a counter starting at start.
func NewCounter(start int) *Counter {
	return &Counter{next: start}
}

// Peek returns the next value without consuming it.
func (c *Counter) Peek() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next
}

// Next consumes and returns the next value.
func (c *Counter) Next() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.next
	c.next++
	return n
}
