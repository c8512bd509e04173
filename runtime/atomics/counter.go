package atomics

import "sync"

// Counter can be changed atomically and conditionally waited on.
type Counter struct {
	m     sync.Mutex
	c     sync.Cond
	value int
}

func (c *Counter) init() {
	if c.c.L == nil {
		c.c.L = &c.m
	}
}

// Add value to counter
func (c *Counter) Add(value int) {
	if value == 0 {
		return
	}

	c.m.Lock()
	defer c.m.Unlock()
	c.init()

	c.value += value
	c.c.Broadcast()
}

// Value of the counter
func (c *Counter) Value() int {
	c.m.Lock()
	defer c.m.Unlock()
	c.init()

	return c.value
}

// WaitFor predicate over the value to be true
func (c *Counter) WaitFor(predicate func(val int) bool) {
	c.m.Lock()
	defer c.m.Unlock()
	c.init()

	for !predicate(c.value) {
		c.c.Wait()
	}
}

// WaitForZero blocks until counter has reached zero
func (c *Counter) WaitForZero() {
	c.WaitFor(func(val int) bool {
		return val == 0
	})
}
