// Package observable provides replayable state cells: a container holding the
// last value, a Subscribe that delivers that value immediately and every later
// one, and derived cells that recompute from a source.
//
// Delivery is trampolined per cell. A Set issued while the cell is already
// delivering (from a callback, or from another goroutine) is queued and
// delivered by the active deliverer, so every subscriber observes values in
// the order they were set. Set may therefore return before its value reached
// every subscriber; SetSync waits until it has. Subscribers must not block; a
// callback that waits for another goroutine which itself sets the same cell
// will deadlock.
package observable

import "sync"

// Unsubscribe stops delivery to one subscriber. It is safe to call twice.
type Unsubscribe func()

// Observable is the read side of a cell.
type Observable[T any] interface {
	Get() T
	Subscribe(fn func(T)) Unsubscribe
}

type delivery[T any] struct {
	value  T
	seq    uint64
	target uint64 // 0 broadcasts to every subscriber older than seq
	done   chan struct{}
}

type subscriber[T any] struct {
	id    uint64
	since uint64
	fn    func(T)
}

type Cell[T any] struct {
	mu       sync.Mutex
	value    T
	seq      uint64
	nextID   uint64
	subs     []*subscriber[T]
	queue    []delivery[T]
	draining bool
}

func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial}
}

// Get returns the last value set.
func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set stores v and publishes it to every subscriber.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	c.value = v
	c.seq++
	c.queue = append(c.queue, delivery[T]{value: v, seq: c.seq})
	c.drain()
}

// SetSync stores v and returns once every subscriber has been called with
// it, waiting for a delivery in progress on another goroutine if needed. It
// must not be called from a subscriber of the same cell.
func (c *Cell[T]) SetSync(v T) {
	done := make(chan struct{})
	c.mu.Lock()
	c.value = v
	c.seq++
	c.queue = append(c.queue, delivery[T]{value: v, seq: c.seq, done: done})
	c.drain()
	<-done
}

// Update applies fn to the current value and publishes the result atomically
// with respect to other Set/Update calls.
func (c *Cell[T]) Update(fn func(T) T) T {
	c.mu.Lock()
	v := fn(c.value)
	c.value = v
	c.seq++
	c.queue = append(c.queue, delivery[T]{value: v, seq: c.seq})
	c.drain()
	return v
}

// Subscribe registers fn, delivers the current value to it, then every later
// value until the returned Unsubscribe is called.
func (c *Cell[T]) Subscribe(fn func(T)) Unsubscribe {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	subs := make([]*subscriber[T], len(c.subs), len(c.subs)+1)
	copy(subs, c.subs)
	c.subs = append(subs, &subscriber[T]{id: id, since: c.seq, fn: fn})
	c.queue = append(c.queue, delivery[T]{value: c.value, seq: c.seq, target: id})
	c.drain()

	var once sync.Once
	return func() {
		once.Do(func() { c.remove(id) })
	}
}

// Subscribers reports the number of active subscribers.
func (c *Cell[T]) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

func (c *Cell[T]) remove(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	subs := make([]*subscriber[T], 0, len(c.subs))
	for _, s := range c.subs {
		if s.id != id {
			subs = append(subs, s)
		}
	}
	c.subs = subs
}

// drain must be called with c.mu held; it returns with c.mu released.
func (c *Cell[T]) drain() {
	if c.draining {
		c.mu.Unlock()
		return
	}
	c.draining = true

	locked := true
	var cur delivery[T]
	defer func() {
		if !locked {
			// A subscriber panicked. Release every waiter; queued values are
			// delivered by the next drainer.
			c.mu.Lock()
			release(cur)
			for i := range c.queue {
				release(c.queue[i])
				c.queue[i].done = nil
			}
		}
		c.draining = false
		c.mu.Unlock()
	}()

	for len(c.queue) > 0 {
		d := c.queue[0]
		cur = d
		c.queue[0] = delivery[T]{}
		c.queue = c.queue[1:]

		targets := make([]func(T), 0, len(c.subs))
		for _, s := range c.subs {
			if d.target == 0 && s.since < d.seq || d.target == s.id {
				targets = append(targets, s.fn)
			}
		}

		c.mu.Unlock()
		locked = false
		for _, fn := range targets {
			fn(d.value)
		}
		c.mu.Lock()
		locked = true
		release(d)
	}
}

func release[T any](d delivery[T]) {
	if d.done != nil {
		close(d.done)
	}
}
