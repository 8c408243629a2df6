package observable

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder[T any] struct {
	mu   sync.Mutex
	seen []T
}

func (r *recorder[T]) add(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, v)
}

func (r *recorder[T]) values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.seen...)
}

func TestCell_SubscribeReplaysCurrentValue(t *testing.T) {
	c := NewCell(7)
	rec := &recorder[int]{}

	c.Subscribe(rec.add)

	assert.Equal(t, []int{7}, rec.values())
	assert.Equal(t, 7, c.Get())
}

func TestCell_LateSubscriberGetsLatestOnly(t *testing.T) {
	c := NewCell("a")
	c.Set("b")
	c.Set("c")

	rec := &recorder[string]{}
	c.Subscribe(rec.add)
	c.Set("d")

	assert.Equal(t, []string{"c", "d"}, rec.values())
}

func TestCell_Unsubscribe(t *testing.T) {
	c := NewCell(0)
	rec := &recorder[int]{}

	stop := c.Subscribe(rec.add)
	c.Set(1)
	stop()
	stop()
	c.Set(2)

	assert.Equal(t, []int{0, 1}, rec.values())
	assert.Equal(t, 0, c.Subscribers())
}

func TestCell_NestedSetKeepsOrder(t *testing.T) {
	c := NewCell(0)
	first := &recorder[int]{}
	second := &recorder[int]{}

	c.Subscribe(func(v int) {
		first.add(v)
		if v == 1 {
			c.Set(2)
		}
	})
	c.Subscribe(second.add)

	c.Set(1)

	assert.Equal(t, []int{0, 1, 2}, first.values())
	assert.Equal(t, []int{0, 1, 2}, second.values())
	assert.Equal(t, 2, c.Get())
}

func TestCell_SubscribeDuringDeliveryDoesNotDuplicate(t *testing.T) {
	c := NewCell(0)
	late := &recorder[int]{}

	var once sync.Once
	c.Subscribe(func(v int) {
		if v == 1 {
			once.Do(func() { c.Subscribe(late.add) })
		}
	})

	c.Set(1)
	c.Set(2)

	assert.Equal(t, []int{1, 2}, late.values())
}

func TestCell_Update(t *testing.T) {
	c := NewCell(1)
	rec := &recorder[int]{}
	c.Subscribe(rec.add)

	got := c.Update(func(v int) int { return v * 10 })

	assert.Equal(t, 10, got)
	assert.Equal(t, []int{1, 10}, rec.values())
}

func TestCell_ConcurrentSetDeliversEveryValue(t *testing.T) {
	c := NewCell(-1)
	rec := &recorder[int]{}
	c.Subscribe(rec.add)

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			c.Set(v)
		}(i)
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		return len(rec.values()) == n+1
	}, time.Second, 5*time.Millisecond)

	seen := rec.values()
	assert.Equal(t, c.Get(), seen[len(seen)-1])
}

func TestCell_PanickingSubscriberDoesNotWedgeCell(t *testing.T) {
	c := NewCell(0)
	c.Subscribe(func(v int) {
		if v == 1 {
			panic("boom")
		}
	})

	assert.Panics(t, func() { c.Set(1) })

	rec := &recorder[int]{}
	c.Subscribe(rec.add)
	c.Set(2)
	assert.Equal(t, []int{1, 2}, rec.values())
}

// slowReplay subscribes from another goroutine with a callback that stalls
// on its replay, so the cell is busy delivering when it returns.
func slowReplay(c *Cell[int], stall time.Duration, panicAfter bool) {
	started := make(chan struct{})
	go func() {
		defer func() { _ = recover() }()
		first := true
		c.Subscribe(func(int) {
			if !first {
				return
			}
			first = false
			close(started)
			time.Sleep(stall)
			if panicAfter {
				panic("boom")
			}
		})
	}()
	<-started
}

func TestCell_SetSyncWaitsForDeliveryInProgress(t *testing.T) {
	c := NewCell(0)
	rec := &recorder[int]{}
	c.Subscribe(rec.add)

	slowReplay(c, 50*time.Millisecond, false)
	c.SetSync(1)

	assert.Equal(t, []int{0, 1}, rec.values())
}

func TestCell_SetReturnsWhileDeliveryInProgress(t *testing.T) {
	c := NewCell(0)
	rec := &recorder[int]{}
	c.Subscribe(rec.add)

	slowReplay(c, 50*time.Millisecond, false)
	c.Set(1)

	assert.Equal(t, []int{0}, rec.values())
	require.Eventually(t, func() bool {
		return len(rec.values()) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestCell_SetSyncReleasedWhenDelivererPanics(t *testing.T) {
	c := NewCell(0)
	slowReplay(c, 30*time.Millisecond, true)

	done := make(chan struct{})
	go func() {
		c.SetSync(1)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SetSync still waiting after the deliverer panicked")
	}
	assert.Equal(t, 1, c.Get())
}
