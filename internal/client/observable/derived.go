package observable

import "sync"

// Derived is a read-only cell recomputed from a source on every emission.
type Derived[U any] struct {
	cell *Cell[U]

	mu   sync.Mutex
	stop Unsubscribe
}

// Map returns a cell holding fn(v) for the latest value v of src. It keeps
// following src until Close.
func Map[T, U any](src Observable[T], fn func(T) U) *Derived[U] {
	d := &Derived[U]{cell: NewCell(fn(src.Get()))}
	stop := src.Subscribe(func(v T) {
		d.cell.Set(fn(v))
	})
	d.mu.Lock()
	d.stop = stop
	d.mu.Unlock()
	return d
}

func (d *Derived[U]) Get() U {
	return d.cell.Get()
}

func (d *Derived[U]) Subscribe(fn func(U)) Unsubscribe {
	return d.cell.Subscribe(fn)
}

// Close detaches d from its source. The last value stays readable.
func (d *Derived[U]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		d.stop()
		d.stop = nil
	}
}
