package utils

import (
	"sync"
	"time"
)

type timer interface {
	Stop() bool
}

type afterFunc func(d time.Duration, f func()) timer

func realAfterFunc(d time.Duration, f func()) timer { return time.AfterFunc(d, f) }

// Debouncer collapses bursts of calls into a single trailing call: fn runs once the Debouncer has
// not been called for the wait duration, with the argument of the last call. Each call restarts
// the window. At most one call is pending at any time.
type Debouncer[T any] struct {
	wait  time.Duration
	fn    func(T)
	after afterFunc

	mu      sync.Mutex
	pending timer
	gen     uint64
}

func NewDebouncer[T any](wait time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{wait: wait, fn: fn, after: realAfterFunc}
}

// Call schedules fn(arg), replacing any pending call.
func (d *Debouncer[T]) Call(arg T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		d.pending.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = d.after(d.wait, func() {
		d.mu.Lock()
		if gen != d.gen { // superseded while firing
			d.mu.Unlock()
			return
		}
		d.pending = nil
		d.mu.Unlock()
		d.fn(arg)
	})
}

// Cancel drops the pending call, if any, and reports whether there was one.
func (d *Debouncer[T]) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending == nil {
		return false
	}
	d.pending.Stop()
	d.pending = nil
	d.gen++
	return true
}
