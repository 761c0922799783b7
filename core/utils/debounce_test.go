package utils

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock runs timers on a virtual timeline advanced by the test.
type fakeClock struct {
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) timer {
	t := &fakeTimer{at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// AdvanceTo fires every due timer in chronological order.
func (c *fakeClock) AdvanceTo(to time.Duration) {
	for {
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at > to {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			break
		}
		c.now = next.at
		next.fired = true
		next.f()
	}
	c.now = to
}

type debouncedCall struct {
	at  time.Duration
	arg string
}

func newFakeDebouncer(wait time.Duration) (*Debouncer[string], *fakeClock, *[]debouncedCall) {
	clock := new(fakeClock)
	calls := new([]debouncedCall)
	d := NewDebouncer(wait, func(arg string) {
		*calls = append(*calls, debouncedCall{at: clock.now, arg: arg})
	})
	d.after = clock.AfterFunc
	return d, clock, calls
}

func TestDebouncer_trailingCall(t *testing.T) {
	d, clock, calls := newFakeDebouncer(50 * time.Millisecond)

	d.Call("t0")
	clock.AdvanceTo(10 * time.Millisecond)
	d.Call("t10")
	clock.AdvanceTo(20 * time.Millisecond)
	d.Call("t20")
	clock.AdvanceTo(69 * time.Millisecond)
	assert.Empty(t, *calls, "fired before the window elapsed")

	clock.AdvanceTo(time.Second)
	assert.Equal(t, []debouncedCall{{at: 70 * time.Millisecond, arg: "t20"}}, *calls)
	assert.False(t, d.Cancel(), "nothing left after firing")
}

func TestDebouncer_separateBursts(t *testing.T) {
	d, clock, calls := newFakeDebouncer(50 * time.Millisecond)

	d.Call("a")
	clock.AdvanceTo(100 * time.Millisecond)
	d.Call("b")
	clock.AdvanceTo(200 * time.Millisecond)

	assert.Equal(t, []debouncedCall{
		{at: 50 * time.Millisecond, arg: "a"},
		{at: 150 * time.Millisecond, arg: "b"},
	}, *calls)
}

func TestDebouncer_Cancel(t *testing.T) {
	d, clock, calls := newFakeDebouncer(50 * time.Millisecond)

	assert.False(t, d.Cancel(), "nothing pending yet")
	d.Call("a")
	assert.True(t, d.Cancel())
	clock.AdvanceTo(time.Second)
	assert.Empty(t, *calls)
	assert.False(t, d.Cancel())
}

func TestDebouncer_realTimers(t *testing.T) {
	var mu sync.Mutex
	var got []int
	done := make(chan struct{}, 1)

	d := NewDebouncer(30*time.Millisecond, func(n int) {
		mu.Lock()
		got = append(got, n)
		mu.Unlock()
		done <- struct{}{}
	})
	for i := 1; i <= 5; i++ {
		d.Call(i)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced call never fired")
	}
	time.Sleep(60 * time.Millisecond) // no second call may follow

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{5}, got)
}
