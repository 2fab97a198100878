// Package clock abstracts the monotonic time source used by the scheduler so
// tests can drive elapsed time by hand.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending one-shot callback.
type Timer interface {
	// Stop cancels the callback. It reports false if the callback already ran
	// or was already stopped.
	Stop() bool
}

// Clock provides the current time and one-shot callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(delay time.Duration, callback func()) Timer
}

type realClock struct{}

// Real returns a clock backed by the time package. Readings from time.Now
// carry a monotonic component, so elapsed-time math ignores wall clock jumps.
func Real() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(delay time.Duration, callback func()) Timer {
	return time.AfterFunc(delay, callback)
}

// Fake is a manually advanced clock. Callbacks fire synchronously inside
// Advance, on the caller's goroutine, in deadline order.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
	nextID uint64
}

type fakeTimer struct {
	clock    *Fake
	id       uint64
	deadline time.Time
	callback func()
}

// NewFake creates a fake clock starting at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake current time.
func (fake *Fake) Now() time.Time {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return fake.now
}

// AfterFunc registers callback to run once the clock has advanced by delay.
func (fake *Fake) AfterFunc(delay time.Duration, callback func()) Timer {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.nextID++
	timer := &fakeTimer{
		clock:    fake,
		id:       fake.nextID,
		deadline: fake.now.Add(delay),
		callback: callback,
	}
	fake.timers = append(fake.timers, timer)
	return timer
}

// Advance moves the clock forward by delta, firing every callback that
// becomes due. Callbacks registered while advancing fire too if their
// deadline falls inside the window.
func (fake *Fake) Advance(delta time.Duration) {
	fake.mu.Lock()
	target := fake.now.Add(delta)
	fake.mu.Unlock()

	for {
		fake.mu.Lock()
		timer := fake.popDueLocked(target)
		if timer == nil {
			fake.now = target
			fake.mu.Unlock()
			return
		}
		if timer.deadline.After(fake.now) {
			fake.now = timer.deadline
		}
		fake.mu.Unlock()

		timer.callback()
	}
}

// Jump moves the clock forward without firing any callbacks, like a host
// that throttled its timers. The next Advance catches up.
func (fake *Fake) Jump(delta time.Duration) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.now = fake.now.Add(delta)
}

// Pending returns the number of registered callbacks that have not fired.
func (fake *Fake) Pending() int {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return len(fake.timers)
}

func (fake *Fake) popDueLocked(target time.Time) *fakeTimer {
	if len(fake.timers) == 0 {
		return nil
	}
	sort.SliceStable(fake.timers, func(i, j int) bool {
		return fake.timers[i].deadline.Before(fake.timers[j].deadline)
	})
	first := fake.timers[0]
	if first.deadline.After(target) {
		return nil
	}
	fake.timers = fake.timers[1:]
	return first
}

func (timer *fakeTimer) Stop() bool {
	fake := timer.clock
	fake.mu.Lock()
	defer fake.mu.Unlock()
	for index, pending := range fake.timers {
		if pending.id == timer.id {
			fake.timers = append(fake.timers[:index], fake.timers[index+1:]...)
			return true
		}
	}
	return false
}
