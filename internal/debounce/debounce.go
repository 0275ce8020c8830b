// Package debounce provides a cancellable timer abstraction and a
// trailing-edge debouncer built on it, independent of any UI event loop.
package debounce

import (
	"sync"
	"time"
)

// CancelFunc stops a scheduled callback. Calling it after the callback ran,
// or more than once, is harmless.
type CancelFunc func()

// Scheduler runs fn once after delay.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) CancelFunc
}

// RealScheduler schedules on the Go runtime timer.
type RealScheduler struct{}

// Schedule implements Scheduler with time.AfterFunc.
func (RealScheduler) Schedule(delay time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(delay, fn)
	return func() { t.Stop() }
}

// Debouncer fires fn once, delay after the most recent Trigger. There is no
// leading-edge call.
type Debouncer struct {
	sched Scheduler
	delay time.Duration
	fn    func()

	mu     sync.Mutex
	seq    uint64
	cancel CancelFunc
}

// New builds a debouncer. A nil scheduler uses RealScheduler.
func New(sched Scheduler, delay time.Duration, fn func()) *Debouncer {
	if sched == nil {
		sched = RealScheduler{}
	}
	return &Debouncer{sched: sched, delay: delay, fn: fn}
}

// Trigger cancels the pending call, if any, and schedules a new one.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
	}
	d.seq++
	seq := d.seq
	d.cancel = d.sched.Schedule(d.delay, func() { d.fire(seq) })
}

// Cancel drops the pending call. It reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.cancel == nil {
		return false
	}
	d.cancel()
	d.cancel = nil
	return true
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancel != nil
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	// A timer that already fired cannot be stopped, so stale firings are
	// filtered by sequence.
	if seq != d.seq {
		d.mu.Unlock()
		return
	}
	d.cancel = nil
	d.mu.Unlock()
	d.fn()
}
