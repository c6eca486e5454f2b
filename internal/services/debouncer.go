package services

import (
	"context"
	"sync"
	"time"
)

// Debouncer runs a function only after its input has been quiet for a fixed
// delay. It drives place search while the user types.
//
// Every Trigger stops the pending timer and cancels the context of a run that
// is already in flight, so at most one run's result is still wanted at any
// time. Stop cancels everything for good.
//
// Go Learning Note — time.AfterFunc:
// AfterFunc runs its callback on its own goroutine once the delay elapses and
// returns a *Timer whose Stop method prevents a callback that has not started
// yet. A callback that already started cannot be stopped, which is why each
// run also gets a context we can cancel.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	cancel  context.CancelFunc
	seq     uint64
	stopped bool
}

// NewDebouncer returns a Debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn to run after the quiet period, replacing any earlier
// schedule. fn receives a context that is cancelled as soon as another
// Trigger or Stop happens.
func (d *Debouncer) Trigger(fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.resetLocked()

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.seq++
	seq := d.seq

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := seq == d.seq && !d.stopped
		d.mu.Unlock()
		if !current {
			return
		}
		fn(ctx)
	})
}

// Cancel drops a pending run and cancels one in flight without disabling
// the Debouncer.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetLocked()
	d.seq++
}

// Stop cancels everything; later Triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetLocked()
	d.stopped = true
}

func (d *Debouncer) resetLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
