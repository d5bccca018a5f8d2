// Package eventloop runs work on a single goroutine: commands posted by
// callers and one-shot deferred callbacks that may reschedule themselves.
// Everything executed by a Loop is strictly sequential, so state owned by
// the loop needs no locks.
package eventloop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrStopped is returned when work is submitted to a loop that is no longer running.
var ErrStopped = errors.New("event loop stopped")

// Loop executes tasks one at a time on the goroutine that called Run.
type Loop struct {
	clock Clock
	queue chan func()
	done  chan struct{}
	once  sync.Once
}

// New creates a loop using the given clock for deferred callbacks.
func New(clock Clock) *Loop {
	if clock == nil {
		clock = SystemClock
	}
	return &Loop{
		clock: clock,
		queue: make(chan func()),
		done:  make(chan struct{}),
	}
}

// Clock returns the loop's clock.
func (l *Loop) Clock() Clock { return l.clock }

// Run processes tasks until ctx is canceled. It must be called once.
func (l *Loop) Run(ctx context.Context) {
	defer l.once.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-l.queue:
			task()
		}
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Do runs fn on the loop and waits for it to finish. Once fn has been handed
// to the loop it always runs to completion, even if ctx is canceled meanwhile.
// Do must not be called from a task running on the same loop.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}

	select {
	case l.queue <- task:
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	<-finished
	return nil
}

// post hands fn to the loop from a timer goroutine. It gives up when the
// loop stops.
func (l *Loop) post(fn func()) {
	select {
	case l.queue <- fn:
	case <-l.done:
	}
}

// Deferred is a pending one-shot callback created by After.
type Deferred struct {
	timer     Timer
	cancelled atomic.Bool
}

// After schedules fn to run on the loop once d has elapsed.
func (l *Loop) After(d time.Duration, fn func()) *Deferred {
	def := &Deferred{}
	def.timer = l.clock.AfterFunc(d, func() {
		l.post(func() {
			if def.cancelled.Load() {
				return
			}
			fn()
		})
	})
	return def
}

// Cancel prevents the callback from running. When called from the loop it
// is guaranteed to win even if the timer has already fired and the callback
// is queued. Cancel on a nil Deferred is a no-op.
func (d *Deferred) Cancel() {
	if d == nil {
		return
	}
	d.cancelled.Store(true)
	d.timer.Stop()
}
