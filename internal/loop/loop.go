// Package loop runs a UI session's work on a single goroutine.
//
// Controllers in this module hold no locks. Instead every call into them, every timer
// callback and every continuation of a remote call is funnelled through one Loop, so
// they observe a single-threaded world just like a browser event loop.
package loop

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrStopped is returned by Do when the loop is no longer running.
var ErrStopped = errors.New("loop: stopped")

// Scheduler queues work on the owning loop.
type Scheduler interface {
	// Post runs fn on the loop after the work already queued.
	Post(fn func())
	// AfterFunc runs fn on the loop once d has elapsed. The returned stop
	// function cancels it and reports whether it was still pending.
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

// Loop is a Scheduler backed by a goroutine draining a task queue.
type Loop struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
}

// New creates a loop with the given queue depth. Call Run to start it.
func New(depth int) *Loop {
	if depth <= 0 {
		depth = 64
	}
	return &Loop{
		tasks: make(chan func(), depth),
		done:  make(chan struct{}),
	}
}

// Run processes tasks until ctx is cancelled or Stop is called.
func (l *Loop) Run(ctx context.Context) {
	defer l.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.done:
			return
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Stop ends Run. Pending tasks are dropped.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.done) })
}

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Post queues fn. It blocks while the queue is full and drops fn once stopped.
func (l *Loop) Post(fn func()) {
	select {
	case l.tasks <- fn:
	case <-l.done:
	}
}

// AfterFunc schedules fn on the loop after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) func() bool {
	t := time.AfterFunc(d, func() { l.Post(fn) })
	return t.Stop
}

// Do runs fn on the loop and waits for it to return.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}

	select {
	case l.tasks <- task:
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}
