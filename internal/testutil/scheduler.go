// scheduler.go - Deterministic scheduler for controller tests
package testutil

import (
	"sort"
	"sync"
	"time"
)

// ManualScheduler implements loop.Scheduler with a virtual clock. Timers only fire
// from Advance and posted tasks only run from RunPending/RunNext, both on the test
// goroutine, which then plays the role of the session loop.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
	posted chan func()
}

type manualTimer struct {
	at      time.Duration
	seq     int
	fn      func()
	fired   bool
	stopped bool
}

// NewManualScheduler creates a scheduler at virtual time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{posted: make(chan func(), 1024)}
}

// Post queues fn. Safe to call from any goroutine.
func (s *ManualScheduler) Post(fn func()) {
	s.posted <- fn
}

// AfterFunc registers fn to fire once the virtual clock passes d from now.
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &manualTimer{at: s.now + d, seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)

	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if t.fired || t.stopped {
			return false
		}
		t.stopped = true
		return true
	}
}

// Advance moves the clock forward, firing due timers in deadline order and draining
// any tasks they post.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		due := s.dueLocked(target)
		if due == nil {
			s.now = target
			s.mu.Unlock()
			s.RunPending()
			return
		}
		due.fired = true
		s.now = due.at
		s.mu.Unlock()

		due.fn()
		s.RunPending()
	}
}

func (s *ManualScheduler) dueLocked(target time.Duration) *manualTimer {
	var live []*manualTimer
	for _, t := range s.timers {
		if !t.fired && !t.stopped {
			live = append(live, t)
		}
	}
	s.timers = live
	sort.Slice(live, func(i, j int) bool {
		if live[i].at != live[j].at {
			return live[i].at < live[j].at
		}
		return live[i].seq < live[j].seq
	})
	if len(live) == 0 || live[0].at > target {
		return nil
	}
	return live[0]
}

// PendingTimers returns the number of timers that have neither fired nor been stopped.
func (s *ManualScheduler) PendingTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

// Now returns the virtual time elapsed since creation.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// RunPending runs queued tasks without blocking and returns how many ran.
func (s *ManualScheduler) RunPending() int {
	n := 0
	for {
		select {
		case fn := <-s.posted:
			fn()
			n++
		default:
			return n
		}
	}
}

// RunNext waits up to timeout for one task and runs it.
func (s *ManualScheduler) RunNext(timeout time.Duration) bool {
	select {
	case fn := <-s.posted:
		fn()
		return true
	case <-time.After(timeout):
		return false
	}
}
