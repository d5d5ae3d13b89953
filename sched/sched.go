// Package sched provides named, cancellable timers whose callbacks run on
// the owner's event loop.
package sched

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Dispatcher runs fn on the owner's event loop.
type Dispatcher func(fn func())

// Immediate runs fn on the calling goroutine.
func Immediate(fn func()) { fn() }

type task struct {
	timer  *clock.Timer
	gen    uint64
	period time.Duration
	fn     func()
}

// Scheduler owns a set of named tasks. Arming a name that is already
// pending cancels the previous task first, so a name never fires twice
// for one arming. After Close no task fires.
type Scheduler struct {
	clock    clock.Clock
	dispatch Dispatcher

	mu     sync.Mutex
	tasks  map[string]*task
	gen    uint64
	closed bool
}

// New creates a scheduler. A nil clock means the wall clock.
func New(c clock.Clock, dispatch Dispatcher) *Scheduler {
	if c == nil {
		c = clock.New()
	}
	if dispatch == nil {
		dispatch = Immediate
	}

	return &Scheduler{
		clock:    c,
		dispatch: dispatch,
		tasks:    make(map[string]*task),
	}
}

// Now returns the scheduler's current time.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// Clock exposes the underlying clock.
func (s *Scheduler) Clock() clock.Clock {
	return s.clock
}

// After runs fn once after d.
func (s *Scheduler) After(name string, d time.Duration, fn func()) {
	s.arm(name, d, 0, fn)
}

// Every runs fn every d until cancelled.
func (s *Scheduler) Every(name string, d time.Duration, fn func()) {
	s.arm(name, d, d, fn)
}

func (s *Scheduler) arm(name string, d, period time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.stopLocked(name)

	s.gen++
	t := &task{gen: s.gen, period: period, fn: fn}
	t.timer = s.clock.AfterFunc(d, func() { s.fire(name, t.gen) })
	s.tasks[name] = t
}

func (s *Scheduler) fire(name string, gen uint64) {
	s.dispatch(func() {
		s.mu.Lock()
		t, ok := s.tasks[name]
		if !ok || t.gen != gen || s.closed {
			s.mu.Unlock()
			return
		}

		if t.period > 0 {
			s.gen++
			t.gen = s.gen
			next := t.gen
			t.timer = s.clock.AfterFunc(t.period, func() { s.fire(name, next) })
		} else {
			delete(s.tasks, name)
		}
		fn := t.fn
		s.mu.Unlock()

		fn()
	})
}

// Cancel stops the named task. Cancelling an unknown name is a no-op.
func (s *Scheduler) Cancel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked(name)
}

// Pending reports whether the named task is armed.
func (s *Scheduler) Pending(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[name]
	return ok
}

// Len returns the number of armed tasks.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// CancelAll stops every task but keeps the scheduler usable.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name := range s.tasks {
		s.stopLocked(name)
	}
}

// Close stops every task; later arming is ignored.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name := range s.tasks {
		s.stopLocked(name)
	}
	s.closed = true
}

func (s *Scheduler) stopLocked(name string) {
	if t, ok := s.tasks[name]; ok {
		t.timer.Stop()
		delete(s.tasks, name)
	}
}
