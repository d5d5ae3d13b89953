package sched

import (
	"context"
	"time"
)

// Loop is a minimal event loop: posted functions run one at a time on the
// goroutine that drives it.
type Loop struct {
	queue   chan func()
	stopped chan struct{}
}

// NewLoop creates a loop with the given queue capacity.
func NewLoop(capacity int) *Loop {
	return &Loop{
		queue:   make(chan func(), capacity),
		stopped: make(chan struct{}),
	}
}

// Post enqueues fn. It never runs fn inline. Once Run has returned, fn is dropped.
func (l *Loop) Post(fn func()) {
	select {
	case l.queue <- fn:
	case <-l.stopped:
	}
}

// Dispatcher returns Post as a Dispatcher.
func (l *Loop) Dispatcher() Dispatcher {
	return l.Post
}

// Run processes posted functions until ctx is done. It must be called at most once.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.stopped)

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.queue:
			fn()
		}
	}
}

// Drain runs everything already queued and returns how many functions ran.
func (l *Loop) Drain() int {
	n := 0
	for {
		select {
		case fn := <-l.queue:
			fn()
			n++
		default:
			return n
		}
	}
}

// RunUntil processes posted functions until cond holds or timeout elapses.
// It reports whether cond was met.
func (l *Loop) RunUntil(cond func() bool, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		l.Drain()
		if cond() {
			return true
		}

		select {
		case fn := <-l.queue:
			fn()
		case <-deadline.C:
			return cond()
		}
	}
}
