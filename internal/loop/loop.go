// Package loop provides the single-goroutine executor that owns collector state.
//
// Event sources, frame tickers and debounce timers run on their own goroutines.
// They never touch owned state directly; they post closures to an Executor,
// which runs them one at a time in submission order.
package loop

import (
	"context"
	"errors"
	"sync"
)

// ErrStopped is returned by Run when the loop was stopped before or during Run.
var ErrStopped = errors.New("loop stopped")

// Executor runs posted work.
type Executor interface {
	// Post schedules fn to run on the executor. Post never blocks on fn.
	Post(fn func())
}

// Inline runs posted work immediately on the caller's goroutine.
// It suits single-threaded hosts and tests.
type Inline struct{}

// Post runs fn immediately.
func (Inline) Post(fn func()) { fn() }

// Loop is an Executor backed by a queue drained by Run.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	done    chan struct{}
	stopped bool
}

// New creates a loop. Nothing runs until Run is called.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post enqueues fn. Work posted after Stop is discarded.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of queued closures.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Run drains the queue until ctx is cancelled or Stop is called.
// Closures that panic are not recovered.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.drain()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return ErrStopped
		case <-l.wake:
		}
	}
}

// RunPending runs everything queued so far on the caller's goroutine.
// It returns the number of closures executed.
func (l *Loop) RunPending() int {
	return l.drain()
}

func (l *Loop) drain() int {
	n := 0
	for {
		l.mu.Lock()
		if l.stopped || len(l.queue) == 0 {
			l.mu.Unlock()
			return n
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		fn()
		n++
	}
}

// Stop halts the loop and discards queued work. Safe to call multiple times.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.stopped = true
	l.queue = nil
	close(l.done)
}

// Stopped reports whether Stop has been called.
func (l *Loop) Stopped() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopped
}
