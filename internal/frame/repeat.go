package frame

import (
	"sync"
	"time"
)

// Loop runs fn once per frame until stopped. Each run requests the next
// frame only after fn returns, so a Loop never has more than one request
// outstanding.
type Loop struct {
	mu      sync.Mutex
	sched   Scheduler
	fn      func(now time.Time)
	handle  Handle
	running bool
	gen     uint64
}

// NewLoop creates a stopped loop.
func NewLoop(sched Scheduler, fn func(now time.Time)) *Loop {
	return &Loop{sched: sched, fn: fn}
}

// Start begins requesting frames. Starting a running loop does nothing.
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return
	}
	l.running = true
	l.gen++
	l.requestLocked(l.gen)
}

// Stop cancels the outstanding request. Safe to call multiple times and from
// inside fn.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return
	}
	l.running = false
	l.gen++
	if l.handle != 0 {
		l.sched.Cancel(l.handle)
		l.handle = 0
	}
}

// Running reports whether the loop is active.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

func (l *Loop) requestLocked(gen uint64) {
	l.handle = l.sched.Request(func(now time.Time) { l.tick(gen, now) })
}

func (l *Loop) tick(gen uint64, now time.Time) {
	l.mu.Lock()
	if !l.running || gen != l.gen {
		l.mu.Unlock()
		return
	}
	l.handle = 0
	l.mu.Unlock()

	l.fn(now)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running && gen == l.gen {
		l.requestLocked(gen)
	}
}
