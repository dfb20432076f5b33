package frame

import (
	"sync"
	"time"

	"github.com/dshills/scrollwatch/internal/loop"
)

// DefaultFrameRate is the frame rate used when none is configured.
const DefaultFrameRate = 60

// Ticker is a Scheduler driven by a wall-clock ticker. Each tick, the batch
// of pending callbacks is posted to the executor as one unit of work, so
// callbacks always run on the executor's goroutine.
type Ticker struct {
	reqs     requests
	interval time.Duration
	exec     loop.Executor

	mu      sync.Mutex
	started bool
	closed  bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewTicker creates a ticker scheduler running at fps frames per second.
// A non-positive fps selects DefaultFrameRate.
func NewTicker(fps int, exec loop.Executor) *Ticker {
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	if exec == nil {
		exec = loop.Inline{}
	}
	return &Ticker{
		interval: time.Second / time.Duration(fps),
		exec:     exec,
		stop:     make(chan struct{}),
	}
}

// Interval returns the frame interval.
func (t *Ticker) Interval() time.Duration {
	return t.interval
}

// Request schedules cb for the next tick. The ticking goroutine starts on
// the first request. Requests after Close are ignored and return 0.
func (t *Ticker) Request(cb Callback) Handle {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0
	}
	if !t.started {
		t.started = true
		t.wg.Add(1)
		go t.run()
	}
	t.mu.Unlock()
	return t.reqs.add(cb)
}

// Cancel drops a pending request.
func (t *Ticker) Cancel(h Handle) {
	t.reqs.remove(h)
}

// Close stops the ticking goroutine. Safe to call multiple times.
func (t *Ticker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	close(t.stop)
	t.mu.Unlock()
	t.wg.Wait()
}

func (t *Ticker) run() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case now := <-ticker.C:
			if t.reqs.len() == 0 {
				continue
			}
			t.exec.Post(func() {
				for _, cb := range t.reqs.take() {
					cb(now)
				}
			})
		}
	}
}
