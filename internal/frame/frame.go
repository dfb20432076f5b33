// Package frame provides animation-frame scheduling for hosts without a
// display-driven frame callback.
//
// A Scheduler hands out one-shot frame requests, like requestAnimationFrame.
// Loop turns those one-shot requests into a repeating, cancellable task.
package frame

import (
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned when a closed scheduler is asked for a frame.
var ErrClosed = errors.New("frame scheduler closed")

// Handle identifies a pending frame request. The zero Handle is never issued.
type Handle uint64

// Callback runs once at the next frame boundary.
type Callback func(now time.Time)

// Scheduler issues one-shot frame callbacks.
type Scheduler interface {
	// Request schedules cb for the next frame.
	Request(cb Callback) Handle
	// Cancel drops a pending request. Unknown or already-run handles are ignored.
	Cancel(h Handle)
}

// requests is the pending-callback table shared by the schedulers.
type requests struct {
	mu      sync.Mutex
	next    Handle
	pending map[Handle]Callback
	order   []Handle
}

func (r *requests) add(cb Callback) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == nil {
		r.pending = make(map[Handle]Callback)
	}
	r.next++
	r.pending[r.next] = cb
	r.order = append(r.order, r.next)
	return r.next
}

func (r *requests) remove(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, h)
}

// take removes and returns every pending callback in request order.
// Callbacks requested while the batch runs land in the next frame.
func (r *requests) take() []Callback {
	r.mu.Lock()
	defer r.mu.Unlock()
	batch := make([]Callback, 0, len(r.pending))
	for _, h := range r.order {
		if cb, ok := r.pending[h]; ok {
			batch = append(batch, cb)
		}
	}
	r.pending = nil
	r.order = nil
	return batch
}

func (r *requests) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Manual is a Scheduler whose frames are produced by calling Step.
type Manual struct {
	reqs requests
}

// NewManual creates a manual scheduler.
func NewManual() *Manual {
	return &Manual{}
}

// Request schedules cb for the next Step.
func (m *Manual) Request(cb Callback) Handle {
	return m.reqs.add(cb)
}

// Cancel drops a pending request.
func (m *Manual) Cancel(h Handle) {
	m.reqs.remove(h)
}

// Step runs one frame and returns the number of callbacks executed.
func (m *Manual) Step(now time.Time) int {
	batch := m.reqs.take()
	for _, cb := range batch {
		cb(now)
	}
	return len(batch)
}

// Pending returns the number of outstanding requests.
func (m *Manual) Pending() int {
	return m.reqs.len()
}
