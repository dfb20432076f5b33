// Package debounce coalesces bursts of calls into a single delayed call.
//
// A Debouncer owns its timer. Call records the latest arguments and arms the
// timer; when the timer fires the wrapped function receives only the most
// recent arguments. Two modes are supported:
//
//   - Trailing restarts the delay on every call, so the function runs once
//     activity has paused for the full delay.
//   - Window opens a fixed window on the first call of a burst; calls inside
//     the window only replace the arguments, and the function runs when the
//     window closes.
package debounce

import (
	"sync"
	"time"
)

// Mode selects how calls inside a pending delay are treated.
type Mode int

const (
	// Trailing restarts the delay on every call.
	Trailing Mode = iota
	// Window fires once at first-call plus delay.
	Window
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Trailing:
		return "trailing"
	case Window:
		return "window"
	default:
		return "unknown"
	}
}

type settings struct {
	clock    Clock
	mode     Mode
	dispatch func(func())
}

// Option configures a Debouncer.
type Option func(*settings)

// WithClock sets the clock used to arm timers.
func WithClock(c Clock) Option {
	return func(s *settings) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithMode sets the debounce mode.
func WithMode(m Mode) Option {
	return func(s *settings) {
		s.mode = m
	}
}

// WithDispatch routes the firing onto another goroutine, typically an
// owner loop's Post. A fire that becomes stale before dispatch runs it
// (a later Call or a Cancel) is dropped.
func WithDispatch(dispatch func(func())) Option {
	return func(s *settings) {
		s.dispatch = dispatch
	}
}

// Debouncer delays calls to fn.
type Debouncer[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func(T)
	opts    settings
	timer   Timer
	args    T
	pending bool
	gen     uint64
}

// New creates a debouncer that calls fn after delay.
func New[T any](delay time.Duration, fn func(T), opts ...Option) *Debouncer[T] {
	s := settings{clock: RealClock(), mode: Trailing}
	for _, opt := range opts {
		opt(&s)
	}
	return &Debouncer[T]{
		delay: delay,
		fn:    fn,
		opts:  s,
	}
}

// Call records args and arms or re-arms the timer according to the mode.
func (d *Debouncer[T]) Call(args T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.args = args
	if d.pending && d.opts.mode == Window {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = true
	d.timer = d.opts.clock.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Cancel drops any pending call.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	var zero T
	d.args = zero
	d.pending = false
	d.gen++
}

// SetDelay changes the delay used by subsequent arming. A timer that is
// already armed keeps its deadline.
func (d *Debouncer[T]) SetDelay(delay time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delay = delay
}

// Delay returns the configured delay.
func (d *Debouncer[T]) Delay() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.delay
}

// Pending reports whether a call is waiting to fire.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.pending {
		d.mu.Unlock()
		return
	}
	args := d.args
	var zero T
	d.args = zero
	d.pending = false
	d.timer = nil
	dispatch := d.opts.dispatch
	d.mu.Unlock()

	if dispatch == nil {
		d.fn(args)
		return
	}
	dispatch(func() {
		if !d.current(gen) {
			return
		}
		d.fn(args)
	})
}

// current reports whether gen is still the latest arming and nothing has
// been armed or cancelled since.
func (d *Debouncer[T]) current(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return gen == d.gen
}
