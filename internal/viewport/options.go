package viewport

import (
	"time"

	"github.com/dshills/scrollwatch/internal/debounce"
	"github.com/dshills/scrollwatch/internal/frame"
	"github.com/dshills/scrollwatch/internal/logging"
	"github.com/dshills/scrollwatch/internal/loop"
)

// Default delays.
const (
	// DefaultResizeDelay coalesces resize and orientation bursts.
	DefaultResizeDelay = 50 * time.Millisecond

	// DefaultIdleDelay is how long publication must pause before the idle
	// update fires.
	DefaultIdleDelay = 500 * time.Millisecond
)

type options struct {
	exec        loop.Executor
	sched       frame.Scheduler
	frameRate   int
	clock       debounce.Clock
	resizeDelay time.Duration
	idleDelay   time.Duration
	logger      *logging.Logger
	onUpdate    UpdateFunc
	onIdle      UpdateFunc
}

func defaultOptions() options {
	return options{
		frameRate:   frame.DefaultFrameRate,
		clock:       debounce.RealClock(),
		resizeDelay: DefaultResizeDelay,
		idleDelay:   DefaultIdleDelay,
		logger:      logging.Nop(),
	}
}

// Option configures a Collector.
type Option func(*options)

// WithExecutor sets the executor that owns the collector's state. Without
// one, the collector runs its own loop goroutine.
func WithExecutor(exec loop.Executor) Option {
	return func(o *options) {
		o.exec = exec
	}
}

// WithScheduler sets the frame scheduler. Without one, a Ticker at the
// configured frame rate is used.
func WithScheduler(s frame.Scheduler) Option {
	return func(o *options) {
		o.sched = s
	}
}

// WithFrameRate sets the rate of the default Ticker.
func WithFrameRate(fps int) Option {
	return func(o *options) {
		if fps > 0 {
			o.frameRate = fps
		}
	}
}

// WithClock sets the clock used by the debouncers.
func WithClock(c debounce.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithResizeDelay sets the resize coalescing window.
func WithResizeDelay(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.resizeDelay = d
		}
	}
}

// WithIdleDelay sets the settle delay of the idle update.
func WithIdleDelay(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.idleDelay = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// OnUpdate sets the immediate callback, invoked at most once per frame.
func OnUpdate(fn UpdateFunc) Option {
	return func(o *options) {
		o.onUpdate = fn
	}
}

// OnIdle sets the idle callback, invoked once publication has settled.
func OnIdle(fn UpdateFunc) Option {
	return func(o *options) {
		o.onIdle = fn
	}
}
