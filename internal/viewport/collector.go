package viewport

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/scrollwatch/internal/debounce"
	"github.com/dshills/scrollwatch/internal/frame"
	"github.com/dshills/scrollwatch/internal/logging"
	"github.com/dshills/scrollwatch/internal/loop"
	"github.com/dshills/scrollwatch/internal/notify"
	"github.com/dshills/scrollwatch/internal/window"
)

// Kind tags an Update with the cadence that produced it.
type Kind int

const (
	// Immediate updates are published from the frame tick.
	Immediate Kind = iota
	// Idle updates are published after activity settles.
	Idle
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Immediate:
		return "immediate"
	case Idle:
		return "idle"
	default:
		return "unknown"
	}
}

// Update is what subscribers receive.
type Update struct {
	Kind     Kind
	Snapshot Snapshot
	Flags    Flags
}

// Listener receives updates of both kinds.
type Listener func(Update)

// Stats counts collector activity.
type Stats struct {
	Frames        uint64
	DirtyFrames   uint64
	Publishes     uint64
	IdlePublishes uint64
	ScrollSamples uint64
	GeometryReads uint64
}

// Collector samples a window and publishes snapshots of its state.
//
// Raw state is touched only on the executor. The exported methods are safe
// to call from any goroutine.
type Collector struct {
	win    window.Window
	exec   loop.Executor
	own    *loop.Loop
	ticker *frame.Ticker
	frames *frame.Loop
	log    *logging.Logger

	// Owned by the executor.
	scroll     ScrollState
	dims       Dimensions
	dirty      bool
	scrollMemo memo[ScrollState]
	dimsMemo   memo[Dimensions]

	current atomic.Pointer[Snapshot]

	onUpdate UpdateFunc
	onIdle   UpdateFunc
	hub      *notify.Hub[Update]
	idle     *debounce.Debouncer[Update]
	resize   *debounce.Debouncer[struct{}]

	removers  []func()
	closed    atomic.Bool
	closeOnce sync.Once

	frameCount    atomic.Uint64
	dirtyFrames   atomic.Uint64
	publishes     atomic.Uint64
	idlePublishes atomic.Uint64
	scrollSamples atomic.Uint64
	geometryReads atomic.Uint64
}

// New creates a collector for win and starts its frame loop. The geometry
// is sampled immediately; scroll state starts at zero. A nil win is
// allowed and reads as an all-zero geometry with no event sources.
func New(win window.Window, opts ...Option) *Collector {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Collector{
		win:      win,
		exec:     o.exec,
		log:      o.logger.WithComponent("viewport"),
		onUpdate: o.onUpdate,
		onIdle:   o.onIdle,
		hub:      notify.NewHub[Update](),
	}

	if c.exec == nil {
		c.own = loop.New()
		c.exec = c.own
		go func() { _ = c.own.Run(context.Background()) }()
	}

	sched := o.sched
	if sched == nil {
		c.ticker = frame.NewTicker(o.frameRate, c.exec)
		sched = c.ticker
	}

	c.dims = readDimensions(win)
	c.scrollMemo = newMemo(c.scroll)
	c.dimsMemo = newMemo(c.dims)
	c.current.Store(&Snapshot{Scroll: c.scrollMemo.value(), Dimensions: c.dimsMemo.value()})

	c.idle = debounce.New(o.idleDelay, c.deliverIdle,
		debounce.WithClock(o.clock),
		debounce.WithDispatch(c.exec.Post),
	)
	c.resize = debounce.New(o.resizeDelay, func(struct{}) { c.handleResize() },
		debounce.WithClock(o.clock),
		debounce.WithMode(debounce.Window),
		debounce.WithDispatch(c.exec.Post),
	)

	if win != nil {
		c.removers = append(c.removers,
			win.AddListener(window.EventScroll, func() {
				x, y := win.ScrollOffset()
				c.OnScroll(x, y)
			}),
			win.AddListener(window.EventResize, c.OnResize),
			win.AddListener(window.EventOrientation, c.OnResize),
		)
	} else {
		c.log.Debug("no window; geometry reads as zero")
	}

	c.frames = frame.NewLoop(sched, c.tick)
	c.frames.Start()

	return c
}

// Snapshot returns the most recently published snapshot. Before the first
// publication it reflects the initial state.
func (c *Collector) Snapshot() Snapshot {
	return *c.current.Load()
}

// Subscribe registers l for both update kinds and returns a function that
// removes it.
func (c *Collector) Subscribe(l Listener) (unsubscribe func()) {
	if l == nil {
		return func() {}
	}
	sub := c.hub.Subscribe(notify.Observer[Update](l))
	return sub.Unsubscribe
}

// OnScroll samples a raw scroll position. The position is captured by the
// caller so queued samples keep the order and values they were taken with.
func (c *Collector) OnScroll(rawX, rawY int) {
	if c.closed.Load() {
		return
	}
	c.exec.Post(func() { c.handleScroll(rawX, rawY) })
}

// OnResize schedules a geometry read. Bursts are coalesced into one read.
func (c *Collector) OnResize() {
	if c.closed.Load() {
		return
	}
	c.resize.Call(struct{}{})
}

// SetDelays changes the resize and idle delays. Non-positive values leave
// the corresponding delay unchanged.
func (c *Collector) SetDelays(resize, idle time.Duration) {
	if resize > 0 {
		c.resize.SetDelay(resize)
	}
	if idle > 0 {
		c.idle.SetDelay(idle)
	}
}

// Stats returns activity counters.
func (c *Collector) Stats() Stats {
	return Stats{
		Frames:        c.frameCount.Load(),
		DirtyFrames:   c.dirtyFrames.Load(),
		Publishes:     c.publishes.Load(),
		IdlePublishes: c.idlePublishes.Load(),
		ScrollSamples: c.scrollSamples.Load(),
		GeometryReads: c.geometryReads.Load(),
	}
}

// Closed reports whether Close has been called.
func (c *Collector) Closed() bool {
	return c.closed.Load()
}

// Close removes the window listeners, cancels the frame loop and both
// debouncers, and drops all subscribers. Work already posted to the
// executor becomes a no-op. Safe to call multiple times.
func (c *Collector) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		for _, remove := range c.removers {
			remove()
		}
		c.removers = nil
		c.frames.Stop()
		c.resize.Cancel()
		c.idle.Cancel()
		if c.ticker != nil {
			c.ticker.Close()
		}
		c.hub.Close()
		if c.own != nil {
			c.own.Stop()
		}
		c.log.Debug("closed")
	})
}

func (c *Collector) handleScroll(rawX, rawY int) {
	if c.closed.Load() {
		return
	}
	c.scroll.sample(rawX, rawY)
	c.scrollSamples.Add(1)
	c.dirty = true
}

func (c *Collector) handleResize() {
	if c.closed.Load() {
		return
	}
	c.dims = readDimensions(c.win)
	c.geometryReads.Add(1)
	c.dirty = true
	c.log.Debug("geometry %dx%d document %dx%d",
		c.dims.Width, c.dims.Height, c.dims.DocumentWidth, c.dims.DocumentHeight)
}
