package viewport

import (
	"testing"
	"time"

	"github.com/dshills/scrollwatch/internal/debounce"
	"github.com/dshills/scrollwatch/internal/frame"
	"github.com/dshills/scrollwatch/internal/loop"
	"github.com/dshills/scrollwatch/internal/window"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

type call struct {
	snap  Snapshot
	flags Flags
}

type harness struct {
	t      *testing.T
	win    *window.Null
	frames *frame.Manual
	clock  *debounce.ManualClock
	c      *Collector

	updates []call
	idles   []call
	events  []string
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		t:      t,
		win:    window.NewNullSize(1024, 768),
		frames: frame.NewManual(),
		clock:  debounce.NewManualClock(epoch),
	}
	base := []Option{
		WithExecutor(loop.Inline{}),
		WithScheduler(h.frames),
		WithClock(h.clock),
		OnUpdate(func(s Snapshot, f Flags) {
			h.updates = append(h.updates, call{s, f})
			h.events = append(h.events, "update")
		}),
		OnIdle(func(s Snapshot, f Flags) {
			h.idles = append(h.idles, call{s, f})
			h.events = append(h.events, "idle")
		}),
	}
	h.c = New(h.win, append(base, opts...)...)
	t.Cleanup(h.c.Close)
	return h
}

func (h *harness) frame() {
	h.frames.Step(h.clock.Now())
}

func (h *harness) lastUpdate() call {
	h.t.Helper()
	if len(h.updates) == 0 {
		h.t.Fatal("no updates published")
	}
	return h.updates[len(h.updates)-1]
}

func TestInitialSnapshot(t *testing.T) {
	h := newHarness(t)

	s := h.c.Snapshot()
	if *s.Scroll != (ScrollState{}) {
		t.Errorf("initial scroll = %+v, want zero", *s.Scroll)
	}
	want := Dimensions{
		Width: 1024, Height: 768,
		ClientWidth: 1024, ClientHeight: 768,
		OuterWidth: 1024, OuterHeight: 768,
		DocumentWidth: 1024, DocumentHeight: 768,
	}
	if *s.Dimensions != want {
		t.Errorf("initial dimensions = %+v, want %+v", *s.Dimensions, want)
	}

	h.frame()
	h.frame()
	if len(h.updates) != 0 {
		t.Errorf("published %d updates without any change", len(h.updates))
	}
	if st := h.c.Stats(); st.Frames != 2 || st.DirtyFrames != 0 {
		t.Errorf("stats = %+v, want 2 clean frames", st)
	}
}

func TestScrollScenario(t *testing.T) {
	h := newHarness(t)

	h.win.ScrollTo(0, 50)
	h.frame()
	got := h.lastUpdate()
	if !got.flags.ScrollDidUpdate || got.flags.DimensionsDidUpdate {
		t.Fatalf("flags = %+v, want scroll only", got.flags)
	}
	if s := got.snap.Scroll; s.IsScrollingUp || !s.IsScrollingDown || s.YTurn != 0 || s.YDTurn != 50 {
		t.Fatalf("after y=50: %+v", *s)
	}

	h.win.ScrollTo(0, 30)
	h.frame()
	got = h.lastUpdate()
	if s := got.snap.Scroll; !s.IsScrollingUp || s.IsScrollingDown || s.YTurn != 50 || s.YDTurn != -20 {
		t.Fatalf("after y=30: %+v", *s)
	}

	h.win.ScrollTo(0, 30)
	h.frame()
	if len(h.updates) != 2 {
		t.Fatalf("repeated position published: %d updates, want 2", len(h.updates))
	}
	if s := h.c.Snapshot().Scroll; !s.IsScrollingUp || s.YTurn != 50 || s.YDTurn != -20 {
		t.Errorf("repeated position changed state: %+v", *s)
	}
	if st := h.c.Stats(); st.ScrollSamples != 3 || st.DirtyFrames != 3 || st.Publishes != 2 {
		t.Errorf("stats = %+v", st)
	}
}

func TestQueuedExecutorKeepsEveryScrollSample(t *testing.T) {
	tests := []struct {
		name      string
		positions []int
		want      ScrollState
	}{
		{
			name:      "reverse within one drain",
			positions: []int{50, 30},
			want: ScrollState{
				Y: 30, YTurn: 50, YDTurn: -20,
				IsScrollingUp: true, IsScrollingRight: true,
			},
		},
		{
			name:      "three samples one drain",
			positions: []int{10, 40, 25},
			want: ScrollState{
				Y: 25, YTurn: 40, YDTurn: -15,
				IsScrollingUp: true, IsScrollingRight: true,
			},
		},
		{
			name:      "down only",
			positions: []int{5, 20, 60},
			want: ScrollState{
				Y: 60, YTurn: 0, YDTurn: 60,
				IsScrollingDown: true, IsScrollingRight: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lp := loop.New()
			defer lp.Stop()
			h := newHarness(t, WithExecutor(lp))

			for _, y := range tt.positions {
				h.win.ScrollTo(0, y)
			}
			if n := lp.Len(); n != len(tt.positions) {
				t.Fatalf("queued %d closures, want %d", n, len(tt.positions))
			}
			lp.RunPending()
			h.frame()

			if got := *h.c.Snapshot().Scroll; got != tt.want {
				t.Errorf("scroll = %+v, want %+v", got, tt.want)
			}
			st := h.c.Stats()
			if st.ScrollSamples != uint64(len(tt.positions)) {
				t.Errorf("ScrollSamples = %d, want %d", st.ScrollSamples, len(tt.positions))
			}
			if len(h.updates) != 1 || st.Publishes != 1 {
				t.Errorf("updates = %d publishes = %d, want one for the batch", len(h.updates), st.Publishes)
			}
		})
	}
}

func TestAtMostOneUpdatePerFrame(t *testing.T) {
	h := newHarness(t)

	for y := 10; y <= 100; y += 10 {
		h.win.ScrollTo(0, y)
	}
	h.frame()
	if len(h.updates) != 1 {
		t.Fatalf("updates = %d, want 1 for a coalesced burst", len(h.updates))
	}
	if y := h.lastUpdate().snap.Scroll.Y; y != 100 {
		t.Errorf("Y = %d, want latest sample 100", y)
	}

	h.frame()
	h.frame()
	if len(h.updates) != 1 {
		t.Errorf("clean frames published: %d updates", len(h.updates))
	}
}

func TestEqualStateIsNotRepublished(t *testing.T) {
	h := newHarness(t)

	h.win.ScrollTo(0, 40)
	h.frame()

	// Same position: dirty, but nothing to publish.
	h.win.ScrollTo(0, 40)
	h.frame()

	// Geometry that returns to where it was inside one resize window.
	h.win.Resize(window.SimpleMetrics(900, 700))
	h.win.Resize(window.SimpleMetrics(1024, 768))
	h.clock.Advance(DefaultResizeDelay)
	h.frame()

	if len(h.updates) != 1 {
		t.Errorf("updates = %d, want 1", len(h.updates))
	}
	if st := h.c.Stats(); st.DirtyFrames != 3 || st.GeometryReads != 1 {
		t.Errorf("stats = %+v, want 3 dirty frames and 1 geometry read", st)
	}
}

func TestUnchangedHalfKeepsPointer(t *testing.T) {
	h := newHarness(t)
	initial := h.c.Snapshot()

	h.win.ScrollTo(0, 10)
	h.frame()
	first := h.lastUpdate().snap
	if first.Dimensions != initial.Dimensions {
		t.Error("dimensions pointer changed on a scroll-only update")
	}
	if first.Scroll == initial.Scroll {
		t.Error("scroll pointer reused for changed scroll state")
	}

	h.win.Resize(window.SimpleMetrics(800, 600))
	h.clock.Advance(DefaultResizeDelay)
	h.frame()
	second := h.lastUpdate()
	if !second.flags.DimensionsDidUpdate || second.flags.ScrollDidUpdate {
		t.Fatalf("flags = %+v, want dimensions only", second.flags)
	}
	if second.snap.Scroll != first.Scroll {
		t.Error("scroll pointer changed on a dimensions-only update")
	}
	if h.c.Snapshot().Dimensions != second.snap.Dimensions {
		t.Error("Snapshot() does not return the published snapshot")
	}
}

func TestResizeBurstReadsGeometryOnce(t *testing.T) {
	h := newHarness(t)

	h.win.Resize(window.SimpleMetrics(900, 700))
	h.clock.Advance(5 * time.Millisecond)
	h.win.Resize(window.SimpleMetrics(800, 600))
	h.clock.Advance(5 * time.Millisecond)

	if n := h.c.Stats().GeometryReads; n != 0 {
		t.Fatalf("geometry read during burst: %d", n)
	}

	h.clock.Advance(DefaultResizeDelay)
	if n := h.c.Stats().GeometryReads; n != 1 {
		t.Fatalf("GeometryReads = %d, want 1", n)
	}

	h.frame()
	d := h.lastUpdate().snap.Dimensions
	if d.Width != 800 || d.Height != 600 {
		t.Errorf("dimensions = %dx%d, want 800x600", d.Width, d.Height)
	}
	if len(h.updates) != 1 {
		t.Errorf("updates = %d, want 1", len(h.updates))
	}
}

func TestOrientationChangeReadsGeometry(t *testing.T) {
	h := newHarness(t)

	h.win.Rotate(window.SimpleMetrics(768, 1024))
	h.clock.Advance(DefaultResizeDelay)
	h.frame()

	d := h.lastUpdate().snap.Dimensions
	if d.Width != 768 || d.Height != 1024 {
		t.Errorf("dimensions = %dx%d, want 768x1024", d.Width, d.Height)
	}
}

func TestIdleFiresOnceAfterBurst(t *testing.T) {
	h := newHarness(t)

	for i := 1; i <= 5; i++ {
		h.win.ScrollTo(0, i*20)
		h.frame()
		h.clock.Advance(100 * time.Millisecond)
	}
	if len(h.updates) != 5 {
		t.Fatalf("updates = %d, want 5", len(h.updates))
	}
	if len(h.idles) != 0 {
		t.Fatalf("idle fired during burst")
	}

	h.clock.Advance(DefaultIdleDelay)

	if len(h.idles) != 1 {
		t.Fatalf("idles = %d, want 1", len(h.idles))
	}
	last := h.updates[len(h.updates)-1]
	if h.idles[0].snap != last.snap || h.idles[0].flags != last.flags {
		t.Errorf("idle args = %+v, want last update %+v", h.idles[0], last)
	}
	if h.events[len(h.events)-1] != "idle" || h.events[len(h.events)-2] != "update" {
		t.Errorf("event order = %v", h.events)
	}
	if st := h.c.Stats(); st.IdlePublishes != 1 {
		t.Errorf("IdlePublishes = %d, want 1", st.IdlePublishes)
	}
}

func TestSubscribeReceivesBothKinds(t *testing.T) {
	h := newHarness(t)

	var kinds []Kind
	unsubscribe := h.c.Subscribe(func(u Update) { kinds = append(kinds, u.Kind) })

	h.win.ScrollTo(0, 5)
	h.frame()
	h.clock.Advance(DefaultIdleDelay)

	if len(kinds) != 2 || kinds[0] != Immediate || kinds[1] != Idle {
		t.Fatalf("kinds = %v, want [immediate idle]", kinds)
	}

	unsubscribe()
	h.win.ScrollTo(0, 6)
	h.frame()
	if len(kinds) != 2 {
		t.Errorf("unsubscribed listener still called")
	}

	noop := h.c.Subscribe(nil)
	noop()
}

func TestKindString(t *testing.T) {
	if Immediate.String() != "immediate" || Idle.String() != "idle" || Kind(5).String() != "unknown" {
		t.Error("unexpected Kind names")
	}
}

func TestCloseTearsDown(t *testing.T) {
	h := newHarness(t)

	h.win.ScrollTo(0, 10)
	h.frame()
	h.win.Resize(window.SimpleMetrics(640, 480))

	h.c.Close()
	h.c.Close()

	for _, ev := range []window.EventType{window.EventScroll, window.EventResize, window.EventOrientation} {
		if n := h.win.ListenerCount(ev); n != 0 {
			t.Errorf("%s listeners after Close = %d", ev, n)
		}
	}
	if n := h.frames.Pending(); n != 0 {
		t.Errorf("frame requests after Close = %d", n)
	}

	h.clock.Advance(time.Hour)
	h.win.ScrollTo(0, 99)
	h.c.OnScroll(0, 77)
	h.c.OnResize()
	h.frame()

	if len(h.updates) != 1 || len(h.idles) != 0 {
		t.Errorf("callbacks after Close: updates=%d idles=%d", len(h.updates), len(h.idles))
	}
	if st := h.c.Stats(); st.GeometryReads != 0 {
		t.Errorf("geometry read after Close")
	}
	if !h.c.Closed() {
		t.Error("Closed() = false")
	}
}

func TestCloseFromUpdateCallback(t *testing.T) {
	frames := frame.NewManual()
	clock := debounce.NewManualClock(epoch)
	win := window.NewNullSize(100, 100)

	idles := 0
	var c *Collector
	c = New(win,
		WithExecutor(loop.Inline{}),
		WithScheduler(frames),
		WithClock(clock),
		OnUpdate(func(Snapshot, Flags) { c.Close() }),
		OnIdle(func(Snapshot, Flags) { idles++ }),
	)

	win.ScrollTo(0, 1)
	frames.Step(epoch)
	clock.Advance(time.Hour)

	if idles != 0 {
		t.Errorf("idle fired after Close inside update callback")
	}
	if frames.Pending() != 0 {
		t.Errorf("frame loop still scheduled")
	}
}

func TestCallbackPanicPropagates(t *testing.T) {
	h := newHarness(t, OnUpdate(func(Snapshot, Flags) { panic("consumer fault") }))

	h.win.ScrollTo(0, 1)
	defer func() {
		if r := recover(); r != "consumer fault" {
			t.Errorf("recovered %v, want consumer fault", r)
		}
	}()
	h.frame()
	t.Fatal("frame returned despite panicking callback")
}

func TestNilWindow(t *testing.T) {
	frames := frame.NewManual()
	clock := debounce.NewManualClock(epoch)
	c := New(nil, WithExecutor(loop.Inline{}), WithScheduler(frames), WithClock(clock))
	defer c.Close()

	if *c.Snapshot().Dimensions != (Dimensions{}) {
		t.Errorf("dimensions = %+v, want zero", *c.Snapshot().Dimensions)
	}

	c.OnResize()
	clock.Advance(DefaultResizeDelay)
	frames.Step(epoch)
	if st := c.Stats(); st.GeometryReads != 1 || st.Publishes != 0 {
		t.Errorf("stats = %+v, want one zero read and no publication", st)
	}
	if *c.Snapshot().Dimensions != (Dimensions{}) {
		t.Errorf("dimensions = %+v after read, want zero", *c.Snapshot().Dimensions)
	}
}

func TestSetDelays(t *testing.T) {
	h := newHarness(t, WithResizeDelay(10*time.Millisecond), WithIdleDelay(20*time.Millisecond))

	h.c.SetDelays(100*time.Millisecond, 0)
	h.win.Resize(window.SimpleMetrics(10, 10))
	h.clock.Advance(99 * time.Millisecond)
	if h.c.Stats().GeometryReads != 0 {
		t.Fatal("old resize delay still in effect")
	}
	h.clock.Advance(time.Millisecond)
	if h.c.Stats().GeometryReads != 1 {
		t.Fatal("new resize delay not applied")
	}

	h.frame()
	h.clock.Advance(20 * time.Millisecond)
	if len(h.idles) != 1 {
		t.Errorf("idle delay changed by zero argument: idles = %d", len(h.idles))
	}
}

func TestDefaultExecutorAndTicker(t *testing.T) {
	win := window.NewNullSize(320, 240)
	updates := make(chan Snapshot, 16)
	c := New(win,
		WithFrameRate(250),
		WithIdleDelay(time.Millisecond),
		OnUpdate(func(s Snapshot, _ Flags) { updates <- s }),
	)
	defer c.Close()

	win.ScrollTo(3, 4)

	select {
	case s := <-updates:
		if s.Scroll.X != 3 || s.Scroll.Y != 4 {
			t.Errorf("scroll = (%d, %d), want (3, 4)", s.Scroll.X, s.Scroll.Y)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no update from ticker-driven collector")
	}
}
