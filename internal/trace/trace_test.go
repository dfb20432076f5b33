package trace

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/scrollwatch/internal/debounce"
	"github.com/dshills/scrollwatch/internal/frame"
	"github.com/dshills/scrollwatch/internal/loop"
	"github.com/dshills/scrollwatch/internal/viewport"
	"github.com/dshills/scrollwatch/internal/window"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

const frameTime = 16 * time.Millisecond

// session drives a collector over a headless window with manual time.
type session struct {
	win    *window.Null
	clock  *debounce.ManualClock
	frames *frame.Manual
	c      *viewport.Collector
	seen   []viewport.Update
}

func newSession(t *testing.T) *session {
	t.Helper()
	s := &session{
		win:    window.NewNullSize(1024, 768),
		clock:  debounce.NewManualClock(epoch),
		frames: frame.NewManual(),
	}
	s.c = viewport.New(s.win,
		viewport.WithExecutor(loop.Inline{}),
		viewport.WithScheduler(s.frames),
		viewport.WithClock(s.clock),
	)
	s.c.Subscribe(func(u viewport.Update) { s.seen = append(s.seen, u) })
	t.Cleanup(s.c.Close)
	return s
}

func (s *session) advance(d time.Duration) {
	s.clock.Advance(d)
	s.frames.Step(s.clock.Now())
}

func TestRecordAndParse(t *testing.T) {
	s := newSession(t)

	var buf bytes.Buffer
	rec := NewRecorder(&buf, WithClock(s.clock))
	detach := rec.Attach(s.win)
	s.c.Subscribe(rec.Update)

	s.win.ScrollTo(0, 50)
	s.advance(frameTime)
	s.win.ScrollTo(0, 30)
	s.advance(frameTime)
	s.win.Resize(window.SimpleMetrics(800, 600))
	s.advance(viewport.DefaultResizeDelay)
	s.advance(viewport.DefaultIdleDelay)

	detach()
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	tr, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(tr.Samples) != 3 {
		t.Fatalf("samples = %d, want 3", len(tr.Samples))
	}
	first, second, resize := tr.Samples[0], tr.Samples[1], tr.Samples[2]
	if first.Kind != KindScroll || first.Y != 50 || first.At != 0 {
		t.Errorf("first sample = %+v", first)
	}
	if second.Kind != KindScroll || second.Y != 30 || second.At != frameTime {
		t.Errorf("second sample = %+v", second)
	}
	if resize.Kind != KindResize || resize.Metrics != window.SimpleMetrics(800, 600) {
		t.Errorf("resize sample = %+v", resize)
	}

	if len(tr.Updates) != len(s.seen) {
		t.Fatalf("recorded %d updates, observed %d", len(tr.Updates), len(s.seen))
	}
	for i, got := range tr.Updates {
		want := s.seen[i]
		if got.Cadence != want.Kind.String() {
			t.Errorf("update %d cadence = %s, want %s", i, got.Cadence, want.Kind)
		}
		if *got.Scroll != *want.Snapshot.Scroll {
			t.Errorf("update %d scroll = %+v, want %+v", i, *got.Scroll, *want.Snapshot.Scroll)
		}
		if *got.Dimensions != *want.Snapshot.Dimensions {
			t.Errorf("update %d dimensions = %+v, want %+v", i, *got.Dimensions, *want.Snapshot.Dimensions)
		}
		if got.Flags != want.Flags {
			t.Errorf("update %d flags = %+v, want %+v", i, got.Flags, want.Flags)
		}
	}

	last := tr.Updates[len(tr.Updates)-1]
	if last.Cadence != "idle" {
		t.Errorf("last cadence = %s, want idle", last.Cadence)
	}
	if last.Scroll.YTurn != 50 || last.Scroll.YDTurn != -20 {
		t.Errorf("last scroll = %+v", *last.Scroll)
	}
	if last.Dimensions.Width != 800 {
		t.Errorf("last width = %d, want 800", last.Dimensions.Width)
	}
	if tr.Duration() < viewport.DefaultIdleDelay {
		t.Errorf("Duration() = %v", tr.Duration())
	}
}

func TestReplayReproducesSession(t *testing.T) {
	original := newSession(t)
	var buf bytes.Buffer
	rec := NewRecorder(&buf, WithClock(original.clock))
	rec.Attach(original.win)

	for _, y := range []int{10, 40, 25, 25, 60} {
		original.win.ScrollTo(0, y)
		original.advance(frameTime)
	}
	original.win.Rotate(window.SimpleMetrics(768, 1024))
	original.advance(viewport.DefaultResizeDelay)

	tr, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	replayed := newSession(t)
	err = Play(context.Background(), tr, replayed.win, WithAfterSample(func(Sample) {
		replayed.advance(frameTime)
	}))
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	replayed.advance(viewport.DefaultResizeDelay)

	got, want := replayed.c.Snapshot(), original.c.Snapshot()
	if *got.Scroll != *want.Scroll {
		t.Errorf("replayed scroll = %+v, want %+v", *got.Scroll, *want.Scroll)
	}
	if *got.Dimensions != *want.Dimensions {
		t.Errorf("replayed dimensions = %+v, want %+v", *got.Dimensions, *want.Dimensions)
	}
}

func TestParseSkipsBlankLines(t *testing.T) {
	in := `{"t":0,"kind":"scroll","x":1,"y":2}

{"t":5,"kind":"scroll","x":3,"y":4}
`
	tr, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(tr.Samples) != 2 || tr.Samples[1].X != 3 || tr.Samples[1].At != 5*time.Millisecond {
		t.Errorf("samples = %+v", tr.Samples)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"invalid json", `{"t":0,"kind":`},
		{"unknown kind", `{"t":0,"kind":"zoom"}`},
		{"missing kind", `{"t":0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in))
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("err = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestRecorderAfterClose(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)
	rec.Scroll(1, 1)
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	rec.Scroll(2, 2)
	if !errors.Is(rec.Err(), ErrClosed) {
		t.Errorf("Err() = %v, want ErrClosed", rec.Err())
	}
	if rec.Count() != 1 {
		t.Errorf("Count() = %d, want 1", rec.Count())
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRecorderWriteError(t *testing.T) {
	rec := NewRecorder(failWriter{})
	rec.Scroll(1, 1)
	rec.Scroll(2, 2)
	if err := rec.Err(); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Err() = %v", err)
	}
	if rec.Count() != 0 {
		t.Errorf("Count() = %d, want 0", rec.Count())
	}
}

func TestCreateAndParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl")
	rec, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	rec.Scroll(0, 7)
	rec.Geometry(KindOrientation, window.SimpleMetrics(10, 20))
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	tr, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(tr.Samples) != 2 {
		t.Fatalf("samples = %d, want 2", len(tr.Samples))
	}
	if tr.Samples[1].Kind != KindOrientation || tr.Samples[1].Metrics.Inner != (window.Size{Width: 10, Height: 20}) {
		t.Errorf("orientation sample = %+v", tr.Samples[1])
	}
}

func TestPlayFiresEvents(t *testing.T) {
	tr := Trace{Samples: []Sample{
		{Kind: KindScroll, X: 0, Y: 5},
		{Kind: KindResize, Metrics: window.SimpleMetrics(5, 5)},
		{Kind: KindOrientation, Metrics: window.SimpleMetrics(6, 6)},
	}}
	win := window.NewNullSize(1, 1)

	var events []window.EventType
	for _, ev := range []window.EventType{window.EventScroll, window.EventResize, window.EventOrientation} {
		win.AddListener(ev, func() { events = append(events, ev) })
	}

	if err := Play(context.Background(), tr, win); err != nil {
		t.Fatalf("Play: %v", err)
	}

	want := []window.EventType{window.EventScroll, window.EventResize, window.EventOrientation}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, events[i], want[i])
		}
	}
	if _, y := win.ScrollOffset(); y != 5 {
		t.Errorf("y = %d, want 5", y)
	}
	if win.Metrics() != window.SimpleMetrics(6, 6) {
		t.Errorf("metrics = %+v", win.Metrics())
	}
}

func TestPlayPacedHonoursContext(t *testing.T) {
	tr := Trace{Samples: []Sample{
		{At: 0, Kind: KindScroll, Y: 1},
		{At: time.Hour, Kind: KindScroll, Y: 2},
	}}
	win := window.NewNullSize(1, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := Play(ctx, tr, win, WithPacing())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}
	if _, y := win.ScrollOffset(); y != 1 {
		t.Errorf("y = %d, want 1", y)
	}
}
