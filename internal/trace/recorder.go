package trace

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/tidwall/sjson"

	"github.com/dshills/scrollwatch/internal/debounce"
	"github.com/dshills/scrollwatch/internal/viewport"
	"github.com/dshills/scrollwatch/internal/window"
)

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithClock sets the clock used to timestamp records.
func WithClock(c debounce.Clock) RecorderOption {
	return func(r *Recorder) {
		if c != nil {
			r.clock = c
		}
	}
}

// Recorder writes trace records to a writer. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	clock  debounce.Clock
	start  time.Time
	err    error
	closed bool
	count  int
}

// NewRecorder records to w.
func NewRecorder(w io.Writer, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		w:     w,
		clock: debounce.RealClock(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.start = r.clock.Now()
	return r
}

// Create records to a new file at path.
func Create(path string, opts ...RecorderOption) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating trace %s: %w", path, err)
	}
	r := NewRecorder(f, opts...)
	r.closer = f
	return r, nil
}

// Attach records scroll, resize and orientation events from win until the
// returned function is called.
func (r *Recorder) Attach(win window.Window) (detach func()) {
	removes := []func(){
		win.AddListener(window.EventScroll, func() {
			x, y := win.ScrollOffset()
			r.Scroll(x, y)
		}),
		win.AddListener(window.EventResize, func() {
			r.Geometry(KindResize, win.Metrics())
		}),
		win.AddListener(window.EventOrientation, func() {
			r.Geometry(KindOrientation, win.Metrics())
		}),
	}
	return func() {
		for _, remove := range removes {
			remove()
		}
	}
}

// Scroll records a raw scroll sample.
func (r *Recorder) Scroll(x, y int) {
	r.write(func(e *encoder) {
		e.set("kind", KindScroll)
		e.set("x", x)
		e.set("y", y)
	})
}

// Geometry records a resize or orientation sample.
func (r *Recorder) Geometry(kind string, m window.Metrics) {
	r.write(func(e *encoder) {
		e.set("kind", kind)
		e.size("inner", m.Inner)
		e.size("outer", m.Outer)
		e.box("document", m.Document)
		e.box("body", m.Body)
	})
}

// Update records a publication. It has the viewport.Listener signature.
func (r *Recorder) Update(u viewport.Update) {
	r.write(func(e *encoder) {
		e.set("kind", KindUpdate)
		e.set("cadence", u.Kind.String())
		if sc := u.Snapshot.Scroll; sc != nil {
			e.set("scroll.x", sc.X)
			e.set("scroll.y", sc.Y)
			e.set("scroll.up", sc.IsScrollingUp)
			e.set("scroll.down", sc.IsScrollingDown)
			e.set("scroll.left", sc.IsScrollingLeft)
			e.set("scroll.right", sc.IsScrollingRight)
			e.set("scroll.x_turn", sc.XTurn)
			e.set("scroll.y_turn", sc.YTurn)
			e.set("scroll.dx_turn", sc.XDTurn)
			e.set("scroll.dy_turn", sc.YDTurn)
		}
		if d := u.Snapshot.Dimensions; d != nil {
			e.set("dimensions.width", d.Width)
			e.set("dimensions.height", d.Height)
			e.set("dimensions.client_width", d.ClientWidth)
			e.set("dimensions.client_height", d.ClientHeight)
			e.set("dimensions.outer_width", d.OuterWidth)
			e.set("dimensions.outer_height", d.OuterHeight)
			e.set("dimensions.document_width", d.DocumentWidth)
			e.set("dimensions.document_height", d.DocumentHeight)
		}
		e.set("flags.scroll", u.Flags.ScrollDidUpdate)
		e.set("flags.dimensions", u.Flags.DimensionsDidUpdate)
	})
}

// Count returns the number of records written.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Err returns the first write or encode error.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Close stops recording and closes the file opened by Create.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return r.err
	}
	r.closed = true
	if r.closer != nil {
		if err := r.closer.Close(); err != nil && r.err == nil {
			r.err = err
		}
	}
	return r.err
}

func (r *Recorder) write(fill func(*encoder)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		if r.err == nil {
			r.err = ErrClosed
		}
		return
	}
	if r.err != nil {
		return
	}

	e := &encoder{}
	e.set("t", r.clock.Now().Sub(r.start).Milliseconds())
	fill(e)
	if e.err != nil {
		r.err = fmt.Errorf("encoding trace record: %w", e.err)
		return
	}

	if _, err := r.w.Write(append(e.buf, '\n')); err != nil {
		r.err = fmt.Errorf("writing trace record: %w", err)
		return
	}
	r.count++
}

// encoder builds one JSON object with sjson, keeping the first error.
type encoder struct {
	buf []byte
	err error
}

func (e *encoder) set(path string, value any) {
	if e.err != nil {
		return
	}
	e.buf, e.err = sjson.SetBytes(e.buf, path, value)
}

func (e *encoder) size(prefix string, s window.Size) {
	e.set(prefix+".w", s.Width)
	e.set(prefix+".h", s.Height)
}

func (e *encoder) box(prefix string, b window.Box) {
	e.set(prefix+".client_w", b.ClientWidth)
	e.set(prefix+".client_h", b.ClientHeight)
	e.set(prefix+".scroll_w", b.ScrollWidth)
	e.set(prefix+".scroll_h", b.ScrollHeight)
	e.set(prefix+".offset_w", b.OffsetWidth)
	e.set(prefix+".offset_h", b.OffsetHeight)
}
