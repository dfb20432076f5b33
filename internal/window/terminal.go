package window

import (
	"sync"

	"github.com/gdamore/tcell/v2"
)

// DefaultWheelStep is the number of cells a mouse wheel notch scrolls.
const DefaultWheelStep = 3

// Terminal is a Window over a tcell screen. The screen is the viewport and
// the owner supplies the extents of the content being scrolled.
//
// Rows reserved at the bottom of the screen (a status line, for example) are
// excluded from the document client box.
type Terminal struct {
	mu        sync.Mutex
	screen    tcell.Screen
	listeners listenerSet

	contentW, contentH int
	reserved           int
	wheelStep          int
	x, y               int
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithReservedRows excludes n rows at the bottom of the screen from the viewport.
func WithReservedRows(n int) TerminalOption {
	return func(t *Terminal) {
		if n >= 0 {
			t.reserved = n
		}
	}
}

// WithWheelStep sets how far one wheel notch scrolls.
func WithWheelStep(n int) TerminalOption {
	return func(t *Terminal) {
		if n > 0 {
			t.wheelStep = n
		}
	}
}

// NewTerminal creates a terminal window on the process's controlling terminal.
func NewTerminal(opts ...TerminalOption) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTerminalWithScreen(screen, opts...), nil
}

// NewTerminalWithScreen wraps an existing screen, such as a simulation screen.
func NewTerminalWithScreen(screen tcell.Screen, opts ...TerminalOption) *Terminal {
	t := &Terminal{
		screen:    screen,
		wheelStep: DefaultWheelStep,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Init initializes the screen and enables mouse reporting.
func (t *Terminal) Init() error {
	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnableMouse()
	return nil
}

// Fini restores the terminal.
func (t *Terminal) Fini() {
	t.screen.Fini()
}

// Screen returns the underlying tcell screen.
func (t *Terminal) Screen() tcell.Screen {
	return t.screen
}

// ViewportSize returns the visible content area in cells.
func (t *Terminal) ViewportSize() (width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewportLocked()
}

func (t *Terminal) viewportLocked() (int, int) {
	w, h := t.screen.Size()
	return w, max(h-t.reserved, 0)
}

// SetContentSize sets the extents of the scrolled content and clamps the
// offsets to them.
func (t *Terminal) SetContentSize(width, height int) {
	t.mu.Lock()
	t.contentW, t.contentH = max(width, 0), max(height, 0)
	moved := t.clampLocked()
	t.mu.Unlock()

	if moved {
		t.listeners.emit(EventScroll)
	}
}

// Metrics reports the screen as the window and the content as the document.
func (t *Terminal) Metrics() Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, h := t.screen.Size()
	vw, vh := t.viewportLocked()
	return Metrics{
		Inner: Size{w, h},
		Outer: Size{w, h},
		Document: Box{
			ClientWidth: vw, ClientHeight: vh,
			ScrollWidth: max(t.contentW, vw), ScrollHeight: max(t.contentH, vh),
			OffsetWidth: vw, OffsetHeight: vh,
		},
		Body: Box{
			ClientWidth: t.contentW, ClientHeight: t.contentH,
			ScrollWidth: t.contentW, ScrollHeight: t.contentH,
			OffsetWidth: t.contentW, OffsetHeight: t.contentH,
		},
	}
}

// ScrollOffset returns the current offsets.
func (t *Terminal) ScrollOffset() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.x, t.y
}

// AddListener registers fn for ev.
func (t *Terminal) AddListener(ev EventType, fn func()) func() {
	return t.listeners.add(ev, fn)
}

// ScrollTo moves to (x, y), clamped to the content. EventScroll fires only
// when the offset actually changes.
func (t *Terminal) ScrollTo(x, y int) {
	t.mu.Lock()
	oldX, oldY := t.x, t.y
	t.x, t.y = x, y
	t.clampLocked()
	moved := t.x != oldX || t.y != oldY
	t.mu.Unlock()

	if moved {
		t.listeners.emit(EventScroll)
	}
}

// ScrollBy moves relative to the current offset.
func (t *Terminal) ScrollBy(dx, dy int) {
	x, y := t.ScrollOffset()
	t.ScrollTo(x+dx, y+dy)
}

// clampLocked keeps the offsets inside the scrollable range and reports
// whether they moved.
func (t *Terminal) clampLocked() bool {
	vw, vh := t.viewportLocked()
	maxX := max(t.contentW-vw, 0)
	maxY := max(t.contentH-vh, 0)

	oldX, oldY := t.x, t.y
	t.x = min(max(t.x, 0), maxX)
	t.y = min(max(t.y, 0), maxY)
	return t.x != oldX || t.y != oldY
}

// HandleEvent translates a tcell event into window behaviour. It returns
// true when the event was consumed.
func (t *Terminal) HandleEvent(ev tcell.Event) bool {
	switch e := ev.(type) {
	case *tcell.EventResize:
		t.screen.Sync()
		t.mu.Lock()
		moved := t.clampLocked()
		t.mu.Unlock()
		if moved {
			t.listeners.emit(EventScroll)
		}
		t.listeners.emit(EventResize)
		return true

	case *tcell.EventMouse:
		step := t.wheelStep
		switch {
		case e.Buttons()&tcell.WheelUp != 0:
			t.ScrollBy(0, -step)
		case e.Buttons()&tcell.WheelDown != 0:
			t.ScrollBy(0, step)
		case e.Buttons()&tcell.WheelLeft != 0:
			t.ScrollBy(-step, 0)
		case e.Buttons()&tcell.WheelRight != 0:
			t.ScrollBy(step, 0)
		default:
			return false
		}
		return true

	case *tcell.EventKey:
		return t.handleKey(e)
	}
	return false
}

func (t *Terminal) handleKey(e *tcell.EventKey) bool {
	_, vh := t.ViewportSize()
	page := max(vh-1, 1)

	switch e.Key() {
	case tcell.KeyUp:
		t.ScrollBy(0, -1)
	case tcell.KeyDown:
		t.ScrollBy(0, 1)
	case tcell.KeyLeft:
		t.ScrollBy(-1, 0)
	case tcell.KeyRight:
		t.ScrollBy(1, 0)
	case tcell.KeyPgUp:
		t.ScrollBy(0, -page)
	case tcell.KeyPgDn:
		t.ScrollBy(0, page)
	case tcell.KeyHome:
		x, _ := t.ScrollOffset()
		t.ScrollTo(x, 0)
	case tcell.KeyEnd:
		t.mu.Lock()
		end := t.contentH
		x := t.x
		t.mu.Unlock()
		t.ScrollTo(x, end)
	case tcell.KeyRune:
		switch e.Rune() {
		case ' ':
			t.ScrollBy(0, page)
		case 'j':
			t.ScrollBy(0, 1)
		case 'k':
			t.ScrollBy(0, -1)
		case 'h':
			t.ScrollBy(-1, 0)
		case 'l':
			t.ScrollBy(1, 0)
		default:
			return false
		}
	default:
		return false
	}
	return true
}
