package window

import "sync"

// Null is an in-memory window for tests and headless embedding.
// Every mutator fires its event, even when nothing changed, so callers can
// replay repeated samples.
type Null struct {
	mu        sync.Mutex
	metrics   Metrics
	x, y      int
	listeners listenerSet
}

// NewNull creates a headless window with the given geometry.
func NewNull(m Metrics) *Null {
	return &Null{metrics: m}
}

// NewNullSize creates a headless window whose inner, outer and document
// client sizes are all width x height.
func NewNullSize(width, height int) *Null {
	return NewNull(SimpleMetrics(width, height))
}

// SimpleMetrics builds metrics for a window with no chrome whose document
// exactly fills the viewport.
func SimpleMetrics(width, height int) Metrics {
	box := Box{
		ClientWidth: width, ClientHeight: height,
		ScrollWidth: width, ScrollHeight: height,
		OffsetWidth: width, OffsetHeight: height,
	}
	return Metrics{
		Inner:    Size{width, height},
		Outer:    Size{width, height},
		Document: box,
		Body:     box,
	}
}

// Metrics returns the configured geometry.
func (w *Null) Metrics() Metrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

// ScrollOffset returns the configured offsets.
func (w *Null) ScrollOffset() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.x, w.y
}

// AddListener registers fn for ev.
func (w *Null) AddListener(ev EventType, fn func()) func() {
	return w.listeners.add(ev, fn)
}

// ListenerCount returns the number of listeners registered for ev.
func (w *Null) ListenerCount(ev EventType) int {
	return w.listeners.count(ev)
}

// SetMetrics replaces the geometry without firing an event.
func (w *Null) SetMetrics(m Metrics) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.metrics = m
}

// Resize replaces the geometry and fires EventResize.
func (w *Null) Resize(m Metrics) {
	w.SetMetrics(m)
	w.listeners.emit(EventResize)
}

// Rotate replaces the geometry and fires EventOrientation.
func (w *Null) Rotate(m Metrics) {
	w.SetMetrics(m)
	w.listeners.emit(EventOrientation)
}

// ScrollTo moves the offsets and fires EventScroll.
func (w *Null) ScrollTo(x, y int) {
	w.mu.Lock()
	w.x, w.y = x, y
	w.mu.Unlock()
	w.listeners.emit(EventScroll)
}
