// Package window abstracts the host whose scroll position and geometry are tracked.
//
// A Window reports its geometry as browser-style metrics: the inner and outer
// size of the window itself, and the client/scroll/offset boxes of the
// document element and the body. Hosts notify listeners when the window
// scrolls, resizes or changes orientation.
package window

// EventType identifies a window notification.
type EventType int

const (
	// EventScroll fires when the scroll offset may have changed.
	EventScroll EventType = iota
	// EventResize fires when the window geometry may have changed.
	EventResize
	// EventOrientation fires when the host rotates.
	EventOrientation
)

// String returns the event name.
func (e EventType) String() string {
	switch e {
	case EventScroll:
		return "scroll"
	case EventResize:
		return "resize"
	case EventOrientation:
		return "orientationchange"
	default:
		return "unknown"
	}
}

// Size is a width/height pair in host units (pixels or cells).
type Size struct {
	Width, Height int
}

// Box holds an element's client, scroll and offset extents.
type Box struct {
	ClientWidth, ClientHeight int
	ScrollWidth, ScrollHeight int
	OffsetWidth, OffsetHeight int
}

// Metrics is a full geometry reading.
type Metrics struct {
	// Inner is the viewport size including scrollbars.
	Inner Size
	// Outer is the size of the whole host window.
	Outer Size
	// Document is the root element's box.
	Document Box
	// Body is the body element's box.
	Body Box
}

// DocumentWidth returns the true scrollable width of the document.
func (m Metrics) DocumentWidth() int {
	return max(m.Body.ScrollWidth, m.Body.OffsetWidth,
		m.Document.ClientWidth, m.Document.ScrollWidth, m.Document.OffsetWidth)
}

// DocumentHeight returns the true scrollable height of the document.
func (m Metrics) DocumentHeight() int {
	return max(m.Body.ScrollHeight, m.Body.OffsetHeight,
		m.Document.ClientHeight, m.Document.ScrollHeight, m.Document.OffsetHeight)
}

// Window is a host that can be sampled and observed.
type Window interface {
	// Metrics reads the current geometry.
	Metrics() Metrics

	// ScrollOffset returns the current scroll offsets.
	ScrollOffset() (x, y int)

	// AddListener registers fn for ev and returns a function that removes it.
	// Listeners may be invoked from any goroutine the host chooses.
	AddListener(ev EventType, fn func()) (remove func())
}
