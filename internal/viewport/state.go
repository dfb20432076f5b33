package viewport

import "github.com/dshills/scrollwatch/internal/window"

// ScrollState is the scroll position and its derived direction fields.
type ScrollState struct {
	X, Y int

	IsScrollingUp    bool
	IsScrollingDown  bool
	IsScrollingLeft  bool
	IsScrollingRight bool

	// XTurn and YTurn are the positions at which the current directional
	// run along each axis began.
	XTurn, YTurn int

	// XDTurn and YDTurn are the signed distances travelled since the turn.
	XDTurn, YDTurn int
}

// Dimensions is the window and document geometry.
type Dimensions struct {
	Width, Height             int
	ClientWidth, ClientHeight int
	OuterWidth, OuterHeight   int

	// DocumentWidth and DocumentHeight are the full scrollable extents.
	DocumentWidth, DocumentHeight int
}

// Snapshot is a published view of the state. Its halves are immutable and
// shared with later snapshots for as long as they stay unchanged.
type Snapshot struct {
	Scroll     *ScrollState
	Dimensions *Dimensions
}

// Flags reports which halves of a snapshot changed.
type Flags struct {
	ScrollDidUpdate     bool
	DimensionsDidUpdate bool
}

// Any reports whether either half changed.
func (f Flags) Any() bool {
	return f.ScrollDidUpdate || f.DimensionsDidUpdate
}

// UpdateFunc receives published snapshots.
type UpdateFunc func(Snapshot, Flags)

// readDimensions samples the window's geometry. A nil window reads as zero.
func readDimensions(win window.Window) Dimensions {
	if win == nil {
		return Dimensions{}
	}
	m := win.Metrics()
	return Dimensions{
		Width:          m.Inner.Width,
		Height:         m.Inner.Height,
		ClientWidth:    m.Document.ClientWidth,
		ClientHeight:   m.Document.ClientHeight,
		OuterWidth:     m.Outer.Width,
		OuterHeight:    m.Outer.Height,
		DocumentWidth:  m.DocumentWidth(),
		DocumentHeight: m.DocumentHeight(),
	}
}
