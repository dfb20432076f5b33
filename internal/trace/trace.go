// Package trace records scrollwatch sessions as JSON lines and replays them
// against a headless window.
//
// Each line is one record. Input samples carry the raw scroll offset or the
// full window geometry; update records carry what the collector published:
//
//	{"t":12,"kind":"scroll","x":0,"y":120}
//	{"t":40,"kind":"resize","inner":{"w":80,"h":24},...}
//	{"t":41,"kind":"update","cadence":"immediate","flags":{"scroll":true},...}
//
// The t field is milliseconds since recording started.
package trace

import (
	"errors"
	"time"

	"github.com/dshills/scrollwatch/internal/viewport"
	"github.com/dshills/scrollwatch/internal/window"
)

// Record kinds.
const (
	KindScroll      = "scroll"
	KindResize      = "resize"
	KindOrientation = "orientation"
	KindUpdate      = "update"
)

var (
	// ErrClosed is returned when writing to a closed recorder.
	ErrClosed = errors.New("trace recorder closed")

	// ErrMalformed indicates a line that is not a valid trace record.
	ErrMalformed = errors.New("malformed trace record")
)

// Sample is one recorded input.
type Sample struct {
	At      time.Duration
	Kind    string
	X, Y    int
	Metrics window.Metrics
}

// UpdateRecord is one recorded publication.
type UpdateRecord struct {
	At         time.Duration
	Cadence    string
	Scroll     *viewport.ScrollState
	Dimensions *viewport.Dimensions
	Flags      viewport.Flags
}

// Trace is a parsed recording.
type Trace struct {
	Samples []Sample
	Updates []UpdateRecord
}

// Duration returns the time of the last record.
func (t Trace) Duration() time.Duration {
	var d time.Duration
	if n := len(t.Samples); n > 0 {
		d = t.Samples[n-1].At
	}
	if n := len(t.Updates); n > 0 && t.Updates[n-1].At > d {
		d = t.Updates[n-1].At
	}
	return d
}
