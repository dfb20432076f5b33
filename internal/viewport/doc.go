// Package viewport tracks a window's scroll position and geometry and
// publishes change-gated snapshots of them.
//
// A Collector has two halves. The sampler owns the raw state: scroll events
// update the position together with the derived direction and turn fields,
// and resize events re-read the full geometry. Both mark the state dirty.
// The scheduler runs once per animation frame; when the state is dirty it
// compares it field by field against the last published copy and, if
// anything changed, publishes a Snapshot twice: immediately, and again
// through a trailing debounce once activity settles.
//
// All state is owned by a single goroutine, the collector's executor.
// Window listeners, frame ticks and debounce timers only post work to it.
//
// Snapshots share unchanged halves by pointer, so consumers can detect
// "nothing changed on this side" with a pointer comparison:
//
//	c := viewport.New(win, viewport.OnUpdate(func(s viewport.Snapshot, f viewport.Flags) {
//		if f.ScrollDidUpdate {
//			redrawScrollIndicator(s.Scroll)
//		}
//	}))
//	defer c.Close()
package viewport
