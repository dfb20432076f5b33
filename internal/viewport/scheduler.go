package viewport

import "time"

// tick runs once per frame on the executor.
func (c *Collector) tick(time.Time) {
	if c.closed.Load() {
		return
	}
	c.frameCount.Add(1)
	if c.dirty {
		c.dirtyFrames.Add(1)
		c.sync()
	}
	c.dirty = false
}

// sync publishes the raw state if it differs from the last snapshot.
func (c *Collector) sync() {
	flags := Flags{
		ScrollDidUpdate:     c.scrollMemo.update(c.scroll),
		DimensionsDidUpdate: c.dimsMemo.update(c.dims),
	}
	if !flags.Any() {
		return
	}

	snap := Snapshot{Scroll: c.scrollMemo.value(), Dimensions: c.dimsMemo.value()}
	c.current.Store(&snap)
	c.publishes.Add(1)

	if c.onUpdate != nil {
		c.onUpdate(snap, flags)
	}
	if c.closed.Load() {
		return
	}
	c.hub.Publish(Update{Kind: Immediate, Snapshot: snap, Flags: flags})
	if c.closed.Load() {
		return
	}
	c.idle.Call(Update{Kind: Idle, Snapshot: snap, Flags: flags})
}

// deliverIdle runs on the executor once the idle debounce settles.
func (c *Collector) deliverIdle(u Update) {
	if c.closed.Load() {
		return
	}
	c.idlePublishes.Add(1)
	if c.onIdle != nil {
		c.onIdle(u.Snapshot, u.Flags)
	}
	if c.closed.Load() {
		return
	}
	c.hub.Publish(u)
}
