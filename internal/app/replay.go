package app

import (
	"context"
	"time"

	"github.com/dshills/scrollwatch/internal/pager"
	"github.com/dshills/scrollwatch/internal/trace"
	"github.com/dshills/scrollwatch/internal/viewport"
	"github.com/dshills/scrollwatch/internal/window"
)

// runReplay feeds a recorded session through a headless window and logs
// what the collector publishes.
func (app *Application) runReplay(ctx context.Context) error {
	tr, err := trace.ParseFile(app.opts.ReplayPath)
	if err != nil {
		return NewOperationError("replay", app.opts.ReplayPath, err)
	}
	log := app.log.WithComponent("replay")
	log.Info("replaying %d samples over %s", len(tr.Samples), tr.Duration())

	win := window.NewNull(initialMetrics(tr))
	app.collector = viewport.New(win, app.collectorOptions()...)
	defer app.collector.Close()
	app.collector.Subscribe(func(u viewport.Update) {
		log.Debug("%s: %s", u.Kind, pager.StatusLine(u.Snapshot))
		app.consume(u)
	})
	if app.recorder != nil {
		detach := app.recorder.Attach(win)
		defer detach()
	}
	close(app.started)

	if err := trace.Play(ctx, tr, win, trace.WithPacing()); err != nil {
		return NewOperationError("replay", app.opts.ReplayPath, err)
	}

	// Let the debounced resize, the last frame and the idle callback land.
	v := app.cfg.Viewport
	frame := time.Second / time.Duration(v.FrameRate)
	settle := v.ResizeDelay.Std() + v.IdleDelay.Std() + 2*frame
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-app.quit:
	case <-time.After(settle):
	}

	stats := app.collector.Stats()
	log.Info("done: %d publishes, %d idle, final %s",
		stats.Publishes, stats.IdlePublishes, pager.StatusLine(app.collector.Snapshot()))
	return nil
}

// initialMetrics starts the window at the first recorded geometry so the
// opening resize does not read as a change. Traces with no geometry start
// at an 80x24 terminal.
func initialMetrics(tr trace.Trace) window.Metrics {
	for _, s := range tr.Samples {
		if s.Kind != trace.KindScroll {
			return s.Metrics
		}
	}
	return window.SimpleMetrics(80, 24)
}
