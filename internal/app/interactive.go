package app

import (
	"context"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/scrollwatch/internal/pager"
	"github.com/dshills/scrollwatch/internal/viewport"
	"github.com/dshills/scrollwatch/internal/window"
)

// runInteractive pages the input document in the terminal.
func (app *Application) runInteractive(ctx context.Context) error {
	if app.opts.Input == nil {
		return ErrNoDocument
	}
	defer app.Quit()

	doc, err := pager.NewDocument(app.opts.Input)
	if err != nil {
		return NewOperationError("read document", app.opts.Title, err)
	}

	theme, err := pager.ParseTheme(app.cfg.Theme.StatusForeground, app.cfg.Theme.StatusBackground)
	if err != nil {
		return NewOperationError("parse theme", "", err)
	}

	term, err := app.openTerminal()
	if err != nil {
		return NewOperationError("open terminal", "", err)
	}
	if err := term.Init(); err != nil {
		return NewOperationError("init terminal", "", err)
	}
	defer term.Fini()
	app.term = term

	term.SetContentSize(doc.Width(), doc.Len())
	app.pager = pager.New(term.Screen(), doc, theme)
	app.pager.SetTitle(app.opts.Title)

	app.collector = viewport.New(term, app.collectorOptions()...)
	defer app.collector.Close()
	app.collector.Subscribe(app.onUpdate)

	if app.recorder != nil {
		detach := app.recorder.Attach(term)
		defer detach()
	}
	app.startWatcher()

	app.loop.Post(app.redraw)
	close(app.started)

	events := make(chan tcell.Event)
	go app.pollEvents(term.Screen(), events)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-app.quit:
			return ErrQuit
		case ev, ok := <-events:
			if !ok {
				return ErrQuit
			}
			app.loop.Post(func() { app.handleEvent(ev) })
		}
	}
}

// pollEvents forwards screen events until the screen is finalized or the
// application quits.
func (app *Application) pollEvents(screen tcell.Screen, events chan<- tcell.Event) {
	defer close(events)
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-app.quit:
			return
		}
	}
}

func (app *Application) openTerminal() (*window.Terminal, error) {
	if app.opts.Screen != nil {
		return window.NewTerminalWithScreen(app.opts.Screen, window.WithReservedRows(pager.StatusRows)), nil
	}
	return window.NewTerminal(window.WithReservedRows(pager.StatusRows))
}

// handleEvent runs on the owner loop.
func (app *Application) handleEvent(ev tcell.Event) {
	if key, ok := ev.(*tcell.EventKey); ok && isQuitKey(key) {
		app.Quit()
		return
	}
	if !app.term.HandleEvent(ev) {
		return
	}
	if _, ok := ev.(*tcell.EventResize); ok {
		app.redraw()
	}
}

func isQuitKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q'
	}
	return false
}

// onUpdate runs on the owner loop for both update kinds.
func (app *Application) onUpdate(u viewport.Update) {
	app.pager.Draw(u.Snapshot, u.Kind == viewport.Idle)
	app.consume(u)
}

func (app *Application) redraw() {
	app.pager.Draw(app.collector.Snapshot(), false)
}
