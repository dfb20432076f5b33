// Package app wires the viewport collector to a terminal pager, Lua hooks,
// session recording and live config reloads.
package app

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/scrollwatch/internal/config"
	"github.com/dshills/scrollwatch/internal/hook"
	"github.com/dshills/scrollwatch/internal/logging"
	"github.com/dshills/scrollwatch/internal/loop"
	"github.com/dshills/scrollwatch/internal/pager"
	"github.com/dshills/scrollwatch/internal/trace"
	"github.com/dshills/scrollwatch/internal/viewport"
	"github.com/dshills/scrollwatch/internal/window"
)

// Options configures the application. Empty fields fall back to the
// loaded configuration.
type Options struct {
	// ConfigPath is the path to a TOML or YAML configuration file.
	ConfigPath string

	// LogLevel overrides log.level.
	LogLevel string

	// LogFile overrides log.file.
	LogFile string

	// HookScript overrides hook.script.
	HookScript string

	// RecordPath overrides trace.record.
	RecordPath string

	// ReplayPath selects headless replay of a recorded session instead of
	// the interactive pager.
	ReplayPath string

	// Title is shown in the status row.
	Title string

	// Input is the document to page.
	Input io.Reader

	// Screen replaces the controlling terminal, for tests.
	Screen tcell.Screen

	// LogOutput replaces the log destination, for tests.
	LogOutput io.Writer
}

// Application owns every component for one run.
type Application struct {
	opts Options
	cfg  config.Config
	log  *logging.Logger

	logFile  *os.File
	loop     *loop.Loop
	hook     *hook.Script
	recorder *trace.Recorder
	watcher  *config.Watcher

	// Set by the run mode.
	collector *viewport.Collector
	term      *window.Terminal
	pager     *pager.Pager

	running      atomic.Bool
	started      chan struct{}
	quit         chan struct{}
	quitOnce     sync.Once
	shutdownOnce sync.Once
	shutdownErr  error
}

// New loads configuration and opens the hook, recorder and log file.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:    opts,
		loop:    loop.New(),
		started: make(chan struct{}),
		quit:    make(chan struct{}),
	}

	if err := app.bootstrap(); err != nil {
		_ = app.Shutdown()
		return nil, err
	}
	return app, nil
}

func (app *Application) bootstrap() error {
	cfg, err := config.Load(app.opts.ConfigPath)
	if err != nil {
		return NewOperationError("load config", app.opts.ConfigPath, err)
	}
	app.applyOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return NewOperationError("validate config", app.opts.ConfigPath, err)
	}
	app.cfg = cfg

	if err := app.openLog(); err != nil {
		return err
	}
	app.log.Info("starting (resize=%s idle=%s fps=%d)",
		cfg.Viewport.ResizeDelay, cfg.Viewport.IdleDelay, cfg.Viewport.FrameRate)

	if path := cfg.Hook.Script; path != "" {
		script, err := hook.Load(path, hook.WithLogger(app.log))
		if err != nil {
			return NewOperationError("load hook", path, err)
		}
		app.hook = script
	}

	if path := cfg.Trace.Record; path != "" {
		rec, err := trace.Create(path)
		if err != nil {
			return NewOperationError("create trace", path, err)
		}
		app.recorder = rec
	}

	return nil
}

// applyOverrides layers non-empty options over the loaded config.
func (app *Application) applyOverrides(cfg *config.Config) {
	if app.opts.LogLevel != "" {
		cfg.Log.Level = app.opts.LogLevel
	}
	if app.opts.LogFile != "" {
		cfg.Log.File = app.opts.LogFile
	}
	if app.opts.HookScript != "" {
		cfg.Hook.Script = app.opts.HookScript
	}
	if app.opts.RecordPath != "" {
		cfg.Trace.Record = app.opts.RecordPath
	}
}

func (app *Application) openLog() error {
	out := app.opts.LogOutput
	if out == nil {
		switch {
		case app.cfg.Log.File != "":
			f, err := os.OpenFile(app.cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return NewOperationError("open log", app.cfg.Log.File, err)
			}
			app.logFile = f
			out = f
		case app.opts.ReplayPath != "":
			out = os.Stderr
		default:
			// The terminal belongs to the pager.
			out = io.Discard
		}
	}

	lc := logging.DefaultConfig()
	lc.Level = logging.ParseLevel(app.cfg.Log.Level)
	lc.Output = out
	app.log = logging.New(lc)
	return nil
}

// Config returns the active configuration.
func (app *Application) Config() config.Config {
	return app.cfg
}

// Logger returns the application logger.
func (app *Application) Logger() *logging.Logger {
	return app.log
}

// Started is closed once Run has built its collector.
func (app *Application) Started() <-chan struct{} {
	return app.started
}

// Snapshot returns the collector's current snapshot. It is the zero
// Snapshot until Started is closed.
func (app *Application) Snapshot() viewport.Snapshot {
	select {
	case <-app.started:
		return app.collector.Snapshot()
	default:
		return viewport.Snapshot{}
	}
}

// Run starts the interactive pager, or a headless replay when ReplayPath is
// set, and blocks until it finishes. An interactive run ends with ErrQuit
// when the user quits.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	loopDone := make(chan error, 1)
	go func() { loopDone <- app.loop.Run(ctx) }()

	var err error
	if app.opts.ReplayPath != "" {
		err = app.runReplay(ctx)
	} else {
		err = app.runInteractive(ctx)
	}

	app.loop.Stop()
	if lerr := <-loopDone; err == nil && lerr != nil && !errors.Is(lerr, loop.ErrStopped) {
		err = lerr
	}
	return err
}

// Quit asks a running application to stop.
func (app *Application) Quit() {
	app.quitOnce.Do(func() { close(app.quit) })
}

// collectorOptions returns the options shared by both run modes.
func (app *Application) collectorOptions() []viewport.Option {
	v := app.cfg.Viewport
	return []viewport.Option{
		viewport.WithExecutor(app.loop),
		viewport.WithFrameRate(v.FrameRate),
		viewport.WithResizeDelay(v.ResizeDelay.Std()),
		viewport.WithIdleDelay(v.IdleDelay.Std()),
		viewport.WithLogger(app.log),
	}
}

// consume fans an update out to the hook and the recorder.
func (app *Application) consume(u viewport.Update) {
	if app.recorder != nil {
		app.recorder.Update(u)
	}
	if app.hook != nil {
		if err := app.hook.Handle(u); err != nil {
			app.log.WithComponent("hook").Warn("%v", err)
		}
	}
}

// startWatcher reloads delays, log level and theme when the config file
// changes. Reloads are applied on the owner loop.
func (app *Application) startWatcher() {
	if app.opts.ConfigPath == "" {
		return
	}
	log := app.log.WithComponent("config")
	w, err := config.NewWatcher(app.opts.ConfigPath,
		func(cfg config.Config) {
			app.loop.Post(func() { app.reload(cfg) })
		},
		config.WithErrorHandler(func(err error) {
			log.Warn("reload failed: %v", err)
		}),
	)
	if err != nil {
		log.Warn("not watching %s: %v", app.opts.ConfigPath, err)
		return
	}
	app.watcher = w
}

func (app *Application) reload(cfg config.Config) {
	app.applyOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		app.log.WithComponent("config").Warn("ignoring reload: %v", err)
		return
	}

	if app.collector != nil {
		app.collector.SetDelays(cfg.Viewport.ResizeDelay.Std(), cfg.Viewport.IdleDelay.Std())
	}
	app.log.SetLevel(logging.ParseLevel(cfg.Log.Level))
	if app.pager != nil {
		if th, err := pager.ParseTheme(cfg.Theme.StatusForeground, cfg.Theme.StatusBackground); err == nil {
			app.pager.SetTheme(th)
		} else {
			app.log.WithComponent("config").Warn("theme: %v", err)
		}
	}

	app.cfg = cfg
	app.log.Info("config reloaded (resize=%s idle=%s)", cfg.Viewport.ResizeDelay, cfg.Viewport.IdleDelay)
}

// Shutdown releases every component. It is safe to call more than once.
func (app *Application) Shutdown() error {
	app.shutdownOnce.Do(func() {
		app.Quit()

		var errs []error
		if app.watcher != nil {
			errs = append(errs, app.watcher.Close())
		}
		select {
		case <-app.started:
			app.collector.Close()
		default:
		}
		if app.hook != nil {
			app.hook.Close()
		}
		if app.recorder != nil {
			if err := app.recorder.Close(); err != nil {
				errs = append(errs, NewOperationError("write trace", app.cfg.Trace.Record, err))
			}
		}
		app.loop.Stop()

		if app.log != nil {
			app.log.Info("shutdown complete")
		}
		if app.logFile != nil {
			errs = append(errs, app.logFile.Close())
		}
		app.shutdownErr = errors.Join(errs...)
	})
	return app.shutdownErr
}
