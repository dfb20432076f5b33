// Package hook lets Lua scripts consume viewport updates.
//
// A script defines on_update(state) and/or on_idle(state). The state table
// mirrors a published update:
//
//	state.scroll.x, state.scroll.y
//	state.scroll.up, state.scroll.down, state.scroll.left, state.scroll.right
//	state.scroll.x_turn, state.scroll.y_turn, state.scroll.dx_turn, state.scroll.dy_turn
//	state.dimensions.width, state.dimensions.height, ...
//	state.flags.scroll, state.flags.dimensions
//
// Scripts run in a reduced environment: only the base, table, string and math
// libraries are opened and the file loading functions are removed. A global
// log(msg) writes to the host logger.
package hook

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/scrollwatch/internal/logging"
	"github.com/dshills/scrollwatch/internal/viewport"
)

// Handler names looked up in the script's globals.
const (
	UpdateHandler = "on_update"
	IdleHandler   = "on_idle"
)

// DefaultTimeout bounds a single handler call.
const DefaultTimeout = 250 * time.Millisecond

// Option configures a Script.
type Option func(*Script)

// WithTimeout sets the per-call time limit. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(s *Script) {
		s.timeout = d
	}
}

// WithLogger sets the logger behind the script's log function.
func WithLogger(l *logging.Logger) Option {
	return func(s *Script) {
		if l != nil {
			s.logger = l
		}
	}
}

// Script is a loaded Lua consumer.
//
// gopher-lua states are not goroutine-safe; calls are serialized by mu.
type Script struct {
	L *lua.LState

	mu      sync.Mutex
	name    string
	timeout time.Duration
	logger  *logging.Logger
	closed  bool

	hasUpdate bool
	hasIdle   bool
}

// Load reads and runs the script at path.
func Load(path string, opts ...Option) (*Script, error) {
	s := newScript(path, opts)
	if err := s.run(func() error { return s.L.DoFile(path) }); err != nil {
		s.L.Close()
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return s.finishLoad()
}

// LoadString runs src as a script named name.
func LoadString(name, src string, opts ...Option) (*Script, error) {
	s := newScript(name, opts)
	if err := s.run(func() error { return s.L.DoString(src) }); err != nil {
		s.L.Close()
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}
	return s.finishLoad()
}

func newScript(name string, opts []Option) *Script {
	s := &Script{
		name:    name,
		timeout: DefaultTimeout,
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)
	s.logger = s.logger.WithComponent("hook").WithField("script", name)
	s.L.SetGlobal("log", s.L.NewFunction(s.luaLog))
	return s
}

func (s *Script) finishLoad() (*Script, error) {
	s.hasUpdate = s.L.GetGlobal(UpdateHandler).Type() == lua.LTFunction
	s.hasIdle = s.L.GetGlobal(IdleHandler).Type() == lua.LTFunction
	if !s.hasUpdate && !s.hasIdle {
		s.L.Close()
		return nil, fmt.Errorf("%s: %w", s.name, ErrNoHandlers)
	}
	return s, nil
}

// openSafeLibraries opens the libraries scripts may use and strips loaders.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
}

func (s *Script) luaLog(L *lua.LState) int {
	s.logger.Info("%s", L.CheckString(1))
	return 0
}

// Name returns the script path or name.
func (s *Script) Name() string {
	return s.name
}

// HasUpdate reports whether the script defines on_update.
func (s *Script) HasUpdate() bool {
	return s.hasUpdate
}

// HasIdle reports whether the script defines on_idle.
func (s *Script) HasIdle() bool {
	return s.hasIdle
}

// Handle dispatches u to the handler matching its kind. A missing handler
// is not an error.
func (s *Script) Handle(u viewport.Update) error {
	switch u.Kind {
	case viewport.Idle:
		return s.OnIdle(u.Snapshot, u.Flags)
	default:
		return s.OnUpdate(u.Snapshot, u.Flags)
	}
}

// OnUpdate calls on_update if defined.
func (s *Script) OnUpdate(snap viewport.Snapshot, flags viewport.Flags) error {
	if !s.hasUpdate {
		return nil
	}
	return s.call(UpdateHandler, snap, flags)
}

// OnIdle calls on_idle if defined.
func (s *Script) OnIdle(snap viewport.Snapshot, flags viewport.Flags) error {
	if !s.hasIdle {
		return nil
	}
	return s.call(IdleHandler, snap, flags)
}

func (s *Script) call(fn string, snap viewport.Snapshot, flags viewport.Flags) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	state := stateTable(s.L, snap, flags)
	err := s.run(func() error {
		return s.L.CallByParam(lua.P{
			Fn:      s.L.GetGlobal(fn),
			NRet:    0,
			Protect: true,
		}, state)
	})
	if err != nil {
		return fmt.Errorf("%s: %s: %w", s.name, fn, err)
	}
	return nil
}

// run executes fn under the time limit, converting panics into errors.
func (s *Script) run(fn func() error) (err error) {
	if s.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.L.SetContext(ctx)
		defer func() {
			s.L.RemoveContext()
			if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				err = fmt.Errorf("%w: %v", ErrTimeout, err)
			}
		}()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// Close releases the Lua state. It is safe to call more than once.
func (s *Script) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.L.Close()
}
