package hook

import "errors"

var (
	// ErrClosed is returned when calling into a closed script.
	ErrClosed = errors.New("hook script is closed")

	// ErrNoHandlers is returned when a script defines neither on_update nor on_idle.
	ErrNoHandlers = errors.New("hook script defines no handlers")

	// ErrTimeout is returned when a handler runs past its time limit.
	ErrTimeout = errors.New("hook execution timeout")
)
