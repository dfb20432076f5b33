package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/scrollwatch/internal/logging"
)

// Duration is a time.Duration written as a string such as "50ms".
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String formats the duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a string", node.Line)
	}
	return d.UnmarshalText([]byte(node.Value))
}

// Config holds every setting.
type Config struct {
	Viewport ViewportConfig `toml:"viewport" yaml:"viewport"`
	Log      LogConfig      `toml:"log" yaml:"log"`
	Hook     HookConfig     `toml:"hook" yaml:"hook"`
	Trace    TraceConfig    `toml:"trace" yaml:"trace"`
	Theme    ThemeConfig    `toml:"theme" yaml:"theme"`
}

// ViewportConfig configures the collector.
type ViewportConfig struct {
	ResizeDelay Duration `toml:"resize_delay" yaml:"resize_delay"`
	IdleDelay   Duration `toml:"idle_delay" yaml:"idle_delay"`
	FrameRate   int      `toml:"frame_rate" yaml:"frame_rate"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
	File  string `toml:"file" yaml:"file"`
}

// HookConfig points at a Lua consumer script.
type HookConfig struct {
	Script string `toml:"script" yaml:"script"`
}

// TraceConfig configures session recording.
type TraceConfig struct {
	Record string `toml:"record" yaml:"record"`
}

// ThemeConfig holds status line colours as hex strings.
type ThemeConfig struct {
	StatusForeground string `toml:"status_fg" yaml:"status_fg"`
	StatusBackground string `toml:"status_bg" yaml:"status_bg"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Viewport: ViewportConfig{
			ResizeDelay: Duration(50 * time.Millisecond),
			IdleDelay:   Duration(500 * time.Millisecond),
			FrameRate:   60,
		},
		Log: LogConfig{
			Level: "info",
		},
		Theme: ThemeConfig{
			StatusForeground: "#e4e4e4",
			StatusBackground: "#005f87",
		},
	}
}

// Validate checks ranges.
func (c Config) Validate() error {
	if c.Viewport.ResizeDelay <= 0 {
		return &ValidationError{Setting: "viewport.resize_delay", Value: c.Viewport.ResizeDelay, Reason: "must be positive"}
	}
	if c.Viewport.IdleDelay <= 0 {
		return &ValidationError{Setting: "viewport.idle_delay", Value: c.Viewport.IdleDelay, Reason: "must be positive"}
	}
	if c.Viewport.FrameRate <= 0 || c.Viewport.FrameRate > 1000 {
		return &ValidationError{Setting: "viewport.frame_rate", Value: c.Viewport.FrameRate, Reason: "must be between 1 and 1000"}
	}
	if !logging.ValidLevel(c.Log.Level) {
		return &ValidationError{Setting: "log.level", Value: c.Log.Level, Reason: "must be debug, info, warn or error"}
	}
	return nil
}
