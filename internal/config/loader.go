package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SCROLLWATCH_"

// Load builds a Config from defaults, the file at path (if any) and the
// environment. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadFile decodes path over cfg, choosing the format by extension.
func loadFile(path string, cfg *Config) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".toml" && ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	if ext == ".toml" {
		return decodeTOML(path, data, cfg)
	}
	return decodeYAML(path, data, cfg)
}

func decodeTOML(path string, data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		pe := &ParseError{Path: path, Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return pe
	}
	return nil
}

func decodeYAML(path string, data []byte, cfg *Config) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return &ParseError{Path: path, Err: err}
	}
	return nil
}

// envSetters maps each override variable to the setting it replaces.
var envSetters = map[string]func(*Config, string) error{
	"RESIZE_DELAY": func(c *Config, v string) error { return c.Viewport.ResizeDelay.UnmarshalText([]byte(v)) },
	"IDLE_DELAY":   func(c *Config, v string) error { return c.Viewport.IdleDelay.UnmarshalText([]byte(v)) },
	"FRAME_RATE": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Viewport.FrameRate = n
		return nil
	},
	"LOG_LEVEL": func(c *Config, v string) error { c.Log.Level = v; return nil },
	"LOG_FILE":  func(c *Config, v string) error { c.Log.File = v; return nil },
	"HOOK":      func(c *Config, v string) error { c.Hook.Script = v; return nil },
	"RECORD":    func(c *Config, v string) error { c.Trace.Record = v; return nil },
	"STATUS_FG": func(c *Config, v string) error { c.Theme.StatusForeground = v; return nil },
	"STATUS_BG": func(c *Config, v string) error { c.Theme.StatusBackground = v; return nil },
}

// applyEnv overlays SCROLLWATCH_* variables. Empty values are treated as set.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for name, set := range envSetters {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		if err := set(cfg, v); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
	}
	return nil
}
