// Package config loads scrollwatch settings.
//
// Settings come from three layers, later layers overriding earlier ones:
// built-in defaults, a TOML or YAML file, and SCROLLWATCH_* environment
// variables. A Watcher reloads the file when it changes on disk.
//
// Example TOML:
//
//	[viewport]
//	resize_delay = "50ms"
//	idle_delay = "500ms"
//	frame_rate = 60
//
//	[log]
//	level = "debug"
//	file = "/tmp/scrollwatch.log"
//
//	[hook]
//	script = "~/.config/scrollwatch/hook.lua"
package config
