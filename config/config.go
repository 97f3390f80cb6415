// Package config holds the in-process configuration for the window
// manager: monitor bounds and border styling. There is no file format in
// scope; callers build a Config by hand or with Default.
package config

import "github.com/Skulhunter5/xnebula/geometry"

// Border describes the server-drawn border around a tile. The border
// sits outside the content rectangle, so the visible tile is the
// engine's bounds shrunk by 2*Width on each axis.
type Border struct {
	Width int
	Color uint32
}

// DefaultBorder matches the source's default: a 3px white-ish border.
func DefaultBorder() Border {
	return Border{Width: 3, Color: 0x00ffffff}
}

// Config is the window manager's static configuration.
type Config struct {
	// Monitors is a non-empty ordered sequence of monitor bounds. Only
	// Monitors[0] is consulted by the current single-monitor engine;
	// additional entries are accepted and ignored (see SPEC_FULL.md
	// §9.3).
	Monitors []geometry.Bounds

	// Border is optional; nil disables borders entirely (no shrink is
	// applied to a tile's bounds).
	Border *Border

	// DebugEvents, if true, logs every dispatched display-server event.
	DebugEvents bool
}

// Default returns a Config with no monitors set (the caller must probe
// the display and fill Monitors before use) and the source's default
// border.
func Default() Config {
	b := DefaultBorder()
	return Config{
		Border: &b,
	}
}

// PrimaryMonitor returns the first configured monitor bounds, and false
// if none are configured.
func (c Config) PrimaryMonitor() (geometry.Bounds, bool) {
	if len(c.Monitors) == 0 {
		return geometry.Bounds{}, false
	}
	return c.Monitors[0], true
}

// KeysymResolver turns an X11 keysym into the keycode currently bound to
// it on the connected keyboard. config depends only on this interface,
// not on the x11 package: x11 already imports config (it needs
// config.Border for ApplyGeometry), so config never imports x11 back.
type KeysymResolver interface {
	Keycode(keysym uint32) (uint32, bool)
}
