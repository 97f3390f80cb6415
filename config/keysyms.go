package config

import (
	"github.com/Skulhunter5/xnebula/action"
	"github.com/Skulhunter5/xnebula/geometry"
)

// X11 keysym constants needed for the default keybind table (from
// X11/keysymdef.h). Named here rather than pulled from a keysym
// package, since only a handful are ever needed.
const (
	xkReturn = 0xff0d
	xkE      = 0x0065
	xkQ      = 0x0071
	xkLeft   = 0xff51
	xkUp     = 0xff52
	xkRight  = 0xff53
	xkDown   = 0xff54
)

// defaultSpawnCommand is launched by the default Super+Return bind.
const defaultSpawnCommand = "alacritty"

// defaultResizeStep is the Amount used by the default resize binds.
const defaultResizeStep = 0.1

// DefaultKeybinds builds the keybind table spec.md §6 documents: Super+E
// exits, Super+Return spawns a terminal, Super+Arrow moves focus,
// Super+Shift+Q closes the focused window, Super+Alt+Arrow changes the
// focused leaf's split direction, and Super+Ctrl+Arrow resizes it. Binds
// whose keysym isn't present on the connected keyboard are silently
// skipped: a dead keybind should never abort startup.
func DefaultKeybinds(km KeysymResolver) []action.Keybind {
	type entry struct {
		keysym uint32
		mod    action.ModMask
		act    action.Action
	}
	directional := func(keysym uint32, d geometry.Direction) []entry {
		return []entry{
			{keysym, action.Super, action.NewMoveFocus(d)},
			{keysym, action.Super | action.Alt, action.NewChangeTilingDirection(d)},
			{keysym, action.Super | action.Control, action.NewResizeFocusedWindow(d, defaultResizeStep)},
		}
	}

	entries := []entry{
		{xkE, action.Super, action.NewExit()},
		{xkReturn, action.Super, action.NewExecuteCommand(defaultSpawnCommand)},
		{xkQ, action.Super | action.Shift, action.NewCloseFocusedWindow()},
	}
	entries = append(entries, directional(xkLeft, geometry.Left)...)
	entries = append(entries, directional(xkRight, geometry.Right)...)
	entries = append(entries, directional(xkUp, geometry.Up)...)
	entries = append(entries, directional(xkDown, geometry.Down)...)

	binds := make([]action.Keybind, 0, len(entries))
	for _, e := range entries {
		keycode, ok := km.Keycode(e.keysym)
		if !ok {
			continue
		}
		binds = append(binds, action.Keybind{
			Keycode:  keycode,
			Modifier: e.mod,
			Action:   e.act,
		})
	}
	return binds
}
