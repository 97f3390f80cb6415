package config

import (
	"testing"

	"github.com/Skulhunter5/xnebula/action"
)

type fakeResolver map[uint32]uint32

func (f fakeResolver) Keycode(keysym uint32) (uint32, bool) {
	code, ok := f[keysym]
	return code, ok
}

func TestDefaultKeybindsBuildsExitAndSpawn(t *testing.T) {
	km := fakeResolver{
		xkE:      38,
		xkReturn: 36,
		xkQ:      24,
		xkLeft:   113,
	}
	binds := DefaultKeybinds(km)

	var sawExit, sawSpawn, sawClose bool
	for _, b := range binds {
		switch {
		case b.Keycode == 38 && b.Modifier == action.Super:
			if b.Action.Kind != action.Exit {
				t.Errorf("keycode 38 bound to %v, want Exit", b.Action.Kind)
			}
			sawExit = true
		case b.Keycode == 36 && b.Modifier == action.Super:
			if b.Action.Kind != action.ExecuteCommand || b.Action.Command != defaultSpawnCommand {
				t.Errorf("keycode 36 bound to %+v, want ExecuteCommand(%s)", b.Action, defaultSpawnCommand)
			}
			sawSpawn = true
		case b.Keycode == 24 && b.Modifier == action.Super|action.Shift:
			if b.Action.Kind != action.CloseFocusedWindow {
				t.Errorf("keycode 24 bound to %v, want CloseFocusedWindow", b.Action.Kind)
			}
			sawClose = true
		}
	}
	if !sawExit || !sawSpawn || !sawClose {
		t.Errorf("missing expected binds: exit=%v spawn=%v close=%v", sawExit, sawSpawn, sawClose)
	}
}

func TestDefaultKeybindsSkipsUnresolvedKeysyms(t *testing.T) {
	km := fakeResolver{xkE: 38} // everything else absent from the keyboard
	binds := DefaultKeybinds(km)
	for _, b := range binds {
		if b.Keycode != 38 {
			t.Errorf("unexpected bind for unresolved keysym: %+v", b)
		}
	}
}

func TestPrimaryMonitor(t *testing.T) {
	var c Config
	if _, ok := c.PrimaryMonitor(); ok {
		t.Error("expected no primary monitor on a zero-value Config")
	}
}
