package action

import (
	"testing"

	"github.com/Skulhunter5/xnebula/geometry"
)

func TestDispatchFirstMatchWins(t *testing.T) {
	table := []Keybind{
		{Keycode: 36, Modifier: Super, Action: NewExit()},
		{Keycode: 36, Modifier: Super, Action: NewCloseFocusedWindow()}, // shadowed
	}
	got, ok := Dispatch(table, 36, uint16(Super))
	if !ok {
		t.Fatal("expected a match")
	}
	if got.Kind != Exit {
		t.Errorf("got %v, want the first matching entry (Exit)", got.Kind)
	}
}

func TestDispatchMasksLockBits(t *testing.T) {
	const numLock = 1 << 4
	const capsLock = 1 << 1
	table := []Keybind{
		{Keycode: 9, Modifier: Super | Shift, Action: NewCloseFocusedWindow()},
	}
	state := uint16(Super) | uint16(Shift) | numLock | capsLock
	got, ok := Dispatch(table, 9, state)
	if !ok {
		t.Fatal("expected a match once lock bits are masked out")
	}
	if got.Kind != CloseFocusedWindow {
		t.Errorf("got %v, want CloseFocusedWindow", got.Kind)
	}
}

func TestDispatchNoMatch(t *testing.T) {
	table := []Keybind{
		{Keycode: 9, Modifier: Super, Action: NewExit()},
	}
	_, ok := Dispatch(table, 9, uint16(Shift))
	if ok {
		t.Error("expected no match for a different modifier mask")
	}
	_, ok = Dispatch(table, 10, uint16(Super))
	if ok {
		t.Error("expected no match for a different keycode")
	}
}

func TestConstructors(t *testing.T) {
	if a := NewMoveFocus(geometry.Left); a.Kind != MoveFocus || a.Direction != geometry.Left {
		t.Errorf("NewMoveFocus built %+v", a)
	}
	if a := NewResizeFocusedWindow(geometry.Right, 0.1); a.Kind != ResizeFocusedWindow || a.Direction != geometry.Right || a.Amount != 0.1 {
		t.Errorf("NewResizeFocusedWindow built %+v", a)
	}
	if a := NewExecuteCommand("alacritty"); a.Kind != ExecuteCommand || a.Command != "alacritty" {
		t.Errorf("NewExecuteCommand built %+v", a)
	}
}
