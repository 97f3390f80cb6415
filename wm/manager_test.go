package wm

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Skulhunter5/xnebula/action"
	"github.com/Skulhunter5/xnebula/config"
	"github.com/Skulhunter5/xnebula/geometry"
	"github.com/Skulhunter5/xnebula/layout"
	"github.com/Skulhunter5/xnebula/x11"
)

type geometryCall struct {
	window layout.Window
	bounds geometry.Bounds
}

type fakeDisplay struct {
	events  []x11.Event
	applied []geometryCall
	focused []layout.Window
	closed  []layout.Window
}

func (f *fakeDisplay) NextEvent() (x11.Event, error) {
	if len(f.events) == 0 {
		return x11.Event{}, errors.New("no more events")
	}
	ev := f.events[0]
	f.events = f.events[1:]
	return ev, nil
}

func (f *fakeDisplay) ApplyGeometry(id layout.Window, b geometry.Bounds, _ config.Border) {
	f.applied = append(f.applied, geometryCall{id, b})
}

func (f *fakeDisplay) SetInputFocus(id layout.Window) { f.focused = append(f.focused, id) }
func (f *fakeDisplay) CloseWindow(id layout.Window) error {
	f.closed = append(f.closed, id)
	return nil
}
func (f *fakeDisplay) ConfigureUnmanaged(layout.Window, geometry.Bounds) {}

func newTestManager(t *testing.T, events []x11.Event) (*Manager, *fakeDisplay) {
	t.Helper()
	log, err := zap.NewDevelopment()
	if err != nil {
		t.Fatalf("zap.NewDevelopment: %v", err)
	}
	tree := layout.NewWindowTree(geometry.Bounds{X: 0, Y: 0, W: 1000, H: 1000})
	disp := &fakeDisplay{events: events}
	m := New(disp, tree, config.Default(), nil, log)
	return m, disp
}

func TestMapRequestInsertsAndFocuses(t *testing.T) {
	m, disp := newTestManager(t, nil)
	m.manage(1)

	if len(disp.applied) != 1 || disp.applied[0].window != 1 {
		t.Errorf("applied = %+v, want one geometry call for window 1", disp.applied)
	}
	if len(disp.focused) == 0 || disp.focused[len(disp.focused)-1] != 1 {
		t.Errorf("focused = %v, want window 1 focused", disp.focused)
	}
}

func TestUnmapOfFocusedWindowRemovesIt(t *testing.T) {
	m, disp := newTestManager(t, nil)
	m.manage(1)
	m.manage(2)
	disp.applied = nil
	disp.focused = nil

	m.unmanage(2)

	if _, ok := m.managed[2]; ok {
		t.Error("window 2 should no longer be managed")
	}
	w, ok := m.tree.FocusedWindow()
	if !ok || w != 1 {
		t.Errorf("focus after removing 2 = %v, %v; want 1, true", w, ok)
	}
}

func TestCloseFocusedWindowReflowsBeforeClosing(t *testing.T) {
	m, disp := newTestManager(t, nil)
	m.manage(1)
	m.manage(2)
	disp.applied = nil
	disp.focused = nil
	disp.closed = nil

	exit, err := m.apply(action.NewCloseFocusedWindow())
	if err != nil {
		t.Fatalf("apply(CloseFocusedWindow) returned error: %v", err)
	}
	if exit {
		t.Fatal("CloseFocusedWindow must not stop the event loop")
	}

	// The tree must already reflect the removal: window 1 alone, back
	// at the full monitor bounds, and focused - all before/regardless
	// of whatever Unmap/DestroyNotify eventually arrives for window 2.
	if _, ok := m.managed[2]; ok {
		t.Error("window 2 should already be unmanaged")
	}
	w, ok := m.tree.FocusedWindow()
	if !ok || w != 1 {
		t.Errorf("focus after closing 2 = %v, %v; want 1, true", w, ok)
	}
	if len(disp.applied) == 0 {
		t.Error("expected the remaining tile to be reflowed immediately")
	}
	if len(disp.focused) == 0 || disp.focused[len(disp.focused)-1] != 1 {
		t.Errorf("focused = %v, want window 1 focused immediately", disp.focused)
	}

	// The server is only asked to close the window after the tree
	// update, and exactly once.
	if len(disp.closed) != 1 || disp.closed[0] != 2 {
		t.Errorf("closed = %v, want exactly [2]", disp.closed)
	}

	// A later UnmapNotify/DestroyNotify echo for the now-unmanaged
	// window must be a no-op, not a second removal.
	disp.applied = nil
	disp.focused = nil
	m.unmanage(2)
	if len(disp.applied) != 0 || len(disp.focused) != 0 {
		t.Errorf("echoed Unmap/DestroyNotify mutated state: applied=%v focused=%v", disp.applied, disp.focused)
	}
}

func TestKeyPressExitStopsRun(t *testing.T) {
	binds := []action.Keybind{
		{Keycode: 26, Modifier: action.Super, Action: action.NewExit()},
	}
	log, _ := zap.NewDevelopment()
	tree := layout.NewWindowTree(geometry.Bounds{X: 0, Y: 0, W: 1000, H: 1000})
	disp := &fakeDisplay{events: []x11.Event{
		{Kind: x11.EventKeyPress, Keycode: 26, State: uint16(action.Super)},
	}}
	m := New(disp, tree, config.Default(), binds, log)

	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}

func TestRunStopsOnContextCancellation(t *testing.T) {
	log, _ := zap.NewDevelopment()
	tree := layout.NewWindowTree(geometry.Bounds{X: 0, Y: 0, W: 1000, H: 1000})
	disp := &fakeDisplay{}
	m := New(disp, tree, config.Default(), nil, log)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Run(ctx); err != nil {
		t.Fatalf("Run returned error on canceled context: %v", err)
	}
}
