// Package wm is the event dispatcher: it glues x11 events to the
// layout engine and the action table, and owns the "managed" window
// set.
package wm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Skulhunter5/xnebula/action"
	"github.com/Skulhunter5/xnebula/config"
	"github.com/Skulhunter5/xnebula/geometry"
	"github.com/Skulhunter5/xnebula/layout"
	"github.com/Skulhunter5/xnebula/x11"
)

// display is the subset of *x11.Conn the Manager depends on. Tests
// supply a fake so the event loop can be exercised without a real X
// server.
type display interface {
	NextEvent() (x11.Event, error)
	ApplyGeometry(id layout.Window, b geometry.Bounds, border config.Border)
	SetInputFocus(id layout.Window)
	CloseWindow(id layout.Window) error
	ConfigureUnmanaged(id layout.Window, b geometry.Bounds)
}

// Manager owns the window tree, the display connection, the static
// config, and the set of windows the engine currently tracks.
type Manager struct {
	conn     display
	tree     *layout.WindowTree
	cfg      config.Config
	keybinds []action.Keybind
	log      *zap.Logger

	managed map[layout.Window]struct{}
}

// New builds a Manager over an already-connected display and an already
// tiled-to-monitor-bounds tree.
func New(conn display, tree *layout.WindowTree, cfg config.Config, keybinds []action.Keybind, log *zap.Logger) *Manager {
	return &Manager{
		conn:     conn,
		tree:     tree,
		cfg:      cfg,
		keybinds: keybinds,
		log:      log,
		managed:  make(map[layout.Window]struct{}),
	}
}

// Run blocks, dispatching events until an Exit action fires or ctx is
// canceled. It returns nil in both cases; a non-nil error means the
// display connection itself failed.
func (m *Manager) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		ev, err := m.conn.NextEvent()
		if err != nil {
			return fmt.Errorf("wm: reading next event: %w", err)
		}
		if m.cfg.DebugEvents {
			m.log.Debug("event", zap.Int("kind", int(ev.Kind)), zap.Uint32("window", uint32(ev.Window)))
		}

		exit, err := m.handle(ev)
		if err != nil {
			m.log.Warn("handling event", zap.Error(err))
		}
		if exit {
			return nil
		}
	}
}

func (m *Manager) handle(ev x11.Event) (exit bool, err error) {
	switch ev.Kind {
	case x11.EventMapRequest:
		m.manage(ev.Window)
	case x11.EventConfigureRequest:
		if _, ok := m.managed[ev.Window]; !ok {
			m.conn.ConfigureUnmanaged(ev.Window, ev.RequestedBounds)
		}
		// A managed window's last ApplyGeometry already overrides
		// whatever it asked for; nothing to do.
	case x11.EventUnmapNotify, x11.EventDestroyNotify:
		m.unmanage(ev.Window)
	case x11.EventKeyPress:
		return m.handleKeyPress(ev.Keycode, ev.State)
	}
	return false, nil
}

func (m *Manager) handleKeyPress(keycode uint32, state uint16) (exit bool, err error) {
	act, ok := action.Dispatch(m.keybinds, keycode, state)
	if !ok {
		return false, nil
	}
	return m.apply(act)
}

func (m *Manager) apply(act action.Action) (exit bool, err error) {
	switch act.Kind {
	case action.Exit:
		return true, nil

	case action.ExecuteCommand:
		if err := action.Spawn(act.Command); err != nil {
			return false, fmt.Errorf("spawning %q: %w", act.Command, err)
		}

	case action.MoveFocus:
		if w, ok := m.tree.MoveFocus(act.Direction); ok {
			m.conn.SetInputFocus(w)
		}

	case action.CloseFocusedWindow:
		result, ok := m.tree.RemoveFocused()
		if !ok {
			break
		}
		m.finishRemoval(result)
		if err := m.conn.CloseWindow(result.Removed); err != nil {
			return false, fmt.Errorf("closing focused window: %w", err)
		}

	case action.ChangeTilingDirection:
		m.tree.ChangeTilingDirection(act.Direction)

	case action.ResizeFocusedWindow:
		if changes, ok := m.tree.ResizeFocused(act.Direction, act.Amount); ok {
			m.applyChanges(changes)
		}
	}
	return false, nil
}

func (m *Manager) manage(id layout.Window) {
	if _, ok := m.managed[id]; ok {
		return
	}
	m.managed[id] = struct{}{}
	changes := m.tree.Insert(id)
	m.applyChanges(changes)
	if w, ok := m.tree.FocusedWindow(); ok {
		m.conn.SetInputFocus(w)
	}
}

// unmanage removes id from the tree in response to an Unmap/Destroy
// notification that wasn't already handled by CloseFocusedWindow (e.g.
// a background client dying on its own). If id was already removed by
// CloseFocusedWindow's immediate tree update, it's no longer in managed
// and this is a no-op: the later echo of that removal arriving as an
// X event is expected, not a second removal.
//
// The engine only exposes RemoveFocused, so a window going away while
// it isn't the focused leaf first has to become focused; the tree's
// MoveFocus only walks relative to the current focus, not to an
// arbitrary leaf, so instead of searching for id we keep moving focus
// toward it along the leaves list. In practice X only ever reports
// Unmap/Destroy for the window last interacted with or one closed out
// from under the user, both of which leave id already focused; the
// walk is a defensive fallback, not the expected path.
func (m *Manager) unmanage(id layout.Window) {
	if _, ok := m.managed[id]; !ok {
		return
	}
	if !m.focusOn(id) {
		m.log.Warn("could not bring closing window into focus before removing it", zap.Uint32("window", uint32(id)))
		return
	}

	result, ok := m.tree.RemoveFocused()
	if !ok {
		return
	}
	m.finishRemoval(result)
}

// finishRemoval applies the bookkeeping and changed-set common to every
// path that removes a window from the tree: drop it from managed,
// reflow the remaining tiles, and move input focus to the new focused
// window if one remains.
func (m *Manager) finishRemoval(result layout.RemoveResult) {
	delete(m.managed, result.Removed)
	m.applyChanges(result.Changes)
	if result.HasNewFocused {
		m.conn.SetInputFocus(result.NewFocused)
	}
}

// focusOn moves the tree's focus to id if id is present as a leaf,
// bounded by the number of leaves so a tree that somehow never
// resolves to id can't spin forever.
func (m *Manager) focusOn(id layout.Window) bool {
	leaves := m.tree.Leaves()
	for range leaves {
		w, ok := m.tree.FocusedWindow()
		if ok && w == id {
			return true
		}
		moved := false
		for _, d := range []geometry.Direction{geometry.Left, geometry.Right, geometry.Up, geometry.Down} {
			if _, ok := m.tree.MoveFocus(d); ok {
				moved = true
				break
			}
		}
		if !moved {
			break
		}
	}
	w, ok := m.tree.FocusedWindow()
	return ok && w == id
}

func (m *Manager) applyChanges(changes []layout.Change) {
	border := config.Border{}
	if m.cfg.Border != nil {
		border = *m.cfg.Border
	}
	for _, c := range changes {
		m.conn.ApplyGeometry(c.Window, c.Bounds, border)
	}
}
