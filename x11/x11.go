// Package x11 is the only package in this module that imports xgb. It
// wraps the X11 display connection, root-window management, key
// grabbing, and geometry/focus application behind a small Conn type, so
// that the rest of the codebase never touches xproto directly.
package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/Skulhunter5/xnebula/action"
	"github.com/Skulhunter5/xnebula/config"
	"github.com/Skulhunter5/xnebula/geometry"
	"github.com/Skulhunter5/xnebula/layout"
)

// Conn is a connection to the X server, already set up as the window
// manager of its default screen.
type Conn struct {
	xc     *xgb.Conn
	screen *xproto.ScreenInfo
	root   xproto.Window

	keymap   map[xproto.Keycode][]uint32
	minKey   xproto.Keycode
	maxKey   xproto.Keycode

	atomWMProtocols    xproto.Atom
	atomWMDeleteWindow xproto.Atom

	onError func(error)
}

// AlreadyRunningError is returned by BecomeWM when another process
// already holds SubstructureRedirect on the root window.
type AlreadyRunningError struct {
	cause error
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("x11: another window manager is already running: %v", e.cause)
}

func (e *AlreadyRunningError) Unwrap() error { return e.cause }

// Connect opens the default display and reads its default screen's
// geometry. It does not yet attempt to become the window manager; call
// BecomeWM for that.
func Connect() (*Conn, error) {
	xc, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("x11: xgb.NewConn failed: %w", err)
	}

	setup := xproto.Setup(xc)
	screen := setup.DefaultScreen(xc)

	c := &Conn{
		xc:     xc,
		screen: screen,
		root:   screen.Root,
	}
	if err := c.loadKeyMapping(setup); err != nil {
		xc.Close()
		return nil, err
	}
	if err := c.internAtoms(); err != nil {
		xc.Close()
		return nil, err
	}
	return c, nil
}

// Close releases the underlying connection.
func (c *Conn) Close() { c.xc.Close() }

// MonitorBounds returns the primary (and, currently, only) monitor's
// bounds, derived from the default screen's pixel dimensions.
func (c *Conn) MonitorBounds() geometry.Bounds {
	return geometry.Bounds{
		X: 0,
		Y: 0,
		W: int(c.screen.WidthInPixels),
		H: int(c.screen.HeightInPixels),
	}
}

// BecomeWM registers for SubstructureRedirect/SubstructureNotify on the
// root window. An AccessError here means a different process already
// owns those rights, i.e. another window manager is running.
func (c *Conn) BecomeWM() error {
	evtMask := []uint32{
		uint32(xproto.EventMaskSubstructureRedirect |
			xproto.EventMaskSubstructureNotify |
			xproto.EventMaskPropertyChange),
	}
	err := xproto.ChangeWindowAttributesChecked(c.xc, c.root, xproto.CwEventMask, evtMask).Check()
	if err == nil {
		return nil
	}
	if _, ok := err.(xproto.AccessError); ok {
		return &AlreadyRunningError{cause: err}
	}
	return fmt.Errorf("x11: ChangeWindowAttributes on root failed: %w", err)
}

// SetErrorHandler installs the callback invoked for every asynchronous
// protocol error received while waiting for events. It is never called
// for the synchronous ...Checked().Check() errors returned directly
// from calls in this package.
func (c *Conn) SetErrorHandler(onError func(error)) {
	c.onError = onError
}

func (c *Conn) internAtoms() error {
	protocols, err := c.internAtom("WM_PROTOCOLS")
	if err != nil {
		return err
	}
	deleteWindow, err := c.internAtom("WM_DELETE_WINDOW")
	if err != nil {
		return err
	}
	c.atomWMProtocols = protocols
	c.atomWMDeleteWindow = deleteWindow
	return nil
}

func (c *Conn) internAtom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(c.xc, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("x11: InternAtom(%s) failed: %w", name, err)
	}
	return reply.Atom, nil
}

// GrabKeybind grabs kb.Keycode with kb.Modifier, and again with the
// NumLock and, separately, the CapsLock bit folded in, so the bind
// fires regardless of either lock key's state (spec.md §6.3;
// action.Dispatch masks both bits out of the event state on receipt,
// but the grab itself must be issued once per lock-bit variant X
// requires). The combined NumLock+CapsLock variant is intentionally not
// grabbed, matching the three grabs spec.md documents and the three
// XGrabKey calls register_keybind issues.
func (c *Conn) GrabKeybind(kb action.Keybind) error {
	const (
		lockMask = xproto.ModMaskLock
		numLock  = xproto.ModMask2
	)
	base := uint16(kb.Modifier)
	variants := []uint16{
		base,
		base | numLock,
		base | lockMask,
	}
	for _, mods := range variants {
		cookie := xproto.GrabKeyChecked(
			c.xc,
			false,
			c.root,
			mods,
			xproto.Keycode(kb.Keycode),
			xproto.GrabModeAsync,
			xproto.GrabModeAsync,
		)
		if err := cookie.Check(); err != nil {
			return fmt.Errorf("x11: GrabKey(code=%d, mods=%#x) failed: %w", kb.Keycode, mods, err)
		}
	}
	return nil
}

// ApplyGeometry configures id's position and size to b, shrunk by the
// border width on each side (the border is drawn outside the content
// rectangle by the X server), and maps the window.
func (c *Conn) ApplyGeometry(id layout.Window, b geometry.Bounds, border config.Border) {
	content := geometry.Bounds{
		X: b.X + border.Width,
		Y: b.Y + border.Width,
		W: b.W - 2*border.Width,
		H: b.H - 2*border.Width,
	}
	if content.W < 1 {
		content.W = 1
	}
	if content.H < 1 {
		content.H = 1
	}

	win := xproto.Window(id)
	values := []uint32{
		uint32(content.X), uint32(content.Y),
		uint32(content.W), uint32(content.H),
		uint32(border.Width),
	}
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY |
		xproto.ConfigWindowWidth | xproto.ConfigWindowHeight |
		xproto.ConfigWindowBorderWidth)
	xproto.ConfigureWindow(c.xc, win, mask, values)
	xproto.ChangeWindowAttributes(c.xc, win, xproto.CwBorderPixel, []uint32{border.Color})
	xproto.MapWindow(c.xc, win)
}

// SetInputFocus gives id the X input focus.
func (c *Conn) SetInputFocus(id layout.Window) {
	xproto.SetInputFocus(c.xc, xproto.InputFocusPointerRoot, xproto.Window(id), xproto.TimeCurrentTime)
}

// CloseWindow asks id's client to close itself, via WM_DELETE_WINDOW if
// it advertises support for that protocol, falling back to a protocol-
// level DestroyWindow otherwise. The engine never decides to kill a
// process; this is strictly "ask or destroy the X resource".
func (c *Conn) CloseWindow(id layout.Window) error {
	win := xproto.Window(id)
	if c.supportsDeleteWindow(win) {
		ev := xproto.ClientMessageEvent{
			Format: 32,
			Window: win,
			Type:   c.atomWMProtocols,
			Data: xproto.ClientMessageDataUnionData32New([]uint32{
				uint32(c.atomWMDeleteWindow),
				uint32(xproto.TimeCurrentTime),
				0, 0, 0,
			}),
		}
		cookie := xproto.SendEventChecked(c.xc, false, win, xproto.EventMaskNoEvent, string(ev.Bytes()))
		if err := cookie.Check(); err != nil {
			return fmt.Errorf("x11: SendEvent(WM_DELETE_WINDOW) failed: %w", err)
		}
		return nil
	}
	if err := xproto.DestroyWindowChecked(c.xc, win).Check(); err != nil {
		return fmt.Errorf("x11: DestroyWindow failed: %w", err)
	}
	return nil
}

func (c *Conn) supportsDeleteWindow(win xproto.Window) bool {
	reply, err := xproto.GetProperty(c.xc, false, win, c.atomWMProtocols,
		xproto.AtomAtom, 0, 64).Reply()
	if err != nil || reply == nil {
		return false
	}
	for i := 0; i+4 <= len(reply.Value); i += 4 {
		atom := xproto.Atom(uint32(reply.Value[i]) | uint32(reply.Value[i+1])<<8 |
			uint32(reply.Value[i+2])<<16 | uint32(reply.Value[i+3])<<24)
		if atom == c.atomWMDeleteWindow {
			return true
		}
	}
	return false
}
