package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/Skulhunter5/xnebula/geometry"
	"github.com/Skulhunter5/xnebula/layout"
)

// EventKind tags the closed set of display-server events the event
// dispatcher cares about. Everything else arrives as EventOther and is
// otherwise ignored, keeping xproto fully encapsulated behind this
// package (spec.md's unsafe/FFI boundary).
type EventKind int

const (
	EventOther EventKind = iota
	EventMapRequest
	EventConfigureRequest
	EventUnmapNotify
	EventDestroyNotify
	EventKeyPress
)

// Event is the tagged union NextEvent produces.
type Event struct {
	Kind EventKind

	Window layout.Window // MapRequest, ConfigureRequest, UnmapNotify, DestroyNotify

	// ConfigureRequest: the geometry the client asked for.
	RequestedBounds geometry.Bounds

	// KeyPress.
	Keycode uint32
	State   uint16
}

// NextEvent blocks until the next X event arrives and translates it.
// Asynchronous protocol errors are reported to the handler installed
// via SetErrorHandler and do not themselves produce an Event; NextEvent
// loops past them.
func (c *Conn) NextEvent() (Event, error) {
	for {
		raw, err := c.xc.WaitForEvent()
		if err != nil {
			if c.onError != nil {
				c.onError(fmt.Errorf("x11: protocol error: %w", err))
			}
			continue
		}
		if raw == nil {
			return Event{}, fmt.Errorf("x11: connection closed")
		}

		switch ev := raw.(type) {
		case xproto.MapRequestEvent:
			return Event{Kind: EventMapRequest, Window: layout.Window(ev.Window)}, nil

		case xproto.ConfigureRequestEvent:
			return Event{
				Kind:   EventConfigureRequest,
				Window: layout.Window(ev.Window),
				RequestedBounds: geometry.Bounds{
					X: int(ev.X), Y: int(ev.Y),
					W: int(ev.Width), H: int(ev.Height),
				},
			}, nil

		case xproto.UnmapNotifyEvent:
			return Event{Kind: EventUnmapNotify, Window: layout.Window(ev.Window)}, nil

		case xproto.DestroyNotifyEvent:
			return Event{Kind: EventDestroyNotify, Window: layout.Window(ev.Window)}, nil

		case xproto.KeyPressEvent:
			return Event{
				Kind:    EventKeyPress,
				Keycode: uint32(ev.Detail),
				State:   ev.State,
			}, nil

		default:
			return Event{Kind: EventOther}, nil
		}
	}
}

// ConfigureUnmanaged honors a ConfigureRequest verbatim for a window the
// engine does not yet track (Open Question #2: an unmanaged window's
// own requested geometry is authoritative until it is Insert-ed).
func (c *Conn) ConfigureUnmanaged(id layout.Window, b geometry.Bounds) {
	values := []uint32{uint32(b.X), uint32(b.Y), uint32(b.W), uint32(b.H)}
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY |
		xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)
	xproto.ConfigureWindow(c.xc, xproto.Window(id), mask, values)
}
