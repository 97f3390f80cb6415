package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// loadKeyMapping reads the full keycode-to-keysym table once at
// connection time, the same approach marwind's keysym.LoadKeyMapping
// takes, so that config can express default binds as keysyms instead of
// raw, layout-dependent keycodes.
func (c *Conn) loadKeyMapping(setup *xproto.SetupInfo) error {
	c.minKey = setup.MinKeycode
	c.maxKey = setup.MaxKeycode
	count := byte(c.maxKey - c.minKey + 1)

	reply, err := xproto.GetKeyboardMapping(c.xc, c.minKey, count).Reply()
	if err != nil {
		return fmt.Errorf("x11: GetKeyboardMapping failed: %w", err)
	}

	perKeycode := int(reply.KeysymsPerKeycode)
	c.keymap = make(map[xproto.Keycode][]uint32, count)
	for i := 0; i < int(count); i++ {
		keycode := c.minKey + xproto.Keycode(i)
		start := i * perKeycode
		end := start + perKeycode
		if end > len(reply.Keysyms) {
			end = len(reply.Keysyms)
		}
		syms := make([]uint32, 0, end-start)
		for _, s := range reply.Keysyms[start:end] {
			syms = append(syms, uint32(s))
		}
		c.keymap[keycode] = syms
	}
	return nil
}

// Keysym returns the first (unshifted) keysym bound to detail, or 0 if
// none is mapped.
func (c *Conn) Keysym(detail xproto.Keycode) uint32 {
	syms := c.keymap[detail]
	if len(syms) == 0 {
		return 0
	}
	return syms[0]
}

// Keycode implements config.KeysymResolver: it is the reverse of
// Keysym, used once at startup to translate the default keybind table's
// keysyms into the keycodes GrabKey needs.
func (c *Conn) Keycode(keysym uint32) (uint32, bool) {
	for code, syms := range c.keymap {
		for _, s := range syms {
			if s == keysym {
				return uint32(code), true
			}
		}
	}
	return 0, false
}
