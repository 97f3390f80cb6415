// Package action defines the closed set of things a key press can do to
// the window manager, and the keybind table that maps key events to
// them. It has no dependency on X11 or on the layout engine's
// implementation, only on geometry.Direction.
package action

import "github.com/Skulhunter5/xnebula/geometry"

// Kind tags which variant an Action holds. Action is a closed sum; every
// switch over Kind in this codebase is exhaustive.
type Kind int

const (
	Exit Kind = iota
	ExecuteCommand
	MoveFocus
	CloseFocusedWindow
	ChangeTilingDirection
	ResizeFocusedWindow
)

func (k Kind) String() string {
	switch k {
	case Exit:
		return "Exit"
	case ExecuteCommand:
		return "ExecuteCommand"
	case MoveFocus:
		return "MoveFocus"
	case CloseFocusedWindow:
		return "CloseFocusedWindow"
	case ChangeTilingDirection:
		return "ChangeTilingDirection"
	case ResizeFocusedWindow:
		return "ResizeFocusedWindow"
	default:
		return "Action(?)"
	}
}

// Action is a tagged union over the six things a keybind can do. Only the
// fields relevant to Kind are meaningful; constructors below are the
// intended way to build one.
type Action struct {
	Kind      Kind
	Command   string             // ExecuteCommand
	Direction geometry.Direction // MoveFocus, ChangeTilingDirection, ResizeFocusedWindow
	Amount    float64            // ResizeFocusedWindow
}

func NewExit() Action { return Action{Kind: Exit} }

func NewExecuteCommand(command string) Action {
	return Action{Kind: ExecuteCommand, Command: command}
}

func NewMoveFocus(d geometry.Direction) Action {
	return Action{Kind: MoveFocus, Direction: d}
}

func NewCloseFocusedWindow() Action { return Action{Kind: CloseFocusedWindow} }

func NewChangeTilingDirection(d geometry.Direction) Action {
	return Action{Kind: ChangeTilingDirection, Direction: d}
}

func NewResizeFocusedWindow(d geometry.Direction, amount float64) Action {
	return Action{Kind: ResizeFocusedWindow, Direction: d, Amount: amount}
}

// ModMask is the subset of X11 modifier bits a keybind can require.
// Lock bits (NumLock, CapsLock) never appear here: Dispatch masks them
// out of the incoming event state before comparing.
type ModMask uint16

const (
	Shift   ModMask = 1 << 0
	Control ModMask = 1 << 2
	Alt     ModMask = 1 << 3 // Mod1
	Super   ModMask = 1 << 6 // Mod4
)

// relevantMask is the bits Dispatch compares; every other bit of the
// incoming event state (including the lock modifiers) is masked away
// first.
const relevantMask = Shift | Control | Alt | Super

// Keybind is one (keycode, modifier mask, action) triple.
type Keybind struct {
	Keycode  uint32
	Modifier ModMask
	Action   Action
}

// Dispatch returns the action bound to the first entry of table whose
// keycode matches and whose modifier mask matches state once lock bits
// are masked out. It returns false if no entry matches; only the first
// match fires, matching the "first entry wins" rule of the keybind
// table.
func Dispatch(table []Keybind, keycode uint32, state uint16) (Action, bool) {
	masked := ModMask(state) & relevantMask
	for _, kb := range table {
		if kb.Keycode == keycode && kb.Modifier == masked {
			return kb.Action, true
		}
	}
	return Action{}, false
}
