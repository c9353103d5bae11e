// Package input decodes terminal input into Input events.
//
// Text arrives as literal codepoints. Keys without a codepoint, mouse reports
// and resize notifications are synthesized into Supplementary Private Use
// Area-B (see PUA). Inside the package a Code is a tagged variant; ID and
// FromID convert to and from the packed 32-bit form.
//
// A Decoder turns bytes into events and never blocks. A Reader owns a Source,
// feeds its Decoder and queues events, offering blocking, polling and timed
// reads. Resize notifications and synthetic events are posted into the same
// queue.
package input

import (
	"fmt"
	"strings"
)

// NoCoord marks Y and X of events that are not mouse reports.
const NoCoord = -1

// Input is a single decoded event.
type Input struct {
	Code Code

	// Y and X are cell coordinates for mouse events, NoCoord otherwise.
	Y, X int

	Mods Modifier
	Type EventType
}

// New returns an event for c with no coordinates or modifiers.
func New(c Code) Input {
	return Input{Code: c, Y: NoCoord, X: NoCoord, Type: EventPress}
}

// RuneInput returns a press of the codepoint r.
func RuneInput(r rune) Input {
	return New(Rune(r))
}

// KeyInput returns a press of the synthesized key k.
func KeyInput(k Key) Input {
	return New(KeyCode(k))
}

// MouseInput returns a mouse event at (y, x).
func MouseInput(b Button, motion bool, y, x int, t EventType) Input {
	return Input{Code: Mouse(b, motion), Y: y, X: x, Type: t}
}

// ID returns the packed identifier.
func (in Input) ID() uint32 {
	return in.Code.ID()
}

// IsMouse reports whether in is a mouse report.
func (in Input) IsMouse() bool {
	return in.Code.IsMouse()
}

// NoMod reports whether no modifier is held.
func (in Input) NoMod() bool {
	return in.Mods&modMask == 0
}

// Alt reports whether Alt is held.
func (in Input) Alt() bool { return in.Mods.Has(ModAlt) }

// Shift reports whether Shift is held.
func (in Input) Shift() bool { return in.Mods.Has(ModShift) }

// Ctrl reports whether Ctrl is held.
func (in Input) Ctrl() bool { return in.Mods.Has(ModCtrl) }

// WithAlt returns in with Alt added.
func (in Input) WithAlt() Input { in.Mods |= ModAlt; return in }

// WithShift returns in with Shift added.
func (in Input) WithShift() Input { in.Mods |= ModShift; return in }

// WithCtrl returns in with Ctrl added.
func (in Input) WithCtrl() Input { in.Mods |= ModCtrl; return in }

// Equal compares id, coordinates, modifiers and event type. EventUnknown
// matches EventPress.
func (in Input) Equal(o Input) bool {
	if in.ID() != o.ID() || in.Y != o.Y || in.X != o.X || in.Mods != o.Mods {
		return false
	}
	return pressLike(in.Type) == pressLike(o.Type)
}

func pressLike(t EventType) EventType {
	if t == EventUnknown {
		return EventPress
	}
	return t
}

// String renders the event as "Ctrl+Alt+x", with coordinates for mouse
// events and the type when it is not a press.
func (in Input) String() string {
	var sb strings.Builder
	if m := in.Mods.String(); m != "" {
		sb.WriteString(m)
		sb.WriteByte('+')
	}
	sb.WriteString(in.Code.String())
	if in.IsMouse() {
		fmt.Fprintf(&sb, "@%d,%d", in.Y, in.X)
	}
	if t := pressLike(in.Type); t != EventPress {
		sb.WriteString(" (" + t.String() + ")")
	}
	return sb.String()
}
