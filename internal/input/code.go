package input

import (
	"fmt"
	"strings"
)

// PUA is the first codepoint of Supplementary Private Use Area-B. Every
// synthesized id is PUA plus an offset, so no synthesized id collides with
// text a terminal can deliver.
const PUA = 0x100000

// puaLast is the last codepoint of Supplementary Private Use Area-B.
const puaLast = 0x10fffd

// Literal codepoints the decoder reports unsynthesized.
const (
	Tab       = 0x09
	Escape    = 0x1b
	Space     = 0x20
	DeleteASC = 0x7f
)

// Key is a synthesized non-text key. Its value is the offset from PUA.
type Key uint32

const (
	KeyInvalid   Key = 0
	KeyResize    Key = 1
	KeyUp        Key = 2
	KeyRight     Key = 3
	KeyDown      Key = 4
	KeyLeft      Key = 5
	KeyInsert    Key = 6
	KeyDelete    Key = 7
	KeyBackspace Key = 8
	KeyPgDown    Key = 9
	KeyPgUp      Key = 10
	KeyHome      Key = 11
	KeyEnd       Key = 12

	// KeyF00 through KeyF60 are contiguous; F(n) is KeyF00+n.
	KeyF00 Key = 20
	KeyF60 Key = 80

	KeyEnter   Key = 121
	KeyCLS     Key = 122
	KeyDLeft   Key = 123
	KeyDRight  Key = 124
	KeyULeft   Key = 125
	KeyURight  Key = 126
	KeyCenter  Key = 127
	KeyBegin   Key = 128
	KeyCancel  Key = 129
	KeyClose   Key = 130
	KeyCommand Key = 131
	KeyCopy    Key = 132
	KeyExit    Key = 133
	KeyPrint   Key = 134
	KeyRefresh Key = 135

	// KeyMotion is the offset of a motion report with no button held.
	// FromID decodes it, and the button offsets above it, as mouse codes.
	KeyMotion Key = 200

	// KeyEOF reports that the input source has closed.
	KeyEOF Key = 300
)

// Mouse offsets. A motion report with no button held uses mouseBase itself;
// button n is mouseBase+n.
const (
	mouseBase = uint32(KeyMotion)
	mouseLast = mouseBase + uint32(ButtonMax)
)

// F returns the function key Fn for n in [0, 60].
func F(n int) Key {
	if n < 0 || n > 60 {
		return KeyInvalid
	}
	return KeyF00 + Key(n)
}

// FNumber returns n for function key Fn.
func (k Key) FNumber() (int, bool) {
	if k < KeyF00 || k > KeyF60 {
		return 0, false
	}
	return int(k - KeyF00), true
}

var keyNames = map[Key]string{
	KeyResize:    "Resize",
	KeyUp:        "Up",
	KeyRight:     "Right",
	KeyDown:      "Down",
	KeyLeft:      "Left",
	KeyInsert:    "Insert",
	KeyDelete:    "Delete",
	KeyBackspace: "Backspace",
	KeyPgDown:    "PgDown",
	KeyPgUp:      "PgUp",
	KeyHome:      "Home",
	KeyEnd:       "End",
	KeyEnter:     "Enter",
	KeyCLS:       "Clear",
	KeyDLeft:     "DownLeft",
	KeyDRight:    "DownRight",
	KeyULeft:     "UpLeft",
	KeyURight:    "UpRight",
	KeyCenter:    "Center",
	KeyBegin:     "Begin",
	KeyCancel:    "Cancel",
	KeyClose:     "Close",
	KeyCommand:   "Command",
	KeyCopy:      "Copy",
	KeyExit:      "Exit",
	KeyPrint:     "Print",
	KeyRefresh:   "Refresh",
	KeyEOF:       "EOF",
}

// String returns the key name.
func (k Key) String() string {
	if n, ok := k.FNumber(); ok {
		return fmt.Sprintf("F%d", n)
	}
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", uint32(k))
}

// Button identifies a mouse button. ButtonNone marks motion with no button
// held. Buttons 4 through 7 are the wheel.
type Button uint8

const (
	ButtonNone Button = iota
	Button1
	Button2
	Button3
	Button4
	Button5
	Button6
	Button7
	Button8
	Button9
	Button10
	Button11

	ButtonMax = Button11
)

// Common aliases.
const (
	ButtonLeft      = Button1
	ButtonMiddle    = Button2
	ButtonRight     = Button3
	ButtonWheelUp   = Button4
	ButtonWheelDown = Button5
)

// IsWheel reports whether b is a scroll wheel button.
func (b Button) IsWheel() bool {
	return b >= Button4 && b <= Button7
}

func (b Button) String() string {
	if b == ButtonNone {
		return "Motion"
	}
	return fmt.Sprintf("Button%d", uint8(b))
}

// Kind tags the variant held by a Code.
type Kind uint8

const (
	KindNone Kind = iota
	KindRune
	KindKey
	KindMouse
)

// Code is an input identifier: a literal codepoint, a synthesized key, or a
// mouse button. The zero Code is KindNone. The packed 32-bit form returned by
// ID is only for crossing external boundaries.
type Code struct {
	kind   Kind
	r      rune
	key    Key
	button Button
	motion bool
}

// Rune returns the Code for a literal codepoint.
func Rune(r rune) Code {
	return Code{kind: KindRune, r: r}
}

// KeyCode returns the Code for a synthesized key.
func KeyCode(k Key) Code {
	return Code{kind: KindKey, key: k}
}

// Mouse returns the Code for a mouse button report. motion marks a report
// generated by pointer movement rather than a button transition.
func Mouse(b Button, motion bool) Code {
	return Code{kind: KindMouse, button: b, motion: motion || b == ButtonNone}
}

// Kind returns the variant tag.
func (c Code) Kind() Kind { return c.kind }

// Rune returns the codepoint for KindRune codes.
func (c Code) Rune() (rune, bool) { return c.r, c.kind == KindRune }

// Key returns the key for KindKey codes.
func (c Code) Key() (Key, bool) { return c.key, c.kind == KindKey }

// Button returns the button for KindMouse codes.
func (c Code) Button() (Button, bool) { return c.button, c.kind == KindMouse }

// Motion reports whether a mouse code came from pointer movement.
func (c Code) Motion() bool { return c.kind == KindMouse && c.motion }

// IsRune reports whether c is the literal codepoint r.
func (c Code) IsRune(r rune) bool { return c.kind == KindRune && c.r == r }

// IsKey reports whether c is the synthesized key k.
func (c Code) IsKey(k Key) bool { return c.kind == KindKey && c.key == k }

// IsMouse reports whether c is a mouse report.
func (c Code) IsMouse() bool { return c.kind == KindMouse }

// ID packs c into its 32-bit wire form. Motion with a button held packs to
// the button's id, so the motion flag does not survive the round trip.
func (c Code) ID() uint32 {
	switch c.kind {
	case KindRune:
		return uint32(c.r)
	case KindKey:
		return PUA + uint32(c.key)
	case KindMouse:
		return PUA + mouseBase + uint32(c.button)
	}
	return 0
}

// FromID unpacks a 32-bit id.
func FromID(id uint32) Code {
	if !IsSynthesized(id) {
		if id == 0 {
			return Code{}
		}
		return Rune(rune(id))
	}
	off := id - PUA
	if off >= mouseBase && off <= mouseLast {
		return Mouse(Button(off-mouseBase), false)
	}
	return KeyCode(Key(off))
}

// IsSynthesized reports whether id lies in the synthesized range.
func IsSynthesized(id uint32) bool {
	return id >= PUA && id <= puaLast
}

// IsMouseID reports whether id is a packed mouse report.
func IsMouseID(id uint32) bool {
	return IsSynthesized(id) && id-PUA >= mouseBase && id-PUA <= mouseLast
}

func (c Code) String() string {
	switch c.kind {
	case KindRune:
		switch c.r {
		case Tab:
			return "Tab"
		case Escape:
			return "Esc"
		case Space:
			return "Space"
		}
		return string(c.r)
	case KindKey:
		return c.key.String()
	case KindMouse:
		if c.motion && c.button != ButtonNone {
			return c.button.String() + "+Motion"
		}
		return c.button.String()
	}
	return "None"
}

// Modifier is a set of modifier keys. The bit values match the xterm
// modifier parameter minus one.
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModShift Modifier = 1 << 0
	ModAlt   Modifier = 1 << 1
	ModCtrl  Modifier = 1 << 2
	ModSuper Modifier = 1 << 3
	ModHyper Modifier = 1 << 4
	ModMeta  Modifier = 1 << 5

	modMask = ModShift | ModAlt | ModCtrl | ModSuper | ModHyper | ModMeta
)

// Has reports whether m includes mod.
func (m Modifier) Has(mod Modifier) bool { return m&mod != 0 }

// String returns the modifiers in "Ctrl+Alt+Shift" form, or "" for none.
func (m Modifier) String() string {
	var parts []string
	for _, e := range []struct {
		mod  Modifier
		name string
	}{
		{ModCtrl, "Ctrl"},
		{ModAlt, "Alt"},
		{ModShift, "Shift"},
		{ModSuper, "Super"},
		{ModHyper, "Hyper"},
		{ModMeta, "Meta"},
	} {
		if m.Has(e.mod) {
			parts = append(parts, e.name)
		}
	}
	return strings.Join(parts, "+")
}

// EventType distinguishes press, repeat and release. Terminals that do not
// report transitions produce EventUnknown, which compares equal to press.
type EventType uint8

const (
	EventUnknown EventType = iota
	EventPress
	EventRepeat
	EventRelease
)

func (t EventType) String() string {
	switch t {
	case EventPress:
		return "press"
	case EventRepeat:
		return "repeat"
	case EventRelease:
		return "release"
	}
	return "unknown"
}
