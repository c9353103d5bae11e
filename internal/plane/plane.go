package plane

import (
	"github.com/dshills/stratum/internal/channel"
)

// Plane is a handle to a plane in an Arena. The zero Plane refers to nothing.
type Plane struct {
	arena *Arena
	idx   int
	gen   uint32
}

// IsZero reports whether p is the zero handle.
func (p Plane) IsZero() bool {
	return p.arena == nil
}

// Arena returns the arena owning p.
func (p Plane) Arena() *Arena {
	return p.arena
}

// Err returns ErrStale or ErrClosed when p no longer refers to a plane.
func (p Plane) Err() error {
	if p.arena == nil {
		return ErrStale
	}
	_, err := p.arena.resolve(p)
	return err
}

// Valid reports whether p refers to a live plane.
func (p Plane) Valid() bool {
	return p.Err() == nil
}

func (p Plane) rec() *record {
	if p.arena == nil {
		return nil
	}
	r, err := p.arena.resolve(p)
	if err != nil {
		return nil
	}
	return r
}

func (p Plane) recOp(op string) (*record, error) {
	if p.arena == nil {
		return nil, newError(op, nil, ErrStale)
	}
	r, err := p.arena.resolve(p)
	if err != nil {
		return nil, newError(op, nil, err)
	}
	return r, nil
}

// Dim returns the plane's rows and columns, or zeros for an invalid handle.
func (p Plane) Dim() (rows, cols int) {
	if r := p.rec(); r != nil {
		return r.rows, r.cols
	}
	return 0, 0
}

// Yx returns the origin relative to the parent, absolute for a pile root.
func (p Plane) Yx() (y, x int) {
	if r := p.rec(); r != nil {
		return r.y, r.x
	}
	return 0, 0
}

// AbsYx returns the absolute origin within the pile.
func (p Plane) AbsYx() (y, x int) {
	if p.rec() == nil {
		return 0, 0
	}
	return p.arena.absYX(p.idx)
}

// Move sets the origin relative to the parent.
func (p Plane) Move(y, x int) error {
	r, err := p.recOp("move")
	if err != nil {
		return err
	}
	r.y, r.x = y, x
	return nil
}

// MoveRel shifts the origin by dy, dx.
func (p Plane) MoveRel(dy, dx int) error {
	r, err := p.recOp("move")
	if err != nil {
		return err
	}
	r.y += dy
	r.x += dx
	return nil
}

// Translate converts a coordinate in p to the equivalent coordinate in dst.
func (p Plane) Translate(dst Plane, y, x int) (int, int) {
	sy, sx := p.AbsYx()
	dy, dx := dst.AbsYx()
	return y + sy - dy, x + sx - dx
}

// TranslateAbs converts an absolute coordinate into p's coordinates and
// reports whether it falls inside p.
func (p Plane) TranslateAbs(y, x int) (int, int, bool) {
	r := p.rec()
	if r == nil {
		return 0, 0, false
	}
	ay, ax := p.arena.absYX(p.idx)
	y -= ay
	x -= ax
	return y, x, y >= 0 && x >= 0 && y < r.rows && x < r.cols
}

// Name returns the plane's name.
func (p Plane) Name() string {
	if r := p.rec(); r != nil {
		return r.name
	}
	return ""
}

// SetName renames the plane.
func (p Plane) SetName(name string) {
	if r := p.rec(); r != nil {
		r.name = name
	}
}

// UserData returns the opaque value associated with the plane.
func (p Plane) UserData() any {
	if r := p.rec(); r != nil {
		return r.user
	}
	return nil
}

// SetUserData associates an opaque value with the plane and returns the old one.
func (p Plane) SetUserData(v any) any {
	r := p.rec()
	if r == nil {
		return nil
	}
	old := r.user
	r.user = v
	return old
}

// Parent returns the bound parent, or false for a pile root.
func (p Plane) Parent() (Plane, bool) {
	r := p.rec()
	if r == nil || r.parent < 0 {
		return Plane{}, false
	}
	return p.arena.handle(r.parent), true
}

// Children returns the bound children, bottom to top.
func (p Plane) Children() []Plane {
	r := p.rec()
	if r == nil {
		return nil
	}
	out := make([]Plane, len(r.children))
	for i, c := range r.children {
		out[i] = p.arena.handle(c)
	}
	return out
}

// Pile returns the root of the pile containing p.
func (p Plane) Pile() Plane {
	if p.rec() == nil {
		return Plane{}
	}
	return p.arena.handle(p.arena.root(p.idx))
}

// IsRoot reports whether p roots a pile.
func (p Plane) IsRoot() bool {
	r := p.rec()
	return r != nil && r.parent < 0
}

// PaintOrder returns every plane in p's subtree in paint order: p first,
// then each child's subtree from bottom to top.
func (p Plane) PaintOrder() []Plane {
	if p.rec() == nil {
		return nil
	}
	return p.arena.paintOrder(p.idx, nil)
}

// Scrolling reports whether output wraps and scrolls.
func (p Plane) Scrolling() bool {
	r := p.rec()
	return r != nil && r.scroll
}

// SetScrolling enables or disables scrolling and returns the previous setting.
func (p Plane) SetScrolling(on bool) bool {
	r := p.rec()
	if r == nil {
		return false
	}
	old := r.scroll
	r.scroll = on
	return old
}

// Cursor returns the output cursor.
func (p Plane) Cursor() (y, x int) {
	if r := p.rec(); r != nil {
		return r.curY, r.curX
	}
	return 0, 0
}

// SetCursor moves the output cursor. -1 keeps the current value on that axis.
func (p Plane) SetCursor(y, x int) error {
	r, err := p.recOp("cursor")
	if err != nil {
		return err
	}
	if y < 0 {
		y = r.curY
	}
	if x < 0 {
		x = r.curX
	}
	if y >= r.rows || x >= r.cols {
		return newError("cursor", r, ErrOutOfBounds)
	}
	r.curY, r.curX = y, x
	return nil
}

// HomeCursor moves the cursor to the origin.
func (p Plane) HomeCursor() {
	if r := p.rec(); r != nil {
		r.curY, r.curX = 0, 0
	}
}

// Style returns the style applied to output.
func (p Plane) Style() channel.Style {
	if r := p.rec(); r != nil {
		return r.style
	}
	return 0
}

// SetStyle overwrites the output style.
func (p Plane) SetStyle(s channel.Style) {
	if r := p.rec(); r != nil {
		r.style = r.style.Set(s)
	}
}

// StyleOn adds output style bits.
func (p Plane) StyleOn(s channel.Style) {
	if r := p.rec(); r != nil {
		r.style = r.style.On(s)
	}
}

// StyleOff clears output style bits.
func (p Plane) StyleOff(s channel.Style) {
	if r := p.rec(); r != nil {
		r.style = r.style.Off(s)
	}
}

// Channels returns the colours applied to output.
func (p Plane) Channels() channel.Channels {
	if r := p.rec(); r != nil {
		return r.channels
	}
	return 0
}

// SetChannels overwrites the output colours.
func (p Plane) SetChannels(cs channel.Channels) {
	if r := p.rec(); r != nil {
		r.channels = cs
	}
}

// SetFgRGB sets the output foreground.
func (p Plane) SetFgRGB(rgb uint32) {
	if r := p.rec(); r != nil {
		r.channels.SetFgRGB(rgb)
	}
}

// SetBgRGB sets the output background.
func (p Plane) SetBgRGB(rgb uint32) {
	if r := p.rec(); r != nil {
		r.channels.SetBgRGB(rgb)
	}
}

// SetFgPalIndex selects a palette foreground for output.
func (p Plane) SetFgPalIndex(idx uint8) {
	if r := p.rec(); r != nil {
		r.channels.SetFgPalIndex(idx)
	}
}

// SetBgPalIndex selects a palette background for output.
func (p Plane) SetBgPalIndex(idx uint8) {
	if r := p.rec(); r != nil {
		r.channels.SetBgPalIndex(idx)
	}
}

// SetFgAlpha sets the output foreground alpha.
func (p Plane) SetFgAlpha(a channel.Alpha) {
	if r := p.rec(); r != nil {
		r.channels.SetFgAlpha(a)
	}
}

// SetBgAlpha sets the output background alpha.
func (p Plane) SetBgAlpha(a channel.Alpha) {
	if r := p.rec(); r != nil {
		r.channels.SetBgAlpha(a)
	}
}

// SetFgDefault selects the default foreground for output.
func (p Plane) SetFgDefault() {
	if r := p.rec(); r != nil {
		r.channels.SetFgDefault()
	}
}

// SetBgDefault selects the default background for output.
func (p Plane) SetBgDefault() {
	if r := p.rec(); r != nil {
		r.channels.SetBgDefault()
	}
}
