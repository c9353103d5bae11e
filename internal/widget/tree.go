package widget

import (
	"strings"

	"github.com/dshills/stratum/internal/channel"
	"github.com/dshills/stratum/internal/input"
	"github.com/dshills/stratum/internal/plane"
)

// TreeItem is a node of a Tree.
type TreeItem struct {
	Name     string
	Data     any
	Children []*TreeItem
}

// TreeDrawFunc draws one visible item on row y of the tree's plane.
type TreeDrawFunc func(p plane.Plane, y int, item *TreeItem, depth int, focused bool) error

// TreeOptions configures NewTree.
type TreeOptions struct {
	Items []*TreeItem

	// Indent is the columns per nesting level; zero selects 2.
	Indent int

	// Channels colour unfocused rows; the focused row is reversed.
	Channels channel.Channels

	// Draw replaces the default item drawing.
	Draw TreeDrawFunc
}

type treeRow struct {
	item  *TreeItem
	depth int
}

// Tree is a scrolling, fully expanded hierarchy of items with one focused
// item. It owns its plane.
type Tree struct {
	p      plane.Plane
	opts   TreeOptions
	rows   []treeRow
	focus  int
	offset int
	dead   bool
	err    error
}

// NewTree lays items out on p and draws them with the first item focused.
func NewTree(p plane.Plane, opts TreeOptions) (*Tree, error) {
	if err := p.Err(); err != nil {
		return nil, err
	}
	if opts.Indent <= 0 {
		opts.Indent = 2
	}
	t := &Tree{p: p, opts: opts}
	t.rows = flatten(opts.Items, 0, nil)
	if len(t.rows) == 0 {
		return nil, ErrNoItems
	}
	if err := t.Redraw(); err != nil {
		return nil, err
	}
	return t, nil
}

func flatten(items []*TreeItem, depth int, out []treeRow) []treeRow {
	for _, it := range items {
		if it == nil {
			continue
		}
		out = append(out, treeRow{item: it, depth: depth})
		out = flatten(it.Children, depth+1, out)
	}
	return out
}

// Plane returns the plane the tree draws on.
func (t *Tree) Plane() plane.Plane { return t.p }

// Len returns the number of items, at every depth.
func (t *Tree) Len() int { return len(t.rows) }

// Focused returns the focused item and its depth.
func (t *Tree) Focused() (*TreeItem, int) {
	r := t.rows[t.focus]
	return r.item, r.depth
}

// Next focuses the following item, staying on the last, and returns it.
func (t *Tree) Next() *TreeItem {
	return t.move(1)
}

// Prev focuses the preceding item, staying on the first, and returns it.
func (t *Tree) Prev() *TreeItem {
	return t.move(-1)
}

// Page moves the focus by n screenfuls.
func (t *Tree) Page(n int) *TreeItem {
	rows, _ := t.p.Dim()
	return t.move(n * max(1, rows))
}

func (t *Tree) move(delta int) *TreeItem {
	t.focus = min(max(t.focus+delta, 0), len(t.rows)-1)
	return t.rows[t.focus].item
}

// Redraw clears the plane and draws the visible items, scrolling as little
// as possible to keep the focused item in view.
func (t *Tree) Redraw() error {
	if t.dead {
		return ErrDestroyed
	}
	if err := t.p.Err(); err != nil {
		return err
	}
	rows, cols := t.p.Dim()
	switch {
	case t.focus < t.offset:
		t.offset = t.focus
	case t.focus >= t.offset+rows:
		t.offset = t.focus - rows + 1
	}

	t.p.Erase()
	saved := t.p.Channels()
	defer t.p.SetChannels(saved)
	draw := t.opts.Draw
	if draw == nil {
		draw = t.drawItem(cols)
	}
	for y := 0; y < rows && t.offset+y < len(t.rows); y++ {
		i := t.offset + y
		r := t.rows[i]
		if err := draw(t.p, y, r.item, r.depth, i == t.focus); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) drawItem(cols int) TreeDrawFunc {
	return func(p plane.Plane, y int, item *TreeItem, depth int, focused bool) error {
		cs := t.opts.Channels
		if focused {
			cs = reversed(cs)
		}
		p.SetChannels(cs)
		if focused {
			if _, err := p.PutStr(y, 0, strings.Repeat(" ", cols)); err != nil {
				return err
			}
		}
		x := min(depth*t.opts.Indent, cols-1)
		_, err := p.PutStr(y, x, item.Name)
		return err
	}
}

// Err returns the error from the last redraw OfferInput triggered, or nil
// if it succeeded.
func (t *Tree) Err() error { return t.err }

// OfferInput implements Offerer. It consumes up and down, page up and page
// down, the scroll wheel, and clicks on an item, which focus it.
func (t *Tree) OfferInput(in input.Input) bool {
	if t.dead || !isPress(in) {
		return false
	}
	t.err = nil
	if b, ok := in.Code.Button(); ok {
		return t.offerMouse(in, b)
	}
	k, ok := in.Code.Key()
	if !ok {
		return false
	}
	switch k {
	case input.KeyUp:
		t.Prev()
	case input.KeyDown:
		t.Next()
	case input.KeyPgUp:
		t.Page(-1)
	case input.KeyPgDown:
		t.Page(1)
	default:
		return false
	}
	t.err = t.Redraw()
	return true
}

func (t *Tree) offerMouse(in input.Input, b input.Button) bool {
	switch b {
	case input.ButtonWheelUp:
		t.Prev()
	case input.ButtonWheelDown:
		t.Next()
	case input.ButtonLeft:
		if in.Code.Motion() {
			return false
		}
		y, _, inside := t.p.TranslateAbs(in.Y, in.X)
		if !inside || t.offset+y >= len(t.rows) {
			return false
		}
		t.focus = t.offset + y
	default:
		return false
	}
	t.err = t.Redraw()
	return true
}

// Destroy destroys the tree's plane.
func (t *Tree) Destroy() error {
	if t.dead {
		return ErrDestroyed
	}
	t.dead = true
	return t.p.Destroy()
}
