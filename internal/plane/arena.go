// Package plane implements the scene graph: rectangular planes of cells,
// bound into trees called piles.
//
// Planes live in an Arena and are addressed by Plane handles. Parent, child
// and sibling links are arena indices, so the tree holds no pointer cycles. A
// handle to a destroyed plane reports ErrStale; every handle reports ErrClosed
// once its arena is closed.
//
// Children are kept in z-order, bottom to top. A pile paints in pre-order: a
// parent lies below all of its children.
//
// Nothing in this package is safe for concurrent use.
package plane

import (
	"github.com/dshills/stratum/internal/cell"
	"github.com/dshills/stratum/internal/channel"
)

// DestroyPolicy decides what happens to the children of a destroyed plane.
type DestroyPolicy int

const (
	// DestroyCascade destroys the whole subtree.
	DestroyCascade DestroyPolicy = iota
	// DestroyReparent binds children to the destroyed plane's parent, keeping
	// their absolute position. Children of a destroyed root become pile roots.
	DestroyReparent
)

func (d DestroyPolicy) String() string {
	if d == DestroyReparent {
		return "reparent"
	}
	return "cascade"
}

// DefaultMaxCells bounds rows*cols for a single plane.
const DefaultMaxCells = 1 << 22

type record struct {
	gen  uint32
	live bool

	// y, x are relative to the parent, or absolute for a pile root.
	y, x       int
	rows, cols int

	parent   int
	children []int

	cells []cell.Cell
	pool  *cell.Pool
	base  cell.Cell

	name     string
	user     any
	pinned   bool
	curY     int
	curX     int
	style    channel.Style
	channels channel.Channels
	scroll   bool
}

func (r *record) at(y, x int) *cell.Cell {
	return &r.cells[y*r.cols+x]
}

// Arena owns every plane of one rendering context.
type Arena struct {
	records  []*record
	free     []int
	roots    []int
	closed   bool
	policy   DestroyPolicy
	maxCells int
	poolSize int
}

// ArenaOption configures an Arena.
type ArenaOption func(*Arena)

// WithDestroyPolicy sets how children of destroyed planes are handled.
func WithDestroyPolicy(p DestroyPolicy) ArenaOption {
	return func(a *Arena) {
		a.policy = p
	}
}

// WithMaxCells bounds the cell count of a single plane.
func WithMaxCells(n int) ArenaOption {
	return func(a *Arena) {
		if n > 0 {
			a.maxCells = n
		}
	}
}

// WithPoolLimit bounds the grapheme pool of each plane, in bytes.
func WithPoolLimit(n int) ArenaOption {
	return func(a *Arena) {
		a.poolSize = n
	}
}

// NewArena creates an empty arena.
func NewArena(opts ...ArenaOption) *Arena {
	a := &Arena{
		policy:   DestroyCascade,
		maxCells: DefaultMaxCells,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Policy returns the destroy policy.
func (a *Arena) Policy() DestroyPolicy {
	return a.policy
}

// SetPolicy changes the destroy policy.
func (a *Arena) SetPolicy(p DestroyPolicy) {
	a.policy = p
}

// Closed reports whether Close has been called.
func (a *Arena) Closed() bool {
	return a.closed
}

// Len returns the number of live planes.
func (a *Arena) Len() int {
	return len(a.records) - len(a.free)
}

// Roots returns the root of every pile.
func (a *Arena) Roots() []Plane {
	out := make([]Plane, 0, len(a.roots))
	for _, idx := range a.roots {
		out = append(out, a.handle(idx))
	}
	return out
}

// Close destroys every plane. All handles report ErrClosed afterwards.
func (a *Arena) Close() {
	if a.closed {
		return
	}
	for _, r := range a.records {
		if r.live {
			a.releaseCells(r)
		}
	}
	a.records = nil
	a.free = nil
	a.roots = nil
	a.closed = true
}

// Pin marks a plane as the standard plane, which Destroy and the Reparent
// calls refuse.
func (a *Arena) Pin(p Plane) error {
	r, err := a.resolve(p)
	if err != nil {
		return err
	}
	r.pinned = true
	return nil
}

func (a *Arena) handle(idx int) Plane {
	return Plane{arena: a, idx: idx, gen: a.records[idx].gen}
}

func (a *Arena) resolve(p Plane) (*record, error) {
	if p.arena == nil {
		return nil, ErrStale
	}
	if p.arena != a {
		return nil, ErrForeignPlane
	}
	if a.closed {
		return nil, ErrClosed
	}
	if p.idx < 0 || p.idx >= len(a.records) {
		return nil, ErrStale
	}
	r := a.records[p.idx]
	if !r.live || r.gen != p.gen {
		return nil, ErrStale
	}
	return r, nil
}

func (a *Arena) alloc() int {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		r := a.records[idx]
		*r = record{gen: r.gen + 1}
		return idx
	}
	a.records = append(a.records, &record{gen: 1})
	return len(a.records) - 1
}

func (a *Arena) releaseCells(r *record) {
	for i := range r.cells {
		r.pool.Release(&r.cells[i])
	}
	r.pool.Release(&r.base)
	r.cells = nil
}

func (a *Arena) checkGeometry(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return ErrInvalidGeometry
	}
	if rows > a.maxCells/cols {
		return ErrInvalidGeometry
	}
	return nil
}

// Option flags for Create.
const (
	// OptionBottom binds the new plane below its siblings instead of above.
	OptionBottom uint64 = 1 << iota
	// OptionHorAligned positions the plane horizontally by Options.HAlign.
	OptionHorAligned
	// OptionVerAligned positions the plane vertically by Options.VAlign.
	OptionVerAligned
)

// Options describes a new plane.
type Options struct {
	Y, X       int
	Rows, Cols int
	Name       string
	UserData   any
	HAlign     Align
	VAlign     Align
	Flags      uint64
}

// Create makes a plane bound to parent, or a new pile root when parent is
// the zero Plane. Y and X are relative to the parent.
func (a *Arena) Create(parent Plane, opts Options) (Plane, error) {
	if a.closed {
		return Plane{}, newError("create", nil, ErrClosed)
	}
	if err := a.checkGeometry(opts.Rows, opts.Cols); err != nil {
		return Plane{}, newError("create", nil, err)
	}

	var pr *record
	if !parent.IsZero() {
		var err error
		if pr, err = a.resolve(parent); err != nil {
			return Plane{}, newError("create", nil, err)
		}
	}

	y, x := opts.Y, opts.X
	if pr != nil {
		if opts.Flags&OptionHorAligned != 0 {
			x = AlignOffset(pr.cols, opts.HAlign, opts.Cols)
		}
		if opts.Flags&OptionVerAligned != 0 {
			y = AlignOffset(pr.rows, opts.VAlign, opts.Rows)
		}
	}

	idx := a.alloc()
	r := a.records[idx]
	r.live = true
	r.y, r.x = y, x
	r.rows, r.cols = opts.Rows, opts.Cols
	r.cells = make([]cell.Cell, opts.Rows*opts.Cols)
	r.pool = cell.NewPool(a.poolSize)
	r.name = opts.Name
	r.user = opts.UserData
	r.parent = -1

	if pr == nil {
		a.roots = append(a.roots, idx)
	} else {
		r.parent = parent.idx
		if opts.Flags&OptionBottom != 0 {
			pr.children = insertAt(pr.children, 0, idx)
		} else {
			pr.children = append(pr.children, idx)
		}
	}
	return a.handle(idx), nil
}

// NewPile creates a pile root at an absolute position.
func (a *Arena) NewPile(opts Options) (Plane, error) {
	return a.Create(Plane{}, opts)
}

func insertAt(s []int, i, v int) []int {
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func removeValue(s []int, v int) ([]int, int) {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...), i
		}
	}
	return s, -1
}

func indexOf(s []int, v int) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

// unbind detaches idx from its parent's children, or from the roots.
// It returns the z-position it held.
func (a *Arena) unbind(idx int) int {
	r := a.records[idx]
	var pos int
	if r.parent < 0 {
		a.roots, pos = removeValue(a.roots, idx)
	} else {
		pr := a.records[r.parent]
		pr.children, pos = removeValue(pr.children, idx)
	}
	return pos
}

func (a *Arena) absYX(idx int) (int, int) {
	y, x := 0, 0
	for idx >= 0 {
		r := a.records[idx]
		y += r.y
		x += r.x
		idx = r.parent
	}
	return y, x
}

func (a *Arena) root(idx int) int {
	for a.records[idx].parent >= 0 {
		idx = a.records[idx].parent
	}
	return idx
}

func (a *Arena) paintOrder(idx int, out []Plane) []Plane {
	out = append(out, a.handle(idx))
	for _, c := range a.records[idx].children {
		out = a.paintOrder(c, out)
	}
	return out
}
