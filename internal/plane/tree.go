package plane

import "github.com/dshills/stratum/internal/cell"

// ReparentMode decides where a reparented plane ends up.
type ReparentMode int

const (
	// KeepRelative keeps the plane's offset, now measured from the new parent.
	KeepRelative ReparentMode = iota
	// KeepAbsolute keeps the plane's absolute position.
	KeepAbsolute
)

// siblings returns the shared child list of p and target.
func (a *Arena) siblings(op string, pr, tr *record, p, target Plane) (*[]int, error) {
	if p.idx == target.idx {
		return nil, newError(op, pr, ErrNotSiblings)
	}
	if pr.parent < 0 || pr.parent != tr.parent {
		return nil, newError(op, pr, ErrNotSiblings)
	}
	return &a.records[pr.parent].children, nil
}

func (p Plane) targetPair(op string, target Plane) (*record, *record, error) {
	r, err := p.recOp(op)
	if err != nil {
		return nil, nil, err
	}
	tr, err := p.arena.resolve(target)
	if err != nil {
		return nil, nil, newError(op, r, err)
	}
	return r, tr, nil
}

// MoveAbove places p directly above target. Both must share a parent.
func (p Plane) MoveAbove(target Plane) error {
	r, tr, err := p.targetPair("move above", target)
	if err != nil {
		return err
	}
	sib, err := p.arena.siblings("move above", r, tr, p, target)
	if err != nil {
		return err
	}
	s, _ := removeValue(*sib, p.idx)
	*sib = insertAt(s, indexOf(s, target.idx)+1, p.idx)
	return nil
}

// MoveBelow places p directly below target. Both must share a parent.
func (p Plane) MoveBelow(target Plane) error {
	r, tr, err := p.targetPair("move below", target)
	if err != nil {
		return err
	}
	sib, err := p.arena.siblings("move below", r, tr, p, target)
	if err != nil {
		return err
	}
	s, _ := removeValue(*sib, p.idx)
	*sib = insertAt(s, indexOf(s, target.idx), p.idx)
	return nil
}

// MoveTop raises p above all of its siblings.
func (p Plane) MoveTop() error {
	r, err := p.recOp("move top")
	if err != nil {
		return err
	}
	if r.parent < 0 {
		return nil
	}
	pr := p.arena.records[r.parent]
	s, _ := removeValue(pr.children, p.idx)
	pr.children = append(s, p.idx)
	return nil
}

// MoveBottom lowers p below all of its siblings.
func (p Plane) MoveBottom() error {
	r, err := p.recOp("move bottom")
	if err != nil {
		return err
	}
	if r.parent < 0 {
		return nil
	}
	pr := p.arena.records[r.parent]
	s, _ := removeValue(pr.children, p.idx)
	pr.children = insertAt(s, 0, p.idx)
	return nil
}

func (p Plane) neighbour(delta int) (Plane, bool) {
	r := p.rec()
	if r == nil || r.parent < 0 {
		return Plane{}, false
	}
	sib := p.arena.records[r.parent].children
	i := indexOf(sib, p.idx) + delta
	if i < 0 || i >= len(sib) {
		return Plane{}, false
	}
	return p.arena.handle(sib[i]), true
}

// Above returns the sibling directly above p.
func (p Plane) Above() (Plane, bool) {
	return p.neighbour(1)
}

// Below returns the sibling directly below p.
func (p Plane) Below() (Plane, bool) {
	return p.neighbour(-1)
}

// Reparent binds p, with its subtree, to newParent at the top of its
// children. It fails with ErrBindingCycle if newParent is p or lies within
// p's subtree, and with ErrStdPlane for the standard plane.
func (p Plane) Reparent(newParent Plane, mode ReparentMode) error {
	r, nr, err := p.targetPair("reparent", newParent)
	if err != nil {
		return err
	}
	if r.pinned {
		return newError("reparent", r, ErrStdPlane)
	}
	a := p.arena
	for i := newParent.idx; i >= 0; i = a.records[i].parent {
		if i == p.idx {
			return newError("reparent", r, ErrBindingCycle)
		}
	}

	if mode == KeepAbsolute {
		ay, ax := a.absYX(p.idx)
		py, px := a.absYX(newParent.idx)
		r.y, r.x = ay-py, ax-px
	}
	a.unbind(p.idx)
	r.parent = newParent.idx
	nr.children = append(nr.children, p.idx)
	return nil
}

// ReparentToNewPile detaches p, with its subtree, into a pile of its own.
// The new root keeps its absolute position. The standard plane stays the
// root of the standard pile.
func (p Plane) ReparentToNewPile() error {
	r, err := p.recOp("reparent")
	if err != nil {
		return err
	}
	if r.pinned {
		return newError("reparent", r, ErrStdPlane)
	}
	if r.parent < 0 {
		return nil
	}
	a := p.arena
	r.y, r.x = a.absYX(p.idx)
	a.unbind(p.idx)
	r.parent = -1
	a.roots = append(a.roots, p.idx)
	return nil
}

// Destroy removes p and releases its cells. Children are handled by the
// arena's DestroyPolicy. The standard plane cannot be destroyed.
func (p Plane) Destroy() error {
	r, err := p.recOp("destroy")
	if err != nil {
		return err
	}
	if r.pinned {
		return newError("destroy", r, ErrStdPlane)
	}
	a := p.arena
	if a.policy == DestroyCascade && a.subtreePinned(p.idx) {
		return newError("destroy", r, ErrStdPlane)
	}

	pos := a.unbind(p.idx)
	switch a.policy {
	case DestroyReparent:
		a.adoptChildren(p.idx, pos)
	default:
		for _, c := range append([]int(nil), r.children...) {
			a.destroyTree(c)
		}
	}
	a.free1(p.idx)
	return nil
}

func (a *Arena) subtreePinned(idx int) bool {
	r := a.records[idx]
	if r.pinned {
		return true
	}
	for _, c := range r.children {
		if a.subtreePinned(c) {
			return true
		}
	}
	return false
}

// adoptChildren binds the children of idx to its parent at pos, or makes
// them pile roots, preserving absolute positions and relative order.
func (a *Arena) adoptChildren(idx, pos int) {
	r := a.records[idx]
	for i, c := range r.children {
		cr := a.records[c]
		cr.y += r.y
		cr.x += r.x
		cr.parent = r.parent
		if r.parent < 0 {
			a.roots = append(a.roots, c)
			continue
		}
		pr := a.records[r.parent]
		pr.children = insertAt(pr.children, pos+i, c)
	}
	r.children = nil
}

func (a *Arena) destroyTree(idx int) {
	r := a.records[idx]
	for _, c := range r.children {
		a.destroyTree(c)
	}
	a.free1(idx)
}

func (a *Arena) free1(idx int) {
	r := a.records[idx]
	a.releaseCells(r)
	r.children = nil
	r.live = false
	r.user = nil
	a.free = append(a.free, idx)
}

// Resize changes the plane's geometry, anchored at the top-left. Cells inside
// both geometries are kept; cells outside the new one are released. A wide
// glyph cut by the new right edge is cleared. New cells are empty.
func (p Plane) Resize(rows, cols int) error {
	r, err := p.recOp("resize")
	if err != nil {
		return err
	}
	if err := p.arena.checkGeometry(rows, cols); err != nil {
		return newError("resize", r, err)
	}
	if rows == r.rows && cols == r.cols {
		return nil
	}

	cells := make([]cell.Cell, rows*cols)
	keepRows := min(rows, r.rows)
	keepCols := min(cols, r.cols)
	for y := 0; y < r.rows; y++ {
		for x := 0; x < r.cols; x++ {
			c := r.at(y, x)
			if y < keepRows && x < keepCols {
				if x == cols-1 && c.IsWideLeft() {
					r.pool.Release(c)
				}
				cells[y*cols+x] = *c
				continue
			}
			r.pool.Release(c)
		}
	}
	r.cells = cells
	r.rows, r.cols = rows, cols
	r.curY = min(r.curY, rows-1)
	r.curX = min(r.curX, cols-1)
	return nil
}
