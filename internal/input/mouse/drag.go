package mouse

import "github.com/dshills/stratum/internal/input"

// dragTracker follows a held button from press to release.
type dragTracker struct {
	held    bool
	moved   bool
	button  input.Button
	start   Position
	current Position
}

func (t *dragTracker) press(pos Position, b input.Button) {
	*t = dragTracker{held: true, button: b, start: pos, current: pos}
}

// move returns the step since the last position, and whether the button is
// still held.
func (t *dragTracker) move(pos Position) (Position, bool) {
	if !t.held {
		return Position{}, false
	}
	delta := Position{Y: pos.Y - t.current.Y, X: pos.X - t.current.X}
	t.current = pos
	if delta != (Position{}) {
		t.moved = true
	}
	return delta, true
}

// release ends the drag and reports whether the pointer moved while held.
func (t *dragTracker) release(pos Position) bool {
	moved := t.held && (t.moved || pos != t.start)
	t.current = pos
	t.held = false
	t.moved = false
	return moved
}

// DragState is a snapshot of a held button.
type DragState struct {
	Active  bool
	Button  input.Button
	Start   Position
	Current Position
}

func (t *dragTracker) state() DragState {
	return DragState{Active: t.held, Button: t.button, Start: t.start, Current: t.current}
}
