package plane

import (
	"errors"
	"fmt"
)

// Plane errors.
var (
	// ErrInvalidGeometry indicates a non-positive or oversized dimension.
	ErrInvalidGeometry = errors.New("invalid plane geometry")

	// ErrOutOfBounds indicates a coordinate outside the plane.
	ErrOutOfBounds = errors.New("coordinate out of bounds")

	// ErrBindingCycle indicates a reparent that would make a plane its own ancestor.
	ErrBindingCycle = errors.New("binding cycle")

	// ErrNotSiblings indicates a z-order move between planes with different parents.
	ErrNotSiblings = errors.New("planes are not siblings")

	// ErrForeignPlane indicates a plane from another arena.
	ErrForeignPlane = errors.New("plane belongs to another arena")

	// ErrStdPlane indicates an attempt to destroy or rebind the standard plane.
	ErrStdPlane = errors.New("standard plane cannot be destroyed or reparented")

	// ErrStale indicates a handle to a destroyed plane.
	ErrStale = errors.New("stale plane handle")

	// ErrClosed indicates the arena has been closed.
	ErrClosed = errors.New("arena closed")
)

// Error records the operation and plane behind a failure.
type Error struct {
	Op    string // operation name, e.g. "resize"
	Plane string // plane name, may be empty
	Err   error
}

func newError(op string, r *record, err error) *Error {
	e := &Error{Op: op, Err: err}
	if r != nil {
		e.Plane = r.name
	}
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Plane != "" {
		return fmt.Sprintf("plane %s: %s: %v", e.Plane, e.Op, e.Err)
	}
	return fmt.Sprintf("plane: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target matches this error.
func (e *Error) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return (t.Op == "" || t.Op == e.Op) && (t.Err == nil || errors.Is(e.Err, t.Err))
}
