package term

import (
	"errors"
	"fmt"

	"github.com/dshills/stratum/internal/plane"
)

var (
	// ErrClosed is returned by every operation on a stopped context. Plane
	// handles of a stopped context report the same error.
	ErrClosed = plane.ErrClosed

	// ErrScreenTooSmall indicates margins leave no room for the standard plane.
	ErrScreenTooSmall = errors.New("screen smaller than margins")

	// ErrNoInput indicates a display without an input source.
	ErrNoInput = errors.New("display has no input")
)

// OpError records which context operation failed.
type OpError struct {
	Op  string // e.g. "init", "render"
	Err error
}

func (e *OpError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("term: %s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func opError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}
