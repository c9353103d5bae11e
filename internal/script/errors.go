package script

import "errors"

var (
	// ErrClosed is returned when operating on a closed engine.
	ErrClosed = errors.New("script engine is closed")

	// ErrNotFunction is returned by Call when the global is missing or not
	// a function.
	ErrNotFunction = errors.New("not a lua function")
)
