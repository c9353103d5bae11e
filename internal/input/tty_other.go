//go:build !unix

package input

import (
	"context"
	"errors"
	"time"
)

var errNoTTY = errors.New("tty input requires a unix platform")

// TTYSource is unavailable on this platform.
type TTYSource struct {
	fd int
}

// NewTTYSource returns a source whose methods always fail.
func NewTTYSource(fd int) *TTYSource {
	return &TTYSource{fd: fd}
}

// Fd returns the descriptor.
func (t *TTYSource) Fd() int { return t.fd }

// Wait implements Source.
func (t *TTYSource) Wait(context.Context, time.Duration) (bool, error) {
	return false, errNoTTY
}

// Read implements Source.
func (t *TTYSource) Read([]byte) (int, error) {
	return 0, errNoTTY
}

// WatchResize does nothing on this platform.
func WatchResize(context.Context, Resizer) {}
