//go:build unix

package input

import (
	"context"
	"io"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sys/unix"
)

// TTYSource reads a terminal file descriptor with poll(2).
type TTYSource struct {
	fd int
}

// NewTTYSource returns a source reading fd. The caller owns the descriptor
// and its terminal mode.
func NewTTYSource(fd int) *TTYSource {
	return &TTYSource{fd: fd}
}

// Fd returns the descriptor.
func (t *TTYSource) Fd() int { return t.fd }

// Wait implements Source.
func (t *TTYSource) Wait(ctx context.Context, timeout time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	ms := -1
	if timeout >= 0 {
		ms = int((timeout + time.Millisecond - 1) / time.Millisecond)
	}
	fds := []unix.PollFd{{Fd: int32(t.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, ms)
	if err != nil {
		if err == unix.EINTR {
			return false, ErrInterrupted
		}
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	// Hangup and error conditions are surfaced by the following Read.
	return fds[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0, nil
}

// Read implements Source.
func (t *TTYSource) Read(p []byte) (int, error) {
	n, err := unix.Read(t.fd, p)
	switch {
	case err == unix.EINTR:
		return 0, ErrInterrupted
	case err == unix.EAGAIN:
		return 0, nil
	case err != nil:
		return 0, err
	case n == 0:
		return 0, io.EOF
	}
	return n, nil
}

// WatchResize calls r.InjectResize on every SIGWINCH until ctx ends.
func WatchResize(ctx context.Context, r Resizer) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, unix.SIGWINCH)
	go func() {
		defer signal.Stop(sigCh)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigCh:
				r.InjectResize()
			}
		}
	}()
}
