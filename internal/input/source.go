package input

import (
	"context"
	"io"
	"sync"
	"time"
)

// MemorySource is an in-process Source fed by Write. It backs tests and
// non-terminal input.
type MemorySource struct {
	mu     sync.Mutex
	data   []byte
	closed bool
	err    error
	signal chan struct{}
}

// NewMemorySource returns an empty, open source.
func NewMemorySource() *MemorySource {
	return &MemorySource{signal: make(chan struct{}, 1)}
}

// FromReader returns a source fed from r by a background goroutine. The
// source closes when r returns an error; io.EOF closes it cleanly.
func FromReader(r io.Reader) *MemorySource {
	m := NewMemorySource()
	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				_, _ = m.Write(buf[:n])
			}
			if err != nil {
				if err == io.EOF {
					err = nil
				}
				m.CloseWithError(err)
				return
			}
		}
	}()
	return m
}

// Write appends p to the unread input.
func (m *MemorySource) Write(p []byte) (int, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0, io.ErrClosedPipe
	}
	m.data = append(m.data, p...)
	m.mu.Unlock()
	m.wake()
	return len(p), nil
}

// WriteString appends s to the unread input.
func (m *MemorySource) WriteString(s string) (int, error) {
	return m.Write([]byte(s))
}

// Close ends the input once buffered bytes are read.
func (m *MemorySource) Close() error {
	m.CloseWithError(nil)
	return nil
}

// CloseWithError ends the input; Read returns err, or io.EOF when err is
// nil, after buffered bytes are read.
func (m *MemorySource) CloseWithError(err error) {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		m.err = err
	}
	m.mu.Unlock()
	m.wake()
}

func (m *MemorySource) wake() {
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *MemorySource) ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data) > 0 || m.closed
}

// Wait implements Source.
func (m *MemorySource) Wait(ctx context.Context, timeout time.Duration) (bool, error) {
	if m.ready() {
		return true, nil
	}
	if timeout == 0 {
		return false, nil
	}
	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}
	for {
		select {
		case <-m.signal:
			if m.ready() {
				return true, nil
			}
		case <-expired:
			return m.ready(), nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

// Read implements Source.
func (m *MemorySource) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.data) > 0 {
		n := copy(p, m.data)
		m.data = m.data[:copy(m.data, m.data[n:])]
		return n, nil
	}
	if m.closed {
		if m.err != nil {
			return 0, m.err
		}
		return 0, io.EOF
	}
	return 0, nil
}
