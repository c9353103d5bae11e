package input

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

var (
	// ErrNoInput is returned by a poll or timed read that found no event.
	ErrNoInput = errors.New("no input available")

	// ErrClosed is returned once the source has ended and the KeyEOF event
	// has been delivered.
	ErrClosed = errors.New("input closed")

	// ErrInterrupted reports a wait cut short by a signal. The read may be
	// retried.
	ErrInterrupted = errors.New("input wait interrupted")
)

// pollSlice bounds each wait on the source so posted events and escape
// timeouts are noticed while blocked.
const pollSlice = 50 * time.Millisecond

// Source is a pollable byte stream such as a terminal.
type Source interface {
	// Wait blocks until Read would not block, the timeout passes, or ctx
	// ends. A zero timeout polls.
	Wait(ctx context.Context, timeout time.Duration) (bool, error)
	// Read returns available bytes. io.EOF marks the end of input.
	Read(p []byte) (int, error)
}

// Poller is anything that yields decoded input and accepts injected events.
type Poller interface {
	// Poll returns the next event. A negative timeout blocks, zero polls and
	// a positive value waits at most that long.
	Poll(ctx context.Context, timeout time.Duration) (Input, error)
	// Post queues a synthetic event.
	Post(Input)
}

// Resizer receives resize notifications.
type Resizer interface {
	InjectResize()
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithDecoder replaces the default decoder.
func WithDecoder(d *Decoder) ReaderOption {
	return func(r *Reader) {
		if d != nil {
			r.dec = d
		}
	}
}

// WithClock sets the time source, for tests.
func WithClock(now func() time.Time) ReaderOption {
	return func(r *Reader) {
		if now != nil {
			r.now = now
		}
	}
}

// Reader decodes events from a Source and queues them. Get and GetVec may be
// called from one goroutine at a time; Post and InjectResize are safe from
// any goroutine.
type Reader struct {
	src Source
	dec *Decoder
	now func() time.Time
	buf []byte

	readMu sync.Mutex

	mu      sync.Mutex
	queue   []Input
	eof     bool
	eofSent bool
	stats   Stats
}

// Stats counts reader activity.
type Stats struct {
	Events    int
	Posted    int
	Resizes   int
	Discarded int
}

// NewReader returns a reader over src.
func NewReader(src Source, opts ...ReaderOption) *Reader {
	r := &Reader{
		src: src,
		dec: NewDecoder(),
		now: time.Now,
		buf: make([]byte, 4096),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Post queues in behind any pending events.
func (r *Reader) Post(in Input) {
	r.mu.Lock()
	r.queue = append(r.queue, in)
	r.stats.Posted++
	r.mu.Unlock()
}

// InjectResize queues a KeyResize event.
func (r *Reader) InjectResize() {
	r.mu.Lock()
	r.queue = append(r.queue, KeyInput(KeyResize))
	r.stats.Resizes++
	r.mu.Unlock()
}

// Stats returns a snapshot of the counters.
func (r *Reader) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Poll implements Poller.
func (r *Reader) Poll(ctx context.Context, timeout time.Duration) (Input, error) {
	return r.Get(ctx, timeout)
}

// Get returns the next event. A negative timeout blocks until one arrives,
// zero returns ErrNoInput if nothing is ready, and a positive timeout returns
// ErrNoInput once it passes. After the source ends, Get returns a KeyEOF
// event once and then ErrClosed.
func (r *Reader) Get(ctx context.Context, timeout time.Duration) (Input, error) {
	r.readMu.Lock()
	defer r.readMu.Unlock()

	var deadline time.Time
	if timeout > 0 {
		deadline = r.now().Add(timeout)
	}
	for {
		if in, ok := r.pop(); ok {
			return in, nil
		}
		if in, done, err := r.closed(); done {
			return in, err
		}
		if err := ctx.Err(); err != nil {
			return Input{}, err
		}

		wait := pollSlice
		now := r.now()
		switch {
		case timeout == 0:
			wait = 0
		case timeout > 0:
			left := deadline.Sub(now)
			if left <= 0 {
				return Input{}, ErrNoInput
			}
			wait = min(wait, left)
		}
		if dl, ok := r.dec.Deadline(); ok {
			wait = max(0, min(wait, dl.Sub(now)))
		}

		if err := r.fill(ctx, wait); err != nil {
			return Input{}, err
		}
		r.push(r.dec.Expire(r.now()))

		if timeout == 0 && !r.ready() {
			return Input{}, ErrNoInput
		}
	}
}

// GetVec blocks as Get does for the first event, then drains up to n-1
// further events that are already available without waiting.
func (r *Reader) GetVec(ctx context.Context, n int, timeout time.Duration) ([]Input, error) {
	return CollectVec(ctx, r.Get, n, timeout)
}

// PollFunc has the signature and timeout rules of Poller.Poll.
type PollFunc func(ctx context.Context, timeout time.Duration) (Input, error)

// CollectVec calls poll with timeout for a first event, then polls with a
// zero timeout until it holds n events or poll fails. Only the first poll's
// error is returned.
func CollectVec(ctx context.Context, poll PollFunc, n int, timeout time.Duration) ([]Input, error) {
	if n <= 0 {
		return nil, nil
	}
	first, err := poll(ctx, timeout)
	if err != nil {
		return nil, err
	}
	out := []Input{first}
	for len(out) < n {
		in, err := poll(ctx, 0)
		if err != nil {
			break
		}
		out = append(out, in)
	}
	return out, nil
}

// fill waits up to wait for the source and decodes whatever it delivers.
func (r *Reader) fill(ctx context.Context, wait time.Duration) error {
	ok, err := r.src.Wait(ctx, wait)
	if err != nil {
		if errors.Is(err, ErrInterrupted) {
			return ErrInterrupted
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("input: wait: %w", err)
	}
	if !ok {
		return nil
	}
	n, err := r.src.Read(r.buf)
	if n > 0 {
		r.push(r.dec.Feed(r.buf[:n], r.now()))
	}
	switch {
	case errors.Is(err, io.EOF):
		r.push(r.dec.Flush())
		r.mu.Lock()
		r.eof = true
		r.mu.Unlock()
	case errors.Is(err, ErrInterrupted):
		return ErrInterrupted
	case err != nil:
		return fmt.Errorf("input: read: %w", err)
	}
	return nil
}

// push queues decoded events. Only the goroutine holding readMu calls it.
func (r *Reader) push(ins []Input) {
	r.mu.Lock()
	r.queue = append(r.queue, ins...)
	r.stats.Events += len(ins)
	r.stats.Discarded = r.dec.Discarded()
	r.mu.Unlock()
}

func (r *Reader) pop() (Input, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) == 0 {
		return Input{}, false
	}
	in := r.queue[0]
	r.queue[0] = Input{}
	r.queue = r.queue[1:]
	return in, true
}

func (r *Reader) ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue) > 0 || r.eof
}

// closed reports the end-of-input result once the source has ended.
func (r *Reader) closed() (Input, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.eof {
		return Input{}, false, nil
	}
	if !r.eofSent {
		r.eofSent = true
		return KeyInput(KeyEOF), true, nil
	}
	return Input{}, true, ErrClosed
}
