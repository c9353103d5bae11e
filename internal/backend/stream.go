package backend

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/dshills/stratum/internal/channel"
	"github.com/dshills/stratum/internal/compositor"
	"github.com/dshills/stratum/internal/input"
)

// Default dimensions when the output is not a terminal.
const (
	DefaultRows = 24
	DefaultCols = 80
)

// Stream is a Display writing ANSI sequences to an io.Writer. When the
// writer and reader are terminals it takes the usual full-screen steps:
// raw mode, alternate screen, hidden cursor and SIGWINCH tracking.
type Stream struct {
	mu     sync.Mutex
	out    io.Writer
	in     io.Reader
	ansi   *ANSI
	caps   Capabilities
	inited bool
	prev   *compositor.Frame
	mouse  bool

	rows, cols int
	outFd      int
	outTTY     bool

	inFd     int
	rawState *term.State
	reader   *input.Reader
	escape   time.Duration
	cancel   context.CancelFunc
}

// StreamOption configures a Stream.
type StreamOption func(*Stream)

// WithCapabilities overrides environment detection.
func WithCapabilities(c Capabilities) StreamOption {
	return func(s *Stream) {
		s.caps = c
	}
}

// WithSize fixes the size reported for non-terminal output.
func WithSize(rows, cols int) StreamOption {
	return func(s *Stream) {
		s.rows, s.cols = rows, cols
	}
}

// WithEscapeTimeout sets how long a lone ESC waits for the rest of a
// sequence; zero keeps input.DefaultEscapeTimeout.
func WithEscapeTimeout(d time.Duration) StreamOption {
	return func(s *Stream) {
		s.escape = d
	}
}

// NewStream returns a display writing to out and reading from in. A nil in
// yields a display with no input beyond posted events.
func NewStream(out io.Writer, in io.Reader, pal *channel.Palette, opts ...StreamOption) *Stream {
	s := &Stream{
		out:   out,
		in:    in,
		caps:  DetectCapabilities(nil),
		rows:  DefaultRows,
		cols:  DefaultCols,
		outFd: -1,
		inFd:  -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		s.outFd, s.outTTY = int(f.Fd()), true
	}
	s.ansi = NewANSI(s.caps, pal)
	return s
}

// Init implements Display.
func (s *Stream) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inited {
		return nil
	}
	var ctx context.Context
	ctx, s.cancel = context.WithCancel(context.Background())
	dec := input.WithDecoder(input.NewDecoder(input.WithEscapeTimeout(s.escape)))

	switch in := s.in.(type) {
	case *os.File:
		fd := int(in.Fd())
		if term.IsTerminal(fd) {
			state, err := term.MakeRaw(fd)
			if err != nil {
				s.cancel()
				return fmt.Errorf("raw mode: %w", err)
			}
			s.inFd, s.rawState = fd, state
			s.reader = input.NewReader(input.NewTTYSource(fd), dec)
			input.WatchResize(ctx, s.reader)
		} else {
			s.reader = input.NewReader(input.FromReader(in), dec)
		}
	case nil:
		s.reader = input.NewReader(input.NewMemorySource(), dec)
	default:
		s.reader = input.NewReader(input.FromReader(in), dec)
	}

	if s.outTTY {
		if err := s.write(altEnter, hideCursor, wrapOff); err != nil {
			s.restore()
			return err
		}
	}
	s.prev = nil
	s.inited = true
	return nil
}

// Shutdown implements Display.
func (s *Stream) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inited {
		return
	}
	s.inited = false
	if s.mouse {
		_ = s.write(mouseOff)
		s.mouse = false
	}
	if s.outTTY {
		_ = s.write(sgrReset, wrapOn, showCursor, altExit)
	}
	s.restore()
}

func (s *Stream) restore() {
	if s.rawState != nil {
		_ = term.Restore(s.inFd, s.rawState)
		s.rawState = nil
	}
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Stream) write(parts ...[]byte) error {
	for _, p := range parts {
		if _, err := s.out.Write(p); err != nil {
			return fmt.Errorf("display write: %w", err)
		}
	}
	return nil
}

// Size implements Display.
func (s *Stream) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size()
}

func (s *Stream) size() (int, int) {
	if s.outTTY {
		if cols, rows, err := term.GetSize(s.outFd); err == nil {
			return rows, cols
		}
	}
	return s.rows, s.cols
}

// Present implements Display.
func (s *Stream) Present(f *compositor.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inited {
		return ErrNotInitialized
	}
	if f == nil {
		return errNilFrame
	}
	rows, cols := s.size()
	f = crop(f, rows, cols)
	b, err := s.ansi.Rasterize(f, s.prev)
	if err != nil {
		return err
	}
	if len(b) > 0 {
		if err := s.write(b); err != nil {
			s.prev = nil
			return err
		}
	}
	s.prev = f
	return nil
}

// Refresh implements Display.
func (s *Stream) Refresh() {
	s.mu.Lock()
	s.prev = nil
	s.mu.Unlock()
}

// Capabilities implements Display.
func (s *Stream) Capabilities() Capabilities {
	return s.caps
}

// EnableMouse implements Display.
func (s *Stream) EnableMouse() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.caps.Mouse {
		return ErrUnsupported
	}
	if err := s.write(mouseOn); err != nil {
		return err
	}
	s.mouse = true
	return nil
}

// DisableMouse implements Display.
func (s *Stream) DisableMouse() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.mouse {
		return nil
	}
	if err := s.write(mouseOff); err != nil {
		return err
	}
	s.mouse = false
	return nil
}

// SetPaletteColor implements Display.
func (s *Stream) SetPaletteColor(idx int, rgb uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq, err := s.ansi.PaletteSequence(idx, rgb)
	if err != nil {
		return err
	}
	// Cells drawn in that entry change colour on their own; cells mapped to
	// it by nearest match need repainting.
	s.prev = nil
	return s.write(seq)
}

// Input implements Display. It is nil before Init.
func (s *Stream) Input() input.Poller {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reader == nil {
		return nil
	}
	return s.reader
}
