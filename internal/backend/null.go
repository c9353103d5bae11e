package backend

import (
	"sync"

	"github.com/dshills/stratum/internal/compositor"
	"github.com/dshills/stratum/internal/input"
)

// Null is an in-memory Display. It keeps the last presented frame and reads
// input from bytes fed to it, which makes it the display of choice for tests
// and headless rendering.
type Null struct {
	mu       sync.Mutex
	rows     int
	cols     int
	caps     Capabilities
	inited   bool
	mouse    bool
	last     *compositor.Frame
	presents int
	refresh  bool
	palette  map[int]uint32

	src    *input.MemorySource
	reader *input.Reader
}

// NewNull returns a null display of the given size and capabilities.
func NewNull(rows, cols int, caps Capabilities) *Null {
	src := input.NewMemorySource()
	return &Null{
		rows:    rows,
		cols:    cols,
		caps:    caps,
		palette: make(map[int]uint32),
		src:     src,
		reader:  input.NewReader(src),
	}
}

// Init implements Display.
func (n *Null) Init() error {
	n.mu.Lock()
	n.inited = true
	n.mu.Unlock()
	return nil
}

// Shutdown implements Display. Pending input is left readable and the source
// reports end of input once drained.
func (n *Null) Shutdown() {
	n.mu.Lock()
	n.inited = false
	n.mu.Unlock()
	_ = n.src.Close()
}

// Size implements Display.
func (n *Null) Size() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.rows, n.cols
}

// Resize changes the display size and queues a resize event.
func (n *Null) Resize(rows, cols int) {
	n.mu.Lock()
	n.rows, n.cols = rows, cols
	n.mu.Unlock()
	n.reader.InjectResize()
}

// Present implements Display.
func (n *Null) Present(f *compositor.Frame) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.inited {
		return ErrNotInitialized
	}
	if f == nil {
		return errNilFrame
	}
	n.last = crop(f, n.rows, n.cols)
	n.presents++
	n.refresh = false
	return nil
}

// Last returns a copy of the most recently presented frame, or nil.
func (n *Null) Last() *compositor.Frame {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.last == nil {
		return nil
	}
	return n.last.Clone()
}

// Presents returns how many frames were presented.
func (n *Null) Presents() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.presents
}

// Refresh implements Display.
func (n *Null) Refresh() {
	n.mu.Lock()
	n.refresh = true
	n.mu.Unlock()
}

// RefreshPending reports whether a Refresh awaits the next Present.
func (n *Null) RefreshPending() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.refresh
}

// Capabilities implements Display.
func (n *Null) Capabilities() Capabilities {
	return n.caps
}

// EnableMouse implements Display.
func (n *Null) EnableMouse() error {
	if !n.caps.Mouse {
		return ErrUnsupported
	}
	n.mu.Lock()
	n.mouse = true
	n.mu.Unlock()
	return nil
}

// DisableMouse implements Display.
func (n *Null) DisableMouse() error {
	n.mu.Lock()
	n.mouse = false
	n.mu.Unlock()
	return nil
}

// MouseEnabled reports whether mouse reporting is on.
func (n *Null) MouseEnabled() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.mouse
}

// SetPaletteColor implements Display.
func (n *Null) SetPaletteColor(idx int, rgb uint32) error {
	if !n.caps.ChangeColor {
		return ErrUnsupported
	}
	if idx < 0 || idx > 255 {
		return errPaletteIndex
	}
	n.mu.Lock()
	n.palette[idx] = rgb & 0xffffff
	n.mu.Unlock()
	return nil
}

// PaletteColor returns a colour set with SetPaletteColor.
func (n *Null) PaletteColor(idx int) (uint32, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	rgb, ok := n.palette[idx]
	return rgb, ok
}

// Feed queues raw terminal bytes for decoding.
func (n *Null) Feed(p []byte) error {
	_, err := n.src.Write(p)
	return err
}

// FeedString queues raw terminal bytes for decoding.
func (n *Null) FeedString(s string) error {
	return n.Feed([]byte(s))
}

// Input implements Display.
func (n *Null) Input() input.Poller { return n.reader }

// crop returns f clipped to rows x cols. A wide glyph cut at the right edge
// becomes a space.
func crop(f *compositor.Frame, rows, cols int) *compositor.Frame {
	if f.Rows <= rows && f.Cols <= cols {
		return f.Clone()
	}
	rows, cols = min(rows, f.Rows), min(cols, f.Cols)
	out := compositor.NewFrame(rows, cols)
	for y := 0; y < rows; y++ {
		copy(out.Cells[y*cols:(y+1)*cols], f.Cells[y*f.Cols:y*f.Cols+cols])
		if cols > 0 && cols < f.Cols {
			last := &out.Cells[y*cols+cols-1]
			if last.Width == 2 {
				last.Text, last.Width = "", 1
			}
		}
	}
	return out
}
