// Package term ties the scene graph to a display. A Context is created by
// Init and torn down by Stop; it owns the plane arena, the standard pile,
// the palette, the last rendered frame and the render statistics.
//
// A Context is not safe for concurrent use, with one exception: Stats may be
// read from any goroutine.
package term

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/stratum/internal/backend"
	"github.com/dshills/stratum/internal/channel"
	"github.com/dshills/stratum/internal/compositor"
	"github.com/dshills/stratum/internal/input"
	"github.com/dshills/stratum/internal/logging"
	"github.com/dshills/stratum/internal/plane"
)

// StdPlaneName names the standard plane.
const StdPlaneName = "std"

// Margins reserve screen rows and columns the standard plane does not cover.
type Margins struct {
	Top, Right, Bottom, Left int
}

// Options configures Init. The zero value is usable.
type Options struct {
	Logger  *logging.Logger  // defaults to logging.Null
	Palette *channel.Palette // defaults to the xterm palette

	DestroyPolicy plane.DestroyPolicy
	MaxCells      int // per plane; 0 selects plane.DefaultMaxCells
	PoolLimit     int // grapheme pool bytes per plane; 0 selects cell.DefaultPoolLimit

	Margins Margins

	// Mouse enables mouse reporting at init when the display supports it.
	Mouse bool
}

// Context is one initialized display and its scene graph.
type Context struct {
	id      uuid.UUID
	log     *logging.Logger
	display backend.Display
	caps    backend.Capabilities
	pal     *channel.Palette
	margins Margins

	arena *plane.Arena
	std   plane.Plane

	last   *compositor.Frame
	stats  *stats
	mouse  bool
	closed bool
}

// Init initializes d and builds the standard pile over it, less margins.
func Init(d backend.Display, opts Options) (*Context, error) {
	if opts.Margins.Top < 0 || opts.Margins.Right < 0 || opts.Margins.Bottom < 0 || opts.Margins.Left < 0 {
		return nil, opError("init", plane.ErrInvalidGeometry)
	}
	c := &Context{
		id:      uuid.New(),
		display: d,
		pal:     opts.Palette,
		margins: opts.Margins,
		stats:   newStats(),
	}
	if c.pal == nil {
		c.pal = channel.NewPalette()
	}
	log := opts.Logger
	if log == nil {
		log = logging.Null
	}
	c.log = log.WithComponent("term").WithField("ctx", c.id.String()[:8])

	if err := d.Init(); err != nil {
		return nil, opError("init", err)
	}
	c.caps = d.Capabilities()

	arenaOpts := []plane.ArenaOption{plane.WithDestroyPolicy(opts.DestroyPolicy), plane.WithPoolLimit(opts.PoolLimit)}
	if opts.MaxCells > 0 {
		arenaOpts = append(arenaOpts, plane.WithMaxCells(opts.MaxCells))
	}
	c.arena = plane.NewArena(arenaOpts...)

	rows, cols, err := c.stdGeometry()
	if err != nil {
		d.Shutdown()
		return nil, opError("init", err)
	}
	c.std, err = c.arena.NewPile(plane.Options{
		Y: c.margins.Top, X: c.margins.Left,
		Rows: rows, Cols: cols,
		Name: StdPlaneName,
	})
	if err != nil {
		d.Shutdown()
		return nil, opError("init", err)
	}
	_ = c.arena.Pin(c.std)

	if opts.Mouse {
		if err := c.MouseEnable(); err != nil && !errors.Is(err, backend.ErrUnsupported) {
			c.log.Warn("mouse enable: %v", err)
		}
	}
	c.log.Debug("initialized %dx%d, %d colours", rows, cols, c.caps.Colors)
	return c, nil
}

func (c *Context) stdGeometry() (int, int, error) {
	rows, cols := c.display.Size()
	rows -= c.margins.Top + c.margins.Bottom
	cols -= c.margins.Left + c.margins.Right
	if rows <= 0 || cols <= 0 {
		return 0, 0, ErrScreenTooSmall
	}
	return rows, cols, nil
}

// Stop shuts the display down and destroys every plane. Handles from this
// context report ErrClosed afterwards. A second Stop returns ErrClosed.
func (c *Context) Stop() error {
	if c.closed {
		return opError("stop", ErrClosed)
	}
	if c.mouse {
		_ = c.display.DisableMouse()
		c.mouse = false
	}
	c.display.Shutdown()
	c.arena.Close()
	c.last = nil
	c.closed = true
	s := c.stats.snapshot()
	c.log.Debug("stopped after %d renders, %d inputs", s.Renders, s.Inputs)
	return nil
}

// Closed reports whether Stop has been called.
func (c *Context) Closed() bool { return c.closed }

// ID returns the context's unique id.
func (c *Context) ID() string { return c.id.String() }

// Arena returns the arena holding every plane of the context.
func (c *Context) Arena() *plane.Arena { return c.arena }

// StdPlane returns the standard plane. It cannot be destroyed or reparented.
func (c *Context) StdPlane() plane.Plane { return c.std }

// StdDim returns the standard plane's size.
func (c *Context) StdDim() (rows, cols int) { return c.std.Dim() }

// Margins returns the margins given at init.
func (c *Context) Margins() Margins { return c.margins }

// Top returns the topmost plane of the standard pile.
func (c *Context) Top() (plane.Plane, error) {
	if c.closed {
		return plane.Plane{}, opError("top", ErrClosed)
	}
	order := c.std.PaintOrder()
	return order[len(order)-1], nil
}

// Bottom returns the bottommost plane of the standard pile, which is the
// standard plane.
func (c *Context) Bottom() (plane.Plane, error) {
	if c.closed {
		return plane.Plane{}, opError("bottom", ErrClosed)
	}
	return c.std, nil
}

// NewPile creates a pile root, independent of the standard pile.
func (c *Context) NewPile(opts plane.Options) (plane.Plane, error) {
	if c.closed {
		return plane.Plane{}, opError("new pile", ErrClosed)
	}
	return c.arena.NewPile(opts)
}

// Create makes a plane bound to parent.
func (c *Context) Create(parent plane.Plane, opts plane.Options) (plane.Plane, error) {
	if c.closed {
		return plane.Plane{}, opError("create", ErrClosed)
	}
	return c.arena.Create(parent, opts)
}

// Render composites the standard pile and presents it.
func (c *Context) Render() error {
	return c.RenderPile(c.std)
}

// RenderPile composites the pile rooted at root, places it at the root's
// absolute position on a blank screen and presents the result.
func (c *Context) RenderPile(root plane.Plane) error {
	if c.closed {
		return opError("render", ErrClosed)
	}
	start := time.Now()
	screen, err := c.compose(root)
	if err == nil {
		err = c.display.Present(screen)
	}
	if err != nil {
		c.stats.failedRenders.Add(1)
		return opError("render", err)
	}
	changed := len(screen.Diff(c.last))
	c.last = screen
	c.stats.recordRender(time.Since(start), changed, len(screen.Cells))
	return nil
}

func (c *Context) compose(root plane.Plane) (*compositor.Frame, error) {
	if root.Arena() != c.arena {
		return nil, plane.ErrForeignPlane
	}
	f, err := compositor.Render(root, c.pal)
	if err != nil {
		return nil, err
	}
	rows, cols := c.display.Size()
	y, x := root.AbsYx()
	return place(f, rows, cols, y, x), nil
}

// place copies f onto a blank rows x cols frame with its origin at (y, x).
// Wide glyphs split by the screen edge become blanks.
func place(f *compositor.Frame, rows, cols, y, x int) *compositor.Frame {
	out := compositor.NewFrame(rows, cols)
	for fy := 0; fy < f.Rows; fy++ {
		sy := y + fy
		if sy < 0 || sy >= rows {
			continue
		}
		for fx := 0; fx < f.Cols; fx++ {
			sx := x + fx
			if sx < 0 || sx >= cols {
				continue
			}
			cell := f.Cells[fy*f.Cols+fx]
			switch {
			case cell.IsContinuation() && sx == 0:
				cell = compositor.Cell{Style: cell.Style, Channels: cell.Channels, Width: 1}
			case cell.Width == 2 && sx == cols-1:
				cell = compositor.Cell{Style: cell.Style, Channels: cell.Channels, Width: 1}
			}
			out.Cells[sy*cols+sx] = cell
		}
	}
	return out
}

// RenderToBuffer composites the pile rooted at root and returns the escape
// sequences that draw it from a cleared screen. Nothing is presented.
func (c *Context) RenderToBuffer(root plane.Plane) ([]byte, error) {
	if c.closed {
		return nil, opError("render to buffer", ErrClosed)
	}
	if root.Arena() != c.arena {
		return nil, opError("render to buffer", plane.ErrForeignPlane)
	}
	f, err := compositor.Render(root, c.pal)
	if err != nil {
		return nil, opError("render to buffer", err)
	}
	b, err := backend.NewANSI(c.caps, c.pal).Rasterize(f, nil)
	if err != nil {
		return nil, opError("render to buffer", err)
	}
	c.stats.bytesEmitted.Add(uint64(len(b)))
	return b, nil
}

// LastFrame returns a copy of the most recently presented screen, or nil.
func (c *Context) LastFrame() *compositor.Frame {
	return c.last.Clone()
}

// At returns the cell presented at screen position (y, x) by the last
// render. ok is false before the first render or outside the screen.
func (c *Context) At(y, x int) (text string, style channel.Style, cs channel.Channels, ok bool) {
	cell, ok := c.last.At(y, x)
	if !ok {
		return "", 0, 0, false
	}
	return cell.Text, cell.Style, cell.Channels, true
}

// Refresh redraws the whole screen on the next render and fits the standard
// plane to the current display size. It returns the new standard plane size.
func (c *Context) Refresh() (rows, cols int, err error) {
	if c.closed {
		return 0, 0, opError("refresh", ErrClosed)
	}
	c.display.Refresh()
	c.last = nil
	rows, cols, err = c.stdGeometry()
	if err != nil {
		return 0, 0, opError("refresh", err)
	}
	if err := c.std.Resize(rows, cols); err != nil {
		return 0, 0, opError("refresh", err)
	}
	c.log.Debug("refreshed to %dx%d", rows, cols)
	return rows, cols, nil
}

// GetInput returns the next input event. A negative timeout blocks, zero
// polls and a positive value bounds the wait; ErrNoInput from the input
// package reports that nothing arrived. Resize events are delivered, not
// applied; call Refresh to fit the standard plane.
func (c *Context) GetInput(ctx context.Context, timeout time.Duration) (input.Input, error) {
	if c.closed {
		return input.Input{}, opError("get input", ErrClosed)
	}
	src := c.display.Input()
	if src == nil {
		return input.Input{}, opError("get input", ErrNoInput)
	}
	in, err := src.Poll(ctx, timeout)
	if err != nil {
		return in, err
	}
	c.stats.inputs.Add(1)
	if in.Code.IsKey(input.KeyResize) {
		c.stats.resizes.Add(1)
	}
	return in, nil
}

// GetInputNonblocking polls for one event.
func (c *Context) GetInputNonblocking() (input.Input, error) {
	return c.GetInput(context.Background(), 0)
}

// GetInputBlocking waits for one event.
func (c *Context) GetInputBlocking(ctx context.Context) (input.Input, error) {
	return c.GetInput(ctx, -1)
}

// GetVec waits up to timeout for a first event, then collects up to n
// events already available.
func (c *Context) GetVec(ctx context.Context, n int, timeout time.Duration) ([]input.Input, error) {
	return input.CollectVec(ctx, c.GetInput, n, timeout)
}

// PostInput queues a synthetic event.
func (c *Context) PostInput(in input.Input) error {
	if c.closed {
		return opError("post input", ErrClosed)
	}
	src := c.display.Input()
	if src == nil {
		return opError("post input", ErrNoInput)
	}
	src.Post(in)
	return nil
}

// MouseEnable turns on mouse reporting.
func (c *Context) MouseEnable() error {
	if c.closed {
		return opError("mouse enable", ErrClosed)
	}
	if err := c.display.EnableMouse(); err != nil {
		return err
	}
	c.mouse = true
	return nil
}

// MouseDisable turns off mouse reporting.
func (c *Context) MouseDisable() error {
	if c.closed {
		return opError("mouse disable", ErrClosed)
	}
	if err := c.display.DisableMouse(); err != nil {
		return err
	}
	c.mouse = false
	return nil
}

// Palette returns the palette used to resolve indexed colours.
func (c *Context) Palette() *channel.Palette { return c.pal }

// SetPaletteColor changes palette entry idx on the display and in the
// context's palette. backend.ErrUnsupported leaves both unchanged.
func (c *Context) SetPaletteColor(idx int, rgb uint32) error {
	if c.closed {
		return opError("set palette", ErrClosed)
	}
	if err := c.display.SetPaletteColor(idx, rgb); err != nil {
		return err
	}
	c.pal.Set(uint8(idx), rgb)
	c.stats.paletteChanges.Add(1)
	return nil
}

// Stats returns a snapshot of the counters.
func (c *Context) Stats() Stats { return c.stats.snapshot() }

// StatsReset returns the counters and zeroes them.
func (c *Context) StatsReset() Stats {
	s := c.stats.snapshot()
	c.stats.reset()
	return s
}
