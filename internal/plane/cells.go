package plane

import (
	"strings"

	"github.com/dshills/stratum/internal/cell"
	"github.com/dshills/stratum/internal/channel"
)

// Sample is the effective content of one plane position: the cell itself,
// or the base cell where the cell is empty.
type Sample struct {
	Text     string
	Style    channel.Style
	Channels channel.Channels

	// Width is 1 or 2 for a glyph, 0 otherwise.
	Width int

	// WideRight marks the continuation of a wide glyph to the left.
	WideRight bool

	// Empty is set when neither the cell nor the base carries a glyph.
	Empty bool
}

// Transparent reports whether the sample contributes nothing at all: no
// glyph and colours that were never set.
func (s Sample) Transparent() bool {
	return s.Empty && s.Channels == 0
}

// SetBase sets the cell shown wherever a plane cell is empty. An empty text
// gives a base with colours but no glyph. The base fills single cells, so a
// two-column glyph is rejected with cell.ErrEncoding.
func (p Plane) SetBase(text string, style channel.Style, cs channel.Channels) error {
	r, err := p.recOp("set base")
	if err != nil {
		return err
	}
	if text == "" {
		r.pool.Release(&r.base)
		r.base.SetStyle(style)
		r.base.SetChannels(cs)
		return nil
	}
	var nb cell.Cell
	n, err := r.pool.Prime(&nb, text, style, cs)
	if err != nil {
		return newError("set base", r, err)
	}
	if n != len(text) || nb.Width() > 1 {
		r.pool.Release(&nb)
		return newError("set base", r, cell.ErrEncoding)
	}
	r.pool.Release(&r.base)
	r.base = nb
	return nil
}

// Base returns the base cell's content.
func (p Plane) Base() (string, channel.Style, channel.Channels) {
	r := p.rec()
	if r == nil {
		return "", 0, 0
	}
	return r.pool.Extract(r.base)
}

func (r *record) sample(y, x int) Sample {
	c := r.at(y, x)
	if c.IsWideRight() {
		return Sample{Style: c.Style(), Channels: c.Channels(), WideRight: true}
	}
	src := c
	if c.IsEmpty() {
		src = &r.base
	}
	text, style, cs := r.pool.Extract(*src)
	return Sample{
		Text:     text,
		Style:    style,
		Channels: cs,
		Width:    src.Width(),
		Empty:    text == "",
	}
}

// Sample returns the effective content at (y, x).
func (p Plane) Sample(y, x int) (Sample, error) {
	r, err := p.recOp("sample")
	if err != nil {
		return Sample{}, err
	}
	if y < 0 || x < 0 || y >= r.rows || x >= r.cols {
		return Sample{}, newError("sample", r, ErrOutOfBounds)
	}
	return r.sample(y, x), nil
}

// At returns the effective text, style and channels at (y, x).
func (p Plane) At(y, x int) (string, channel.Style, channel.Channels, error) {
	s, err := p.Sample(y, x)
	if err != nil {
		return "", 0, 0, err
	}
	return s.Text, s.Style, s.Channels, nil
}

// Contents returns the text of a region, one line per row. Empty positions
// read as spaces; continuation cells contribute nothing.
func (p Plane) Contents(y, x, rows, cols int) (string, error) {
	r, err := p.recOp("contents")
	if err != nil {
		return "", err
	}
	if y < 0 || x < 0 || y >= r.rows || x >= r.cols {
		return "", newError("contents", r, ErrOutOfBounds)
	}
	if rows <= 0 || y+rows > r.rows {
		rows = r.rows - y
	}
	if cols <= 0 || x+cols > r.cols {
		cols = r.cols - x
	}
	var sb strings.Builder
	for yy := y; yy < y+rows; yy++ {
		if yy > y {
			sb.WriteByte('\n')
		}
		for xx := x; xx < x+cols; xx++ {
			s := r.sample(yy, xx)
			switch {
			case s.WideRight:
			case s.Empty:
				sb.WriteByte(' ')
			default:
				sb.WriteString(s.Text)
			}
		}
	}
	return sb.String(), nil
}

// clear empties (y, x) together with its wide-glyph partner.
func (r *record) clear(y, x int) {
	c := r.at(y, x)
	switch {
	case c.IsWideRight() && x > 0:
		r.pool.Release(r.at(y, x-1))
	case c.IsWideLeft() && x+1 < r.cols:
		r.pool.Release(r.at(y, x+1))
	}
	r.pool.Release(c)
}

// Erase empties every cell and homes the cursor. The base is kept.
func (p Plane) Erase() {
	r := p.rec()
	if r == nil {
		return
	}
	for i := range r.cells {
		r.pool.Release(&r.cells[i])
	}
	r.curY, r.curX = 0, 0
}

// EraseRegion empties the cells of a rectangle, clamped to the plane.
// Wide glyphs straddling the edge are erased whole.
func (p Plane) EraseRegion(y, x, rows, cols int) {
	r := p.rec()
	if r == nil || rows <= 0 || cols <= 0 {
		return
	}
	y0, x0 := max(y, 0), max(x, 0)
	y1, x1 := min(y+rows, r.rows), min(x+cols, r.cols)
	for yy := y0; yy < y1; yy++ {
		for xx := x0; xx < x1; xx++ {
			r.clear(yy, xx)
		}
	}
}

// scrollUp shifts every row up by one and empties the last row.
func (r *record) scrollUp() {
	for x := 0; x < r.cols; x++ {
		r.pool.Release(r.at(0, x))
	}
	copy(r.cells, r.cells[r.cols:])
	last := r.cells[(r.rows-1)*r.cols:]
	for i := range last {
		last[i] = cell.Cell{}
	}
}
