package compositor

import (
	"strings"

	"github.com/dshills/stratum/internal/channel"
)

// Cell is one resolved frame position.
type Cell struct {
	// Text is the glyph, or "" where nothing was drawn (shown as a space).
	Text     string
	Style    channel.Style
	Channels channel.Channels

	// Width is 1 or 2 for a glyph and 0 for a wide glyph's continuation.
	Width int
}

// IsContinuation reports whether c is the right half of a wide glyph.
func (c Cell) IsContinuation() bool {
	return c.Width == 0
}

// Glyph returns the text to draw, substituting a space for nothing.
func (c Cell) Glyph() string {
	if c.Text == "" {
		return " "
	}
	return c.Text
}

func blankCell() Cell {
	return Cell{Width: 1}
}

// Point is a frame coordinate.
type Point struct {
	Y, X int
}

// Frame is a flat grid of resolved cells, row-major.
type Frame struct {
	Rows, Cols int
	Cells      []Cell
}

// NewFrame returns a frame of blank cells.
func NewFrame(rows, cols int) *Frame {
	f := &Frame{Rows: rows, Cols: cols, Cells: make([]Cell, rows*cols)}
	for i := range f.Cells {
		f.Cells[i] = blankCell()
	}
	return f
}

// At returns the cell at (y, x), and false outside the frame.
func (f *Frame) At(y, x int) (Cell, bool) {
	if f == nil || y < 0 || x < 0 || y >= f.Rows || x >= f.Cols {
		return Cell{}, false
	}
	return f.Cells[y*f.Cols+x], true
}

func (f *Frame) set(y, x int, c Cell) {
	f.Cells[y*f.Cols+x] = c
}

// SameSize reports whether both frames have the same geometry.
func (f *Frame) SameSize(o *Frame) bool {
	return f != nil && o != nil && f.Rows == o.Rows && f.Cols == o.Cols
}

// Equal reports whether both frames hold identical cells.
func (f *Frame) Equal(o *Frame) bool {
	if !f.SameSize(o) {
		return f == nil && o == nil
	}
	for i := range f.Cells {
		if f.Cells[i] != o.Cells[i] {
			return false
		}
	}
	return true
}

// Diff lists the coordinates whose cells differ from prev, in row-major
// order. Every coordinate is listed when prev is nil or differently sized.
func (f *Frame) Diff(prev *Frame) []Point {
	var out []Point
	full := !f.SameSize(prev)
	for y := 0; y < f.Rows; y++ {
		for x := 0; x < f.Cols; x++ {
			i := y*f.Cols + x
			if full || f.Cells[i] != prev.Cells[i] {
				out = append(out, Point{y, x})
			}
		}
	}
	return out
}

// Clone returns a deep copy.
func (f *Frame) Clone() *Frame {
	if f == nil {
		return nil
	}
	out := &Frame{Rows: f.Rows, Cols: f.Cols, Cells: make([]Cell, len(f.Cells))}
	copy(out.Cells, f.Cells)
	return out
}

// Row returns the text of row y.
func (f *Frame) Row(y int) string {
	var sb strings.Builder
	for x := 0; x < f.Cols; x++ {
		c := f.Cells[y*f.Cols+x]
		if c.IsContinuation() {
			continue
		}
		sb.WriteString(c.Glyph())
	}
	return sb.String()
}

// String returns the frame's text, rows separated by newlines.
func (f *Frame) String() string {
	if f == nil {
		return ""
	}
	rows := make([]string, f.Rows)
	for y := range rows {
		rows[y] = f.Row(y)
	}
	return strings.Join(rows, "\n")
}
