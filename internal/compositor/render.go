// Package compositor resolves a pile of planes into a single Frame.
//
// For each position of the root plane the pile is walked from the topmost
// plane down. The glyph and style come from the first plane showing a glyph
// there. Each colour half resolves independently by alpha: opaque ends the
// walk, blend mixes with whatever resolves beneath, transparent contributes
// nothing, and high contrast picks black or white against the resolved
// background. Planes are only read.
package compositor

import (
	"errors"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/stratum/internal/channel"
	"github.com/dshills/stratum/internal/plane"
)

// ErrNotRoot indicates Render was given a plane that does not root a pile.
var ErrNotRoot = errors.New("plane is not a pile root")

type layer struct {
	p          plane.Plane
	y, x       int
	rows, cols int
}

// colour accumulates one channel half during the walk.
type colour struct {
	done     bool
	contrast bool
	base     channel.Channel
	blends   []colorful.Color
}

func (c *colour) add(ch channel.Channel, pal *channel.Palette) {
	if c.done {
		return
	}
	switch ch.Alpha() {
	case channel.AlphaTransparent:
	case channel.AlphaBlend:
		if rgb, ok := pal.Resolve(ch); ok {
			c.blends = append(c.blends, toColorful(rgb))
		}
	case channel.AlphaHighContrast:
		c.base = ch
		c.contrast = true
		c.done = true
	default:
		c.base = ch
		c.done = true
	}
}

// resolve returns the final opaque channel.
func (c *colour) resolve(pal *channel.Palette) channel.Channel {
	if len(c.blends) == 0 {
		out := c.base
		out.SetAlpha(channel.AlphaOpaque)
		return out
	}
	var acc colorful.Color
	start := len(c.blends) - 1
	if rgb, ok := pal.Resolve(c.base); ok && c.done {
		acc = toColorful(rgb)
		start = len(c.blends)
	} else {
		acc = c.blends[start]
	}
	for i := start - 1; i >= 0; i-- {
		acc = acc.BlendRgb(c.blends[i], 0.5)
	}
	var out channel.Channel
	out.SetRGB8(acc.Clamped().RGB255())
	return out
}

func toColorful(rgb uint32) colorful.Color {
	r, g, b := channel.SplitRGB(rgb)
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// contrasting returns black or white, whichever reads better on bg.
// An unknown default background is assumed dark.
func contrasting(bg channel.Channel, pal *channel.Palette) channel.Channel {
	var out channel.Channel
	rgb, ok := pal.Resolve(bg)
	if !ok {
		out.SetRGB(0xffffff)
		return out
	}
	l, _, _ := toColorful(rgb).Lab()
	if l < 0.5 {
		out.SetRGB(0xffffff)
	} else {
		out.SetRGB(0x000000)
	}
	return out
}

// Render composites the pile rooted at root into a frame of the root's size.
// A nil palette selects the xterm defaults.
func Render(root plane.Plane, pal *channel.Palette) (*Frame, error) {
	if err := root.Err(); err != nil {
		return nil, err
	}
	if !root.IsRoot() {
		return nil, ErrNotRoot
	}
	if pal == nil {
		pal = channel.NewPalette()
	}

	order := root.PaintOrder()
	layers := make([]layer, 0, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		p := order[i]
		y, x := p.AbsYx()
		rows, cols := p.Dim()
		layers = append(layers, layer{p: p, y: y, x: x, rows: rows, cols: cols})
	}

	oy, ox := root.AbsYx()
	rows, cols := root.Dim()
	f := NewFrame(rows, cols)
	src := make([]int, rows*cols)

	for fy := 0; fy < rows; fy++ {
		for fx := 0; fx < cols; fx++ {
			c, from := resolveAt(layers, oy+fy, ox+fx, pal)
			f.set(fy, fx, c)
			src[fy*cols+fx] = from
		}
	}
	repairWide(f, src)
	return f, nil
}

// resolveAt composites one absolute position. It returns the cell and the
// index of the layer that supplied the glyph, or -1.
func resolveAt(layers []layer, ay, ax int, pal *channel.Palette) (Cell, int) {
	out := blankCell()
	from := -1
	var fg, bg colour
	for i, l := range layers {
		y, x := ay-l.y, ax-l.x
		if y < 0 || x < 0 || y >= l.rows || x >= l.cols {
			continue
		}
		s, err := l.p.Sample(y, x)
		if err != nil || s.Transparent() {
			continue
		}
		if from < 0 && !s.Empty {
			from = i
			out.Text = s.Text
			out.Style = s.Style
			out.Width = s.Width
			if s.WideRight {
				out.Width = 0
			}
		}
		fg.add(s.Channels.Fg(), pal)
		bg.add(s.Channels.Bg(), pal)
		if fg.done && bg.done && from >= 0 {
			break
		}
	}

	b := bg.resolve(pal)
	var f channel.Channel
	if fg.contrast {
		f = contrasting(b, pal)
	} else {
		f = fg.resolve(pal)
	}
	out.Channels = channel.Combine(f, b)
	return out, from
}

// repairWide replaces either half of a wide glyph whose partner was hidden
// by another plane, or cut off by the frame edge, with a space.
func repairWide(f *Frame, src []int) {
	for y := 0; y < f.Rows; y++ {
		for x := 0; x < f.Cols; x++ {
			i := y*f.Cols + x
			c := f.Cells[i]
			switch {
			case c.Width == 2:
				if x+1 >= f.Cols || f.Cells[i+1].Width != 0 || src[i+1] != src[i] {
					f.Cells[i] = spaceLike(c)
				}
			case c.Width == 0:
				if x == 0 || f.Cells[i-1].Width != 2 || src[i-1] != src[i] {
					f.Cells[i] = spaceLike(c)
				}
			}
		}
	}
}

func spaceLike(c Cell) Cell {
	return Cell{Text: " ", Style: c.Style, Channels: c.Channels, Width: 1}
}
