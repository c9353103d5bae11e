package plane

import (
	"image"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/stratum/internal/channel"
)

// UpperHalfBlock is the glyph used to draw two pixels per cell.
const UpperHalfBlock = "▀"

// BlitRGBA seeds cells from img starting at (y, x), two pixel rows per cell:
// the foreground carries the upper pixel and the background the lower one.
// Fully transparent pixels leave that half of the cell transparent. Output is
// clipped to the plane. It returns the number of cells written.
func (p Plane) BlitRGBA(y, x int, img image.Image) (int, error) {
	r, err := p.recOp("blit")
	if err != nil {
		return 0, err
	}
	if y < 0 || x < 0 || y >= r.rows || x >= r.cols {
		return 0, newError("blit", r, ErrOutOfBounds)
	}

	b := img.Bounds()
	rows := min((b.Dy()+1)/2, r.rows-y)
	cols := min(b.Dx(), r.cols-x)
	written := 0
	for cy := 0; cy < rows; cy++ {
		py := b.Min.Y + cy*2
		for cx := 0; cx < cols; cx++ {
			px := b.Min.X + cx

			var cs channel.Channels
			upper, ok := colorful.MakeColor(img.At(px, py))
			if ok {
				cs.SetFgRGB8(upper.RGB255())
			} else {
				cs.SetFgAlpha(channel.AlphaTransparent)
			}
			lowerOK := false
			if py+1 < b.Max.Y {
				var lower colorful.Color
				if lower, lowerOK = colorful.MakeColor(img.At(px, py+1)); lowerOK {
					cs.SetBgRGB8(lower.RGB255())
				}
			}
			if !lowerOK {
				cs.SetBgAlpha(channel.AlphaTransparent)
			}

			r.clear(y+cy, x+cx)
			c := r.at(y+cy, x+cx)
			if _, err := r.pool.Prime(c, UpperHalfBlock, 0, cs); err != nil {
				return written, newError("blit", r, err)
			}
			written++
		}
	}
	return written, nil
}
