package cell

import "github.com/dshills/stratum/internal/channel"

// Box glyph sets, in the order upper-left, upper-right, lower-left,
// lower-right, horizontal, vertical.
const (
	LightGlyphs   = "┌┐└┘─│"
	HeavyGlyphs   = "┏┓┗┛━┃"
	RoundedGlyphs = "╭╮╰╯─│"
	DoubleGlyphs  = "╔╗╚╝═║"
	ASCIIGlyphs   = "/\\\\/-|"
)

// Box holds the six cells needed to draw a rectangle.
type Box struct {
	UL, UR, LL, LR, HL, VL Cell
}

func (b *Box) cells() [6]*Cell {
	return [6]*Cell{&b.UL, &b.UR, &b.LL, &b.LR, &b.HL, &b.VL}
}

// Release releases all six cells.
func (b *Box) Release(p *Pool) {
	for _, c := range b.cells() {
		p.Release(c)
	}
}

// LoadBox loads six clusters from glyphs into a Box, each primed with style
// and channels. Either all six cells are loaded, or none are and every cell
// loaded so far is released.
func LoadBox(p *Pool, style channel.Style, cs channel.Channels, glyphs string) (Box, error) {
	var b Box
	cells := b.cells()
	rest := glyphs
	for i, c := range cells {
		n, err := p.Prime(c, rest, style, cs)
		if err != nil {
			for _, done := range cells[:i] {
				p.Release(done)
			}
			return Box{}, err
		}
		rest = rest[n:]
	}
	return b, nil
}

// LightBox loads a box of light line-drawing glyphs.
func LightBox(p *Pool, style channel.Style, cs channel.Channels) (Box, error) {
	return LoadBox(p, style, cs, LightGlyphs)
}

// HeavyBox loads a box of heavy line-drawing glyphs.
func HeavyBox(p *Pool, style channel.Style, cs channel.Channels) (Box, error) {
	return LoadBox(p, style, cs, HeavyGlyphs)
}

// RoundedBox loads a box with rounded corners.
func RoundedBox(p *Pool, style channel.Style, cs channel.Channels) (Box, error) {
	return LoadBox(p, style, cs, RoundedGlyphs)
}

// DoubleBox loads a box of double line-drawing glyphs.
func DoubleBox(p *Pool, style channel.Style, cs channel.Channels) (Box, error) {
	return LoadBox(p, style, cs, DoubleGlyphs)
}

// ASCIIBox loads a box drawable on terminals without Unicode.
func ASCIIBox(p *Pool, style channel.Style, cs channel.Channels) (Box, error) {
	return LoadBox(p, style, cs, ASCIIGlyphs)
}
