package channel

// PaletteSize is the number of indexed colours.
const PaletteSize = 256

// Palette maps palette indices to 24-bit colours.
// The zero value is all black; use NewPalette for the xterm defaults.
type Palette struct {
	entries [PaletteSize]uint32
}

// NewPalette returns the xterm 256-colour palette.
func NewPalette() *Palette {
	p := &Palette{}
	base := [16]uint32{
		0x000000, 0x800000, 0x008000, 0x808000, 0x000080, 0x800080, 0x008080, 0xc0c0c0,
		0x808080, 0xff0000, 0x00ff00, 0xffff00, 0x0000ff, 0xff00ff, 0x00ffff, 0xffffff,
	}
	copy(p.entries[:16], base[:])

	// 6x6x6 cube
	levels := [6]uint8{0, 95, 135, 175, 215, 255}
	i := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				p.entries[i] = RGB(levels[r], levels[g], levels[b])
				i++
			}
		}
	}

	// grayscale ramp
	for j := 0; j < 24; j++ {
		v := uint8(8 + j*10)
		p.entries[232+j] = RGB(v, v, v)
	}
	return p
}

// Get returns the colour for an index.
func (p *Palette) Get(idx uint8) uint32 {
	return p.entries[idx]
}

// Set replaces the colour for an index.
func (p *Palette) Set(idx uint8, rgb uint32) {
	p.entries[idx] = rgb & uint32(RGBMask)
}

// Resolve returns the RGB value a channel displays as, and false for the default colour.
func (p *Palette) Resolve(c Channel) (uint32, bool) {
	switch {
	case c.IsDefault():
		return 0, false
	case c.IsPalIndex():
		return p.Get(c.PalIndex()), true
	default:
		return c.RGB(), true
	}
}

// Clone returns an independent copy.
func (p *Palette) Clone() *Palette {
	cp := *p
	return &cp
}
