// Package channel provides the packed colour and style representation used by
// every cell in the scene graph.
//
// A Channel is one 32-bit colour descriptor (foreground or background). A
// Channels value packs two of them: foreground in the high word, background in
// the low word. All operations are total: there is no failure path, and values
// outside a field's range are masked into it.
//
// Channel layout:
//
//	bit  30     not-default (set once an RGB or palette colour is chosen)
//	bits 28-29  alpha
//	bit  27     palette indexed
//	bits 0-23   RGB, or palette index in bits 0-7
package channel

import "fmt"

// Channel is a single packed colour descriptor.
type Channel uint32

// Channel masks.
const (
	NotDefaultMask Channel = 0x40000000
	AlphaMask      Channel = 0x30000000
	PaletteMask    Channel = 0x08000000
	RGBMask        Channel = 0x00ffffff

	alphaShift = 28
)

// Alpha controls how a channel composites against planes beneath it.
type Alpha uint8

const (
	// AlphaOpaque hides everything beneath.
	AlphaOpaque Alpha = iota
	// AlphaBlend averages with the resolved colour beneath.
	AlphaBlend
	// AlphaTransparent contributes nothing; the colour beneath shows through.
	AlphaTransparent
	// AlphaHighContrast forces a foreground that contrasts with the background.
	AlphaHighContrast
)

// String returns the alpha name.
func (a Alpha) String() string {
	switch a {
	case AlphaOpaque:
		return "opaque"
	case AlphaBlend:
		return "blend"
	case AlphaTransparent:
		return "transparent"
	case AlphaHighContrast:
		return "highcontrast"
	default:
		return fmt.Sprintf("alpha(%d)", uint8(a))
	}
}

// RGB packs 8-bit components into a 24-bit value.
func RGB(r, g, b uint8) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// SplitRGB unpacks a 24-bit value into components.
func SplitRGB(rgb uint32) (r, g, b uint8) {
	return uint8(rgb >> 16), uint8(rgb >> 8), uint8(rgb)
}

// RGB returns the 24-bit colour. Meaningless unless IsRGB.
func (c Channel) RGB() uint32 {
	return uint32(c & RGBMask)
}

// RGB8 returns the colour components.
func (c Channel) RGB8() (r, g, b uint8) {
	return SplitRGB(c.RGB())
}

// SetRGB sets a 24-bit colour and marks the channel as not using the default.
func (c *Channel) SetRGB(rgb uint32) {
	*c = (*c &^ (RGBMask | PaletteMask)) | NotDefaultMask | Channel(rgb)&RGBMask
}

// SetRGB8 sets the colour from components.
func (c *Channel) SetRGB8(r, g, b uint8) {
	c.SetRGB(RGB(r, g, b))
}

// PalIndex returns the palette index. Meaningless unless IsPalIndex.
func (c Channel) PalIndex() uint8 {
	return uint8(c)
}

// SetPalIndex selects a palette entry. Alpha becomes opaque.
func (c *Channel) SetPalIndex(idx uint8) {
	*c = (*c &^ (RGBMask | AlphaMask)) | NotDefaultMask | PaletteMask | Channel(idx)
}

// Alpha returns the alpha.
func (c Channel) Alpha() Alpha {
	return Alpha((c & AlphaMask) >> alphaShift)
}

// SetAlpha sets the alpha.
func (c *Channel) SetAlpha(a Alpha) {
	*c = (*c &^ AlphaMask) | (Channel(a&3) << alphaShift)
}

// IsDefault reports whether the terminal's default colour is in use.
func (c Channel) IsDefault() bool {
	return c&NotDefaultMask == 0
}

// SetDefault selects the terminal default colour, clearing RGB and palette state.
func (c *Channel) SetDefault() {
	*c &^= NotDefaultMask | PaletteMask | RGBMask
}

// IsPalIndex reports whether the channel refers to a palette entry.
func (c Channel) IsPalIndex() bool {
	return !c.IsDefault() && c&PaletteMask != 0
}

// IsRGB reports whether the channel holds a direct colour.
func (c Channel) IsRGB() bool {
	return !c.IsDefault() && c&PaletteMask == 0
}

// String describes the channel.
func (c Channel) String() string {
	var col string
	switch {
	case c.IsDefault():
		col = "default"
	case c.IsPalIndex():
		col = fmt.Sprintf("pal(%d)", c.PalIndex())
	default:
		col = fmt.Sprintf("#%06x", c.RGB())
	}
	if a := c.Alpha(); a != AlphaOpaque {
		return col + "/" + a.String()
	}
	return col
}

// Channels is a foreground/background channel pair.
type Channels uint64

// Combine packs a foreground and background channel.
func Combine(fg, bg Channel) Channels {
	return Channels(fg)<<32 | Channels(bg)
}

// FromRGB builds a pair from two 24-bit colours.
func FromRGB(fg, bg uint32) Channels {
	var cs Channels
	cs.SetFgRGB(fg)
	cs.SetBgRGB(bg)
	return cs
}

// Fg returns the foreground channel.
func (cs Channels) Fg() Channel {
	return Channel(cs >> 32)
}

// Bg returns the background channel.
func (cs Channels) Bg() Channel {
	return Channel(cs & 0xffffffff)
}

// SetFg replaces the foreground channel.
func (cs *Channels) SetFg(c Channel) {
	*cs = Combine(c, cs.Bg())
}

// SetBg replaces the background channel.
func (cs *Channels) SetBg(c Channel) {
	*cs = Combine(cs.Fg(), c)
}

func (cs *Channels) updateFg(fn func(*Channel)) {
	fg := cs.Fg()
	fn(&fg)
	cs.SetFg(fg)
}

func (cs *Channels) updateBg(fn func(*Channel)) {
	bg := cs.Bg()
	fn(&bg)
	cs.SetBg(bg)
}

// FgRGB returns the foreground colour.
func (cs Channels) FgRGB() uint32 { return cs.Fg().RGB() }

// BgRGB returns the background colour.
func (cs Channels) BgRGB() uint32 { return cs.Bg().RGB() }

// SetFgRGB sets the foreground colour.
func (cs *Channels) SetFgRGB(rgb uint32) { cs.updateFg(func(c *Channel) { c.SetRGB(rgb) }) }

// SetBgRGB sets the background colour.
func (cs *Channels) SetBgRGB(rgb uint32) { cs.updateBg(func(c *Channel) { c.SetRGB(rgb) }) }

// SetFgRGB8 sets the foreground colour from components.
func (cs *Channels) SetFgRGB8(r, g, b uint8) { cs.SetFgRGB(RGB(r, g, b)) }

// SetBgRGB8 sets the background colour from components.
func (cs *Channels) SetBgRGB8(r, g, b uint8) { cs.SetBgRGB(RGB(r, g, b)) }

// FgPalIndex returns the foreground palette index.
func (cs Channels) FgPalIndex() uint8 { return cs.Fg().PalIndex() }

// BgPalIndex returns the background palette index.
func (cs Channels) BgPalIndex() uint8 { return cs.Bg().PalIndex() }

// SetFgPalIndex selects a foreground palette entry.
func (cs *Channels) SetFgPalIndex(idx uint8) { cs.updateFg(func(c *Channel) { c.SetPalIndex(idx) }) }

// SetBgPalIndex selects a background palette entry.
func (cs *Channels) SetBgPalIndex(idx uint8) { cs.updateBg(func(c *Channel) { c.SetPalIndex(idx) }) }

// FgAlpha returns the foreground alpha.
func (cs Channels) FgAlpha() Alpha { return cs.Fg().Alpha() }

// BgAlpha returns the background alpha.
func (cs Channels) BgAlpha() Alpha { return cs.Bg().Alpha() }

// SetFgAlpha sets the foreground alpha.
func (cs *Channels) SetFgAlpha(a Alpha) { cs.updateFg(func(c *Channel) { c.SetAlpha(a) }) }

// SetBgAlpha sets the background alpha.
func (cs *Channels) SetBgAlpha(a Alpha) { cs.updateBg(func(c *Channel) { c.SetAlpha(a) }) }

// FgDefault reports whether the foreground uses the terminal default.
func (cs Channels) FgDefault() bool { return cs.Fg().IsDefault() }

// BgDefault reports whether the background uses the terminal default.
func (cs Channels) BgDefault() bool { return cs.Bg().IsDefault() }

// SetFgDefault selects the default foreground.
func (cs *Channels) SetFgDefault() { cs.updateFg(func(c *Channel) { c.SetDefault() }) }

// SetBgDefault selects the default background.
func (cs *Channels) SetBgDefault() { cs.updateBg(func(c *Channel) { c.SetDefault() }) }

// FgPalIndexed reports whether the foreground is palette indexed.
func (cs Channels) FgPalIndexed() bool { return cs.Fg().IsPalIndex() }

// BgPalIndexed reports whether the background is palette indexed.
func (cs Channels) BgPalIndexed() bool { return cs.Bg().IsPalIndex() }

// Reverse swaps foreground and background.
func (cs Channels) Reverse() Channels {
	return Combine(cs.Bg(), cs.Fg())
}

// String describes both halves.
func (cs Channels) String() string {
	return "fg=" + cs.Fg().String() + " bg=" + cs.Bg().String()
}
