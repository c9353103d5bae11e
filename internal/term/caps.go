package term

import "github.com/dshills/stratum/internal/backend"

// Capabilities returns what the display reported at init.
func (c *Context) Capabilities() backend.Capabilities { return c.caps }

func (c *Context) CanUTF8() bool        { return c.caps.UTF8 }
func (c *Context) CanTrueColor() bool   { return c.caps.TrueColor }
func (c *Context) CanChangeColor() bool { return c.caps.ChangeColor }
func (c *Context) CanHalfBlock() bool   { return c.caps.UTF8 && c.caps.HalfBlock }
func (c *Context) CanQuadrant() bool    { return c.caps.UTF8 && c.caps.Quadrant }
func (c *Context) CanSextant() bool     { return c.caps.UTF8 && c.caps.Sextant }
func (c *Context) CanBraille() bool     { return c.caps.UTF8 && c.caps.Braille }
func (c *Context) CanOpenImages() bool  { return c.caps.Images }

// PixelSupport reports whether the display speaks a bitmap graphics
// protocol.
func (c *Context) PixelSupport() bool { return c.caps.Pixel }

// Colors returns the palette size reported by the display.
func (c *Context) Colors() int { return c.caps.Colors }
