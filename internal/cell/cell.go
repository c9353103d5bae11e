// Package cell provides the per-position cell record and the grapheme pool
// that backs multi-byte clusters.
//
// A Cell is a fixed-size value. Clusters of up to four bytes are stored
// inline; longer clusters live in the Pool of the plane that owns the cell,
// and the cell holds an index into it. A Cell is therefore only meaningful
// together with its Pool.
package cell

import (
	"encoding/binary"

	"github.com/dshills/stratum/internal/channel"
)

const (
	// pooledMarker in the top byte flags a pool index in the low 24 bits.
	// No inline UTF-8 sequence can have 0x01 as its fourth byte.
	pooledMarker = 0x01000000
	markerMask   = 0xff000000
	indexMask    = 0x00ffffff

	flagWideRight uint8 = 1 << 0
)

// Cell is one character position within a plane.
//
// The zero Cell is empty: it has no glyph, and the plane's base cell shows
// through it.
type Cell struct {
	gcluster uint32
	width    uint8
	flags    uint8
	style    channel.Style
	channels channel.Channels
}

// IsEmpty reports whether the cell carries no glyph.
// The trailing half of a wide glyph is not empty.
func (c Cell) IsEmpty() bool {
	return c.gcluster == 0 && c.flags&flagWideRight == 0
}

// IsPooled reports whether the glyph is stored in a pool.
func (c Cell) IsPooled() bool {
	return c.gcluster&markerMask == pooledMarker
}

func (c Cell) poolIndex() uint32 {
	return c.gcluster & indexMask
}

// inline returns the inline bytes of a non-pooled cell.
func (c Cell) inline() string {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], c.gcluster)
	n := 4
	for n > 0 && b[n-1] == 0 {
		n--
	}
	return string(b[:n])
}

func packInline(s string) uint32 {
	var b [4]byte
	copy(b[:], s)
	return binary.LittleEndian.Uint32(b[:])
}

// Width returns the display width: 1 or 2 for a glyph, 0 for an empty cell
// or the trailing half of a wide glyph.
func (c Cell) Width() int {
	return int(c.width)
}

// Cols returns the columns the cell occupies when drawn, at least 1.
func (c Cell) Cols() int {
	if c.width == 0 {
		return 1
	}
	return int(c.width)
}

// IsWide reports whether the cell is either half of a wide glyph.
func (c Cell) IsWide() bool {
	return c.IsWideLeft() || c.IsWideRight()
}

// IsWideLeft reports whether the cell owns a two-column glyph.
func (c Cell) IsWideLeft() bool {
	return c.width == 2
}

// IsWideRight reports whether the cell is the continuation of a wide glyph.
func (c Cell) IsWideRight() bool {
	return c.flags&flagWideRight != 0
}

// WideRight returns the continuation cell paired with a wide left cell.
// It carries the same style and channels, and no glyph.
func (c Cell) WideRight() Cell {
	return Cell{
		flags:    flagWideRight,
		style:    c.style,
		channels: c.channels,
	}
}

// Style returns the style bits.
func (c Cell) Style() channel.Style { return c.style }

// SetStyle overwrites the style bits.
func (c *Cell) SetStyle(s channel.Style) { c.style = c.style.Set(s) }

// StyleOn adds style bits.
func (c *Cell) StyleOn(s channel.Style) { c.style = c.style.On(s) }

// StyleOff clears style bits.
func (c *Cell) StyleOff(s channel.Style) { c.style = c.style.Off(s) }

// Channels returns the colour pair.
func (c Cell) Channels() channel.Channels { return c.channels }

// SetChannels overwrites the colour pair.
func (c *Cell) SetChannels(cs channel.Channels) { c.channels = cs }

// SetFgRGB sets the foreground colour.
func (c *Cell) SetFgRGB(rgb uint32) { c.channels.SetFgRGB(rgb) }

// SetBgRGB sets the background colour.
func (c *Cell) SetBgRGB(rgb uint32) { c.channels.SetBgRGB(rgb) }

// SetFgRGB8 sets the foreground colour from components.
func (c *Cell) SetFgRGB8(r, g, b uint8) { c.channels.SetFgRGB8(r, g, b) }

// SetBgRGB8 sets the background colour from components.
func (c *Cell) SetBgRGB8(r, g, b uint8) { c.channels.SetBgRGB8(r, g, b) }

// SetFgPalIndex selects a foreground palette entry.
func (c *Cell) SetFgPalIndex(idx uint8) { c.channels.SetFgPalIndex(idx) }

// SetBgPalIndex selects a background palette entry.
func (c *Cell) SetBgPalIndex(idx uint8) { c.channels.SetBgPalIndex(idx) }

// SetFgAlpha sets the foreground alpha.
func (c *Cell) SetFgAlpha(a channel.Alpha) { c.channels.SetFgAlpha(a) }

// SetBgAlpha sets the background alpha.
func (c *Cell) SetBgAlpha(a channel.Alpha) { c.channels.SetBgAlpha(a) }

// SetFgDefault selects the default foreground.
func (c *Cell) SetFgDefault() { c.channels.SetFgDefault() }

// SetBgDefault selects the default background.
func (c *Cell) SetBgDefault() { c.channels.SetBgDefault() }

// FgRGB returns the foreground colour.
func (c Cell) FgRGB() uint32 { return c.channels.FgRGB() }

// BgRGB returns the background colour.
func (c Cell) BgRGB() uint32 { return c.channels.BgRGB() }

// FgAlpha returns the foreground alpha.
func (c Cell) FgAlpha() channel.Alpha { return c.channels.FgAlpha() }

// BgAlpha returns the background alpha.
func (c Cell) BgAlpha() channel.Alpha { return c.channels.BgAlpha() }

// FgDefault reports whether the foreground is the terminal default.
func (c Cell) FgDefault() bool { return c.channels.FgDefault() }

// BgDefault reports whether the background is the terminal default.
func (c Cell) BgDefault() bool { return c.channels.BgDefault() }
