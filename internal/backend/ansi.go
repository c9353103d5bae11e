package backend

import (
	"bytes"
	"errors"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/stratum/internal/channel"
	"github.com/dshills/stratum/internal/compositor"
)

var (
	errNilFrame     = errors.New("nil frame")
	errPaletteIndex = errors.New("palette index out of range")
)

// Escape sequence fragments.
var (
	csi        = []byte("\x1b[")
	sgrReset   = []byte("\x1b[0m")
	clearHome  = []byte("\x1b[H\x1b[2J")
	hideCursor = []byte("\x1b[?25l")
	showCursor = []byte("\x1b[?25h")
	altEnter   = []byte("\x1b[?1049h")
	altExit    = []byte("\x1b[?1049l")
	wrapOff    = []byte("\x1b[?7l")
	wrapOn     = []byte("\x1b[?7h")
	mouseOn    = []byte("\x1b[?1000h\x1b[?1002h\x1b[?1003h\x1b[?1006h")
	mouseOff   = []byte("\x1b[?1006l\x1b[?1003l\x1b[?1002l\x1b[?1000l")
)

// ANSI rasterizes frames into xterm-compatible escape sequences, emitting
// only the cells that differ from the previous frame. Colours the display
// cannot show are mapped to the nearest palette entry.
type ANSI struct {
	caps    Capabilities
	pal     *channel.Palette
	nearest map[uint32]uint8
}

// NewANSI returns a rasterizer for a display with caps. A nil palette
// selects the xterm defaults.
func NewANSI(caps Capabilities, pal *channel.Palette) *ANSI {
	if pal == nil {
		pal = channel.NewPalette()
	}
	return &ANSI{caps: caps, pal: pal, nearest: make(map[uint32]uint8)}
}

// Capabilities implements Rasterizer.
func (a *ANSI) Capabilities() Capabilities { return a.caps }

// PaletteSequence updates palette entry idx and returns the OSC 4 sequence
// that changes it on the terminal.
func (a *ANSI) PaletteSequence(idx int, rgb uint32) ([]byte, error) {
	if !a.caps.ChangeColor {
		return nil, ErrUnsupported
	}
	if idx < 0 || idx > 255 {
		return nil, errPaletteIndex
	}
	a.pal.Set(uint8(idx), rgb)
	clear(a.nearest)
	hex := rgbColor(rgb).Hex()
	seq := "\x1b]4;" + strconv.Itoa(idx) + ";rgb:" + hex[1:3] + "/" + hex[3:5] + "/" + hex[5:7] + "\x1b\\"
	return []byte(seq), nil
}

// Rasterize implements Rasterizer.
func (a *ANSI) Rasterize(cur, prev *compositor.Frame) ([]byte, error) {
	if cur == nil {
		return nil, errNilFrame
	}
	w := &sgrWriter{a: a}
	full := !cur.SameSize(prev)
	if full {
		w.buf.Write(sgrReset)
		w.buf.Write(clearHome)
	}

	for y := 0; y < cur.Rows; y++ {
		for x := 0; x < cur.Cols; x++ {
			i := y*cur.Cols + x
			c := cur.Cells[i]
			if !full && c == prev.Cells[i] {
				continue
			}
			if c.IsContinuation() {
				// Redraw the leader unless it was just drawn.
				if x == 0 || cur.Cells[i-1].Width != 2 {
					continue
				}
				if w.posValid && w.cy == y && w.cx == x+1 {
					continue
				}
				w.cell(y, x-1, cur.Cells[i-1])
				continue
			}
			w.cell(y, x, c)
		}
	}
	if w.buf.Len() > 0 {
		w.buf.Write(sgrReset)
	}
	return w.buf.Bytes(), nil
}

type sgrWriter struct {
	a   *ANSI
	buf bytes.Buffer

	cy, cx   int
	posValid bool

	style    channel.Style
	cs       channel.Channels
	sgrValid bool
}

func (w *sgrWriter) cell(y, x int, c compositor.Cell) {
	w.move(y, x)
	w.sgr(c.Style, c.Channels)
	w.buf.WriteString(c.Glyph())
	n := c.Width
	if n < 1 {
		n = 1
	}
	w.cx += n
}

func (w *sgrWriter) move(y, x int) {
	if w.posValid && y == w.cy && x == w.cx {
		return
	}
	w.buf.Write(csi)
	w.buf.WriteString(strconv.Itoa(y + 1))
	w.buf.WriteByte(';')
	w.buf.WriteString(strconv.Itoa(x + 1))
	w.buf.WriteByte('H')
	w.cy, w.cx, w.posValid = y, x, true
}

func (w *sgrWriter) sgr(s channel.Style, cs channel.Channels) {
	if w.sgrValid && s == w.style && cs == w.cs {
		return
	}
	w.buf.Write(csi)
	w.buf.WriteByte('0')
	if s.Has(channel.StyleBold) {
		w.buf.WriteString(";1")
	}
	if s.Has(channel.StyleItalic) {
		w.buf.WriteString(";3")
	}
	switch {
	case s.Has(channel.StyleUndercurl):
		w.buf.WriteString(";4:3")
	case s.Has(channel.StyleUnderline):
		w.buf.WriteString(";4")
	}
	if s.Has(channel.StyleStruck) {
		w.buf.WriteString(";9")
	}
	w.colour(38, cs.Fg())
	w.colour(48, cs.Bg())
	w.buf.WriteByte('m')
	w.style, w.cs, w.sgrValid = s, cs, true
}

// colour writes ";38;..." or ";48;..." for c. base is 38 or 48.
func (w *sgrWriter) colour(base int, c channel.Channel) {
	caps := w.a.caps
	if c.IsDefault() || caps.Colors == 0 {
		return
	}
	if c.IsPalIndex() {
		idx := c.PalIndex()
		if int(idx) < caps.Colors {
			w.indexed(base, idx)
			return
		}
		w.indexed(base, w.a.nearestIndex(w.a.pal.Get(idx)))
		return
	}
	if caps.TrueColor {
		r, g, b := c.RGB8()
		w.buf.WriteByte(';')
		w.buf.WriteString(strconv.Itoa(base))
		w.buf.WriteString(";2;")
		w.buf.WriteString(strconv.Itoa(int(r)))
		w.buf.WriteByte(';')
		w.buf.WriteString(strconv.Itoa(int(g)))
		w.buf.WriteByte(';')
		w.buf.WriteString(strconv.Itoa(int(b)))
		return
	}
	w.indexed(base, w.a.nearestIndex(c.RGB()))
}

// indexed writes a palette colour in the shortest form the display takes.
func (w *sgrWriter) indexed(base int, idx uint8) {
	w.buf.WriteByte(';')
	switch {
	case w.a.caps.Colors < 256 && idx < 8:
		w.buf.WriteString(strconv.Itoa(base - 8 + int(idx)))
	case w.a.caps.Colors < 256 && idx < 16:
		w.buf.WriteString(strconv.Itoa(base + 52 + int(idx) - 8))
	default:
		w.buf.WriteString(strconv.Itoa(base))
		w.buf.WriteString(";5;")
		w.buf.WriteString(strconv.Itoa(int(idx)))
	}
}

// nearestIndex maps rgb to the perceptually closest palette entry the
// display can show. 256-colour displays skip the user-alterable first 16.
func (a *ANSI) nearestIndex(rgb uint32) uint8 {
	if idx, ok := a.nearest[rgb]; ok {
		return idx
	}
	lo, hi := 0, a.caps.Colors
	if hi >= 256 {
		lo, hi = 16, 256
	}
	want := rgbColor(rgb)
	best, bestDist := lo, -1.0
	for i := lo; i < hi; i++ {
		d := want.DistanceLab(rgbColor(a.pal.Get(uint8(i))))
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	a.nearest[rgb] = uint8(best)
	return uint8(best)
}

func rgbColor(rgb uint32) colorful.Color {
	r, g, b := channel.SplitRGB(rgb)
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}
