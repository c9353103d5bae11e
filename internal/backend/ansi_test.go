package backend

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/stratum/internal/channel"
	"github.com/dshills/stratum/internal/compositor"
)

func textFrame(rows, cols int, lines ...string) *compositor.Frame {
	f := compositor.NewFrame(rows, cols)
	for y, line := range lines {
		for x, r := range []rune(line) {
			f.Cells[y*cols+x].Text = string(r)
		}
	}
	return f
}

func TestRasterizeFullRedraw(t *testing.T) {
	a := NewANSI(Capabilities{Colors: 256}, nil)
	out, err := a.Rasterize(textFrame(2, 3, "ab"), nil)
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	if !strings.HasPrefix(s, "\x1b[0m\x1b[H\x1b[2J") {
		t.Errorf("full redraw does not clear: %q", s)
	}
	if !strings.Contains(s, "\x1b[1;1H") || !strings.Contains(s, "ab") {
		t.Errorf("missing glyphs: %q", s)
	}
	if !strings.HasSuffix(s, "\x1b[0m") {
		t.Errorf("output does not reset attributes: %q", s)
	}
}

func TestRasterizeUnchanged(t *testing.T) {
	a := NewANSI(Capabilities{Colors: 256}, nil)
	f := textFrame(2, 3, "ab")
	out, err := a.Rasterize(f, f.Clone())
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Errorf("identical frames produced %q", out)
	}
}

func TestRasterizeDiff(t *testing.T) {
	a := NewANSI(Capabilities{Colors: 256}, nil)
	prev := textFrame(3, 4, "", "")
	cur := textFrame(3, 4, "", "  x")
	out, err := a.Rasterize(cur, prev)
	if err != nil {
		t.Fatal(err)
	}
	want := "\x1b[2;3H\x1b[0mx\x1b[0m"
	if string(out) != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestRasterizeSizeChange(t *testing.T) {
	a := NewANSI(Capabilities{Colors: 256}, nil)
	out, _ := a.Rasterize(textFrame(2, 2), textFrame(3, 3))
	if !strings.Contains(string(out), "\x1b[2J") {
		t.Errorf("resized frame not fully redrawn: %q", out)
	}
}

func TestRasterizeNil(t *testing.T) {
	a := NewANSI(Capabilities{}, nil)
	if _, err := a.Rasterize(nil, nil); err == nil {
		t.Error("expected error for nil frame")
	}
}

func TestRasterizeColours(t *testing.T) {
	tests := []struct {
		name string
		caps Capabilities
		cell func(*compositor.Cell)
		want string
	}{
		{
			name: "truecolor fg",
			caps: Capabilities{Colors: 1 << 24, TrueColor: true},
			cell: func(c *compositor.Cell) { c.Channels.SetFgRGB(0x010203) },
			want: "\x1b[0;38;2;1;2;3m",
		},
		{
			name: "rgb on 256 colours",
			caps: Capabilities{Colors: 256},
			cell: func(c *compositor.Cell) { c.Channels.SetFgRGB(0xff0000) },
			want: "\x1b[0;38;5;196m",
		},
		{
			name: "palette on 256 colours",
			caps: Capabilities{Colors: 256},
			cell: func(c *compositor.Cell) { c.Channels.SetBgPalIndex(42) },
			want: "\x1b[0;48;5;42m",
		},
		{
			name: "eight colours",
			caps: Capabilities{Colors: 8},
			cell: func(c *compositor.Cell) {
				c.Channels.SetFgPalIndex(1)
				c.Channels.SetBgPalIndex(2)
			},
			want: "\x1b[0;31;42m",
		},
		{
			name: "bright on sixteen colours",
			caps: Capabilities{Colors: 16},
			cell: func(c *compositor.Cell) { c.Channels.SetFgPalIndex(9) },
			want: "\x1b[0;91m",
		},
		{
			name: "monochrome drops colour",
			caps: Capabilities{Colors: 0},
			cell: func(c *compositor.Cell) { c.Channels.SetFgRGB(0x123456) },
			want: "\x1b[0m",
		},
		{
			name: "attributes",
			caps: Capabilities{Colors: 256},
			cell: func(c *compositor.Cell) {
				c.Style = channel.StyleBold | channel.StyleItalic | channel.StyleUndercurl | channel.StyleStruck
			},
			want: "\x1b[0;1;3;4:3;9m",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewANSI(tt.caps, nil)
			prev := textFrame(1, 1)
			cur := textFrame(1, 1, "z")
			tt.cell(&cur.Cells[0])
			out, err := a.Rasterize(cur, prev)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(out), tt.want+"z") {
				t.Errorf("got %q, want %q before glyph", out, tt.want)
			}
		})
	}
}

func TestRasterizeWideContinuation(t *testing.T) {
	a := NewANSI(Capabilities{Colors: 256, UTF8: true}, nil)
	prev := textFrame(1, 4)
	cur := textFrame(1, 4)
	cur.Cells[1] = compositor.Cell{Text: "漢", Width: 2}
	cur.Cells[2] = compositor.Cell{Width: 0}

	out, err := a.Rasterize(cur, prev)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(out), "漢"); n != 1 {
		t.Errorf("wide glyph drawn %d times: %q", n, out)
	}

	// Only the continuation differs; the leader must be redrawn.
	prev = cur.Clone()
	prev.Cells[2] = compositor.Cell{Text: "x", Width: 1}
	out, _ = a.Rasterize(cur, prev)
	if !strings.Contains(string(out), "\x1b[1;2H") || !strings.Contains(string(out), "漢") {
		t.Errorf("leader not redrawn: %q", out)
	}
}

func TestPaletteSequence(t *testing.T) {
	a := NewANSI(Capabilities{Colors: 256, ChangeColor: true}, nil)
	seq, err := a.PaletteSequence(1, 0xff0080)
	if err != nil {
		t.Fatal(err)
	}
	if want := "\x1b]4;1;rgb:ff/00/80\x1b\\"; string(seq) != want {
		t.Errorf("got %q, want %q", seq, want)
	}
	if _, err := a.PaletteSequence(256, 0); !errors.Is(err, errPaletteIndex) {
		t.Errorf("err = %v, want errPaletteIndex", err)
	}

	fixed := NewANSI(Capabilities{Colors: 256}, nil)
	if _, err := fixed.PaletteSequence(1, 0); !errors.Is(err, ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}

func TestNearestIndexFollowsPalette(t *testing.T) {
	pal := channel.NewPalette()
	a := NewANSI(Capabilities{Colors: 256, ChangeColor: true}, pal)
	if got := a.nearestIndex(0x123456); got < 16 {
		t.Errorf("nearest = %d, want an index above the system colours", got)
	}
	if _, err := a.PaletteSequence(100, 0x123456); err != nil {
		t.Fatal(err)
	}
	if got := a.nearestIndex(0x123456); got != 100 {
		t.Errorf("nearest after change = %d, want 100", got)
	}
}
