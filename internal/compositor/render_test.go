package compositor

import (
	"errors"
	"testing"

	"github.com/dshills/stratum/internal/channel"
	"github.com/dshills/stratum/internal/plane"
)

func setup(t *testing.T, rows, cols int) (*plane.Arena, plane.Plane) {
	t.Helper()
	a := plane.NewArena()
	root, err := a.NewPile(plane.Options{Rows: rows, Cols: cols, Name: "root"})
	if err != nil {
		t.Fatal(err)
	}
	return a, root
}

func child(t *testing.T, a *plane.Arena, parent plane.Plane, y, x, rows, cols int) plane.Plane {
	t.Helper()
	p, err := a.Create(parent, plane.Options{Y: y, X: x, Rows: rows, Cols: cols})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func render(t *testing.T, root plane.Plane) *Frame {
	t.Helper()
	f, err := Render(root, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return f
}

func at(t *testing.T, f *Frame, y, x int) Cell {
	t.Helper()
	c, ok := f.At(y, x)
	if !ok {
		t.Fatalf("(%d,%d) outside frame", y, x)
	}
	return c
}

func TestRenderEmptyPile(t *testing.T) {
	_, root := setup(t, 2, 3)
	f := render(t, root)
	if f.Rows != 2 || f.Cols != 3 {
		t.Fatalf("frame %dx%d", f.Rows, f.Cols)
	}
	if got := f.String(); got != "   \n   " {
		t.Errorf("String() = %q", got)
	}
	c := at(t, f, 0, 0)
	if !c.Channels.FgDefault() || !c.Channels.BgDefault() {
		t.Errorf("empty frame channels = %v", c.Channels)
	}
}

func TestChildAboveParent(t *testing.T) {
	a, root := setup(t, 5, 10)
	pa := child(t, a, root, 1, 1, 3, 5)
	if err := pa.SetBase("A", 0, channel.FromRGB(0xff0000, 0x110000)); err != nil {
		t.Fatal(err)
	}
	if _, err := pa.PutStr(0, 0, "aaaaa"); err != nil {
		t.Fatal(err)
	}
	pb := child(t, a, pa, 0, 0, 3, 5)
	bcs := channel.FromRGB(0x00ff00, 0x002200)
	if err := pb.SetBase("B", channel.StyleBold, bcs); err != nil {
		t.Fatal(err)
	}

	f := render(t, root)
	for y := 1; y < 4; y++ {
		for x := 1; x < 6; x++ {
			c := at(t, f, y, x)
			if c.Text != "B" || c.Channels != bcs || c.Style != channel.StyleBold {
				t.Errorf("(%d,%d) = %+v, want B's content", y, x, c)
			}
		}
	}
	if got := at(t, f, 0, 0).Text; got != "" {
		t.Errorf("outside both planes = %q", got)
	}
}

func TestOpaqueTopIndependentOfBelow(t *testing.T) {
	a, root := setup(t, 1, 1)
	lower := child(t, a, root, 0, 0, 1, 1)
	upper := child(t, a, root, 0, 0, 1, 1)
	upper.SetChannels(channel.FromRGB(0x123456, 0x654321))
	if _, err := upper.PutStr(0, 0, "U"); err != nil {
		t.Fatal(err)
	}
	want := at(t, render(t, root), 0, 0)

	variants := []func(){
		func() { lower.SetChannels(channel.FromRGB(0xffffff, 0xffffff)); _, _ = lower.PutStr(0, 0, "L") },
		func() { lower.SetFgAlpha(channel.AlphaBlend); _, _ = lower.PutStr(0, 0, "M") },
		func() { _ = root.SetBase("R", channel.StyleItalic, channel.FromRGB(1, 2)) },
	}
	for i, mutate := range variants {
		mutate()
		if got := at(t, render(t, root), 0, 0); got != want {
			t.Errorf("variant %d changed output: %+v, want %+v", i, got, want)
		}
	}
}

func TestTransparentShowsBelow(t *testing.T) {
	a, root := setup(t, 1, 2)
	root.SetChannels(channel.FromRGB(0xaaaaaa, 0x0000ff))
	if _, err := root.PutStr(0, 0, "xy"); err != nil {
		t.Fatal(err)
	}
	top := child(t, a, root, 0, 0, 1, 2)
	var cs channel.Channels
	cs.SetFgRGB(0xff0000)
	cs.SetBgAlpha(channel.AlphaTransparent)
	top.SetChannels(cs)
	if _, err := top.PutStr(0, 0, "T"); err != nil {
		t.Fatal(err)
	}

	f := render(t, root)
	c := at(t, f, 0, 0)
	if c.Text != "T" || c.Channels.FgRGB() != 0xff0000 || c.Channels.BgRGB() != 0x0000ff {
		t.Errorf("(0,0) = %+v", c)
	}
	// Unwritten, uncoloured cells of the top plane let everything through.
	c = at(t, f, 0, 1)
	if c.Text != "y" || c.Channels.FgRGB() != 0xaaaaaa {
		t.Errorf("(0,1) = %+v", c)
	}
}

func TestBlend(t *testing.T) {
	a, root := setup(t, 1, 1)
	if err := root.SetBase(" ", 0, channel.FromRGB(0, 0x0000ff)); err != nil {
		t.Fatal(err)
	}
	top := child(t, a, root, 0, 0, 1, 1)
	var cs channel.Channels
	cs.SetFgAlpha(channel.AlphaTransparent)
	cs.SetBgRGB(0xff0000)
	cs.SetBgAlpha(channel.AlphaBlend)
	if err := top.SetBase("", 0, cs); err != nil {
		t.Fatal(err)
	}

	c := at(t, render(t, root), 0, 0)
	r, g, b := channel.SplitRGB(c.Channels.BgRGB())
	if r < 120 || r > 135 || g != 0 || b < 120 || b > 135 {
		t.Errorf("blended bg = (%d,%d,%d), want about (128,0,128)", r, g, b)
	}
	if c.Channels.BgAlpha() != channel.AlphaOpaque {
		t.Error("resolved channel should be opaque")
	}
}

func TestHighContrast(t *testing.T) {
	tests := []struct {
		name string
		bg   uint32
		want uint32
	}{
		{"dark background", 0x101010, 0xffffff},
		{"light background", 0xf0f0f0, 0x000000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, root := setup(t, 1, 1)
			var cs channel.Channels
			cs.SetFgRGB(0x808080)
			cs.SetFgAlpha(channel.AlphaHighContrast)
			cs.SetBgRGB(tt.bg)
			root.SetChannels(cs)
			if _, err := root.PutStr(0, 0, "x"); err != nil {
				t.Fatal(err)
			}
			c := at(t, render(t, root), 0, 0)
			if c.Channels.FgRGB() != tt.want {
				t.Errorf("fg = %#06x, want %#06x", c.Channels.FgRGB(), tt.want)
			}
		})
	}
}

func TestPaletteKeptWhenOpaque(t *testing.T) {
	_, root := setup(t, 1, 1)
	root.SetFgPalIndex(9)
	if _, err := root.PutStr(0, 0, "p"); err != nil {
		t.Fatal(err)
	}
	c := at(t, render(t, root), 0, 0)
	if !c.Channels.FgPalIndexed() || c.Channels.FgPalIndex() != 9 {
		t.Errorf("fg = %v, want palette 9", c.Channels.Fg())
	}
}

func TestWideGlyphSplitByOverlap(t *testing.T) {
	a, root := setup(t, 1, 4)
	if _, err := root.PutStr(0, 0, "漢字"); err != nil {
		t.Fatal(err)
	}
	top := child(t, a, root, 0, 1, 1, 1)
	if err := top.SetBase("|", 0, 0); err != nil {
		t.Fatal(err)
	}

	f := render(t, root)
	if got := f.Row(0); got != " |字" {
		t.Errorf("row = %q, want %q", got, " |字")
	}
	if c := at(t, f, 0, 0); c.Width != 1 || c.Text != " " {
		t.Errorf("orphaned left half = %+v", c)
	}
}

func TestWideGlyphCutByFrameEdge(t *testing.T) {
	a, root := setup(t, 1, 3)
	p := child(t, a, root, 0, 2, 1, 2)
	if _, err := p.PutStr(0, 0, "漢"); err != nil {
		t.Fatal(err)
	}
	f := render(t, root)
	if c := at(t, f, 0, 2); c.Width != 1 || c.Text != " " {
		t.Errorf("cut glyph = %+v", c)
	}
}

func TestRenderOffsetRoot(t *testing.T) {
	a := plane.NewArena()
	root, err := a.NewPile(plane.Options{Y: 5, X: 5, Rows: 2, Cols: 2})
	if err != nil {
		t.Fatal(err)
	}
	c := child(t, a, root, 1, -1, 1, 3)
	if _, err := c.PutStr(0, 0, "abc"); err != nil {
		t.Fatal(err)
	}
	f := render(t, root)
	if got := f.String(); got != "  \nbc" {
		t.Errorf("String() = %q", got)
	}
}

func TestRenderErrors(t *testing.T) {
	a, root := setup(t, 2, 2)
	c := child(t, a, root, 0, 0, 1, 1)
	if _, err := Render(c, nil); !errors.Is(err, ErrNotRoot) {
		t.Errorf("err = %v, want ErrNotRoot", err)
	}
	a.Close()
	if _, err := Render(root, nil); !errors.Is(err, plane.ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

func TestRenderLeavesPlanesUntouched(t *testing.T) {
	a, root := setup(t, 2, 4)
	c := child(t, a, root, 0, 1, 2, 2)
	if _, err := root.PutStr(0, 0, "root"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.PutStr(1, 0, "ch"); err != nil {
		t.Fatal(err)
	}
	before, _ := root.Contents(0, 0, 0, 0)
	first := render(t, root)
	second := render(t, root)
	after, _ := root.Contents(0, 0, 0, 0)
	if before != after {
		t.Error("render modified a plane")
	}
	if !first.Equal(second) {
		t.Error("rendering twice gave different frames")
	}
}
