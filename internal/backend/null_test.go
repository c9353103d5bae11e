package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dshills/stratum/internal/compositor"
	"github.com/dshills/stratum/internal/input"
)

func TestNullPresentBeforeInit(t *testing.T) {
	n := NewNull(24, 80, Capabilities{})
	if err := n.Present(compositor.NewFrame(24, 80)); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("err = %v, want ErrNotInitialized", err)
	}
}

func TestNullPresent(t *testing.T) {
	n := NewNull(2, 3, Capabilities{})
	if err := n.Init(); err != nil {
		t.Fatal(err)
	}
	if n.Last() != nil {
		t.Error("Last before Present should be nil")
	}
	f := textFrame(2, 3, "abc", "def")
	if err := n.Present(f); err != nil {
		t.Fatal(err)
	}
	f.Cells[0].Text = "z"
	last := n.Last()
	if last.Row(0) != "abc" || last.Row(1) != "def" {
		t.Errorf("last frame = %q", last.String())
	}
	if n.Presents() != 1 {
		t.Errorf("presents = %d", n.Presents())
	}
}

func TestNullPresentCrops(t *testing.T) {
	n := NewNull(1, 3, Capabilities{})
	_ = n.Init()
	f := textFrame(2, 4, "abcd", "efgh")
	f.Cells[2] = compositor.Cell{Text: "漢", Width: 2}
	f.Cells[3] = compositor.Cell{Width: 0}
	if err := n.Present(f); err != nil {
		t.Fatal(err)
	}
	last := n.Last()
	if last.Rows != 1 || last.Cols != 3 {
		t.Fatalf("size = %dx%d, want 1x3", last.Rows, last.Cols)
	}
	if c, _ := last.At(0, 2); c.Width != 1 || c.Text != "" {
		t.Errorf("cut wide glyph = %+v, want blank", c)
	}
}

func TestNullRefresh(t *testing.T) {
	n := NewNull(1, 1, Capabilities{})
	_ = n.Init()
	n.Refresh()
	if !n.RefreshPending() {
		t.Error("refresh not pending")
	}
	_ = n.Present(compositor.NewFrame(1, 1))
	if n.RefreshPending() {
		t.Error("refresh still pending after Present")
	}
}

func TestNullInput(t *testing.T) {
	n := NewNull(24, 80, Capabilities{Mouse: true})
	_ = n.Init()
	if err := n.FeedString("q\x1b[<0;5;3M"); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	in, err := n.Input().Poll(ctx, time.Second)
	if err != nil || !in.Code.IsRune('q') {
		t.Fatalf("first = %v, %v", in, err)
	}
	in, err = n.Input().Poll(ctx, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if b, _ := in.Code.Button(); b != input.Button1 || in.Y != 2 || in.X != 4 {
		t.Errorf("mouse = %v", in)
	}
}

func TestNullResize(t *testing.T) {
	n := NewNull(24, 80, Capabilities{})
	_ = n.Init()
	n.Resize(10, 20)
	if rows, cols := n.Size(); rows != 10 || cols != 20 {
		t.Errorf("size = %dx%d", rows, cols)
	}
	in, err := n.Input().Poll(context.Background(), 0)
	if err != nil || !in.Code.IsKey(input.KeyResize) {
		t.Errorf("got %v, %v, want resize", in, err)
	}
}

func TestNullShutdownEndsInput(t *testing.T) {
	n := NewNull(1, 1, Capabilities{})
	_ = n.Init()
	n.Shutdown()
	in, err := n.Input().Poll(context.Background(), time.Second)
	if err != nil || !in.Code.IsKey(input.KeyEOF) {
		t.Errorf("got %v, %v, want EOF key", in, err)
	}
}

func TestNullCapabilityGates(t *testing.T) {
	plain := NewNull(1, 1, Capabilities{})
	if err := plain.EnableMouse(); !errors.Is(err, ErrUnsupported) {
		t.Errorf("EnableMouse err = %v", err)
	}
	if err := plain.SetPaletteColor(1, 0); !errors.Is(err, ErrUnsupported) {
		t.Errorf("SetPaletteColor err = %v", err)
	}

	rich := NewNull(1, 1, Capabilities{Mouse: true, ChangeColor: true})
	if err := rich.EnableMouse(); err != nil || !rich.MouseEnabled() {
		t.Errorf("EnableMouse = %v, enabled %v", err, rich.MouseEnabled())
	}
	_ = rich.DisableMouse()
	if rich.MouseEnabled() {
		t.Error("mouse still enabled")
	}
	if err := rich.SetPaletteColor(7, 0x112233); err != nil {
		t.Fatal(err)
	}
	if rgb, ok := rich.PaletteColor(7); !ok || rgb != 0x112233 {
		t.Errorf("palette[7] = %06x, %v", rgb, ok)
	}
	if err := rich.SetPaletteColor(-1, 0); err == nil {
		t.Error("negative index accepted")
	}
}
