package script

import (
	"context"
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/stratum/internal/channel"
)

func runOK(t *testing.T, e *Engine, src string) {
	t.Helper()
	if err := e.RunString(context.Background(), src); err != nil {
		t.Fatalf("RunString: %v", err)
	}
}

func global(e *Engine, name string) lua.LValue { return e.L.GetGlobal(name) }

func TestPlaneMethods(t *testing.T) {
	e, tc, _ := newEngine(t, 6, 20)
	runOK(t, e, `
local std = stratum.std()
local box = std:create(1, 2, 3, 8, "box")
box:box(0, 0, 3, 8, "ascii")
box:aligned(1, "center", "hi")
name = box:name()
rows, cols = box:dim()
box:move(2, 3)
y, x = box:yx()
corner = box:at(0, 0)
desc = tostring(box)
stratum.render()
`)
	if global(e, "name") != lua.LString("box") {
		t.Errorf("name = %v", global(e, "name"))
	}
	if global(e, "rows") != lua.LNumber(3) || global(e, "cols") != lua.LNumber(8) {
		t.Errorf("dim = %v x %v", global(e, "rows"), global(e, "cols"))
	}
	if global(e, "y") != lua.LNumber(2) || global(e, "x") != lua.LNumber(3) {
		t.Errorf("yx = %v,%v", global(e, "y"), global(e, "x"))
	}
	if global(e, "corner") != lua.LString("/") {
		t.Errorf("corner = %v, want /", global(e, "corner"))
	}
	if global(e, "desc") != lua.LString("plane(box)") {
		t.Errorf("tostring = %v", global(e, "desc"))
	}
	if got := tc.LastFrame().Row(3); got != "   |  hi  |         " {
		t.Errorf("row 3 = %q", got)
	}
}

func TestPlaneColours(t *testing.T) {
	e, tc, _ := newEngine(t, 2, 10)
	runOK(t, e, `
local std = stratum.std()
std:fg(stratum.rgb(255, 0, 0))
std:bg(0x0000ff)
std:style("bold+italic")
std:putstr(0, 0, "x")
std:fg()
std:putstr(0, 1, "y")
stratum.render()
`)
	_, style, cs, ok := tc.At(0, 0)
	if !ok {
		t.Fatal("At(0,0) not ok")
	}
	if cs.FgRGB() != 0xff0000 || cs.BgRGB() != 0x0000ff {
		t.Errorf("channels = %v", cs)
	}
	if style != channel.StyleBold|channel.StyleItalic {
		t.Errorf("style = %v", style)
	}
	if _, _, cs, _ := tc.At(0, 1); !cs.FgDefault() || cs.BgRGB() != 0x0000ff {
		t.Errorf("after fg() channels = %v", cs)
	}
}

func TestPileAndRender(t *testing.T) {
	e, tc, _ := newEngine(t, 3, 10)
	runOK(t, e, `
local p = stratum.pile(1, 1, 1, 5, "side")
p:putstr(0, 0, "pile")
stratum.render(p)
`)
	if got := strings.TrimSpace(tc.LastFrame().Row(1)); got != "pile" {
		t.Errorf("row 1 = %q, want pile", got)
	}
}

func TestPlaneDestroy(t *testing.T) {
	e, _, _ := newEngine(t, 3, 10)
	runOK(t, e, `
local c = stratum.std():create(0, 0, 1, 1)
c:destroy()
valid = c:valid()
ok, err = pcall(function() c:putstr(0, 0, "x") end)
`)
	if global(e, "valid") != lua.LFalse {
		t.Error("plane valid after destroy")
	}
	if global(e, "ok") != lua.LFalse {
		t.Error("putstr on destroyed plane succeeded")
	}
}

func TestAPIErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"bad align", `stratum.std():aligned(0, "middle", "x")`, "align"},
		{"bad box", `stratum.std():box(0, 0, 2, 2, "fancy")`, "fancy"},
		{"bad style", `stratum.std():style("sparkly")`, "sparkly"},
		{"bad geometry", `stratum.std():create(0, 0, 0, 5)`, "geometry"},
		{"not a plane", `local m = getmetatable(stratum.std()).__index; m.erase(1)`, "userdata"},
		{"std destroy", `stratum.std():destroy()`, "standard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _ := newEngine(t, 3, 10)
			err := e.RunString(context.Background(), tt.src)
			if err == nil {
				t.Fatal("RunString succeeded")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestInputFromScript(t *testing.T) {
	e, _, d := newEngine(t, 3, 10)
	if err := d.FeedString("\x1b[A"); err != nil {
		t.Fatalf("FeedString: %v", err)
	}
	runOK(t, e, `
ev = stratum.input(1000)
none = stratum.input(0)
`)
	ev, ok := global(e, "ev").(*lua.LTable)
	if !ok {
		t.Fatalf("ev = %v, want table", global(e, "ev"))
	}
	if ev.RawGetString("name") != lua.LString("Up") {
		t.Errorf("ev.name = %v, want Up", ev.RawGetString("name"))
	}
	if ev.RawGetString("ctrl") != lua.LFalse {
		t.Errorf("ev.ctrl = %v", ev.RawGetString("ctrl"))
	}
	if global(e, "none") != lua.LNil {
		t.Errorf("polled input = %v, want nil", global(e, "none"))
	}
}

func TestPaletteAndCaps(t *testing.T) {
	e, _, d := newEngine(t, 3, 10)
	runOK(t, e, `
ok = stratum.palette(17, 0x123456)
caps = stratum.caps()
rows, cols = stratum.dim()
`)
	if global(e, "ok") != lua.LTrue {
		t.Errorf("palette ok = %v", global(e, "ok"))
	}
	if rgb, set := d.PaletteColor(17); !set || rgb != 0x123456 {
		t.Errorf("display palette[17] = %06x/%v", rgb, set)
	}
	caps := global(e, "caps").(*lua.LTable)
	if caps.RawGetString("colors") != lua.LNumber(256) || caps.RawGetString("utf8") != lua.LTrue {
		t.Errorf("caps = colors %v utf8 %v", caps.RawGetString("colors"), caps.RawGetString("utf8"))
	}
	if global(e, "rows") != lua.LNumber(3) || global(e, "cols") != lua.LNumber(10) {
		t.Errorf("dim = %v x %v", global(e, "rows"), global(e, "cols"))
	}
}
