package script

import (
	"context"
	"errors"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/stratum/internal/backend"
	"github.com/dshills/stratum/internal/cell"
	"github.com/dshills/stratum/internal/channel"
	"github.com/dshills/stratum/internal/input"
	"github.com/dshills/stratum/internal/plane"
)

const planeType = "stratum.plane"

var boxGlyphs = map[string]string{
	"light":   cell.LightGlyphs,
	"heavy":   cell.HeavyGlyphs,
	"rounded": cell.RoundedGlyphs,
	"double":  cell.DoubleGlyphs,
	"ascii":   cell.ASCIIGlyphs,
}

var aligns = map[string]plane.Align{
	"left":   plane.AlignLeft,
	"center": plane.AlignCenter,
	"right":  plane.AlignRight,
}

// install registers the stratum table and the plane metatable.
func (e *Engine) install() {
	L := e.L
	mt := L.NewTypeMetatable(planeType)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), e.planeMethods()))
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		p := checkPlane(L, 1)
		L.Push(lua.LString("plane(" + p.Name() + ")"))
		return 1
	}))

	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"std":     e.luaStd,
		"pile":    e.luaPile,
		"dim":     e.luaDim,
		"render":  e.luaRender,
		"refresh": e.luaRefresh,
		"input":   e.luaInput,
		"sleep":   luaSleep,
		"rgb":     luaRGB,
		"palette": e.luaPalette,
		"caps":    e.luaCaps,
		"log":     e.luaPrint,
	})
	L.SetGlobal("stratum", mod)
}

func (e *Engine) pushPlane(p plane.Plane) {
	ud := e.L.NewUserData()
	ud.Value = p
	e.L.SetMetatable(ud, e.L.GetTypeMetatable(planeType))
	e.L.Push(ud)
}

func checkPlane(L *lua.LState, n int) plane.Plane {
	ud := L.CheckUserData(n)
	p, ok := ud.Value.(plane.Plane)
	if !ok {
		L.ArgError(n, "plane expected")
	}
	return p
}

// raise turns a Go error into a Lua error.
func raise(L *lua.LState, err error) {
	if err != nil {
		L.RaiseError("%s", err.Error())
	}
}

func (e *Engine) luaStd(L *lua.LState) int {
	e.pushPlane(e.tc.StdPlane())
	return 1
}

// stratum.pile(y, x, rows, cols [, name])
func (e *Engine) luaPile(L *lua.LState) int {
	p, err := e.tc.NewPile(plane.Options{
		Y: L.CheckInt(1), X: L.CheckInt(2),
		Rows: L.CheckInt(3), Cols: L.CheckInt(4),
		Name: L.OptString(5, ""),
	})
	raise(L, err)
	e.pushPlane(p)
	return 1
}

func (e *Engine) luaDim(L *lua.LState) int {
	rows, cols := e.tc.StdDim()
	L.Push(lua.LNumber(rows))
	L.Push(lua.LNumber(cols))
	return 2
}

// stratum.render([pile])
func (e *Engine) luaRender(L *lua.LState) int {
	if L.GetTop() >= 1 {
		raise(L, e.tc.RenderPile(checkPlane(L, 1)))
		return 0
	}
	raise(L, e.tc.Render())
	return 0
}

func (e *Engine) luaRefresh(L *lua.LState) int {
	rows, cols, err := e.tc.Refresh()
	raise(L, err)
	L.Push(lua.LNumber(rows))
	L.Push(lua.LNumber(cols))
	return 2
}

func luaContext(L *lua.LState) context.Context {
	if ctx := L.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// stratum.input([ms]) returns an event table, or nil when nothing arrived
// in time. A negative or missing timeout blocks.
func (e *Engine) luaInput(L *lua.LState) int {
	ms := L.OptInt(1, -1)
	timeout := time.Duration(-1)
	if ms >= 0 {
		timeout = time.Duration(ms) * time.Millisecond
	}
	in, err := e.tc.GetInput(luaContext(L), timeout)
	if errors.Is(err, input.ErrNoInput) || errors.Is(err, input.ErrClosed) {
		L.Push(lua.LNil)
		return 1
	}
	raise(L, err)
	L.Push(eventTable(L, in))
	return 1
}

func eventTable(L *lua.LState, in input.Input) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LNumber(in.ID()))
	t.RawSetString("name", lua.LString(in.Code.String()))
	t.RawSetString("key", lua.LString(in.String()))
	if r, ok := in.Code.Rune(); ok {
		t.RawSetString("text", lua.LString(string(r)))
	}
	if in.IsMouse() {
		t.RawSetString("mouse", lua.LTrue)
		t.RawSetString("y", lua.LNumber(in.Y))
		t.RawSetString("x", lua.LNumber(in.X))
	}
	t.RawSetString("ctrl", lua.LBool(in.Ctrl()))
	t.RawSetString("alt", lua.LBool(in.Alt()))
	t.RawSetString("shift", lua.LBool(in.Shift()))
	t.RawSetString("release", lua.LBool(in.Type == input.EventRelease))
	return t
}

func luaSleep(L *lua.LState) int {
	d := time.Duration(L.CheckInt(1)) * time.Millisecond
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-luaContext(L).Done():
		raise(L, luaContext(L).Err())
	}
	return 0
}

func luaRGB(L *lua.LState) int {
	r, g, b := L.CheckInt(1), L.CheckInt(2), L.CheckInt(3)
	L.Push(lua.LNumber(channel.RGB(uint8(r), uint8(g), uint8(b))))
	return 1
}

// stratum.palette(idx, rgb) returns true, or false and a message when the
// display cannot change its palette.
func (e *Engine) luaPalette(L *lua.LState) int {
	err := e.tc.SetPaletteColor(L.CheckInt(1), uint32(L.CheckInt64(2)))
	if errors.Is(err, backend.ErrUnsupported) {
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	raise(L, err)
	L.Push(lua.LTrue)
	return 1
}

func (e *Engine) luaCaps(L *lua.LState) int {
	t := L.NewTable()
	t.RawSetString("utf8", lua.LBool(e.tc.CanUTF8()))
	t.RawSetString("truecolor", lua.LBool(e.tc.CanTrueColor()))
	t.RawSetString("change_color", lua.LBool(e.tc.CanChangeColor()))
	t.RawSetString("colors", lua.LNumber(e.tc.Colors()))
	L.Push(t)
	return 1
}

func (e *Engine) planeMethods() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		// p:create(y, x, rows, cols [, name])
		"create": func(L *lua.LState) int {
			p := checkPlane(L, 1)
			c, err := e.tc.Create(p, plane.Options{
				Y: L.CheckInt(2), X: L.CheckInt(3),
				Rows: L.CheckInt(4), Cols: L.CheckInt(5),
				Name: L.OptString(6, ""),
			})
			raise(L, err)
			e.pushPlane(c)
			return 1
		},
		"putstr": func(L *lua.LState) int {
			n, err := checkPlane(L, 1).PutStr(L.CheckInt(2), L.CheckInt(3), L.CheckString(4))
			raise(L, err)
			L.Push(lua.LNumber(n))
			return 1
		},
		// p:aligned(y, "left"|"center"|"right", text)
		"aligned": func(L *lua.LState) int {
			n, err := checkPlane(L, 1).PutStrAligned(L.CheckInt(2), checkAlign(L, 3), L.CheckString(4))
			raise(L, err)
			L.Push(lua.LNumber(n))
			return 1
		},
		// p:text(y, align, text) wraps at spaces
		"text": func(L *lua.LState) int {
			n, err := checkPlane(L, 1).PutText(L.CheckInt(2), checkAlign(L, 3), L.CheckString(4))
			raise(L, err)
			L.Push(lua.LNumber(n))
			return 1
		},
		"erase": func(L *lua.LState) int {
			checkPlane(L, 1).Erase()
			return 0
		},
		"move": func(L *lua.LState) int {
			raise(L, checkPlane(L, 1).Move(L.CheckInt(2), L.CheckInt(3)))
			return 0
		},
		"resize": func(L *lua.LState) int {
			raise(L, checkPlane(L, 1).Resize(L.CheckInt(2), L.CheckInt(3)))
			return 0
		},
		"dim": func(L *lua.LState) int {
			rows, cols := checkPlane(L, 1).Dim()
			L.Push(lua.LNumber(rows))
			L.Push(lua.LNumber(cols))
			return 2
		},
		"yx": func(L *lua.LState) int {
			y, x := checkPlane(L, 1).Yx()
			L.Push(lua.LNumber(y))
			L.Push(lua.LNumber(x))
			return 2
		},
		// p:fg(rgb) or p:fg() for the default colour
		"fg": func(L *lua.LState) int {
			p := checkPlane(L, 1)
			if L.GetTop() < 2 {
				p.SetFgDefault()
				return 0
			}
			p.SetFgRGB(uint32(L.CheckInt64(2)))
			return 0
		},
		"bg": func(L *lua.LState) int {
			p := checkPlane(L, 1)
			if L.GetTop() < 2 {
				p.SetBgDefault()
				return 0
			}
			p.SetBgRGB(uint32(L.CheckInt64(2)))
			return 0
		},
		// p:style("bold+italic")
		"style": func(L *lua.LState) int {
			s, err := channel.ParseStyles(L.OptString(2, ""))
			if err != nil {
				L.ArgError(2, err.Error())
			}
			checkPlane(L, 1).SetStyle(s)
			return 0
		},
		// p:base(text [, fg, bg])
		"base": func(L *lua.LState) int {
			p := checkPlane(L, 1)
			var cs channel.Channels
			if L.GetTop() >= 3 {
				cs.SetFgRGB(uint32(L.CheckInt64(3)))
			}
			if L.GetTop() >= 4 {
				cs.SetBgRGB(uint32(L.CheckInt64(4)))
			}
			raise(L, p.SetBase(L.CheckString(2), 0, cs))
			return 0
		},
		// p:box(y, x, rows, cols [, "light"|"heavy"|"rounded"|"double"|"ascii"])
		"box": func(L *lua.LState) int {
			kind := strings.ToLower(L.OptString(6, "light"))
			glyphs, ok := boxGlyphs[kind]
			if !ok {
				L.ArgError(6, "unknown box style "+kind)
			}
			raise(L, checkPlane(L, 1).Box(L.CheckInt(2), L.CheckInt(3), L.CheckInt(4), L.CheckInt(5), glyphs))
			return 0
		},
		"top": func(L *lua.LState) int {
			raise(L, checkPlane(L, 1).MoveTop())
			return 0
		},
		"bottom": func(L *lua.LState) int {
			raise(L, checkPlane(L, 1).MoveBottom())
			return 0
		},
		"at": func(L *lua.LState) int {
			text, _, _, err := checkPlane(L, 1).At(L.CheckInt(2), L.CheckInt(3))
			raise(L, err)
			L.Push(lua.LString(text))
			return 1
		},
		"name": func(L *lua.LState) int {
			L.Push(lua.LString(checkPlane(L, 1).Name()))
			return 1
		},
		"valid": func(L *lua.LState) int {
			L.Push(lua.LBool(checkPlane(L, 1).Valid()))
			return 1
		},
		"destroy": func(L *lua.LState) int {
			raise(L, checkPlane(L, 1).Destroy())
			return 0
		},
	}
}

func checkAlign(L *lua.LState, n int) plane.Align {
	a, ok := aligns[strings.ToLower(L.CheckString(n))]
	if !ok {
		L.ArgError(n, "align must be left, center or right")
	}
	return a
}
