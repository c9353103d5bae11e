// Package script runs Lua scene scripts against a terminal context. Scripts
// see a global "stratum" table for the context and plane userdata with
// drawing methods; an optional global on_input(ev) turns the script into an
// event loop driven by Loop.
package script

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/stratum/internal/input"
	"github.com/dshills/stratum/internal/logging"
	"github.com/dshills/stratum/internal/term"
)

// InputHandler is the global a script defines to receive events.
const InputHandler = "on_input"

// Engine wraps a gopher-lua state bound to one terminal context.
//
// The LState is not goroutine-safe; the mutex serializes Go callers and
// scripts run to completion on the calling goroutine.
type Engine struct {
	L *lua.LState

	mu      sync.Mutex
	tc      *term.Context
	log     *logging.Logger
	timeout time.Duration
	closed  bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets where print and stratum.log write. The default discards.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithTimeout bounds every Run, RunString and Call. Zero means no limit;
// the caller's context still applies.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// NewEngine creates a sandboxed state with the stratum API installed.
func NewEngine(tc *term.Context, opts ...Option) (*Engine, error) {
	if tc == nil || tc.Closed() {
		return nil, term.ErrClosed
	}
	e := &Engine{tc: tc, log: logging.Null}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithComponent("script")

	e.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(e.L)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		e.L.SetGlobal(name, lua.LNil)
	}
	e.L.SetGlobal("print", e.L.NewFunction(e.luaPrint))
	e.install()
	return e, nil
}

// openSafeLibraries opens base, table, string and math. io, os, debug
// and package stay closed.
func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
}

func (e *Engine) luaPrint(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	e.log.Info("%s", strings.Join(parts, "\t"))
	return 0
}

// Run executes the script at path.
func (e *Engine) Run(ctx context.Context, path string) error {
	return e.exec(ctx, "run "+filepath.Base(path), func() error {
		return e.L.DoFile(path)
	})
}

// RunString executes a chunk of Lua source.
func (e *Engine) RunString(ctx context.Context, code string) error {
	return e.exec(ctx, "run", func() error {
		return e.L.DoString(code)
	})
}

func (e *Engine) exec(ctx context.Context, op string, fn func() error) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	e.L.SetContext(ctx)
	defer e.L.RemoveContext()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: lua panic: %v", op, r)
		}
	}()

	if err := fn(); err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return fmt.Errorf("%s: %w", op, cerr)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// HasFunc reports whether the global name is a function.
func (e *Engine) HasFunc(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	return e.L.GetGlobal(name).Type() == lua.LTFunction
}

// Call calls the global function fn and returns its results.
func (e *Engine) Call(ctx context.Context, fn string, args ...lua.LValue) ([]lua.LValue, error) {
	var results []lua.LValue
	err := e.exec(ctx, "call "+fn, func() (err error) {
		results, err = e.call(fn, args)
		return err
	})
	return results, err
}

// call runs fn with e.mu held.
func (e *Engine) call(fn string, args []lua.LValue) ([]lua.LValue, error) {
	f := e.L.GetGlobal(fn)
	if f.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%q: %w", fn, ErrNotFunction)
	}
	top := e.L.GetTop()
	e.L.Push(f)
	for _, a := range args {
		e.L.Push(a)
	}
	if err := e.L.PCall(len(args), lua.MultRet, nil); err != nil {
		return nil, err
	}
	n := e.L.GetTop() - top
	results := make([]lua.LValue, n)
	for i := 0; i < n; i++ {
		results[i] = e.L.Get(top + i + 1)
	}
	e.L.Pop(n)
	return results, nil
}

// Dispatch hands in to the script's on_input. It reports whether the
// script wants more events: a false or nil return stops the loop. Without
// a handler it reports false.
func (e *Engine) Dispatch(ctx context.Context, in input.Input) (bool, error) {
	var more bool
	err := e.exec(ctx, "call "+InputHandler, func() error {
		if e.L.GetGlobal(InputHandler).Type() != lua.LTFunction {
			return nil
		}
		res, err := e.call(InputHandler, []lua.LValue{eventTable(e.L, in)})
		if err != nil {
			return err
		}
		more = len(res) > 0 && lua.LVAsBool(res[0])
		return nil
	})
	if err != nil {
		return false, err
	}
	return more, nil
}

// Loop renders the standard pile and dispatches events to on_input until
// it returns false, the input source reaches end of file, or ctx ends.
// Resize events refresh the context before they are dispatched.
func (e *Engine) Loop(ctx context.Context) error {
	for {
		if err := e.tc.Render(); err != nil {
			return err
		}
		if !e.HasFunc(InputHandler) {
			return nil
		}
		in, err := e.tc.GetInputBlocking(ctx)
		if err != nil {
			if errors.Is(err, input.ErrClosed) {
				return nil
			}
			return err
		}
		switch {
		case in.Code.IsKey(input.KeyEOF):
			return nil
		case in.Code.IsKey(input.KeyResize):
			if _, _, err := e.tc.Refresh(); err != nil {
				return err
			}
		}
		more, err := e.Dispatch(ctx, in)
		if err != nil {
			return err
		}
		if !more {
			return e.tc.Render()
		}
	}
}

// Close releases the Lua state. It does not stop the terminal context.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.L.Close()
	e.closed = true
	return nil
}
