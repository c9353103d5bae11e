// Package backend holds the collaborators that put composited frames on a
// display and report what that display can do.
//
// A Rasterizer turns frames into terminal bytes. A Display owns a screen:
// Terminal drives one through tcell, Stream writes ANSI output to any
// io.Writer, and Null keeps the last frame in memory for tests.
package backend

import (
	"errors"
	"os"
	"strings"

	"github.com/dshills/stratum/internal/compositor"
	"github.com/dshills/stratum/internal/input"
)

var (
	// ErrUnsupported reports a capability the display lacks. It is not a
	// failure of the display; callers branch on it.
	ErrUnsupported = errors.New("unsupported by display")

	// ErrNotInitialized is returned by displays used before Init or after
	// Shutdown.
	ErrNotInitialized = errors.New("display not initialized")
)

// Capabilities describes a display. It is detected once at init and not
// changed afterwards.
type Capabilities struct {
	// Colors is the palette size: 0, 8, 16, 256, or 1<<24 for direct colour.
	Colors      int
	TrueColor   bool
	UTF8        bool
	ChangeColor bool
	Mouse       bool

	// Block and dot glyph families usable for pixel-like output.
	HalfBlock bool
	Quadrant  bool
	Sextant   bool
	Braille   bool

	// Images reports image decoding; Pixel a bitmap graphics protocol.
	Images bool
	Pixel  bool
}

// Rasterizer converts frames into display bytes.
type Rasterizer interface {
	// Rasterize returns the bytes that turn a display showing prev into one
	// showing cur. A nil prev requests a full redraw.
	Rasterize(cur, prev *compositor.Frame) ([]byte, error)
	Capabilities() Capabilities
}

// Display is a screen frames can be presented on.
type Display interface {
	Init() error
	Shutdown()

	// Size returns the screen dimensions in cells.
	Size() (rows, cols int)

	// Present shows f with its top-left at the screen origin. Cells outside
	// the screen are dropped.
	Present(f *compositor.Frame) error

	// Refresh redraws the whole screen on the next Present.
	Refresh()

	Capabilities() Capabilities
	EnableMouse() error
	DisableMouse() error

	// SetPaletteColor changes palette entry idx. Displays that cannot
	// return ErrUnsupported.
	SetPaletteColor(idx int, rgb uint32) error

	// Input returns the display's event source.
	Input() input.Poller
}

// Env reads environment variables. os.Getenv satisfies it.
type Env func(string) string

// DetectCapabilities derives capabilities from the environment.
func DetectCapabilities(env Env) Capabilities {
	if env == nil {
		env = os.Getenv
	}
	term := env("TERM")
	caps := Capabilities{Colors: 256, UTF8: utf8Locale(env), Mouse: term != "dumb"}

	switch {
	case term == "dumb":
		caps.Colors = 0
	case strings.HasPrefix(term, "vt100"), term == "linux":
		caps.Colors = 8
	}
	if caps.Colors != 0 && trueColorTerm(env, term) {
		caps.Colors = 1 << 24
		caps.TrueColor = true
	}
	caps.ChangeColor = caps.Colors >= 256 && term != "linux"

	if caps.UTF8 {
		caps.HalfBlock = true
		caps.Quadrant = true
		caps.Braille = true
		// Sextants arrived with Unicode 13; only modern emulators carry them.
		caps.Sextant = env("KITTY_WINDOW_ID") != "" || env("WEZTERM_PANE") != "" ||
			strings.HasPrefix(term, "foot") || strings.Contains(term, "kitty")
	}
	return caps
}

func trueColorTerm(env Env, term string) bool {
	if ct := env("COLORTERM"); ct == "truecolor" || ct == "24bit" {
		return true
	}
	for _, v := range []string{"KITTY_WINDOW_ID", "KONSOLE_VERSION", "ITERM_SESSION_ID", "ALACRITTY_WINDOW_ID", "WEZTERM_PANE"} {
		if env(v) != "" {
			return true
		}
	}
	return strings.Contains(term, "truecolor") || strings.Contains(term, "24bit") || strings.Contains(term, "direct")
}

func utf8Locale(env Env) bool {
	for _, v := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		if s := env(v); s != "" {
			s = strings.ToLower(s)
			return strings.Contains(s, "utf-8") || strings.Contains(s, "utf8")
		}
	}
	return false
}
