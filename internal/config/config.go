// Package config loads stratum's settings from TOML or YAML, applies
// STRATUM_* environment overrides, validates them and maps them onto the
// terminal context's options. Watcher reloads a file when it changes.
//
// Precedence, lowest first: Default, the config file, the environment,
// then command line flags applied by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/stratum/internal/channel"
	"github.com/dshills/stratum/internal/input/keymap"
	"github.com/dshills/stratum/internal/logging"
	"github.com/dshills/stratum/internal/plane"
	"github.com/dshills/stratum/internal/term"
)

// Backends accepted by terminal.backend.
const (
	BackendTCell = "tcell"
	BackendANSI  = "ansi"
)

// Duration is a time.Duration written as "50ms" or "2s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the complete settings tree.
type Config struct {
	Terminal TerminalConfig `toml:"terminal" yaml:"terminal"`
	Input    InputConfig    `toml:"input" yaml:"input"`
	Scene    SceneConfig    `toml:"scene" yaml:"scene"`
	Log      LogConfig      `toml:"log" yaml:"log"`

	// Palette overrides xterm palette entries: index to "#rrggbb".
	Palette map[string]string `toml:"palette" yaml:"palette"`

	// Keys rebinds demo actions: action name to key specification.
	Keys map[string]string `toml:"keys" yaml:"keys"`
}

// TerminalConfig selects the display and sizes the scene graph.
type TerminalConfig struct {
	Backend       string       `toml:"backend" yaml:"backend"`
	Mouse         bool         `toml:"mouse" yaml:"mouse"`
	DestroyPolicy string       `toml:"destroy_policy" yaml:"destroy_policy"`
	MaxCells      int          `toml:"max_cells" yaml:"max_cells"`
	PoolLimit     int          `toml:"pool_limit" yaml:"pool_limit"`
	Margins       MarginConfig `toml:"margins" yaml:"margins"`

	// Colors forces the palette size of the ansi backend; 0 detects.
	Colors int `toml:"colors" yaml:"colors"`
}

// MarginConfig mirrors term.Margins.
type MarginConfig struct {
	Top    int `toml:"top" yaml:"top"`
	Right  int `toml:"right" yaml:"right"`
	Bottom int `toml:"bottom" yaml:"bottom"`
	Left   int `toml:"left" yaml:"left"`
}

// InputConfig tunes the input decoder.
type InputConfig struct {
	EscapeTimeout Duration `toml:"escape_timeout" yaml:"escape_timeout"`
}

// SceneConfig names the script to run.
type SceneConfig struct {
	Script  string   `toml:"script" yaml:"script"`
	Timeout Duration `toml:"timeout" yaml:"timeout"`
}

// LogConfig controls the log file.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
	File  string `toml:"file" yaml:"file"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Terminal: TerminalConfig{
			Backend:       BackendTCell,
			DestroyPolicy: "cascade",
		},
		Input: InputConfig{EscapeTimeout: Duration{50 * time.Millisecond}},
		Log:   LogConfig{Level: "info"},
	}
}

// Load reads path over Default and applies the environment. The format
// follows the extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrFileNotFound)
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	cfg := Default()
	if err := cfg.decode(path, data); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(c); err != nil {
			pe := &ParseError{Path: path, Message: err.Error(), Err: err}
			var de *toml.DecodeError
			if errors.As(err, &de) {
				pe.Line, pe.Column = de.Position()
			}
			var sme *toml.StrictMissingError
			if errors.As(err, &sme) {
				pe.Message = sme.String()
			}
			return pe
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// an empty document leaves the defaults
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return &ParseError{Path: path, Message: err.Error(), Err: err}
		}
	default:
		return fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	return nil
}

// Validate checks every setting and reports all failures at once.
func (c *Config) Validate() error {
	verr := &ValidationError{}

	switch c.Terminal.Backend {
	case BackendTCell, BackendANSI:
	default:
		verr.add("terminal.backend", ErrCodeInvalidEnum, c.Terminal.Backend, "must be %q or %q", BackendTCell, BackendANSI)
	}
	if _, ok := parsePolicy(c.Terminal.DestroyPolicy); !ok {
		verr.add("terminal.destroy_policy", ErrCodeInvalidEnum, c.Terminal.DestroyPolicy, "must be cascade or reparent")
	}
	for path, v := range map[string]int{
		"terminal.max_cells":      c.Terminal.MaxCells,
		"terminal.pool_limit":     c.Terminal.PoolLimit,
		"terminal.margins.top":    c.Terminal.Margins.Top,
		"terminal.margins.right":  c.Terminal.Margins.Right,
		"terminal.margins.bottom": c.Terminal.Margins.Bottom,
		"terminal.margins.left":   c.Terminal.Margins.Left,
	} {
		if v < 0 {
			verr.add(path, ErrCodeOutOfRange, v, "must not be negative")
		}
	}
	switch c.Terminal.Colors {
	case 0, 2, 8, 16, 88, 256, 1 << 24:
	default:
		verr.add("terminal.colors", ErrCodeInvalidEnum, c.Terminal.Colors, "must be 0, 2, 8, 16, 88, 256 or 16777216")
	}
	if c.Input.EscapeTimeout.Duration < 0 || c.Input.EscapeTimeout.Duration > time.Second {
		verr.add("input.escape_timeout", ErrCodeOutOfRange, c.Input.EscapeTimeout, "must be between 0 and 1s")
	}
	if c.Scene.Timeout.Duration < 0 {
		verr.add("scene.timeout", ErrCodeOutOfRange, c.Scene.Timeout, "must not be negative")
	}
	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		verr.add("log.level", ErrCodeInvalidEnum, c.Log.Level, "must be debug, info, warn or error")
	}
	for k, v := range c.Palette {
		if _, err := strconv.ParseUint(k, 10, 8); err != nil {
			verr.add("palette."+k, ErrCodeOutOfRange, k, "index must be 0-255")
		}
		if _, err := colorful.Hex(v); err != nil {
			verr.add("palette."+k, ErrCodePatternMismatch, v, "colour must be #rrggbb")
		}
	}
	for action, spec := range c.Keys {
		if _, err := keymap.Parse(spec); err != nil {
			verr.add("keys."+action, ErrCodePatternMismatch, spec, "%v", err)
		}
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func parsePolicy(s string) (plane.DestroyPolicy, bool) {
	switch strings.ToLower(s) {
	case "", "cascade":
		return plane.DestroyCascade, true
	case "reparent":
		return plane.DestroyReparent, true
	}
	return 0, false
}

// LogLevel returns the parsed log level, info when unset or invalid.
func (c *Config) LogLevel() logging.Level {
	if l, ok := logging.ParseLevel(c.Log.Level); ok {
		return l
	}
	return logging.LevelInfo
}

// BuildPalette returns the xterm palette with the configured overrides applied.
func (c *Config) BuildPalette() (*channel.Palette, error) {
	pal := channel.NewPalette()
	for k, v := range c.Palette {
		idx, err := strconv.ParseUint(k, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("palette index %q: %w", k, err)
		}
		col, err := colorful.Hex(v)
		if err != nil {
			return nil, fmt.Errorf("palette colour %q: %w", v, err)
		}
		r, g, b := col.RGB255()
		pal.Set(uint8(idx), channel.RGB(r, g, b))
	}
	return pal, nil
}

// Options maps the settings onto term.Options. The logger is left to the
// caller.
func (c *Config) Options() (term.Options, error) {
	if err := c.Validate(); err != nil {
		return term.Options{}, err
	}
	pal, err := c.BuildPalette()
	if err != nil {
		return term.Options{}, err
	}
	policy, _ := parsePolicy(c.Terminal.DestroyPolicy)
	m := c.Terminal.Margins
	return term.Options{
		Palette:       pal,
		DestroyPolicy: policy,
		MaxCells:      c.Terminal.MaxCells,
		PoolLimit:     c.Terminal.PoolLimit,
		Margins:       term.Margins{Top: m.Top, Right: m.Right, Bottom: m.Bottom, Left: m.Left},
		Mouse:         c.Terminal.Mouse,
	}, nil
}
