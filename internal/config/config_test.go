package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/stratum/internal/channel"
	"github.com/dshills/stratum/internal/plane"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "stratum.toml", `
[terminal]
backend = "ansi"
mouse = true
destroy_policy = "reparent"
max_cells = 4096
colors = 256

[terminal.margins]
top = 1
left = 2

[input]
escape_timeout = "25ms"

[scene]
script = "demo.lua"
timeout = "2s"

[log]
level = "debug"

[palette]
17 = "#102030"

[keys]
quit = "Ctrl+x"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Terminal.Backend != BackendANSI || !cfg.Terminal.Mouse {
		t.Errorf("terminal = %+v", cfg.Terminal)
	}
	if cfg.Terminal.Margins.Top != 1 || cfg.Terminal.Margins.Left != 2 {
		t.Errorf("margins = %+v", cfg.Terminal.Margins)
	}
	if cfg.Input.EscapeTimeout.Duration != 25*time.Millisecond {
		t.Errorf("escape_timeout = %v", cfg.Input.EscapeTimeout)
	}
	if cfg.Scene.Script != "demo.lua" || cfg.Scene.Timeout.Duration != 2*time.Second {
		t.Errorf("scene = %+v", cfg.Scene)
	}
	if cfg.Keys["quit"] != "Ctrl+x" {
		t.Errorf("keys = %v", cfg.Keys)
	}
	if cfg.Palette["17"] != "#102030" {
		t.Errorf("palette = %v", cfg.Palette)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "stratum.yaml", `
terminal:
  backend: tcell
  pool_limit: 128
input:
  escape_timeout: 10ms
log:
  level: warn
  file: /tmp/stratum.log
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Terminal.PoolLimit != 128 {
		t.Errorf("pool_limit = %d", cfg.Terminal.PoolLimit)
	}
	if cfg.Input.EscapeTimeout.Duration != 10*time.Millisecond {
		t.Errorf("escape_timeout = %v", cfg.Input.EscapeTimeout)
	}
	if cfg.Log.Level != "warn" || cfg.Log.File != "/tmp/stratum.log" {
		t.Errorf("log = %+v", cfg.Log)
	}
	// unset sections keep their defaults
	if cfg.Terminal.DestroyPolicy != "cascade" {
		t.Errorf("destroy_policy = %q", cfg.Terminal.DestroyPolicy)
	}
}

func TestLoadEmptyYAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yml", ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Terminal.Backend != BackendTCell {
		t.Errorf("backend = %q, want default", cfg.Terminal.Backend)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		check   func(error) bool
	}{
		{"missing", "", "", func(err error) bool { return errors.Is(err, ErrFileNotFound) }},
		{"extension", "stratum.ini", "backend=tcell", func(err error) bool { return errors.Is(err, ErrUnsupportedFormat) }},
		{"toml syntax", "bad.toml", "[terminal\nbackend = 1", func(err error) bool {
			var pe *ParseError
			return errors.As(err, &pe) && pe.Line > 0
		}},
		{"toml unknown", "bad.toml", "[terminal]\nsparkle = true\n", func(err error) bool {
			var pe *ParseError
			return errors.As(err, &pe)
		}},
		{"yaml unknown", "bad.yaml", "terminal:\n  sparkle: true\n", func(err error) bool {
			var pe *ParseError
			return errors.As(err, &pe)
		}},
		{"bad duration", "bad.toml", "[input]\nescape_timeout = \"soon\"\n", func(err error) bool {
			var pe *ParseError
			return errors.As(err, &pe)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nope.toml")
			if tt.file != "" {
				path = writeFile(t, tt.file, tt.content)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load succeeded")
			}
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
		code   ValidationErrorCode
	}{
		{"backend", func(c *Config) { c.Terminal.Backend = "curses" }, "terminal.backend", ErrCodeInvalidEnum},
		{"policy", func(c *Config) { c.Terminal.DestroyPolicy = "orphan" }, "terminal.destroy_policy", ErrCodeInvalidEnum},
		{"max cells", func(c *Config) { c.Terminal.MaxCells = -1 }, "terminal.max_cells", ErrCodeOutOfRange},
		{"margin", func(c *Config) { c.Terminal.Margins.Bottom = -2 }, "terminal.margins.bottom", ErrCodeOutOfRange},
		{"colors", func(c *Config) { c.Terminal.Colors = 100 }, "terminal.colors", ErrCodeInvalidEnum},
		{"escape", func(c *Config) { c.Input.EscapeTimeout.Duration = 2 * time.Second }, "input.escape_timeout", ErrCodeOutOfRange},
		{"scene timeout", func(c *Config) { c.Scene.Timeout.Duration = -time.Second }, "scene.timeout", ErrCodeOutOfRange},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level", ErrCodeInvalidEnum},
		{"palette index", func(c *Config) { c.Palette = map[string]string{"300": "#000000"} }, "palette.300", ErrCodeOutOfRange},
		{"palette colour", func(c *Config) { c.Palette = map[string]string{"4": "blue"} }, "palette.4", ErrCodePatternMismatch},
		{"key spec", func(c *Config) { c.Keys = map[string]string{"quit": "Ctrl+Nope"} }, "keys.quit", ErrCodePatternMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if !verr.Has(tt.path) {
				t.Errorf("%v does not mention %s", verr, tt.path)
			}
			if verr.Fields[0].Code != tt.code {
				t.Errorf("code = %v, want %v", verr.Fields[0].Code, tt.code)
			}
		})
	}
}

func TestValidateCollectsAll(t *testing.T) {
	cfg := Default()
	cfg.Terminal.Backend = "x"
	cfg.Log.Level = "y"
	var verr *ValidationError
	if !errors.As(cfg.Validate(), &verr) {
		t.Fatal("want *ValidationError")
	}
	if len(verr.Fields) != 2 {
		t.Errorf("fields = %d, want 2", len(verr.Fields))
	}
}

func TestOptions(t *testing.T) {
	cfg := Default()
	cfg.Terminal.DestroyPolicy = "reparent"
	cfg.Terminal.MaxCells = 100
	cfg.Terminal.Mouse = true
	cfg.Terminal.Margins = MarginConfig{Top: 1, Right: 2, Bottom: 3, Left: 4}
	cfg.Palette = map[string]string{"1": "#ff8000"}

	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if opts.DestroyPolicy != plane.DestroyReparent {
		t.Errorf("policy = %v", opts.DestroyPolicy)
	}
	if opts.MaxCells != 100 || !opts.Mouse {
		t.Errorf("opts = %+v", opts)
	}
	if opts.Margins.Top != 1 || opts.Margins.Left != 4 {
		t.Errorf("margins = %+v", opts.Margins)
	}
	if got := opts.Palette.Get(1); got != channel.RGB(0xff, 0x80, 0) {
		t.Errorf("palette[1] = %06x", got)
	}
	if got, want := opts.Palette.Get(2), channel.NewPalette().Get(2); got != want {
		t.Errorf("palette[2] = %06x, want untouched %06x", got, want)
	}

	cfg.Terminal.Backend = "nope"
	if _, err := cfg.Options(); err == nil {
		t.Error("Options on invalid config succeeded")
	}
}

func TestLogLevel(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "ERROR"
	if got := cfg.LogLevel().String(); got != "ERROR" {
		t.Errorf("LogLevel = %s", got)
	}
	cfg.Log.Level = "bogus"
	if got := cfg.LogLevel().String(); got != "INFO" {
		t.Errorf("LogLevel fallback = %s", got)
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1m30s")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if d.Duration != 90*time.Second {
		t.Errorf("duration = %v", d.Duration)
	}
	b, _ := d.MarshalText()
	if string(b) != "1m30s" {
		t.Errorf("MarshalText = %s", b)
	}
}
