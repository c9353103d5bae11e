package config

import (
	"strings"
	"testing"
	"time"
)

func mapLookup(m map[string]string) LookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(mapLookup(map[string]string{
		"STRATUM_BACKEND":        "ansi",
		"STRATUM_MOUSE":          "true",
		"STRATUM_COLORS":         "16",
		"STRATUM_ESCAPE_TIMEOUT": "5ms",
		"STRATUM_SCRIPT":         "x.lua",
		"STRATUM_LOG_LEVEL":      "debug",
		"STRATUM_LOG_FILE":       "out.log",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Terminal.Backend != "ansi" || !cfg.Terminal.Mouse || cfg.Terminal.Colors != 16 {
		t.Errorf("terminal = %+v", cfg.Terminal)
	}
	if cfg.Input.EscapeTimeout.Duration != 5*time.Millisecond {
		t.Errorf("escape = %v", cfg.Input.EscapeTimeout)
	}
	if cfg.Scene.Script != "x.lua" || cfg.Log.Level != "debug" || cfg.Log.File != "out.log" {
		t.Errorf("scene/log = %+v %+v", cfg.Scene, cfg.Log)
	}
}

func TestApplyEnvUnset(t *testing.T) {
	cfg := Default()
	if err := cfg.ApplyEnv(mapLookup(nil)); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Terminal.Backend != BackendTCell {
		t.Errorf("backend = %q", cfg.Terminal.Backend)
	}
}

func TestApplyEnvErrors(t *testing.T) {
	for _, name := range []string{"MOUSE", "COLORS", "ESCAPE_TIMEOUT"} {
		t.Run(name, func(t *testing.T) {
			err := Default().ApplyEnv(mapLookup(map[string]string{EnvPrefix + name: "??"}))
			if err == nil {
				t.Fatal("ApplyEnv succeeded")
			}
			if !strings.Contains(err.Error(), EnvPrefix+name) {
				t.Errorf("err = %v, want variable name", err)
			}
		})
	}
}

func TestLoadAppliesEnv(t *testing.T) {
	t.Setenv("STRATUM_LOG_LEVEL", "error")
	cfg, err := Load(writeFile(t, "s.toml", "[log]\nlevel = \"debug\"\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("level = %q, want env override", cfg.Log.Level)
	}
}
