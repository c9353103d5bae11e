package config

import (
	"fmt"
	"strconv"
	"time"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "STRATUM_"

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type envVar struct {
	name  string
	apply func(c *Config, v string) error
}

var envVars = []envVar{
	{"BACKEND", func(c *Config, v string) error { c.Terminal.Backend = v; return nil }},
	{"MOUSE", func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		c.Terminal.Mouse = b
		return err
	}},
	{"COLORS", func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		c.Terminal.Colors = n
		return err
	}},
	{"ESCAPE_TIMEOUT", func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		c.Input.EscapeTimeout.Duration = d
		return err
	}},
	{"SCRIPT", func(c *Config, v string) error { c.Scene.Script = v; return nil }},
	{"LOG_LEVEL", func(c *Config, v string) error { c.Log.Level = v; return nil }},
	{"LOG_FILE", func(c *Config, v string) error { c.Log.File = v; return nil }},
}

// ApplyEnv overrides settings from STRATUM_* variables. Empty values are
// treated as set.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	for _, ev := range envVars {
		v, ok := lookup(EnvPrefix + ev.name)
		if !ok {
			continue
		}
		if err := ev.apply(c, v); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, ev.name, err)
		}
	}
	return nil
}
