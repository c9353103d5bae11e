// Package main is the entry point for stratum: it runs a Lua scene script,
// or the built-in widget demo, on the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/stratum/internal/backend"
	"github.com/dshills/stratum/internal/config"
	"github.com/dshills/stratum/internal/logging"
	"github.com/dshills/stratum/internal/script"
	"github.com/dshills/stratum/internal/term"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	ConfigPath string
	LogLevel   string
	LogFile    string
	Script     string
	Backend    string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	log, closeLog, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()

	tcOpts, err := cfg.Options()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	tcOpts.Logger = log

	display, err := newDisplay(cfg, tcOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create display: %v\n", err)
		return 1
	}

	tc, err := term.Init(display, tcOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize terminal: %v\n", err)
		return 1
	}
	// Ensure the terminal is restored on all exit paths
	defer func() { _ = tc.Stop() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.ConfigPath != "" {
		w, err := config.NewWatcher(opts.ConfigPath, func(c *config.Config, err error) {
			// a -log-level flag outranks the file
			if err == nil && opts.LogLevel == "" {
				log.SetLevel(c.LogLevel())
			}
		}, config.WithWatcherLogger(log))
		if err != nil {
			log.Warn("config watch disabled: %v", err)
		} else {
			defer func() { _ = w.Close() }()
		}
	}

	if cfg.Scene.Script != "" {
		err = runScript(ctx, tc, cfg, log)
	} else {
		err = runDemo(ctx, tc, cfg.Keys)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		_ = tc.Stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.toml, .yaml)")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.LogFile, "log-file", "", "Write logs to this file")
	flag.StringVar(&opts.Script, "script", "", "Lua scene script to run")
	flag.StringVar(&opts.Script, "s", "", "Lua scene script to run (shorthand)")
	flag.StringVar(&opts.Backend, "backend", "", "Display backend (tcell, ansi)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Stratum - layered terminal planes\n\n")
		fmt.Fprintf(os.Stderr, "Usage: stratum [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		fmt.Fprintf(os.Stderr, "  %sBACKEND, %sSCRIPT, %sLOG_LEVEL, ... override the config file\n",
			config.EnvPrefix, config.EnvPrefix, config.EnvPrefix)
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  stratum                         Run the widget demo\n")
		fmt.Fprintf(os.Stderr, "  stratum -s scene.lua            Run a scene script\n")
		fmt.Fprintf(os.Stderr, "  stratum -backend ansi -c s.toml Use the ANSI backend\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Stratum %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.LogLevel != "" {
		if _, ok := logging.ParseLevel(opts.LogLevel); !ok {
			fmt.Fprintf(os.Stderr, "Error: invalid log level %q\n", opts.LogLevel)
			os.Exit(2)
		}
	}
	return opts
}

// loadConfig applies the file, then the environment, then the flags.
func loadConfig(opts options) (*config.Config, error) {
	var cfg *config.Config
	if opts.ConfigPath != "" {
		c, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = c
	} else {
		cfg = config.Default()
		if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
			return nil, err
		}
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.LogFile != "" {
		cfg.Log.File = opts.LogFile
	}
	if opts.Script != "" {
		cfg.Scene.Script = opts.Script
	}
	if opts.Backend != "" {
		cfg.Terminal.Backend = opts.Backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger logs to cfg.Log.File. Without a file nothing is logged, since
// the screen belongs to the display.
func newLogger(cfg *config.Config) (*logging.Logger, func(), error) {
	if cfg.Log.File == "" {
		return logging.Null, func() {}, nil
	}
	f, err := logging.OpenFile(cfg.Log.File)
	if err != nil {
		return nil, nil, err
	}
	log := logging.New(logging.Config{Level: cfg.LogLevel(), Output: f, Prefix: "stratum"})
	return log, func() { _ = f.Close() }, nil
}

func newDisplay(cfg *config.Config, opts term.Options) (backend.Display, error) {
	switch cfg.Terminal.Backend {
	case config.BackendANSI:
		sopts := []backend.StreamOption{backend.WithEscapeTimeout(cfg.Input.EscapeTimeout.Duration)}
		if n := cfg.Terminal.Colors; n != 0 {
			caps := backend.DetectCapabilities(os.Getenv)
			caps.Colors = n
			caps.TrueColor = n == 1<<24
			caps.ChangeColor = caps.ChangeColor && n >= 256
			sopts = append(sopts, backend.WithCapabilities(caps))
		}
		return backend.NewStream(os.Stdout, os.Stdin, opts.Palette, sopts...), nil
	default:
		return backend.NewTerminal()
	}
}

func runScript(ctx context.Context, tc *term.Context, cfg *config.Config, log *logging.Logger) error {
	eng, err := script.NewEngine(tc, script.WithLogger(log), script.WithTimeout(cfg.Scene.Timeout.Duration))
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	if err := eng.Run(ctx, cfg.Scene.Script); err != nil {
		return err
	}
	return eng.Loop(ctx)
}
