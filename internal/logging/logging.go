// Package logging provides the leveled, field-carrying logger used by the
// terminal context and the stratum binary. Rendering and input code never
// logs; only lifecycle events pass through here.
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level is a log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseLevel parses a level name, case-insensitively. Unknown names yield
// LevelInfo and false.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	}
	return LevelInfo, false
}

// TimeFormat is the timestamp layout of every line.
const TimeFormat = "2006-01-02T15:04:05.000"

// output is shared by a logger and everything derived from it.
type output struct {
	mu    sync.Mutex
	w     io.Writer
	level Level
	now   func() time.Time
}

// Logger writes one line per message:
//
//	2006-01-02T15:04:05.000 [INFO] prefix: message {key=value, ...}
//
// Loggers derived with WithField share the parent's writer and level.
type Logger struct {
	out      *output
	prefix   string
	fields   map[string]any
	disabled bool
}

// Config configures New.
type Config struct {
	Level  Level
	Output io.Writer // defaults to os.Stderr
	Prefix string

	// Now supplies timestamps; tests pin it.
	Now func() time.Time
}

// DefaultConfig logs info and above to stderr.
func DefaultConfig() Config {
	return Config{Level: LevelInfo, Output: os.Stderr, Prefix: "stratum"}
}

// New returns a logger for cfg.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Logger{
		out:    &output{w: cfg.Output, level: cfg.Level, now: cfg.Now},
		prefix: cfg.Prefix,
	}
}

// Null discards everything.
var Null = &Logger{out: &output{w: io.Discard}, disabled: true}

// WithField returns a logger that appends key=value to every line.
func (l *Logger) WithField(key string, value any) *Logger {
	return l.WithFields(map[string]any{key: value})
}

// WithFields returns a logger carrying the union of l's fields and fields.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{out: l.out, prefix: l.prefix, fields: merged, disabled: l.disabled}
}

// WithComponent tags lines with component=name.
func (l *Logger) WithComponent(name string) *Logger {
	return l.WithField("component", name)
}

// SetLevel sets the minimum level for l and every logger sharing its output.
func (l *Logger) SetLevel(level Level) {
	l.out.mu.Lock()
	l.out.level = level
	l.out.mu.Unlock()
}

// Level returns the minimum level.
func (l *Logger) Level() Level {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	return l.out.level
}

// SetOutput redirects l and every logger sharing its output.
func (l *Logger) SetOutput(w io.Writer) {
	l.out.mu.Lock()
	l.out.w = w
	l.out.mu.Unlock()
}

// Enabled reports whether a message at level would be written.
func (l *Logger) Enabled(level Level) bool {
	if l.disabled {
		return false
	}
	return level >= l.Level()
}

func (l *Logger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args) }
func (l *Logger) Info(msg string, args ...any)  { l.log(LevelInfo, msg, args) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(LevelWarn, msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.log(LevelError, msg, args) }

func (l *Logger) log(level Level, msg string, args []any) {
	if l.disabled {
		return
	}
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	if level < l.out.level {
		return
	}

	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	var sb strings.Builder
	sb.WriteString(l.out.now().Format(TimeFormat))
	sb.WriteString(" [")
	sb.WriteString(level.String())
	sb.WriteString("] ")
	if l.prefix != "" {
		sb.WriteString(l.prefix)
		sb.WriteString(": ")
	}
	sb.WriteString(msg)

	if len(l.fields) > 0 {
		keys := make([]string, 0, len(l.fields))
		for k := range l.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString(" {")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s=%v", k, l.fields[k])
		}
		sb.WriteByte('}')
	}
	sb.WriteByte('\n')
	_, _ = io.WriteString(l.out.w, sb.String())
}

// OpenFile opens path for appending log lines, creating it if needed.
func OpenFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
