package keymap

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/stratum/internal/input"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

var keysByName = func() map[string]input.Key {
	m := make(map[string]input.Key)
	for k := input.KeyResize; k <= input.KeyEOF; k++ {
		if s := k.String(); !strings.HasPrefix(s, "Key(") {
			m[strings.ToLower(s)] = k
		}
	}
	for alias, k := range map[string]input.Key{
		"cr":       input.KeyEnter,
		"return":   input.KeyEnter,
		"bs":       input.KeyBackspace,
		"del":      input.KeyDelete,
		"ins":      input.KeyInsert,
		"pageup":   input.KeyPgUp,
		"pagedown": input.KeyPgDown,
		"pgdn":     input.KeyPgDown,
	} {
		m[alias] = k
	}
	return m
}()

var runesByName = map[string]rune{
	"esc":    input.Escape,
	"escape": input.Escape,
	"tab":    input.Tab,
	"space":  input.Space,
	"lt":     '<',
	"gt":     '>',
	"bar":    '|',
	"bslash": '\\',
	"plus":   '+',
	"minus":  '-',
}

var modsByName = map[string]input.Modifier{
	"ctrl":    input.ModCtrl,
	"control": input.ModCtrl,
	"c":       input.ModCtrl,
	"alt":     input.ModAlt,
	"a":       input.ModAlt,
	"shift":   input.ModShift,
	"s":       input.ModShift,
	"super":   input.ModSuper,
	"d":       input.ModSuper,
	"hyper":   input.ModHyper,
	"meta":    input.ModMeta,
	"m":       input.ModMeta,
}

// Parse parses a key specification into a press event.
func Parse(spec string) (input.Input, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return input.Input{}, ErrEmptySpec
	}

	var parts []string
	switch {
	case len(spec) > 2 && spec[0] == '<' && spec[len(spec)-1] == '>':
		parts = splitSpec(spec[1:len(spec)-1], '-')
	case spec != "+" && strings.Contains(spec, "+"):
		parts = splitSpec(spec, '+')
	default:
		parts = []string{spec}
	}

	var mods input.Modifier
	for _, p := range parts[:len(parts)-1] {
		mod, ok := modsByName[strings.ToLower(strings.TrimSpace(p))]
		if !ok {
			return input.Input{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
		mods |= mod
	}
	in, err := parseKey(strings.TrimSpace(parts[len(parts)-1]), mods)
	if err != nil {
		return input.Input{}, fmt.Errorf("%w (%q)", err, spec)
	}
	in.Mods = mods
	return in, nil
}

// splitSpec splits on sep, keeping a trailing separator as the key itself:
// "Ctrl++" is Ctrl and "+".
func splitSpec(s string, sep byte) []string {
	if len(s) > 1 && s[len(s)-1] == sep && s[len(s)-2] == sep {
		return append(strings.Split(s[:len(s)-2], string(sep)), string(sep))
	}
	return strings.Split(s, string(sep))
}

func parseKey(part string, mods input.Modifier) (input.Input, error) {
	if part == "" {
		return input.Input{}, ErrInvalidSpec
	}
	if r, size := utf8.DecodeRuneInString(part); size == len(part) {
		if mods.Has(input.ModCtrl) {
			r = unicode.ToLower(r)
		}
		return input.RuneInput(r), nil
	}
	lower := strings.ToLower(part)
	if r, ok := runesByName[lower]; ok {
		return input.RuneInput(r), nil
	}
	if k, ok := keysByName[lower]; ok {
		return input.KeyInput(k), nil
	}
	return input.Input{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, part)
}

// MustParse parses a key specification and panics on error.
// Use only for known-valid specs in initialization code.
func MustParse(spec string) input.Input {
	in, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return in
}

// Normalize parses spec and formats it in readable notation.
func Normalize(spec string) (string, error) {
	in, err := Parse(spec)
	if err != nil {
		return "", err
	}
	return in.String(), nil
}
