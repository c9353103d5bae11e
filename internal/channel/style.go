package channel

import (
	"fmt"
	"strings"
)

// Style is a bitmask of text attributes.
type Style uint16

// Style bits.
const (
	StyleNone      Style = 0
	StyleStruck    Style = 0x0001
	StyleBold      Style = 0x0002
	StyleUndercurl Style = 0x0004
	StyleUnderline Style = 0x0008
	StyleItalic    Style = 0x0010

	// StyleMask covers every defined bit.
	StyleMask Style = StyleStruck | StyleBold | StyleUndercurl | StyleUnderline | StyleItalic
)

var styleNames = []struct {
	bit  Style
	name string
}{
	{StyleBold, "bold"},
	{StyleItalic, "italic"},
	{StyleUnderline, "underline"},
	{StyleUndercurl, "undercurl"},
	{StyleStruck, "struck"},
}

// Has reports whether every bit of s2 is set.
func (s Style) Has(s2 Style) bool {
	return s&s2 == s2
}

// On returns the union of both styles.
func (s Style) On(s2 Style) Style {
	return (s | s2) & StyleMask
}

// Off returns s with the bits of s2 cleared.
func (s Style) Off(s2 Style) Style {
	return s &^ s2
}

// Set returns s2, discarding s.
func (s Style) Set(s2 Style) Style {
	return s2 & StyleMask
}

// String returns the style as "bold+italic", or "none".
func (s Style) String() string {
	if s&StyleMask == 0 {
		return "none"
	}
	var parts []string
	for _, sn := range styleNames {
		if s&sn.bit != 0 {
			parts = append(parts, sn.name)
		}
	}
	return strings.Join(parts, "+")
}

// ParseStyles parses a style list such as "bold+italic" or "bold, underline".
// Names are case-insensitive; "none" and the empty string yield StyleNone.
func ParseStyles(s string) (Style, error) {
	var out Style
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '+' || r == ',' || r == ' ' || r == '|'
	})
	for _, f := range fields {
		f = strings.ToLower(f)
		if f == "none" {
			continue
		}
		found := false
		for _, sn := range styleNames {
			if sn.name == f {
				out |= sn.bit
				found = true
				break
			}
		}
		if !found {
			return StyleNone, fmt.Errorf("unknown style %q", f)
		}
	}
	return out, nil
}
