package keymap

import (
	"errors"
	"testing"

	"github.com/dshills/stratum/internal/input"
)

func TestParse(t *testing.T) {
	tests := []struct {
		spec string
		want input.Input
	}{
		{"q", input.RuneInput('q')},
		{"Q", input.RuneInput('Q')},
		{"Ctrl+q", input.RuneInput('q').WithCtrl()},
		{"Ctrl+Q", input.RuneInput('q').WithCtrl()},
		{"<C-q>", input.RuneInput('q').WithCtrl()},
		{"<C-S-p>", input.RuneInput('p').WithCtrl().WithShift()},
		{"Alt+F4", input.KeyInput(input.F(4)).WithAlt()},
		{"Enter", input.KeyInput(input.KeyEnter)},
		{"<CR>", input.KeyInput(input.KeyEnter)},
		{"pgdn", input.KeyInput(input.KeyPgDown)},
		{"PgUp", input.KeyInput(input.KeyPgUp)},
		{"Esc", input.RuneInput(input.Escape)},
		{"Shift+Tab", input.RuneInput(input.Tab).WithShift()},
		{"Space", input.RuneInput(input.Space)},
		{"Ctrl++", input.RuneInput('+').WithCtrl()},
		{"+", input.RuneInput('+')},
		{"é", input.RuneInput('é')},
		{"F60", input.KeyInput(input.F(60))},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := Parse(tt.spec)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.spec, err)
			}
			if !got.Equal(tt.want) || got.Mods != tt.want.Mods {
				t.Errorf("Parse(%q) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		spec string
		want error
	}{
		{"", ErrEmptySpec},
		{"   ", ErrEmptySpec},
		{"Hyperdrive+x", ErrInvalidSpec},
		{"<X-a>", ErrInvalidSpec},
		{"Ctrl+", ErrInvalidSpec},
		{"F61", ErrInvalidSpec},
		{"banana", ErrInvalidSpec},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			if _, err := Parse(tt.spec); !errors.Is(err, tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.spec, err, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"<C-q>":    "Ctrl+q",
		"alt+f":    "Alt+f",
		"pagedown": "PgDown",
		"escape":   "Esc",
	}
	for spec, want := range tests {
		got, err := Normalize(spec)
		if err != nil {
			t.Errorf("Normalize(%q): %v", spec, err)
			continue
		}
		if got != want {
			t.Errorf("Normalize(%q) = %q, want %q", spec, got, want)
		}
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse did not panic")
		}
	}()
	MustParse("Bogus+x")
}

func TestKeymapLookup(t *testing.T) {
	km := New("test").
		Add("Ctrl+q", "quit").
		Add("F5", "refresh").
		Add("<C-r>", "refresh")
	if err := km.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if km.Len() != 3 {
		t.Errorf("Len = %d, want 3", km.Len())
	}

	tests := []struct {
		in   input.Input
		want string
		ok   bool
	}{
		{input.RuneInput('q').WithCtrl(), "quit", true},
		{input.RuneInput('q'), "", false},
		{input.RuneInput('q').WithCtrl().WithAlt(), "", false},
		{input.KeyInput(input.F(5)), "refresh", true},
		{input.RuneInput('r').WithCtrl(), "refresh", true},
	}
	for _, tt := range tests {
		got, ok := km.Lookup(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Lookup(%v) = %q/%v, want %q/%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}

	release := input.RuneInput('q').WithCtrl()
	release.Type = input.EventRelease
	if _, ok := km.Lookup(release); ok {
		t.Error("release matched")
	}
}

func TestKeymapRebindKey(t *testing.T) {
	km := New("test").Add("x", "cut").Add("x", "delete")
	if got, _ := km.Lookup(input.RuneInput('x')); got != "delete" {
		t.Errorf("Lookup = %q, want delete", got)
	}
	if km.Len() != 1 {
		t.Errorf("Len = %d, want 1", km.Len())
	}
}

func TestKeymapValidate(t *testing.T) {
	km := New("test").Add("Ctrl+q", "quit").Add("Nope+q", "other").Add("x", "")
	err := km.Validate()
	if !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("Validate = %v, want ErrInvalidSpec", err)
	}
	if km.Len() != 1 {
		t.Errorf("Len = %d, want 1", km.Len())
	}
}

func TestKeymapApply(t *testing.T) {
	km := New("test").Add("Ctrl+q", "quit").Add("q", "quit").Add("F5", "refresh")
	if err := km.Apply(map[string]string{"quit": "Ctrl+x"}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, ok := km.Lookup(input.RuneInput('q')); ok {
		t.Error("old key q still bound")
	}
	if got, _ := km.Lookup(input.RuneInput('x').WithCtrl()); got != "quit" {
		t.Errorf("Ctrl+x = %q, want quit", got)
	}
	in, ok := km.KeyFor("quit")
	if !ok || in.String() != "Ctrl+x" {
		t.Errorf("KeyFor(quit) = %v/%v", in, ok)
	}

	if err := km.Apply(map[string]string{"launch": "F1"}); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("Apply unknown = %v, want ErrUnknownAction", err)
	}
	if err := km.Apply(map[string]string{"refresh": "Bad+1"}); !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("Apply bad spec = %v, want ErrInvalidSpec", err)
	}
	if _, ok := km.Lookup(input.KeyInput(input.F(5))); !ok {
		t.Error("failed Apply dropped existing binding")
	}
}

func TestKeymapBindings(t *testing.T) {
	km := New("test").Add("b", "zoom").Add("a", "zoom").Add("c", "alpha")
	got := km.Bindings()
	want := []string{"alpha:c", "zoom:a", "zoom:b"}
	for i, b := range got {
		if s := b.Action + ":" + b.Keys; s != want[i] {
			t.Errorf("Bindings[%d] = %s, want %s", i, s, want[i])
		}
	}
	if got[0].Input().String() != "c" {
		t.Errorf("Input = %v", got[0].Input())
	}
}
