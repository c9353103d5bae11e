package keymap

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dshills/stratum/internal/input"
)

// ErrUnknownAction is returned when rebinding an action the keymap lacks.
var ErrUnknownAction = errors.New("unknown action")

// Binding represents a single key-to-action mapping.
type Binding struct {
	// Keys is the specification as given, e.g. "Ctrl+q".
	Keys string

	// Action names what the key does, e.g. "quit".
	Action string

	in input.Input
}

// Input returns the parsed key.
func (b Binding) Input() input.Input { return b.in }

type bindKey struct {
	id   uint32
	mods input.Modifier
}

func keyOf(in input.Input) bindKey { return bindKey{in.ID(), in.Mods} }

// Keymap holds key bindings. A key triggers at most one action; an action
// may have several keys.
type Keymap struct {
	// Name is the keymap identifier.
	Name string

	bindings []Binding
	err      error
}

// New creates an empty keymap.
func New(name string) *Keymap {
	return &Keymap{Name: name}
}

// Add binds keys to action, replacing any earlier binding of the same key.
// A bad specification is reported by Validate.
func (k *Keymap) Add(keys, action string) *Keymap {
	if err := k.Bind(keys, action); err != nil && k.err == nil {
		k.err = err
	}
	return k
}

// Bind binds keys to action, replacing any earlier binding of the same key.
func (k *Keymap) Bind(keys, action string) error {
	if action == "" {
		return fmt.Errorf("binding %q: empty action", keys)
	}
	in, err := Parse(keys)
	if err != nil {
		return fmt.Errorf("binding %q: %w", action, err)
	}
	k.unbind(keyOf(in))
	k.bindings = append(k.bindings, Binding{Keys: keys, Action: action, in: in})
	return nil
}

func (k *Keymap) unbind(bk bindKey) {
	out := k.bindings[:0]
	for _, b := range k.bindings {
		if keyOf(b.in) != bk {
			out = append(out, b)
		}
	}
	k.bindings = out
}

// Validate returns the first error recorded by Add.
func (k *Keymap) Validate() error { return k.err }

// Rebind replaces every key of action with keys.
func (k *Keymap) Rebind(action, keys string) error {
	in, err := Parse(keys)
	if err != nil {
		return fmt.Errorf("binding %q: %w", action, err)
	}
	found := false
	out := k.bindings[:0]
	for _, b := range k.bindings {
		if b.Action == action {
			found = true
			continue
		}
		out = append(out, b)
	}
	k.bindings = out
	if !found {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	k.unbind(keyOf(in))
	k.bindings = append(k.bindings, Binding{Keys: keys, Action: action, in: in})
	return nil
}

// Apply rebinds each action in overrides, which maps action to keys.
func (k *Keymap) Apply(overrides map[string]string) error {
	actions := make([]string, 0, len(overrides))
	for a := range overrides {
		actions = append(actions, a)
	}
	sort.Strings(actions)
	for _, a := range actions {
		if err := k.Rebind(a, overrides[a]); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the action bound to in. Releases never match.
func (k *Keymap) Lookup(in input.Input) (string, bool) {
	if in.Type == input.EventRelease {
		return "", false
	}
	bk := keyOf(in)
	for _, b := range k.bindings {
		if keyOf(b.in) == bk {
			return b.Action, true
		}
	}
	return "", false
}

// KeyFor returns the most recently bound key of action.
func (k *Keymap) KeyFor(action string) (input.Input, bool) {
	for i := len(k.bindings) - 1; i >= 0; i-- {
		if k.bindings[i].Action == action {
			return k.bindings[i].in, true
		}
	}
	return input.Input{}, false
}

// Bindings returns the bindings sorted by action, then keys.
func (k *Keymap) Bindings() []Binding {
	out := make([]Binding, len(k.bindings))
	copy(out, k.bindings)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Action != out[j].Action {
			return out[i].Action < out[j].Action
		}
		return out[i].Keys < out[j].Keys
	})
	return out
}

// Len returns the number of bindings.
func (k *Keymap) Len() int { return len(k.bindings) }
