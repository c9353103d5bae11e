// Package keymap binds key specifications to named actions.
//
// Specifications come in two notations:
//
//	"q"        - Single character
//	"Ctrl+q"   - readable notation, as printed by input.Input.String
//	"<C-q>"    - angle bracket notation
//	"Alt+F4"   - named keys: Enter, Esc, Tab, Space, Up, PgDown, F0-F60, ...
//
// Control letters are stored lowercase, as the decoder reports them.
//
// # Usage
//
//	km := keymap.New("demo").
//	    Add("Ctrl+q", "quit").
//	    Add("F5", "refresh")
//	if err := km.Validate(); err != nil {
//	    // bad specification
//	}
//	if action, ok := km.Lookup(in); ok {
//	    // run action
//	}
package keymap
