package syntaxtest

import (
	"go.followtheprocess.codes/polyglot/internal/syntax/resolver/builtins"
	"go.followtheprocess.codes/polyglot/internal/syntax/types"
)

// Shout is the name of the extra builtin provided by the test library.
const Shout = "shout"

// TestBuiltins is a [builtins.Library] containing the real polyglot builtins plus
// an extra 'shout' builtin in the string module, so tests can tell which library
// a resolver was given.
type TestBuiltins struct {
	real    builtins.Library
	library map[string]builtins.Builtin
}

// NewTestLibrary returns a new [builtins.Library] wrapping the real one.
func NewTestLibrary() TestBuiltins {
	library := map[string]builtins.Builtin{
		Shout: {
			Name:   Shout,
			Module: builtins.ModuleString,
			Params: []types.Type{types.String},
			Result: types.String,
		},
	}

	return TestBuiltins{real: builtins.NewLibrary(), library: library}
}

// Get looks up a builtin by name, returning the builtin and a boolean
// indicating its existence.
func (t TestBuiltins) Get(name string) (builtins.Builtin, bool) {
	if fn, ok := t.library[name]; ok {
		return fn, true
	}

	return t.real.Get(name)
}
