// Package builtins provides the signatures of the polyglot builtin functions
// to the resolver, along with the module each one requires.
package builtins

import "go.followtheprocess.codes/polyglot/internal/syntax/types"

// Modules that may be imported with '>>'.
const (
	ModuleIO     = "io"
	ModuleMath   = "math"
	ModuleString = "string"
)

// Builtin is the signature of a polyglot builtin function.
type Builtin struct {
	// Name is the name the builtin is called by.
	Name string

	// Module is the module that must be imported before the builtin may be called.
	Module string

	// Params are the parameter types, empty for a variadic builtin.
	Params []types.Type

	// Result is the return type, [types.Void] if the builtin returns nothing.
	Result types.Type

	// Variadic marks a builtin taking one or more arguments of any value type.
	Variadic bool
}

// Library is a library of builtins.
type Library interface {
	// Get looks up a builtin from the library by name, returning it
	// and a boolean indicating its existence.
	Get(name string) (Builtin, bool)
}

// Builtins is a [Library] containing the polyglot builtins.
type Builtins struct {
	library map[string]Builtin
}

// NewLibrary returns the polyglot builtins library.
func NewLibrary() Builtins {
	library := map[string]Builtin{
		"print": {
			Name:     "print",
			Module:   ModuleIO,
			Result:   types.Void,
			Variadic: true,
		},
		"len": {
			Name:   "len",
			Module: ModuleString,
			Params: []types.Type{types.String},
			Result: types.Int,
		},
		"sqrt": {
			Name:   "sqrt",
			Module: ModuleMath,
			Params: []types.Type{types.Double},
			Result: types.Double,
		},
		"pow": {
			Name:   "pow",
			Module: ModuleMath,
			Params: []types.Type{types.Double, types.Double},
			Result: types.Double,
		},
	}

	return Builtins{
		library: library,
	}
}

// Get looks up a builtin by name, returning the builtin and a boolean
// indicating its existence.
func (b Builtins) Get(name string) (Builtin, bool) {
	fn, ok := b.library[name]
	if !ok {
		return Builtin{}, false
	}

	return fn, true
}

// IsModule reports whether name is a module that can be imported.
func IsModule(name string) bool {
	switch name {
	case ModuleIO, ModuleMath, ModuleString:
		return true
	default:
		return false
	}
}
