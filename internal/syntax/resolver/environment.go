package resolver

import (
	"fmt"

	"go.followtheprocess.codes/polyglot/internal/syntax/types"
)

// symbolKind distinguishes the things a name can refer to.
type symbolKind int

const (
	symbolVar   symbolKind = iota // A mutable variable or parameter
	symbolConst                   // A constant
	symbolFunc                    // A user defined function
)

// String returns the way a symbol kind is described in a diagnostic.
func (s symbolKind) String() string {
	switch s {
	case symbolVar:
		return "variable"
	case symbolConst:
		return "constant"
	case symbolFunc:
		return "function"
	default:
		return fmt.Sprintf("symbolKind(%d)", int(s))
	}
}

// symbol is a named entity in scope.
type symbol struct {
	params []types.Type // Parameter types, functions only
	typ    types.Type   // Value type, or result type for a function
	kind   symbolKind   // What the name refers to
}

// environment is a scoped environment for the resolver.
type environment struct {
	values map[string]symbol
	parent *environment
}

// newEnvironment creates a new, empty [environment] with no parent.
func newEnvironment() *environment {
	return &environment{
		values: make(map[string]symbol),
		parent: nil,
	}
}

// define defines a new symbol in the innermost scope.
func (e *environment) define(key string, value symbol) error {
	if existing, exists := e.values[key]; exists {
		return fmt.Errorf("%s %q already declared in this scope", existing.kind, key)
	}

	e.values[key] = value

	return nil
}

// get walks up the scope to find a symbol by name, if it reaches the outermost
// scope without finding it, it returns an error.
func (e *environment) get(key string) (symbol, error) {
	if value, ok := e.values[key]; ok {
		return value, nil
	}

	if e.parent != nil {
		return e.parent.get(key)
	}

	return symbol{}, fmt.Errorf("undefined: %s", key)
}

// child creates a new empty [environment] using the calling one as a parent.
func (e *environment) child() *environment {
	return &environment{
		values: make(map[string]symbol),
		parent: e,
	}
}
