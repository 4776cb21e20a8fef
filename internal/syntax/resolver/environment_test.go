package resolver

import (
	"testing"

	"go.followtheprocess.codes/polyglot/internal/syntax/types"
	"go.followtheprocess.codes/test"
)

func TestEnvironment(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		env := newEnvironment()

		got, err := env.get("anything")
		test.Err(t, err)
		test.Equal(t, err.Error(), "undefined: anything")
		test.Equal(t, got.typ, types.Invalid)
	})

	t.Run("full", func(t *testing.T) {
		env := newEnvironment()

		here := symbol{kind: symbolVar, typ: types.String}
		too := symbol{kind: symbolConst, typ: types.Int}

		test.Ok(t, env.define("something", here))
		test.Ok(t, env.define("other", too))

		// Try and define "something" again in the same scope
		err := env.define("something", symbol{kind: symbolVar, typ: types.Bool})
		test.Err(t, err)
		test.Equal(t, err.Error(), `variable "something" already declared in this scope`)

		something, err := env.get("something")
		test.Ok(t, err)
		test.Equal(t, something.typ, types.String)

		other, err := env.get("other")
		test.Ok(t, err)
		test.Equal(t, other.kind, symbolConst)
	})

	t.Run("parent", func(t *testing.T) {
		env := newEnvironment()

		// Define some globals
		test.Ok(t, env.define("something", symbol{kind: symbolVar, typ: types.String}))
		test.Ok(t, env.define("other", symbol{kind: symbolFunc, typ: types.Void}))

		// Create a child scope
		child := env.child()

		// Define some locals
		test.Ok(t, child.define("more", symbol{kind: symbolVar, typ: types.Char}))

		// Shadow a global with a local
		test.Ok(t, child.define("something", symbol{kind: symbolConst, typ: types.Double}))

		other, err := child.get("other")
		test.Ok(t, err)
		test.Equal(t, other.kind, symbolFunc) // Comes from globals

		more, err := child.get("more")
		test.Ok(t, err)
		test.Equal(t, more.typ, types.Char) // Comes from locals

		something, err := child.get("something")
		test.Ok(t, err)
		test.Equal(t, something.typ, types.Double) // Prefers local scope

		something, err = env.get("something")
		test.Ok(t, err)
		test.Equal(t, something.typ, types.String) // Using the global env again

		_, err = env.get("more")
		test.Err(t, err) // Locals are not visible from the parent
	})
}
