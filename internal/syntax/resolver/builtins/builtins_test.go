package builtins_test

import (
	"slices"
	"testing"

	"go.followtheprocess.codes/polyglot/internal/syntax/resolver/builtins"
	"go.followtheprocess.codes/polyglot/internal/syntax/types"
	"go.followtheprocess.codes/test"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name   string // Name of the test case
		fn     string // Name of the function to lookup
		module string // Module the builtin requires
		ok     bool   // Expected ok return value from Get
	}{
		{
			name: "empty",
			fn:   "",
			ok:   false,
		},
		{
			name: "missing",
			fn:   "dinglefuncbang",
			ok:   false,
		},
		{
			name:   "print",
			fn:     "print",
			module: builtins.ModuleIO,
			ok:     true,
		},
		{
			name:   "len",
			fn:     "len",
			module: builtins.ModuleString,
			ok:     true,
		},
		{
			name:   "sqrt",
			fn:     "sqrt",
			module: builtins.ModuleMath,
			ok:     true,
		},
		{
			name:   "pow",
			fn:     "pow",
			module: builtins.ModuleMath,
			ok:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := builtins.NewLibrary()

			fn, ok := lib.Get(tt.fn)
			test.Equal(t, ok, tt.ok, test.Context("Get(%s): expected %v, got %v", tt.fn, tt.ok, ok))
			test.Equal(t, fn.Module, tt.module)

			if ok {
				test.Equal(t, fn.Name, tt.fn)
				test.True(t, builtins.IsModule(fn.Module), test.Context("%s requires unknown module %s", fn.Name, fn.Module))
			}
		})
	}
}

func TestSignatures(t *testing.T) {
	lib := builtins.NewLibrary()

	printFn, ok := lib.Get("print")
	test.True(t, ok)
	test.True(t, printFn.Variadic)
	test.Equal(t, printFn.Result, types.Void)

	pow, ok := lib.Get("pow")
	test.True(t, ok)
	test.Equal(t, len(pow.Params), 2)
	test.Equal(t, pow.Result, types.Double)

	length, ok := lib.Get("len")
	test.True(t, ok)
	test.True(t, slices.Equal(length.Params, []types.Type{types.String}))
}

func TestIsModule(t *testing.T) {
	test.True(t, builtins.IsModule("io"))
	test.True(t, builtins.IsModule("math"))
	test.True(t, builtins.IsModule("string"))
	test.False(t, builtins.IsModule("net"))
	test.False(t, builtins.IsModule(""))
}
