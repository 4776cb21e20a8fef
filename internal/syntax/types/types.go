// Package types defines the primitive value types of the polyglot language and the
// rules for converting between them.
package types

import (
	"fmt"

	"go.followtheprocess.codes/polyglot/internal/syntax/token"
)

// Type is a polyglot value type.
type Type int

// Type definitions, ordered such that a larger numeric type sorts after a smaller one.
const (
	Invalid Type = iota // Invalid
	Void                // Void
	Int                 // Int
	Uint                // Uint
	Long                // Long
	Ulong               // Ulong
	Float               // Float
	Double              // Double
	Bool                // Bool
	String              // String
	Char                // Char
)

// typeInfo holds the source symbol and C++ spelling of each [Type].
var typeInfo = [...]struct {
	symbol string // How the type is written in polyglot source
	cpp    string // The equivalent C++17 type
}{
	Invalid: {"invalid", ""},
	Void:    {"void", "void"},
	Int:     {"i", "int32_t"},
	Uint:    {"I", "uint32_t"},
	Long:    {"ii", "int64_t"},
	Ulong:   {"II", "uint64_t"},
	Float:   {"f", "float"},
	Double:  {"F", "double"},
	Bool:    {"b", "bool"},
	String:  {"s", "std::string"},
	Char:    {"c", "char"},
}

// String returns the polyglot symbol for the type, e.g. "ii".
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeInfo) {
		return fmt.Sprintf("Type(%d)", int(t))
	}

	return typeInfo[t].symbol
}

// CPP returns the C++ spelling of the type, e.g. "int64_t".
func (t Type) CPP() string {
	if t < 0 || int(t) >= len(typeInfo) {
		return ""
	}

	return typeInfo[t].cpp
}

// IsInteger reports whether t is one of the integer types.
func (t Type) IsInteger() bool {
	return t >= Int && t <= Ulong
}

// IsFloat reports whether t is one of the floating point types.
func (t Type) IsFloat() bool {
	return t == Float || t == Double
}

// IsNumeric reports whether t is an integer or floating point type.
func (t Type) IsNumeric() bool {
	return t.IsInteger() || t.IsFloat()
}

// IsValue reports whether t describes a usable value, i.e. it is neither
// [Void] nor [Invalid].
func (t Type) IsValue() bool {
	return t > Void && int(t) < len(typeInfo)
}

// FromToken returns the [Type] named by a type symbol token kind.
func FromToken(kind token.Kind) (Type, bool) {
	switch kind {
	case token.TypeInt:
		return Int, true
	case token.TypeLong:
		return Long, true
	case token.TypeUint:
		return Uint, true
	case token.TypeUlong:
		return Ulong, true
	case token.TypeFloat:
		return Float, true
	case token.TypeDouble:
		return Double, true
	case token.TypeBool:
		return Bool, true
	case token.TypeString:
		return String, true
	case token.TypeChar:
		return Char, true
	default:
		return Invalid, false
	}
}

// AssignableTo reports whether a value of type src may be stored in a location
// of type dst.
//
// Identical types are always assignable. Beyond that the integer types are
// mutually assignable, integers widen to either floating point type and the two
// floating point types are interchangeable.
func AssignableTo(src, dst Type) bool {
	if !src.IsValue() || !dst.IsValue() {
		return false
	}

	switch {
	case src == dst:
		return true
	case src.IsInteger() && dst.IsInteger():
		return true
	case src.IsInteger() && dst.IsFloat():
		return true
	case src.IsFloat() && dst.IsFloat():
		return true
	default:
		return false
	}
}

// Wider returns the wider of two numeric types, the result type of an arithmetic
// operation between them.
func Wider(a, b Type) Type {
	if a > b {
		return a
	}

	return b
}
