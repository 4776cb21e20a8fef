// Package token provides the set of lexical tokens for a polyglot source file.
package token

import (
	"fmt"
	"slices"
)

// Token is a lexical token in a polyglot source file.
type Token struct {
	Value    string // Source text of the token, or the decoded contents for string and char literals
	Kind     Kind   // The kind of token this is
	Start    int    // Byte offset from the start of the file to the start of this token
	End      int    // Byte offset from the start of the file to the end of this token
	Line     int    // Line on which the token starts (1 indexed)
	StartCol int    // Column of the first rune of the token (1 indexed, in runes)
	EndCol   int    // Column of the last rune of the token, equal to StartCol for single rune and empty tokens
}

// String implement [fmt.Stringer] for a [Token].
func (t Token) String() string {
	return fmt.Sprintf("<Token::%s start=%d, end=%d>", t.Kind, t.Start, t.End)
}

// Is reports whether the token is any of the provided [Kind]s.
func (t Token) Is(kinds ...Kind) bool {
	return slices.Contains(kinds, t.Kind)
}

// Keyword reports whether a string refers to a keyword, returning it's [Kind]
// and true if it is. Otherwise [Ident] and false are returned.
//
// The primitive type symbols are keywords, so 'i' can never be used as a name.
func Keyword(text string) (kind Kind, ok bool) {
	switch text {
	case "true":
		return True, true
	case "false":
		return False, true
	case "i":
		return TypeInt, true
	case "ii":
		return TypeLong, true
	case "I":
		return TypeUint, true
	case "II":
		return TypeUlong, true
	case "f":
		return TypeFloat, true
	case "F":
		return TypeDouble, true
	case "b":
		return TypeBool, true
	case "s":
		return TypeString, true
	case "c":
		return TypeChar, true
	default:
		return Ident, false
	}
}
