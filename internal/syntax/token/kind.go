package token

import (
	"fmt"
	"strings"
)

// Kind is the kind of a token.
type Kind int

// Token definitions.
const (
	EOF          Kind = iota // EOF
	Error                    // Error
	Newline                  // Newline
	Ident                    // Ident
	Int                      // Int
	Float                    // Float
	String                   // String
	Char                     // Char
	True                     // True
	False                    // False
	TypeInt                  // TypeInt
	TypeLong                 // TypeLong
	TypeUint                 // TypeUint
	TypeUlong                // TypeUlong
	TypeFloat                // TypeFloat
	TypeDouble               // TypeDouble
	TypeBool                 // TypeBool
	TypeString               // TypeString
	TypeChar                 // TypeChar
	Import                   // Import
	Break                    // Break
	Return                   // Return
	Continue                 // Continue
	Question                 // Question
	Star                     // Star
	At                       // At
	Amp                      // Amp
	Percent                  // Percent
	Hash                     // Hash
	Caret                    // Caret
	Dollar                   // Dollar
	Colon                    // Colon
	Define                   // Define
	Eq                       // Eq
	EqEq                     // EqEq
	Bang                     // Bang
	NotEq                    // NotEq
	Less                     // Less
	Greater                  // Greater
	LessEq                   // LessEq
	GreaterEq                // GreaterEq
	Plus                     // Plus
	PlusEq                   // PlusEq
	Minus                    // Minus
	MinusEq                  // MinusEq
	Slash                    // Slash
	AndAnd                   // AndAnd
	OrOr                     // OrOr
	LeftParen                // LeftParen
	RightParen               // RightParen
	LeftBrace                // LeftBrace
	RightBrace               // RightBrace
	LeftBracket              // LeftBracket
	RightBracket             // RightBracket
	Comma                    // Comma
	Semicolon                // Semicolon
	Dot                      // Dot
)

// kindInfo holds the name and user facing description of each [Kind].
var kindInfo = [...]struct {
	name string // Go style name, used in debug output and golden files
	desc string // How the kind is described in a syntax error
}{
	EOF:          {"EOF", "end of file"},
	Error:        {"Error", "error"},
	Newline:      {"Newline", "newline"},
	Ident:        {"Ident", "identifier"},
	Int:          {"Int", "integer literal"},
	Float:        {"Float", "float literal"},
	String:       {"String", "string literal"},
	Char:         {"Char", "character literal"},
	True:         {"True", "'true'"},
	False:        {"False", "'false'"},
	TypeInt:      {"TypeInt", "type 'i'"},
	TypeLong:     {"TypeLong", "type 'ii'"},
	TypeUint:     {"TypeUint", "type 'I'"},
	TypeUlong:    {"TypeUlong", "type 'II'"},
	TypeFloat:    {"TypeFloat", "type 'f'"},
	TypeDouble:   {"TypeDouble", "type 'F'"},
	TypeBool:     {"TypeBool", "type 'b'"},
	TypeString:   {"TypeString", "type 's'"},
	TypeChar:     {"TypeChar", "type 'c'"},
	Import:       {"Import", "'>>'"},
	Break:        {"Break", "'<<'"},
	Return:       {"Return", "'<-'"},
	Continue:     {"Continue", "'->'"},
	Question:     {"Question", "'?'"},
	Star:         {"Star", "'*'"},
	At:           {"At", "'@'"},
	Amp:          {"Amp", "'&'"},
	Percent:      {"Percent", "'%'"},
	Hash:         {"Hash", "'#'"},
	Caret:        {"Caret", "'^'"},
	Dollar:       {"Dollar", "'$'"},
	Colon:        {"Colon", "':'"},
	Define:       {"Define", "':='"},
	Eq:           {"Eq", "'='"},
	EqEq:         {"EqEq", "'=='"},
	Bang:         {"Bang", "'!'"},
	NotEq:        {"NotEq", "'!='"},
	Less:         {"Less", "'<'"},
	Greater:      {"Greater", "'>'"},
	LessEq:       {"LessEq", "'<='"},
	GreaterEq:    {"GreaterEq", "'>='"},
	Plus:         {"Plus", "'+'"},
	PlusEq:       {"PlusEq", "'+='"},
	Minus:        {"Minus", "'-'"},
	MinusEq:      {"MinusEq", "'-='"},
	Slash:        {"Slash", "'/'"},
	AndAnd:       {"AndAnd", "'&&'"},
	OrOr:         {"OrOr", "'||'"},
	LeftParen:    {"LeftParen", "'('"},
	RightParen:   {"RightParen", "')'"},
	LeftBrace:    {"LeftBrace", "'{'"},
	RightBrace:   {"RightBrace", "'}'"},
	LeftBracket:  {"LeftBracket", "'['"},
	RightBracket: {"RightBracket", "']'"},
	Comma:        {"Comma", "','"},
	Semicolon:    {"Semicolon", "';'"},
	Dot:          {"Dot", "'.'"},
}

// String implements [fmt.Stringer] for [Kind].
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindInfo) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindInfo[k].name
}

// Describe returns the way a kind is referred to in a syntax error, e.g. "'}'"
// or "identifier".
func (k Kind) Describe() string {
	if k < 0 || int(k) >= len(kindInfo) {
		return k.String()
	}

	return kindInfo[k].desc
}

// IsType reports whether the kind is one of the primitive type symbols.
func (k Kind) IsType() bool {
	return k >= TypeInt && k <= TypeChar
}

// MarshalText implements [encoding.TextMarshaler] for [Kind].
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// symbols maps the source spelling of every operator and punctuation kind to
// that kind, e.g. ">=" to [GreaterEq].
var symbols = func() map[string]Kind {
	m := make(map[string]Kind, Dot-Import+1)
	for kind := Import; kind <= Dot; kind++ {
		m[kind.Spelling()] = kind
	}

	return m
}()

// Spelling returns how an operator or punctuation kind is written in source, e.g. "<-"
// for [Return]. Any other kind has no fixed spelling and returns "".
func (k Kind) Spelling() string {
	if k < Import || k > Dot {
		return ""
	}

	return strings.Trim(kindInfo[k].desc, "'")
}

// Symbol reports whether text is the spelling of an operator or punctuation symbol,
// returning its [Kind] and true if it is. Otherwise [Error] and false are returned.
func Symbol(text string) (kind Kind, ok bool) {
	kind, ok = symbols[text]
	if !ok {
		return Error, false
	}

	return kind, true
}
