// Package diag defines the closed set of diagnostics the polyglot compiler can report.
//
// Every failure a compilation can produce is exactly one of five kinds: [LexError],
// [SyntaxError], [SemanticError], [CodeGenError] or [IOError]. The [Diagnostic] interface
// is sealed so no other package can add a sixth, and [Render] switches over all five
// to produce the single line shown to the user.
package diag

import (
	"encoding/json"
	"fmt"

	"go.followtheprocess.codes/polyglot/internal/syntax"
)

// Kind identifies which of the five diagnostic kinds a [Diagnostic] is.
type Kind int

const (
	KindLex      Kind = iota // lexical error
	KindSyntax               // syntax error
	KindSemantic             // semantic error
	KindCodeGen              // code-generation error
	KindIO                   // I/O error
)

// String returns the human readable prefix for the kind, used when rendering.
func (k Kind) String() string {
	switch k {
	case KindLex:
		return "lexical error"
	case KindSyntax:
		return "syntax error"
	case KindSemantic:
		return "semantic error"
	case KindCodeGen:
		return "code-generation error"
	case KindIO:
		return "I/O error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText implements [encoding.TextMarshaler] for [Kind], using a short
// machine friendly name.
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case KindLex:
		return []byte("lexical"), nil
	case KindSyntax:
		return []byte("syntax"), nil
	case KindSemantic:
		return []byte("semantic"), nil
	case KindCodeGen:
		return []byte("codegen"), nil
	case KindIO:
		return []byte("io"), nil
	default:
		return nil, fmt.Errorf("unknown diagnostic kind %d", int(k))
	}
}

// Diagnostic is a single compilation failure.
//
// A Diagnostic is also an error, so it may be returned and wrapped like any other,
// but it is only ever one of the five concrete types declared in this package.
type Diagnostic interface {
	error

	// Kind reports which kind of diagnostic this is.
	Kind() Kind

	// Message returns the descriptive message, without any prefix or location.
	Message() string

	// diagnostic seals the interface.
	diagnostic()
}

// LexError is reported when the source text contains characters or literals
// that do not form valid tokens.
type LexError struct {
	Msg string          // What went wrong
	Pos syntax.Position // Where in the source it went wrong
}

// SyntaxError is reported when the token stream does not match the grammar.
type SyntaxError struct {
	Msg string          // What went wrong
	Pos syntax.Position // The offending token
}

// SemanticError is reported when a well formed program violates the language's
// scoping or typing rules.
type SemanticError struct {
	Msg string          // What went wrong
	Pos syntax.Position // The offending construct
}

// CodeGenError is reported when a validated program cannot be turned into output.
type CodeGenError struct {
	Msg string // What went wrong
}

// IOError is reported when the environment fails, typically reading the source file.
//
// Construct one with [FromIO] so the underlying error is kept.
type IOError struct {
	cause error  // The original error, exposed via Unwrap
	Msg   string // The description of the original error
}

// FromIO converts any error raised by the environment into an [IOError].
//
// The conversion never fails and never loses information, the message is exactly
// err.Error() and err itself is kept so that [errors.Is] and [errors.As] still see it.
func FromIO(err error) IOError {
	if err == nil {
		return IOError{Msg: "unknown I/O failure"}
	}

	return IOError{Msg: err.Error(), cause: err}
}

// Kind returns [KindLex].
func (e LexError) Kind() Kind { return KindLex }

// Kind returns [KindSyntax].
func (e SyntaxError) Kind() Kind { return KindSyntax }

// Kind returns [KindSemantic].
func (e SemanticError) Kind() Kind { return KindSemantic }

// Kind returns [KindCodeGen].
func (e CodeGenError) Kind() Kind { return KindCodeGen }

// Kind returns [KindIO].
func (e IOError) Kind() Kind { return KindIO }

// Message returns the error message.
func (e LexError) Message() string { return e.Msg }

// Message returns the error message.
func (e SyntaxError) Message() string { return e.Msg }

// Message returns the error message.
func (e SemanticError) Message() string { return e.Msg }

// Message returns the error message.
func (e CodeGenError) Message() string { return e.Msg }

// Message returns the error message.
func (e IOError) Message() string { return e.Msg }

// Error implements error by rendering the diagnostic.
func (e LexError) Error() string { return Render(e) }

// Error implements error by rendering the diagnostic.
func (e SyntaxError) Error() string { return Render(e) }

// Error implements error by rendering the diagnostic.
func (e SemanticError) Error() string { return Render(e) }

// Error implements error by rendering the diagnostic.
func (e CodeGenError) Error() string { return Render(e) }

// Error implements error by rendering the diagnostic.
func (e IOError) Error() string { return Render(e) }

// Unwrap returns the underlying error the [IOError] was built from.
func (e IOError) Unwrap() error { return e.cause }

func (LexError) diagnostic()      {}
func (SyntaxError) diagnostic()   {}
func (SemanticError) diagnostic() {}
func (CodeGenError) diagnostic()  {}
func (IOError) diagnostic()       {}

// Located returns the source position of a diagnostic, the boolean is false for
// the kinds that carry no position ([CodeGenError] and [IOError]).
func Located(d Diagnostic) (syntax.Position, bool) {
	switch d := d.(type) {
	case LexError:
		return d.Pos, true
	case SyntaxError:
		return d.Pos, true
	case SemanticError:
		return d.Pos, true
	default:
		return syntax.Position{}, false
	}
}

// Render produces the single human readable line for a diagnostic.
//
// Located kinds render as "<prefix> (line L, column C): <message>", the others
// as "<prefix>: <message>".
func Render(d Diagnostic) string {
	if d == nil {
		return ""
	}

	switch d := d.(type) {
	case LexError, SyntaxError, SemanticError:
		pos, _ := Located(d)
		return fmt.Sprintf("%s (line %d, column %d): %s", d.Kind(), pos.Line, pos.StartCol, d.Message())
	case CodeGenError, IOError:
		return fmt.Sprintf("%s: %s", d.Kind(), d.Message())
	default:
		panic(fmt.Sprintf("diag: unhandled diagnostic type %T", d))
	}
}

// jsonDiagnostic is the serialised form of a [Diagnostic].
type jsonDiagnostic struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// JSON returns the diagnostic as a single line JSON object, suitable for
// consumption by editors and other tools.
func JSON(d Diagnostic) ([]byte, error) {
	out := jsonDiagnostic{
		Kind:    d.Kind(),
		Message: d.Message(),
	}

	if pos, ok := Located(d); ok {
		out.File = pos.Name
		out.Line = pos.Line
		out.Column = pos.StartCol
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("could not encode diagnostic: %w", err)
	}

	return data, nil
}
