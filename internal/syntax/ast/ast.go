// Package ast defines an abstract syntax tree for the polyglot language.
//
// Every node remembers the token it starts at so that later phases can report
// diagnostics against the source.
package ast

import (
	"go.followtheprocess.codes/polyglot/internal/syntax"
	"go.followtheprocess.codes/polyglot/internal/syntax/token"
)

// Node is the interface for ast nodes.
type Node interface {
	// Start returns the first token associated with the node.
	Start() token.Token

	// Kind returns the kind of node this is.
	Kind() Kind
}

// File is an ast [Node] representing a single polyglot source file.
type File struct {
	// Name is the name of the file.
	Name string

	// Statements is the list of top level declarations in the file, in source order.
	Statements []Statement
}

// Start returns the first token in a file.
//
// If the file is empty, [token.EOF] is returned.
func (f File) Start() token.Token {
	if len(f.Statements) == 0 {
		return token.Token{Kind: token.EOF, Line: 1, StartCol: 1, EndCol: 1}
	}

	return f.Statements[0].Start()
}

// Kind returns [KindFile].
func (f File) Kind() Kind {
	return KindFile
}

// Position returns the source position of a node's first token within the named file.
func Position(name string, node Node) syntax.Position {
	return TokenPosition(name, node.Start())
}

// TokenPosition returns the source position of a token within the named file.
func TokenPosition(name string, tok token.Token) syntax.Position {
	return syntax.Position{
		Name:     name,
		Offset:   tok.Start,
		Line:     tok.Line,
		StartCol: tok.StartCol,
		EndCol:   tok.EndCol,
	}
}
