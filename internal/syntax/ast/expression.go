package ast

import "go.followtheprocess.codes/polyglot/internal/syntax/token"

// Expression is an expression node.
type Expression interface {
	Node
	expressionNode() // Prevents accidental misuse as another node type
}

// Ident is a named identifier expression.
type Ident struct {
	// Name is the ident's name.
	Name string

	// Token is the [token.Ident] token.
	Token token.Token
}

// Start returns the identifier token.
func (i Ident) Start() token.Token { return i.Token }

// Kind returns [KindIdent].
func (i Ident) Kind() Kind { return KindIdent }

func (i Ident) expressionNode() {}

// IntLiteral is an integer literal, Value is the digits as written.
type IntLiteral struct {
	Value string
	Token token.Token
}

// Start returns the literal token.
func (i IntLiteral) Start() token.Token { return i.Token }

// Kind returns [KindInt].
func (i IntLiteral) Kind() Kind { return KindInt }

func (i IntLiteral) expressionNode() {}

// FloatLiteral is a float literal, Value is the text as written.
type FloatLiteral struct {
	Value string
	Token token.Token
}

// Start returns the literal token.
func (f FloatLiteral) Start() token.Token { return f.Token }

// Kind returns [KindFloat].
func (f FloatLiteral) Kind() Kind { return KindFloat }

func (f FloatLiteral) expressionNode() {}

// StringLiteral is a string literal, Value holds the decoded contents.
type StringLiteral struct {
	Value string
	Token token.Token
}

// Start returns the literal token.
func (s StringLiteral) Start() token.Token { return s.Token }

// Kind returns [KindString].
func (s StringLiteral) Kind() Kind { return KindString }

func (s StringLiteral) expressionNode() {}

// CharLiteral is a character literal.
type CharLiteral struct {
	Token token.Token
	Value rune
}

// Start returns the literal token.
func (c CharLiteral) Start() token.Token { return c.Token }

// Kind returns [KindChar].
func (c CharLiteral) Kind() Kind { return KindChar }

func (c CharLiteral) expressionNode() {}

// BoolLiteral is 'true' or 'false'.
type BoolLiteral struct {
	Token token.Token
	Value bool
}

// Start returns the literal token.
func (b BoolLiteral) Start() token.Token { return b.Token }

// Kind returns [KindBool].
func (b BoolLiteral) Kind() Kind { return KindBool }

func (b BoolLiteral) expressionNode() {}

// UnaryExpression is a prefix operator applied to an operand, '-x' or '!x'.
type UnaryExpression struct {
	Operand Expression
	Op      token.Token
}

// Start returns the operator token.
func (u UnaryExpression) Start() token.Token { return u.Op }

// Kind returns [KindUnary].
func (u UnaryExpression) Kind() Kind { return KindUnary }

func (u UnaryExpression) expressionNode() {}

// BinaryExpression is an infix operation 'left op right'.
type BinaryExpression struct {
	Left  Expression
	Right Expression
	Op    token.Token
}

// Start returns the first token of the left operand.
func (b BinaryExpression) Start() token.Token { return b.Left.Start() }

// Kind returns [KindBinary].
func (b BinaryExpression) Kind() Kind { return KindBinary }

func (b BinaryExpression) expressionNode() {}

// CallExpression is a function call 'name(args...)'.
type CallExpression struct {
	Callee Ident
	Args   []Expression
}

// Start returns the callee identifier.
func (c CallExpression) Start() token.Token { return c.Callee.Token }

// Kind returns [KindCall].
func (c CallExpression) Kind() Kind { return KindCall }

func (c CallExpression) expressionNode() {}
