package ast

import "go.followtheprocess.codes/polyglot/internal/syntax/token"

// Statement is a statement node.
type Statement interface {
	Node
	statementNode() // Prevents accidental misuse as another node type
}

// Import is a module import, e.g. '>> io'.
type Import struct {
	// Module is the name of the imported module.
	Module Ident

	// Token is the opening '>>'.
	Token token.Token
}

// Start returns the '>>' token.
func (i Import) Start() token.Token { return i.Token }

// Kind returns [KindImport].
func (i Import) Kind() Kind { return KindImport }

func (i Import) statementNode() {}

// TypeName is a reference to one of the primitive types, e.g. 'ii'.
type TypeName struct {
	// Token is the type symbol token.
	Token token.Token
}

// Start returns the type symbol token.
func (t TypeName) Start() token.Token { return t.Token }

// Kind returns [KindType].
func (t TypeName) Kind() Kind { return KindType }

// Name returns the type symbol as written.
func (t TypeName) Name() string { return t.Token.Value }

// VarDecl is a variable declaration '? x: i = 1' or, when Const is set,
// a constant declaration '* x = 1'.
type VarDecl struct {
	// Value is the initialiser, nil if there isn't one. Constants always have one.
	Value Expression

	// Type is the declared type, nil if the type is to be inferred from Value.
	Type *TypeName

	// Name is the declared identifier.
	Name Ident

	// Token is the opening '?' or '*'.
	Token token.Token

	// Const marks the declaration as a constant.
	Const bool
}

// Start returns the opening '?' or '*'.
func (v VarDecl) Start() token.Token { return v.Token }

// Kind returns [KindConst] for constants and [KindVar] otherwise.
func (v VarDecl) Kind() Kind {
	if v.Const {
		return KindConst
	}

	return KindVar
}

func (v VarDecl) statementNode() {}

// Param is a single function parameter 'name: type'.
type Param struct {
	Name Ident
	Type TypeName
}

// Start returns the parameter's name.
func (p Param) Start() token.Token { return p.Name.Token }

// Kind returns [KindParam].
func (p Param) Kind() Kind { return KindParam }

// FuncDecl is a function declaration 'add(a: i, b: i): i { ... }'.
type FuncDecl struct {
	// Result is the declared return type, nil for functions that return nothing.
	Result *TypeName

	// Name is the function's name.
	Name Ident

	// Params are the declared parameters in order.
	Params []Param

	// Body is the function body.
	Body Block
}

// Start returns the function's name.
func (f FuncDecl) Start() token.Token { return f.Name.Token }

// Kind returns [KindFunc].
func (f FuncDecl) Kind() Kind { return KindFunc }

func (f FuncDecl) statementNode() {}

// Block is a braced list of statements.
type Block struct {
	Statements []Statement
	Open       token.Token // '{'
	Close      token.Token // '}'
}

// Start returns the opening '{'.
func (b Block) Start() token.Token { return b.Open }

// Kind returns [KindBlock].
func (b Block) Kind() Kind { return KindBlock }

func (b Block) statementNode() {}

// Return is a return statement '<- expr', Value is nil for a bare return.
type Return struct {
	Value Expression
	Token token.Token
}

// Start returns the '<-' token.
func (r Return) Start() token.Token { return r.Token }

// Kind returns [KindReturn].
func (r Return) Kind() Kind { return KindReturn }

func (r Return) statementNode() {}

// If is a conditional '(cond) ? { ... } : { ... }'.
type If struct {
	// Cond is the condition.
	Cond Expression

	// Else is either nil, a [Block] or another [If].
	Else Statement

	// Then is the block run when Cond is true.
	Then Block

	// Token is the '(' opening the condition.
	Token token.Token
}

// Start returns the '(' opening the condition.
func (i If) Start() token.Token { return i.Token }

// Kind returns [KindIf].
func (i If) Kind() Kind { return KindIf }

func (i If) statementNode() {}

// Loop is a while style loop '^ (cond) { ... }'.
type Loop struct {
	Cond  Expression
	Body  Block
	Token token.Token // '^'
}

// Start returns the '^' token.
func (l Loop) Start() token.Token { return l.Token }

// Kind returns [KindLoop].
func (l Loop) Kind() Kind { return KindLoop }

func (l Loop) statementNode() {}

// Break is '<<', leaving the innermost loop.
type Break struct {
	Token token.Token
}

// Start returns the '<<' token.
func (b Break) Start() token.Token { return b.Token }

// Kind returns [KindBreak].
func (b Break) Kind() Kind { return KindBreak }

func (b Break) statementNode() {}

// Continue is '->', skipping to the next iteration of the innermost loop.
type Continue struct {
	Token token.Token
}

// Start returns the '->' token.
func (c Continue) Start() token.Token { return c.Token }

// Kind returns [KindContinue].
func (c Continue) Kind() Kind { return KindContinue }

func (c Continue) statementNode() {}

// Assign is an assignment to an existing variable, 'x = 1', 'x += 1' or 'x -= 1'.
type Assign struct {
	Value  Expression
	Target Ident
	Op     token.Token // '=', '+=' or '-='
}

// Start returns the target identifier.
func (a Assign) Start() token.Token { return a.Target.Token }

// Kind returns [KindAssign].
func (a Assign) Kind() Kind { return KindAssign }

func (a Assign) statementNode() {}

// ExprStatement is an expression used as a statement, only calls are
// meaningful here.
type ExprStatement struct {
	Expr Expression
}

// Start returns the first token of the expression.
func (e ExprStatement) Start() token.Token { return e.Expr.Start() }

// Kind returns [KindExprStatement].
func (e ExprStatement) Kind() Kind { return KindExprStatement }

func (e ExprStatement) statementNode() {}
