// Package parser implements the polyglot parser, turning the token sequence produced by
// the scanner into an [ast.File].
//
// The parser is a hand written recursive descent parser with a precedence climbing
// expression parser. It stops at the first token that does not fit the grammar
// and reports it as a [diag.SyntaxError], there is no error recovery.
package parser

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"go.followtheprocess.codes/polyglot/internal/diag"
	"go.followtheprocess.codes/polyglot/internal/syntax/ast"
	"go.followtheprocess.codes/polyglot/internal/syntax/token"
)

// ErrParse is a generic parsing error used to unwind the parser, details of
// the error are held in the [diag.SyntaxError] returned from [Parser.Parse].
var ErrParse = errors.New("parse error")

// Operator precedences, higher binds tighter.
const (
	lowest = iota
	precOr
	precAnd
	precEquality
	precComparison
	precSum
	precProduct
	precPrefix
)

// Parser is the polyglot parser.
//
// A Parser is single use, create a new one with [New] for every token sequence.
type Parser struct {
	err     diag.Diagnostic // The first syntax error encountered
	name    string          // Name of the file being parsed
	tokens  []token.Token   // The full token sequence
	current token.Token     // Current token under inspection
	next    token.Token     // Next token in the stream
	index   int             // Index into tokens of the next token to read
}

// New initialises and returns a new [Parser] over tokens.
//
// tokens should be the output of the scanner, terminated by [token.EOF].
func New(name string, tokens []token.Token) *Parser {
	if len(tokens) == 0 || !tokens[len(tokens)-1].Is(token.EOF) {
		eof := token.Token{Kind: token.EOF, Line: 1, StartCol: 1, EndCol: 1}
		if len(tokens) != 0 {
			last := tokens[len(tokens)-1]
			eof = token.Token{
				Kind:     token.EOF,
				Start:    last.End,
				End:      last.End,
				Line:     last.Line,
				StartCol: last.EndCol + 1,
				EndCol:   last.EndCol + 1,
			}
		}

		tokens = append(tokens[:len(tokens):len(tokens)], eof)
	}

	p := &Parser{
		name:   name,
		tokens: tokens,
	}

	// Read 2 tokens so current and next are set
	p.advance()
	p.advance()

	return p
}

// Parse parses the file to completion returning an [ast.File].
//
// On the first syntax error the returned file is empty and the diagnostic is a
// [diag.SyntaxError] pointing at the offending token.
func (p *Parser) Parse() (ast.File, diag.Diagnostic) {
	file := ast.File{
		Name:       p.name,
		Statements: make([]ast.Statement, 0),
	}

	for {
		p.skipSeparators()

		if p.current.Is(token.EOF) {
			break
		}

		statement, err := p.parseDeclaration()
		if err != nil {
			return ast.File{}, p.err
		}

		file.Statements = append(file.Statements, statement)

		p.advance()

		if !p.current.Is(token.Newline, token.Semicolon, token.EOF) {
			p.errorf(p.current, "expected newline or ';' after declaration, got %s", p.current.Kind.Describe())
			return ast.File{}, p.err
		}
	}

	return file, nil
}

// advance advances the parser by a single token.
//
// Once the end of the input is reached, next stays on the final [token.EOF].
func (p *Parser) advance() {
	p.current = p.next

	if p.index < len(p.tokens) {
		p.next = p.tokens[p.index]
		p.index++

		return
	}

	p.next = p.tokens[len(p.tokens)-1]
}

// expect asserts that the next token is one of the given kinds, emitting a syntax error if not.
//
// The parser is advanced only if the next token is of one of these kinds such that after returning
// p.current will be one of the kinds.
//
// It returns an [ErrParse] is the expectation is violated, nil otherwise.
func (p *Parser) expect(kinds ...token.Kind) error {
	switch len(kinds) {
	case 0:
		return nil
	case 1:
		if !p.next.Is(kinds[0]) {
			p.errorf(p.next, "expected %s, got %s", kinds[0].Describe(), p.next.Kind.Describe())
			return ErrParse
		}
	default:
		if !p.next.Is(kinds...) {
			p.errorf(p.next, "expected one of %s, got %s", describeAll(kinds), p.next.Kind.Describe())
			return ErrParse
		}
	}

	p.advance()

	return nil
}

// expectType asserts that the next token is a primitive type symbol, advancing onto it.
func (p *Parser) expectType() (ast.TypeName, error) {
	if !p.next.Kind.IsType() {
		p.errorf(p.next, "expected a type, got %s", p.next.Kind.Describe())
		return ast.TypeName{}, ErrParse
	}

	p.advance()

	return ast.TypeName{Token: p.current}, nil
}

// skipSeparators advances over any newlines and semicolons such that after
// returning, p.current is the first token of the next statement.
func (p *Parser) skipSeparators() {
	for p.current.Is(token.Newline, token.Semicolon) {
		p.advance()
	}
}

// error records the first syntax error, pointing at tok.
func (p *Parser) error(tok token.Token, msg string) {
	if p.err != nil {
		return
	}

	p.err = diag.SyntaxError{
		Msg: msg,
		Pos: ast.TokenPosition(p.name, tok),
	}
}

// errorf calls error with a formatted message.
func (p *Parser) errorf(tok token.Token, format string, a ...any) {
	p.error(tok, fmt.Sprintf(format, a...))
}

// parseDeclaration parses a top level declaration.
func (p *Parser) parseDeclaration() (ast.Statement, error) {
	switch p.current.Kind {
	case token.Import:
		return p.parseImport()
	case token.Question:
		return p.parseVarDecl(false)
	case token.Star:
		return p.parseVarDecl(true)
	case token.Ident:
		if p.next.Is(token.LeftParen) {
			return p.parseFuncDecl()
		}

		p.errorf(p.current, "unexpected identifier %q at top level, expected a declaration", p.current.Value)

		return nil, ErrParse
	default:
		p.errorf(p.current, "expected a declaration, got %s", p.current.Kind.Describe())
		return nil, ErrParse
	}
}

// parseImport parses a module import '>> io'.
func (p *Parser) parseImport() (ast.Import, error) {
	result := ast.Import{Token: p.current}

	if err := p.expect(token.Ident); err != nil {
		return result, err
	}

	result.Module = p.parseIdent()

	return result, nil
}

// parseVarDecl parses a variable or constant declaration.
//
//	? name [: type] [= expr]
//	? name := expr
//	* name [: type] = expr
func (p *Parser) parseVarDecl(isConst bool) (ast.VarDecl, error) {
	result := ast.VarDecl{Token: p.current, Const: isConst}

	if err := p.expect(token.Ident); err != nil {
		return result, err
	}

	result.Name = p.parseIdent()

	switch {
	case p.next.Is(token.Define):
		p.advance()
	case p.next.Is(token.Colon):
		p.advance()

		typ, err := p.expectType()
		if err != nil {
			return result, err
		}

		result.Type = &typ

		if !p.next.Is(token.Eq) {
			if isConst {
				return result, p.expect(token.Eq)
			}

			return result, nil
		}

		p.advance()
	case p.next.Is(token.Eq):
		p.advance()
	default:
		if isConst {
			return result, p.expect(token.Eq)
		}

		p.errorf(p.next, "variable %q needs a type or an initial value", result.Name.Name)

		return result, ErrParse
	}

	// p.current is now the '=' or ':='
	p.advance()

	value, err := p.parseExpression(lowest)
	if err != nil {
		return result, err
	}

	result.Value = value

	return result, nil
}

// parseFuncDecl parses a function declaration 'name(a: i, b: i): i { ... }'.
func (p *Parser) parseFuncDecl() (ast.FuncDecl, error) {
	result := ast.FuncDecl{Name: p.parseIdent()}

	if err := p.expect(token.LeftParen); err != nil {
		return result, err
	}

	for !p.next.Is(token.RightParen) {
		if err := p.expect(token.Ident); err != nil {
			return result, err
		}

		param := ast.Param{Name: p.parseIdent()}

		if err := p.expect(token.Colon); err != nil {
			return result, err
		}

		typ, err := p.expectType()
		if err != nil {
			return result, err
		}

		param.Type = typ
		result.Params = append(result.Params, param)

		if !p.next.Is(token.Comma) {
			break
		}

		p.advance()
	}

	if err := p.expect(token.RightParen); err != nil {
		return result, err
	}

	if p.next.Is(token.Colon) {
		p.advance()

		typ, err := p.expectType()
		if err != nil {
			return result, err
		}

		result.Result = &typ
	}

	if err := p.expect(token.LeftBrace); err != nil {
		return result, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return result, err
	}

	result.Body = body

	return result, nil
}

// parseBlock parses a braced block of statements, p.current must be the opening '{'.
//
// On return p.current is the closing '}'.
func (p *Parser) parseBlock() (ast.Block, error) {
	result := ast.Block{Open: p.current}

	p.advance()

	for {
		p.skipSeparators()

		if p.current.Is(token.RightBrace) {
			break
		}

		if p.current.Is(token.EOF) {
			p.errorf(p.current, "expected '}', got %s", p.current.Kind.Describe())
			return result, ErrParse
		}

		statement, err := p.parseStatement()
		if err != nil {
			return result, err
		}

		result.Statements = append(result.Statements, statement)

		p.advance()

		if p.current.Is(token.RightBrace) {
			break
		}

		if p.current.Is(token.EOF) {
			p.errorf(p.current, "expected '}', got %s", p.current.Kind.Describe())
			return result, ErrParse
		}

		if !p.current.Is(token.Newline, token.Semicolon) {
			p.errorf(p.current, "expected newline or ';' after statement, got %s", p.current.Kind.Describe())
			return result, ErrParse
		}
	}

	result.Close = p.current

	return result, nil
}

// parseStatement parses a single statement inside a block.
func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.current.Kind {
	case token.Question:
		return p.parseVarDecl(false)
	case token.Star:
		return p.parseVarDecl(true)
	case token.Return:
		return p.parseReturn()
	case token.LeftParen:
		return p.parseIf()
	case token.Caret:
		return p.parseLoop()
	case token.LeftBrace:
		return p.parseBlock()
	case token.Break:
		return ast.Break{Token: p.current}, nil
	case token.Continue:
		return ast.Continue{Token: p.current}, nil
	case token.Ident:
		if p.next.Is(token.Eq, token.PlusEq, token.MinusEq) {
			return p.parseAssign()
		}
	}

	expr, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}

	return ast.ExprStatement{Expr: expr}, nil
}

// parseReturn parses '<- [expr]'.
func (p *Parser) parseReturn() (ast.Return, error) {
	result := ast.Return{Token: p.current}

	if p.next.Is(token.Newline, token.Semicolon, token.RightBrace, token.EOF) {
		return result, nil
	}

	p.advance()

	value, err := p.parseExpression(lowest)
	if err != nil {
		return result, err
	}

	result.Value = value

	return result, nil
}

// parseIf parses '(cond) ? { ... } [: { ... } | : (cond) ? ...]', p.current must be the '('.
func (p *Parser) parseIf() (ast.If, error) {
	result := ast.If{Token: p.current}

	p.advance()

	cond, err := p.parseExpression(lowest)
	if err != nil {
		return result, err
	}

	result.Cond = cond

	if err = p.expect(token.RightParen); err != nil {
		return result, err
	}

	if err = p.expect(token.Question); err != nil {
		return result, err
	}

	if err = p.expect(token.LeftBrace); err != nil {
		return result, err
	}

	result.Then, err = p.parseBlock()
	if err != nil {
		return result, err
	}

	if !p.next.Is(token.Colon) {
		return result, nil
	}

	p.advance()

	switch {
	case p.next.Is(token.LeftBrace):
		p.advance()

		otherwise, err := p.parseBlock()
		if err != nil {
			return result, err
		}

		result.Else = otherwise
	case p.next.Is(token.LeftParen):
		p.advance()

		otherwise, err := p.parseIf()
		if err != nil {
			return result, err
		}

		result.Else = otherwise
	default:
		p.errorf(p.next, "expected '{' or '(' after ':', got %s", p.next.Kind.Describe())
		return result, ErrParse
	}

	return result, nil
}

// parseLoop parses '^ (cond) { ... }'.
func (p *Parser) parseLoop() (ast.Loop, error) {
	result := ast.Loop{Token: p.current}

	if err := p.expect(token.LeftParen); err != nil {
		return result, err
	}

	p.advance()

	cond, err := p.parseExpression(lowest)
	if err != nil {
		return result, err
	}

	result.Cond = cond

	if err = p.expect(token.RightParen); err != nil {
		return result, err
	}

	if err = p.expect(token.LeftBrace); err != nil {
		return result, err
	}

	result.Body, err = p.parseBlock()
	if err != nil {
		return result, err
	}

	return result, nil
}

// parseAssign parses 'name (= | += | -=) expr'.
func (p *Parser) parseAssign() (ast.Assign, error) {
	result := ast.Assign{Target: p.parseIdent()}

	p.advance()
	result.Op = p.current
	p.advance()

	value, err := p.parseExpression(lowest)
	if err != nil {
		return result, err
	}

	result.Value = value

	return result, nil
}

// parseExpression parses an expression whose operators all bind tighter than precedence.
//
// p.current must be the first token of the expression, on return it is the last.
func (p *Parser) parseExpression(precedence int) (ast.Expression, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for precedence < infixPrecedence(p.next.Kind) {
		p.advance()

		op := p.current
		p.advance()

		right, err := p.parseExpression(infixPrecedence(op.Kind))
		if err != nil {
			return nil, err
		}

		left = ast.BinaryExpression{Left: left, Op: op, Right: right}
	}

	return left, nil
}

// parsePrefix parses a literal, identifier, call, parenthesised or unary expression.
func (p *Parser) parsePrefix() (ast.Expression, error) {
	switch p.current.Kind {
	case token.Int:
		return ast.IntLiteral{Value: p.current.Value, Token: p.current}, nil
	case token.Float:
		return ast.FloatLiteral{Value: p.current.Value, Token: p.current}, nil
	case token.String:
		return ast.StringLiteral{Value: p.current.Value, Token: p.current}, nil
	case token.Char:
		value, _ := utf8.DecodeRuneInString(p.current.Value)
		return ast.CharLiteral{Value: value, Token: p.current}, nil
	case token.True, token.False:
		return ast.BoolLiteral{Value: p.current.Is(token.True), Token: p.current}, nil
	case token.Ident:
		ident := p.parseIdent()
		if p.next.Is(token.LeftParen) {
			return p.parseCall(ident)
		}

		return ident, nil
	case token.LeftParen:
		p.advance()

		inner, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}

		if err := p.expect(token.RightParen); err != nil {
			return nil, err
		}

		return inner, nil
	case token.Minus, token.Bang:
		op := p.current
		p.advance()

		operand, err := p.parseExpression(precPrefix)
		if err != nil {
			return nil, err
		}

		return ast.UnaryExpression{Op: op, Operand: operand}, nil
	default:
		p.errorf(p.current, "expected an expression, got %s", p.current.Kind.Describe())
		return nil, ErrParse
	}
}

// parseCall parses the argument list of a call to callee, p.next must be the '('.
func (p *Parser) parseCall(callee ast.Ident) (ast.CallExpression, error) {
	result := ast.CallExpression{Callee: callee}

	p.advance() // '('

	if p.next.Is(token.RightParen) {
		p.advance()
		return result, nil
	}

	for {
		p.advance()

		arg, err := p.parseExpression(lowest)
		if err != nil {
			return result, err
		}

		result.Args = append(result.Args, arg)

		if !p.next.Is(token.Comma) {
			break
		}

		p.advance()
	}

	if err := p.expect(token.RightParen); err != nil {
		return result, err
	}

	return result, nil
}

// parseIdent builds an [ast.Ident] from p.current.
func (p *Parser) parseIdent() ast.Ident {
	return ast.Ident{Name: p.current.Value, Token: p.current}
}

// infixPrecedence returns the binding power of kind as a binary operator, or
// lowest if it is not one.
func infixPrecedence(kind token.Kind) int {
	switch kind {
	case token.OrOr:
		return precOr
	case token.AndAnd:
		return precAnd
	case token.EqEq, token.NotEq:
		return precEquality
	case token.Less, token.Greater, token.LessEq, token.GreaterEq:
		return precComparison
	case token.Plus, token.Minus:
		return precSum
	case token.Star, token.Slash, token.Percent:
		return precProduct
	default:
		return lowest
	}
}

// describeAll joins the descriptions of kinds for use in an error message.
func describeAll(kinds []token.Kind) string {
	var out string

	for i, kind := range kinds {
		if i > 0 {
			out += ", "
		}

		out += kind.Describe()
	}

	return out
}
