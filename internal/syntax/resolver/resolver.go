// Package resolver implements the semantic analysis phase of the polyglot compiler.
//
// The resolver walks an [ast.File] in source order with a scoped environment,
// checking names, types and control flow. Like the parser it stops at the first
// problem, reporting it as a [diag.SemanticError]. The tree is never modified.
package resolver

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"go.followtheprocess.codes/polyglot/internal/diag"
	"go.followtheprocess.codes/polyglot/internal/syntax/ast"
	"go.followtheprocess.codes/polyglot/internal/syntax/resolver/builtins"
	"go.followtheprocess.codes/polyglot/internal/syntax/token"
	"go.followtheprocess.codes/polyglot/internal/syntax/types"
)

// ErrResolve is a generic resolving error used to unwind the resolver, details on
// the error are held in the [diag.SemanticError] returned from [Resolver.Analyze].
var ErrResolve = errors.New("resolve error")

// entryPoint is the name of the function the program starts at.
const entryPoint = "main"

// function holds what the resolver needs to know about the function
// whose body is being checked.
type function struct {
	name   string
	result types.Type
}

// Resolver is the semantic analyser for polyglot files.
//
// A Resolver is single use, create a new one with [New] for every file.
type Resolver struct {
	err     diag.Diagnostic  // The first semantic error encountered
	library builtins.Library // Builtin functions available to the program
	imports map[string]bool  // Modules imported by the file
	current *function        // The function being checked, nil at top level
	name    string           // The name of the file being resolved
	loops   int              // Depth of loop nesting at the current statement
}

// New returns a new [Resolver] resolving builtin calls against library.
func New(name string, library builtins.Library) *Resolver {
	return &Resolver{
		name:    name,
		library: library,
		imports: make(map[string]bool),
	}
}

// Analyze checks the file, returning the first [diag.SemanticError] found
// or nil if the file is valid.
func (r *Resolver) Analyze(file ast.File) diag.Diagnostic {
	env := newEnvironment()

	if err := r.hoist(env, file); err != nil {
		return r.err
	}

	for _, statement := range file.Statements {
		if err := r.resolveDeclaration(env, statement); err != nil {
			return r.err
		}
	}

	return nil
}

// error records the first semantic error, pointing at node.
func (r *Resolver) error(node ast.Node, msg string) {
	r.errorAt(node.Start(), msg)
}

// errorf calls error with a formatted message.
func (r *Resolver) errorf(node ast.Node, format string, a ...any) {
	r.error(node, fmt.Sprintf(format, a...))
}

// errorAt records the first semantic error, pointing at tok.
func (r *Resolver) errorAt(tok token.Token, msg string) {
	if r.err != nil {
		return
	}

	r.err = diag.SemanticError{
		Msg: msg,
		Pos: ast.TokenPosition(r.name, tok),
	}
}

// hoist registers every import and function signature in source order so that
// functions may be called before they are declared.
func (r *Resolver) hoist(env *environment, file ast.File) error {
	for _, statement := range file.Statements {
		switch stmt := statement.(type) {
		case ast.Import:
			module := stmt.Module.Name
			if !builtins.IsModule(module) {
				r.errorf(stmt.Module, "unknown module %q", module)
				return ErrResolve
			}

			if r.imports[module] {
				r.errorf(stmt.Module, "module %q imported more than once", module)
				return ErrResolve
			}

			r.imports[module] = true
		case ast.FuncDecl:
			if err := r.hoistFunc(env, stmt); err != nil {
				return err
			}
		}
	}

	return nil
}

// hoistFunc declares the signature of a function in the global scope.
func (r *Resolver) hoistFunc(env *environment, decl ast.FuncDecl) error {
	result := typeOf(decl.Result)

	if decl.Name.Name == entryPoint {
		if len(decl.Params) != 0 {
			r.errorf(decl.Params[0], "%s must not take parameters", entryPoint)
			return ErrResolve
		}

		if result != types.Void && result != types.Uint {
			r.errorf(*decl.Result, "%s must return nothing or %s, not %s", entryPoint, types.Uint, result)
			return ErrResolve
		}
	}

	params := make([]types.Type, 0, len(decl.Params))
	for _, param := range decl.Params {
		params = append(params, typeOf(&param.Type))
	}

	return r.declare(env, decl.Name, symbol{kind: symbolFunc, typ: result, params: params})
}

// declare defines ident in env, rejecting names already taken in the same
// scope and the names of builtins.
func (r *Resolver) declare(env *environment, ident ast.Ident, sym symbol) error {
	if _, isBuiltin := r.library.Get(ident.Name); isBuiltin {
		r.errorf(ident, "cannot redeclare builtin function %q", ident.Name)
		return ErrResolve
	}

	if err := env.define(ident.Name, sym); err != nil {
		r.error(ident, err.Error())
		return ErrResolve
	}

	return nil
}

// resolveDeclaration resolves a single top level declaration.
func (r *Resolver) resolveDeclaration(env *environment, statement ast.Statement) error {
	switch stmt := statement.(type) {
	case ast.Import:
		// Handled during hoisting
		return nil
	case ast.VarDecl:
		return r.resolveVarDecl(env, stmt)
	case ast.FuncDecl:
		return r.resolveFunc(env, stmt)
	default:
		r.errorf(stmt, "unexpected %s at top level", stmt.Kind())
		return ErrResolve
	}
}

// resolveVarDecl resolves a variable or constant declaration and defines it in env.
//
// The initial value is resolved before the name is declared, so it cannot refer to itself.
func (r *Resolver) resolveVarDecl(env *environment, decl ast.VarDecl) error {
	declared := typeOf(decl.Type)
	typ := declared

	if decl.Value != nil {
		value, err := r.resolveValue(env, decl.Value)
		if err != nil {
			return err
		}

		switch {
		case decl.Type == nil:
			typ = value
		case !types.AssignableTo(value, declared):
			r.errorf(decl.Value, "cannot use value of type %s as %s in declaration of %q", value, declared, decl.Name.Name)
			return ErrResolve
		}
	}

	kind := symbolVar
	if decl.Const {
		kind = symbolConst
	}

	return r.declare(env, decl.Name, symbol{kind: kind, typ: typ})
}

// resolveFunc resolves the body of a function whose signature has already been hoisted.
func (r *Resolver) resolveFunc(env *environment, decl ast.FuncDecl) error {
	// Parameters share a scope with the top level of the body
	scope := env.child()

	for _, param := range decl.Params {
		if err := r.declare(scope, param.Name, symbol{kind: symbolVar, typ: typeOf(&param.Type)}); err != nil {
			return err
		}
	}

	result := typeOf(decl.Result)
	r.current = &function{name: decl.Name.Name, result: result}

	defer func() { r.current = nil }()

	if err := r.resolveStatements(scope, decl.Body.Statements); err != nil {
		return err
	}

	if result != types.Void && !terminates(decl.Body) {
		r.errorAt(decl.Body.Close, fmt.Sprintf("missing return at end of function %q", decl.Name.Name))
		return ErrResolve
	}

	return nil
}

// resolveStatements resolves a list of statements in order within env.
func (r *Resolver) resolveStatements(env *environment, statements []ast.Statement) error {
	for _, statement := range statements {
		if err := r.resolveStatement(env, statement); err != nil {
			return err
		}
	}

	return nil
}

// resolveBlock resolves a block in its own child scope.
func (r *Resolver) resolveBlock(env *environment, block ast.Block) error {
	return r.resolveStatements(env.child(), block.Statements)
}

// resolveStatement resolves a statement inside a function body.
func (r *Resolver) resolveStatement(env *environment, statement ast.Statement) error {
	switch stmt := statement.(type) {
	case ast.VarDecl:
		return r.resolveVarDecl(env, stmt)
	case ast.Return:
		return r.resolveReturn(env, stmt)
	case ast.If:
		return r.resolveIf(env, stmt)
	case ast.Loop:
		if err := r.resolveCondition(env, stmt.Cond); err != nil {
			return err
		}

		r.loops++
		defer func() { r.loops-- }()

		return r.resolveBlock(env, stmt.Body)
	case ast.Break:
		if r.loops == 0 {
			r.error(stmt, "'<<' is only allowed inside a loop")
			return ErrResolve
		}

		return nil
	case ast.Continue:
		if r.loops == 0 {
			r.error(stmt, "'->' is only allowed inside a loop")
			return ErrResolve
		}

		return nil
	case ast.Block:
		return r.resolveBlock(env, stmt)
	case ast.Assign:
		return r.resolveAssign(env, stmt)
	case ast.ExprStatement:
		if _, isCall := stmt.Expr.(ast.CallExpression); !isCall {
			r.error(stmt, "expression result is unused, only function calls can be used as statements")
			return ErrResolve
		}

		_, err := r.resolveExpression(env, stmt.Expr)

		return err
	default:
		r.errorf(stmt, "unexpected %s inside a function body", stmt.Kind())
		return ErrResolve
	}
}

// resolveIf resolves an if statement and any chain of else branches.
func (r *Resolver) resolveIf(env *environment, stmt ast.If) error {
	if err := r.resolveCondition(env, stmt.Cond); err != nil {
		return err
	}

	if err := r.resolveBlock(env, stmt.Then); err != nil {
		return err
	}

	if stmt.Else == nil {
		return nil
	}

	return r.resolveStatement(env, stmt.Else)
}

// resolveCondition checks that expr is a boolean.
func (r *Resolver) resolveCondition(env *environment, expr ast.Expression) error {
	typ, err := r.resolveValue(env, expr)
	if err != nil {
		return err
	}

	if typ != types.Bool {
		r.errorf(expr, "condition must be of type %s, got %s", types.Bool, typ)
		return ErrResolve
	}

	return nil
}

// resolveReturn checks a return statement against the enclosing function's result type.
func (r *Resolver) resolveReturn(env *environment, stmt ast.Return) error {
	fn := r.current
	if fn == nil {
		r.error(stmt, "'<-' is only allowed inside a function")
		return ErrResolve
	}

	if stmt.Value == nil {
		if fn.result != types.Void {
			r.errorf(stmt, "missing return value, function %q returns %s", fn.name, fn.result)
			return ErrResolve
		}

		return nil
	}

	if fn.result == types.Void {
		r.errorf(stmt.Value, "function %q does not return a value", fn.name)
		return ErrResolve
	}

	typ, err := r.resolveValue(env, stmt.Value)
	if err != nil {
		return err
	}

	if !types.AssignableTo(typ, fn.result) {
		r.errorf(stmt.Value, "cannot return value of type %s from function %q returning %s", typ, fn.name, fn.result)
		return ErrResolve
	}

	return nil
}

// resolveAssign checks an assignment to a variable.
func (r *Resolver) resolveAssign(env *environment, stmt ast.Assign) error {
	target, err := env.get(stmt.Target.Name)
	if err != nil {
		r.error(stmt.Target, err.Error())
		return ErrResolve
	}

	if target.kind != symbolVar {
		r.errorf(stmt.Target, "cannot assign to %s %q", target.kind, stmt.Target.Name)
		return ErrResolve
	}

	value, err := r.resolveValue(env, stmt.Value)
	if err != nil {
		return err
	}

	var ok bool

	switch stmt.Op.Kind {
	case token.PlusEq:
		ok = (target.typ.IsNumeric() && types.AssignableTo(value, target.typ)) ||
			(target.typ == types.String && value == types.String)
	case token.MinusEq:
		ok = target.typ.IsNumeric() && types.AssignableTo(value, target.typ)
	default:
		if !types.AssignableTo(value, target.typ) {
			r.errorf(stmt.Value, "cannot assign value of type %s to %q of type %s", value, stmt.Target.Name, target.typ)
			return ErrResolve
		}

		return nil
	}

	if !ok {
		r.errorAt(stmt.Op, fmt.Sprintf("operator %s not defined for %s and %s", stmt.Op.Value, target.typ, value))
		return ErrResolve
	}

	return nil
}

// resolveValue resolves an expression that must produce a value.
func (r *Resolver) resolveValue(env *environment, expr ast.Expression) (types.Type, error) {
	typ, err := r.resolveExpression(env, expr)
	if err != nil {
		return types.Invalid, err
	}

	if typ == types.Void {
		name := ""
		if call, ok := expr.(ast.CallExpression); ok {
			name = call.Callee.Name
		}

		r.errorf(expr, "%s() returns no value and cannot be used as a value", name)

		return types.Invalid, ErrResolve
	}

	return typ, nil
}

// resolveExpression resolves an expression, returning its type.
func (r *Resolver) resolveExpression(env *environment, expression ast.Expression) (types.Type, error) {
	switch expr := expression.(type) {
	case ast.Ident:
		return r.resolveIdent(env, expr)
	case ast.IntLiteral:
		return r.resolveInt(expr)
	case ast.FloatLiteral:
		if _, err := strconv.ParseFloat(expr.Value, 64); err != nil {
			r.errorf(expr, "float literal %s is out of range", expr.Value)
			return types.Invalid, ErrResolve
		}

		return types.Double, nil
	case ast.StringLiteral:
		return types.String, nil
	case ast.CharLiteral:
		return types.Char, nil
	case ast.BoolLiteral:
		return types.Bool, nil
	case ast.UnaryExpression:
		return r.resolveUnary(env, expr)
	case ast.BinaryExpression:
		return r.resolveBinary(env, expr)
	case ast.CallExpression:
		return r.resolveCall(env, expr)
	default:
		r.errorf(expression, "unexpected %s in expression", expression.Kind())
		return types.Invalid, ErrResolve
	}
}

// resolveIdent resolves a reference to a variable or constant.
func (r *Resolver) resolveIdent(env *environment, ident ast.Ident) (types.Type, error) {
	sym, err := env.get(ident.Name)
	if err != nil {
		if _, isBuiltin := r.library.Get(ident.Name); isBuiltin {
			r.errorf(ident, "builtin function %q must be called", ident.Name)
			return types.Invalid, ErrResolve
		}

		r.error(ident, err.Error())

		return types.Invalid, ErrResolve
	}

	if sym.kind == symbolFunc {
		r.errorf(ident, "function %q must be called", ident.Name)
		return types.Invalid, ErrResolve
	}

	return sym.typ, nil
}

// resolveInt gives an integer literal the smallest type that holds it.
func (r *Resolver) resolveInt(lit ast.IntLiteral) (types.Type, error) {
	value, err := strconv.ParseUint(lit.Value, 10, 64)
	if err != nil {
		r.errorf(lit, "integer literal %s is too large", lit.Value)
		return types.Invalid, ErrResolve
	}

	switch {
	case value <= math.MaxInt32:
		return types.Int, nil
	case value <= math.MaxInt64:
		return types.Long, nil
	default:
		return types.Ulong, nil
	}
}

// resolveUnary resolves a prefix operation.
func (r *Resolver) resolveUnary(env *environment, expr ast.UnaryExpression) (types.Type, error) {
	operand, err := r.resolveValue(env, expr.Operand)
	if err != nil {
		return types.Invalid, err
	}

	switch {
	case expr.Op.Is(token.Minus) && operand.IsNumeric():
		return operand, nil
	case expr.Op.Is(token.Bang) && operand == types.Bool:
		return types.Bool, nil
	default:
		r.errorAt(expr.Op, fmt.Sprintf("operator %s not defined for %s", expr.Op.Value, operand))
		return types.Invalid, ErrResolve
	}
}

// resolveBinary resolves an infix operation.
func (r *Resolver) resolveBinary(env *environment, expr ast.BinaryExpression) (types.Type, error) {
	left, err := r.resolveValue(env, expr.Left)
	if err != nil {
		return types.Invalid, err
	}

	right, err := r.resolveValue(env, expr.Right)
	if err != nil {
		return types.Invalid, err
	}

	typ, ok := binaryType(expr.Op.Kind, left, right)
	if !ok {
		r.errorAt(expr.Op, fmt.Sprintf("operator %s not defined for %s and %s", expr.Op.Value, left, right))
		return types.Invalid, ErrResolve
	}

	return typ, nil
}

// resolveCall checks a call against the signature of a user function or builtin.
func (r *Resolver) resolveCall(env *environment, call ast.CallExpression) (types.Type, error) {
	name := call.Callee.Name

	var (
		params []types.Type
		result types.Type
	)

	sym, err := env.get(name)
	if err != nil {
		builtin, ok := r.library.Get(name)
		if !ok {
			r.error(call.Callee, err.Error())
			return types.Invalid, ErrResolve
		}

		if !r.imports[builtin.Module] {
			r.errorf(call.Callee, "%q requires '>> %s'", name, builtin.Module)
			return types.Invalid, ErrResolve
		}

		if builtin.Variadic {
			return r.resolveVariadic(env, call, builtin)
		}

		params, result = builtin.Params, builtin.Result
	} else {
		if sym.kind != symbolFunc {
			r.errorf(call.Callee, "%q is a %s, not a function", name, sym.kind)
			return types.Invalid, ErrResolve
		}

		params, result = sym.params, sym.typ
	}

	if len(call.Args) != len(params) {
		r.errorf(call.Callee, "%q expects %s, got %d", name, plural(len(params), "argument"), len(call.Args))
		return types.Invalid, ErrResolve
	}

	for i, arg := range call.Args {
		typ, err := r.resolveValue(env, arg)
		if err != nil {
			return types.Invalid, err
		}

		if !types.AssignableTo(typ, params[i]) {
			r.errorf(arg, "cannot use value of type %s as %s in argument %d to %q", typ, params[i], i+1, name)
			return types.Invalid, ErrResolve
		}
	}

	return result, nil
}

// resolveVariadic checks a call to a builtin accepting any number of values.
func (r *Resolver) resolveVariadic(env *environment, call ast.CallExpression, builtin builtins.Builtin) (types.Type, error) {
	if len(call.Args) == 0 {
		r.errorf(call.Callee, "%q expects at least 1 argument, got 0", builtin.Name)
		return types.Invalid, ErrResolve
	}

	for _, arg := range call.Args {
		if _, err := r.resolveValue(env, arg); err != nil {
			return types.Invalid, err
		}
	}

	return builtin.Result, nil
}

// binaryType returns the result type of applying op to left and right, and
// whether the operation is defined at all.
func binaryType(op token.Kind, left, right types.Type) (types.Type, bool) {
	numeric := left.IsNumeric() && right.IsNumeric()

	switch op {
	case token.Plus:
		if left == types.String && right == types.String {
			return types.String, true
		}

		return types.Wider(left, right), numeric
	case token.Minus, token.Star, token.Slash:
		return types.Wider(left, right), numeric
	case token.Percent:
		return types.Wider(left, right), left.IsInteger() && right.IsInteger()
	case token.Less, token.Greater, token.LessEq, token.GreaterEq:
		ordered := left == right && (left == types.Char || left == types.String)
		return types.Bool, numeric || ordered
	case token.EqEq, token.NotEq:
		return types.Bool, numeric || left == right
	case token.AndAnd, token.OrOr:
		return types.Bool, left == types.Bool && right == types.Bool
	default:
		return types.Invalid, false
	}
}

// terminates reports whether a statement always ends in a return.
func terminates(statement ast.Statement) bool {
	switch stmt := statement.(type) {
	case ast.Return:
		return true
	case ast.Block:
		return len(stmt.Statements) != 0 && terminates(stmt.Statements[len(stmt.Statements)-1])
	case ast.If:
		return stmt.Else != nil && terminates(stmt.Then) && terminates(stmt.Else)
	default:
		return false
	}
}

// typeOf returns the type named by a type annotation, [types.Void] if there is none.
func typeOf(name *ast.TypeName) types.Type {
	if name == nil {
		return types.Void
	}

	typ, ok := types.FromToken(name.Token.Kind)
	if !ok {
		return types.Invalid
	}

	return typ
}

// plural formats a count of things, e.g. "1 argument" or "2 arguments".
func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}

	return fmt.Sprintf("%d %ss", n, noun)
}
