// Package codegen implements the polyglot C++ code generator.
//
// The generator walks a validated [ast.File] and emits a single C++17 translation
// unit. Output depends only on the tree and the [Options], so generating the same
// tree twice gives byte identical text.
package codegen

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.followtheprocess.codes/polyglot/internal/diag"
	"go.followtheprocess.codes/polyglot/internal/syntax/ast"
	"go.followtheprocess.codes/polyglot/internal/syntax/resolver/builtins"
	"go.followtheprocess.codes/polyglot/internal/syntax/types"
)

// DefaultIndent is the indent width used when [Options.Indent] is unset.
const DefaultIndent = 4

// errGenerate is used to unwind the printer, details are held in the [diag.CodeGenError].
var errGenerate = errors.New("code generation error")

// Options configure the generated C++.
type Options struct {
	// Indent is the number of spaces per indent level, [DefaultIndent] if zero or negative.
	Indent int
}

// Generator is the C++ code generator.
type Generator struct {
	indent string
}

// New returns a new [Generator].
func New(options Options) Generator {
	width := options.Indent
	if width <= 0 {
		width = DefaultIndent
	}

	return Generator{indent: strings.Repeat(" ", width)}
}

// Generate emits C++17 source for file. The file must have passed semantic analysis.
func (g Generator) Generate(file ast.File) (string, diag.Diagnostic) {
	p := &printer{
		indent:  g.indent,
		name:    file.Name,
		imports: make(map[string]bool),
	}

	if err := p.file(file); err != nil {
		return "", p.err
	}

	return p.out.String(), nil
}

// printer holds the state of a single call to Generate.
type printer struct {
	err      diag.Diagnostic // The first code generation error
	imports  map[string]bool // Modules imported by the file
	indent   string          // One level of indentation
	name     string          // Name of the source file
	out      strings.Builder // The generated source
	depth    int             // Current indent level
	voidMain bool            // Whether the function being emitted is a main that returns nothing
}

// errorf records the first code generation error.
func (p *printer) errorf(format string, a ...any) error {
	if p.err == nil {
		p.err = diag.CodeGenError{Msg: fmt.Sprintf(format, a...)}
	}

	return errGenerate
}

// line writes a single indented line.
func (p *printer) line(format string, a ...any) {
	p.out.WriteString(strings.Repeat(p.indent, p.depth))
	fmt.Fprintf(&p.out, format, a...)
	p.out.WriteByte('\n')
}

// blank writes an empty line.
func (p *printer) blank() {
	p.out.WriteByte('\n')
}

// file emits the whole translation unit: header, includes, prototypes, globals
// and function definitions in that order.
func (p *printer) file(file ast.File) error {
	var (
		globals   []ast.VarDecl
		functions []ast.FuncDecl
	)

	for _, statement := range file.Statements {
		switch stmt := statement.(type) {
		case ast.Import:
			p.imports[stmt.Module.Name] = true
		case ast.VarDecl:
			globals = append(globals, stmt)
		case ast.FuncDecl:
			functions = append(functions, stmt)
		default:
			return p.errorf("unexpected %s at top level", stmt.Kind())
		}
	}

	p.line("// Code generated by polyglot from %s. DO NOT EDIT.", p.name)
	p.blank()
	p.includes()
	p.blank()
	p.line("using namespace std::string_literals;")

	hasMain := false
	prototypes := 0

	for _, fn := range functions {
		if fn.Name.Name == "main" {
			hasMain = true
			continue
		}

		if prototypes == 0 {
			p.blank()
		}

		prototypes++

		p.line("%s;", p.signature(fn))
	}

	if len(globals) != 0 {
		p.blank()
	}

	for _, global := range globals {
		if err := p.varDecl(global); err != nil {
			return err
		}
	}

	for _, fn := range functions {
		p.blank()

		if err := p.funcDecl(fn); err != nil {
			return err
		}
	}

	if !hasMain {
		p.blank()
		p.line("int main() {")
		p.depth++
		p.line("return 0;")
		p.depth--
		p.line("}")
	}

	return nil
}

// includes writes the sorted #include lines needed by the imported modules.
func (p *printer) includes() {
	headers := []string{"cstdint", "string"}

	if p.imports[builtins.ModuleIO] {
		headers = append(headers, "iostream")
	}

	if p.imports[builtins.ModuleMath] {
		headers = append(headers, "cmath")
	}

	slices.Sort(headers)

	for _, header := range headers {
		p.line("#include <%s>", header)
	}
}

// signature returns the C++ declarator of a function, without a trailing ';' or body.
func (p *printer) signature(fn ast.FuncDecl) string {
	if fn.Name.Name == "main" {
		return "int main()"
	}

	params := make([]string, 0, len(fn.Params))
	for _, param := range fn.Params {
		params = append(params, cppType(&param.Type)+" "+ident(param.Name.Name))
	}

	return fmt.Sprintf("%s %s(%s)", cppType(fn.Result), ident(fn.Name.Name), strings.Join(params, ", "))
}

// funcDecl emits a function definition.
func (p *printer) funcDecl(fn ast.FuncDecl) error {
	p.voidMain = fn.Name.Name == "main" && fn.Result == nil

	defer func() { p.voidMain = false }()

	p.line("%s {", p.signature(fn))
	p.depth++

	if fn.Name.Name == "main" && p.imports[builtins.ModuleIO] {
		p.line("std::cout << std::boolalpha;")
	}

	if err := p.statements(fn.Body.Statements); err != nil {
		return err
	}

	if p.voidMain && !endsInReturn(fn.Body) {
		p.line("return 0;")
	}

	p.depth--
	p.line("}")

	return nil
}

// statements emits each statement at the current depth.
func (p *printer) statements(statements []ast.Statement) error {
	for _, statement := range statements {
		if err := p.statement(statement); err != nil {
			return err
		}
	}

	return nil
}

// statement emits a single statement.
func (p *printer) statement(statement ast.Statement) error {
	switch stmt := statement.(type) {
	case ast.VarDecl:
		return p.varDecl(stmt)
	case ast.Return:
		return p.returnStmt(stmt)
	case ast.If:
		p.out.WriteString(strings.Repeat(p.indent, p.depth))
		return p.ifStmt(stmt)
	case ast.Loop:
		cond, err := p.expr(stmt.Cond)
		if err != nil {
			return err
		}

		p.line("while (%s) {", cond)

		if err := p.body(stmt.Body); err != nil {
			return err
		}

		p.line("}")

		return nil
	case ast.Break:
		p.line("break;")
		return nil
	case ast.Continue:
		p.line("continue;")
		return nil
	case ast.Block:
		p.line("{")

		if err := p.body(stmt); err != nil {
			return err
		}

		p.line("}")

		return nil
	case ast.Assign:
		value, err := p.expr(stmt.Value)
		if err != nil {
			return err
		}

		p.line("%s %s %s;", ident(stmt.Target.Name), stmt.Op.Value, value)

		return nil
	case ast.ExprStatement:
		expr, err := p.expr(stmt.Expr)
		if err != nil {
			return err
		}

		p.line("%s;", expr)

		return nil
	default:
		return p.errorf("unexpected %s inside a function body", stmt.Kind())
	}
}

// body emits the statements of a block one level deeper.
func (p *printer) body(block ast.Block) error {
	p.depth++
	defer func() { p.depth-- }()

	return p.statements(block.Statements)
}

// varDecl emits a variable or constant declaration.
func (p *printer) varDecl(decl ast.VarDecl) error {
	prefix := ""
	if decl.Const {
		prefix = "const "
	}

	typ := "auto"
	if decl.Type != nil {
		typ = cppType(decl.Type)
	}

	name := ident(decl.Name.Name)

	if decl.Value == nil {
		p.line("%s%s %s{};", prefix, typ, name)
		return nil
	}

	value, err := p.expr(decl.Value)
	if err != nil {
		return err
	}

	p.line("%s%s %s = %s;", prefix, typ, name, value)

	return nil
}

// returnStmt emits a return statement, a bare return in a void main returns 0.
func (p *printer) returnStmt(stmt ast.Return) error {
	if stmt.Value == nil {
		if p.voidMain {
			p.line("return 0;")
		} else {
			p.line("return;")
		}

		return nil
	}

	value, err := p.expr(stmt.Value)
	if err != nil {
		return err
	}

	p.line("return %s;", value)

	return nil
}

// ifStmt emits an if statement and its else chain. The caller has already
// written the indentation for the first line.
func (p *printer) ifStmt(stmt ast.If) error {
	cond, err := p.expr(stmt.Cond)
	if err != nil {
		return err
	}

	fmt.Fprintf(&p.out, "if (%s) {\n", cond)

	if err := p.body(stmt.Then); err != nil {
		return err
	}

	switch otherwise := stmt.Else.(type) {
	case nil:
		p.line("}")
	case ast.If:
		p.out.WriteString(strings.Repeat(p.indent, p.depth) + "} else ")
		return p.ifStmt(otherwise)
	case ast.Block:
		p.line("} else {")

		if err := p.body(otherwise); err != nil {
			return err
		}

		p.line("}")
	default:
		return p.errorf("unexpected %s in else branch", otherwise.Kind())
	}

	return nil
}

// expr returns the C++ text of an expression.
func (p *printer) expr(expression ast.Expression) (string, error) {
	switch expr := expression.(type) {
	case ast.Ident:
		return ident(expr.Name), nil
	case ast.IntLiteral:
		value, err := strconv.ParseUint(expr.Value, 10, 64)
		if err != nil {
			return "", p.errorf("invalid integer literal %s", expr.Value)
		}

		if value > math.MaxInt64 {
			return expr.Value + "ULL", nil
		}

		return expr.Value, nil
	case ast.FloatLiteral:
		return expr.Value, nil
	case ast.StringLiteral:
		return quote(expr.Value, '"') + "s", nil
	case ast.CharLiteral:
		if expr.Value >= utf8.RuneSelf {
			pos := ast.Position(p.name, expr)
			return "", p.errorf(
				"character literal %q at line %d, column %d is outside the ASCII range",
				expr.Value,
				pos.Line,
				pos.StartCol,
			)
		}

		return quote(string(expr.Value), '\''), nil
	case ast.BoolLiteral:
		return strconv.FormatBool(expr.Value), nil
	case ast.UnaryExpression:
		operand, err := p.operand(expr.Operand)
		if err != nil {
			return "", err
		}

		return expr.Op.Value + operand, nil
	case ast.BinaryExpression:
		left, err := p.operand(expr.Left)
		if err != nil {
			return "", err
		}

		right, err := p.operand(expr.Right)
		if err != nil {
			return "", err
		}

		return left + " " + expr.Op.Value + " " + right, nil
	case ast.CallExpression:
		return p.call(expr)
	default:
		return "", p.errorf("unexpected %s in expression", expression.Kind())
	}
}

// operand returns the C++ text of an expression used as an operand, parenthesised
// if it is itself an operation.
func (p *printer) operand(expression ast.Expression) (string, error) {
	text, err := p.expr(expression)
	if err != nil {
		return "", err
	}

	switch expression.(type) {
	case ast.BinaryExpression, ast.UnaryExpression:
		return "(" + text + ")", nil
	default:
		return text, nil
	}
}

// call returns the C++ text of a call to a builtin or user function.
func (p *printer) call(call ast.CallExpression) (string, error) {
	args := make([]string, 0, len(call.Args))

	for _, arg := range call.Args {
		text, err := p.expr(arg)
		if err != nil {
			return "", err
		}

		args = append(args, text)
	}

	switch call.Callee.Name {
	case "print":
		return "std::cout << " + strings.Join(args, " << ' ' << ") + " << std::endl", nil
	case "len":
		operand, err := p.operand(call.Args[0])
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("static_cast<%s>(%s.size())", types.Int.CPP(), operand), nil
	case "sqrt", "pow":
		return "std::" + call.Callee.Name + "(" + strings.Join(args, ", ") + ")", nil
	default:
		return ident(call.Callee.Name) + "(" + strings.Join(args, ", ") + ")", nil
	}
}

// endsInReturn reports whether the last statement of a block is a return.
func endsInReturn(block ast.Block) bool {
	if len(block.Statements) == 0 {
		return false
	}

	_, ok := block.Statements[len(block.Statements)-1].(ast.Return)

	return ok
}

// cppType returns the C++ spelling of a type annotation, "void" for none.
func cppType(name *ast.TypeName) string {
	if name == nil {
		return types.Void.CPP()
	}

	typ, ok := types.FromToken(name.Token.Kind)
	if !ok {
		return "auto"
	}

	return typ.CPP()
}

// reserved holds names that cannot be used as C++ identifiers in the generated
// translation unit.
var reserved = map[string]bool{
	"alignas": true, "alignof": true, "and": true, "and_eq": true, "asm": true, "auto": true,
	"bitand": true, "bitor": true, "bool": true, "break": true, "case": true, "catch": true,
	"char": true, "char16_t": true, "char32_t": true, "class": true, "compl": true, "const": true,
	"const_cast": true, "constexpr": true, "continue": true, "decltype": true, "default": true,
	"delete": true, "do": true, "double": true, "dynamic_cast": true, "else": true, "enum": true,
	"explicit": true, "export": true, "extern": true, "float": true, "for": true,
	"friend": true, "goto": true, "if": true, "inline": true, "int": true, "long": true,
	"mutable": true, "namespace": true, "new": true, "noexcept": true, "not": true, "not_eq": true,
	"nullptr": true, "operator": true, "or": true, "or_eq": true, "private": true,
	"protected": true, "public": true, "register": true, "reinterpret_cast": true, "return": true,
	"short": true, "signed": true, "sizeof": true, "static": true, "static_assert": true,
	"static_cast": true, "struct": true, "switch": true, "template": true, "this": true,
	"thread_local": true, "throw": true, "try": true, "typedef": true, "typeid": true,
	"typename": true, "union": true, "unsigned": true, "using": true, "virtual": true, "void": true,
	"volatile": true, "wchar_t": true, "while": true, "xor": true, "xor_eq": true,
	"std": true, "int32_t": true, "int64_t": true, "uint32_t": true, "uint64_t": true,
}

// ident returns a C++ safe spelling of a polyglot identifier.
func ident(name string) string {
	if reserved[name] {
		return name + "_"
	}

	return name
}

// quote returns text as a C++ literal delimited by delim, escaping as needed.
//
// Bytes outside printable ASCII are written as octal escapes, which unlike hex
// escapes never absorb a following character.
func quote(text string, delim byte) string {
	var b strings.Builder

	b.WriteByte(delim)

	for i := range len(text) {
		c := text[i]

		switch {
		case c == delim || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\t':
			b.WriteString(`\t`)
		case c == '\r':
			b.WriteString(`\r`)
		case c < ' ' || c >= utf8.RuneSelf-1:
			fmt.Fprintf(&b, `\%03o`, c)
		default:
			b.WriteByte(c)
		}
	}

	b.WriteByte(delim)

	return b.String()
}
