package parser_test

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.followtheprocess.codes/polyglot/internal/diag"
	"go.followtheprocess.codes/polyglot/internal/format"
	"go.followtheprocess.codes/polyglot/internal/syntax/ast"
	"go.followtheprocess.codes/polyglot/internal/syntax/parser"
	"go.followtheprocess.codes/polyglot/internal/syntax/scanner"
	"go.followtheprocess.codes/polyglot/internal/syntax/token"
	"go.followtheprocess.codes/test"
	"go.followtheprocess.codes/txtar"
	"go.uber.org/goleak"
)

var update = flag.Bool("update", false, "Update snapshots and testdata")

// parse runs the scanner and parser over src, the scanner must succeed.
func parse(t testing.TB, name, src string) (ast.File, diag.Diagnostic) {
	t.Helper()

	tokens, err := scanner.New(name, []byte(src)).Tokenize()
	if err != nil {
		t.Fatalf("scanner failed on %s: %v", name, err)
	}

	return parser.New(name, tokens).Parse()
}

// tree renders file with the tree exporter.
func tree(t testing.TB, file ast.File) string {
	t.Helper()

	var out strings.Builder
	test.Ok(t, format.TreeExporter{}.Export(&out, file))

	return out.String()
}

func TestValid(t *testing.T) {
	// Force colour for diffs but only locally
	test.ColorEnabled(os.Getenv("CI") == "")

	pattern := filepath.Join("testdata", "valid", "*.txtar")
	files, err := filepath.Glob(pattern)
	test.Ok(t, err)

	for _, file := range files {
		name := filepath.Base(file)
		t.Run(name, func(t *testing.T) {
			defer goleak.VerifyNone(t)

			archive, err := txtar.ParseFile(file)
			test.Ok(t, err)

			src, ok := archive.Read("src.pg")
			test.True(t, ok, test.Context("%s missing src.pg", file))

			want, ok := archive.Read("tree.txt")
			test.True(t, ok, test.Context("%s missing tree.txt", file))

			parsed, diagnostic := parse(t, name, strings.TrimSuffix(src, "\n"))
			test.True(t, diagnostic == nil, test.Context("unexpected syntax error: %v", diagnostic))

			got := tree(t, parsed)

			if *update {
				err := archive.Write("tree.txt", got)
				test.Ok(t, err)

				err = txtar.DumpFile(file, archive)
				test.Ok(t, err)

				return
			}

			test.Diff(t, strings.TrimSpace(got), strings.TrimSpace(want))
		})
	}
}

// TestInvalid is the primary test for invalid syntax. It does much the same as TestValid
// but instead of failing tests if a syntax error is encountered, it fails if there is not one.
//
// Additionally, the error is compared against a reference.
func TestInvalid(t *testing.T) {
	// Force colour for diffs but only locally
	test.ColorEnabled(os.Getenv("CI") == "")

	pattern := filepath.Join("testdata", "invalid", "*.txtar")
	files, err := filepath.Glob(pattern)
	test.Ok(t, err)

	for _, file := range files {
		name := filepath.Base(file)
		t.Run(name, func(t *testing.T) {
			defer goleak.VerifyNone(t)

			archive, err := txtar.ParseFile(file)
			test.Ok(t, err)

			src, ok := archive.Read("src.pg")
			test.True(t, ok, test.Context("%s missing src.pg", file))

			want, ok := archive.Read("errors.txt")
			test.True(t, ok, test.Context("%s missing errors.txt", file))

			parsed, diagnostic := parse(t, name, strings.TrimSuffix(src, "\n"))
			test.True(t, diagnostic != nil, test.Context("Parse() failed to return an error given invalid syntax"))
			test.Equal(t, diagnostic.Kind(), diag.KindSyntax)
			test.Equal(t, len(parsed.Statements), 0, test.Context("a failed parse should not return statements"))

			got := diag.Render(diagnostic) + "\n"

			if *update {
				err := archive.Write("errors.txt", got)
				test.Ok(t, err)

				err = txtar.DumpFile(file, archive)
				test.Ok(t, err)

				return
			}

			test.Diff(t, strings.TrimSpace(got), strings.TrimSpace(want))
		})
	}
}

func TestPrecedence(t *testing.T) {
	tests := []struct {
		name string // Name of the test case
		expr string // Expression under test
		want string // Fully parenthesised form
	}{
		{name: "product binds tighter", expr: "1 + 2 * 3", want: "(1 + (2 * 3))"},
		{name: "left associative", expr: "1 - 2 - 3", want: "((1 - 2) - 3)"},
		{name: "grouping", expr: "(1 + 2) * 3", want: "((1 + 2) * 3)"},
		{name: "comparison over logic", expr: "p < q && r >= u || v", want: "(((p < q) && (r >= u)) || v)"},
		{name: "equality below comparison", expr: "p < q == r > u", want: "((p < q) == (r > u))"},
		{name: "unary", expr: "-p * !q", want: "((-p) * (!q))"},
		{name: "modulo", expr: "p % 2 == 0", want: "((p % 2) == 0)"},
		{name: "call arguments", expr: "run(p + 1, next())", want: "run((p + 1), next())"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := parse(t, tt.name, "? x := "+tt.expr)
			test.True(t, err == nil, test.Context("unexpected syntax error: %v", err))
			test.Equal(t, len(file.Statements), 1)

			decl, ok := file.Statements[0].(ast.VarDecl)
			test.True(t, ok, test.Context("expected a VarDecl, got %T", file.Statements[0]))

			test.Equal(t, parenthesise(decl.Value), tt.want)
		})
	}
}

func TestParseNoTokens(t *testing.T) {
	file, err := parser.New("empty.pg", nil).Parse()
	test.True(t, err == nil, test.Context("unexpected syntax error: %v", err))
	test.Equal(t, file.Name, "empty.pg")
	test.Equal(t, len(file.Statements), 0)

	// Tokens missing their EOF still terminate
	tokens := []token.Token{{Kind: token.Ident, Value: "x", Start: 0, End: 1, Line: 1, StartCol: 1, EndCol: 1}}
	_, err = parser.New("partial.pg", tokens).Parse()
	test.True(t, err != nil, test.Context("expected a syntax error"))
	test.Equal(t, err.Error(), `syntax error (line 1, column 1): unexpected identifier "x" at top level, expected a declaration`)
}

func FuzzParser(f *testing.F) {
	pattern := filepath.Join("testdata", "*", "*.txtar")
	files, err := filepath.Glob(pattern)
	test.Ok(f, err)

	for _, file := range files {
		archive, err := txtar.ParseFile(file)
		test.Ok(f, err)

		src, ok := archive.Read("src.pg")
		test.True(f, ok, test.Context("%s missing src.pg", file))

		f.Add(src)
	}

	// Property: The parser never panics or loops indefinitely
	f.Fuzz(func(t *testing.T, src string) {
		tokens, lexErr := scanner.New("fuzz", []byte(src)).Tokenize()
		if lexErr != nil {
			return
		}

		file, err := parser.New("fuzz", tokens).Parse()
		if err == nil {
			test.Equal(t, file.Name, "fuzz")
			return
		}

		// Property: every failure is a located syntax error with a valid position
		test.Equal(t, err.Kind(), diag.KindSyntax)

		pos, ok := diag.Located(err)
		test.True(t, ok)
		test.True(t, pos.IsValid(), test.Context("error position %#v is not valid", pos))
	})
}

// parenthesise renders an expression with every operation wrapped in parentheses.
func parenthesise(expr ast.Expression) string {
	switch expr := expr.(type) {
	case ast.BinaryExpression:
		return "(" + parenthesise(expr.Left) + " " + expr.Op.Value + " " + parenthesise(expr.Right) + ")"
	case ast.UnaryExpression:
		return "(" + expr.Op.Value + parenthesise(expr.Operand) + ")"
	case ast.CallExpression:
		args := make([]string, 0, len(expr.Args))
		for _, arg := range expr.Args {
			args = append(args, parenthesise(arg))
		}

		return expr.Callee.Name + "(" + strings.Join(args, ", ") + ")"
	case ast.Ident:
		return expr.Name
	case ast.IntLiteral:
		return expr.Value
	default:
		return "?"
	}
}
