// Package format provides exporters that render a validated polyglot syntax tree in
// formats other than C++, for inspecting what the front end of the compiler produced.
//
// Every exporter works on the same format-agnostic [Node] tree built by [Build], and
// [Generator] adapts any [Exporter] into a code generation phase so that a whole
// compilation can target a tree dump instead of C++.
package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.followtheprocess.codes/polyglot/internal/diag"
	"go.followtheprocess.codes/polyglot/internal/syntax/ast"
)

// Exporter is the interface defining a mechanism for exporting a polyglot syntax tree
// into an external format.
type Exporter interface {
	// Export exports the [ast.File] into an external format, written to w.
	Export(w io.Writer, file ast.File) error
}

// Node is a format-agnostic view of a single syntax tree node.
type Node struct {
	Kind     string `json:"kind"               toml:"kind"               yaml:"kind"`
	Pos      string `json:"pos,omitempty"      toml:"pos,omitempty"      yaml:"pos,omitempty"`
	Value    string `json:"value,omitempty"    toml:"value,omitempty"    yaml:"value,omitempty"`
	Children []Node `json:"children,omitempty" toml:"children,omitempty" yaml:"children,omitempty"`
}

// Generator adapts an [Exporter] into a code generation phase, producing the
// exported document as the compiler's output.
type Generator struct {
	Exporter Exporter
}

// Generate exports file, any failure to do so is a [diag.CodeGenError].
func (g Generator) Generate(file ast.File) (string, diag.Diagnostic) {
	var out strings.Builder
	if err := g.Exporter.Export(&out, file); err != nil {
		return "", diag.CodeGenError{Msg: err.Error()}
	}

	return out.String(), nil
}

// ByName returns the exporter registered under name, the names are those
// accepted by the --target flag.
func ByName(name string) (Exporter, error) {
	switch name {
	case "tree":
		return TreeExporter{}, nil
	case "json":
		return JSONExporter{}, nil
	case "yaml":
		return YAMLExporter{}, nil
	case "toml":
		return TOMLExporter{}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q", name)
	}
}

// Build converts a syntax tree into its [Node] form.
func Build(file ast.File) Node {
	root := Node{Kind: ast.KindFile.String(), Value: file.Name}

	for _, statement := range file.Statements {
		root.Children = append(root.Children, build(statement))
	}

	return root
}

// build converts a single ast node and its descendants.
func build(node ast.Node) Node {
	tok := node.Start()
	out := Node{
		Kind: node.Kind().String(),
		Pos:  fmt.Sprintf("%d:%d", tok.Line, tok.StartCol),
	}

	switch node := node.(type) {
	case ast.Import:
		out.children(node.Module)
	case ast.VarDecl:
		out.children(node.Name)
		if node.Type != nil {
			out.children(*node.Type)
		}

		if node.Value != nil {
			out.children(node.Value)
		}
	case ast.FuncDecl:
		out.children(node.Name)
		for _, param := range node.Params {
			out.children(param)
		}

		if node.Result != nil {
			out.children(*node.Result)
		}

		out.children(node.Body)
	case ast.Param:
		out.children(node.Name, node.Type)
	case ast.TypeName:
		out.Value = node.Name()
	case ast.Block:
		for _, statement := range node.Statements {
			out.children(statement)
		}
	case ast.Return:
		if node.Value != nil {
			out.children(node.Value)
		}
	case ast.If:
		out.children(node.Cond, node.Then)
		if node.Else != nil {
			out.children(node.Else)
		}
	case ast.Loop:
		out.children(node.Cond, node.Body)
	case ast.Break, ast.Continue:
	case ast.Assign:
		out.Value = node.Op.Value
		out.children(node.Target, node.Value)
	case ast.ExprStatement:
		out.children(node.Expr)
	case ast.Ident:
		out.Value = node.Name
	case ast.IntLiteral:
		out.Value = node.Value
	case ast.FloatLiteral:
		out.Value = node.Value
	case ast.StringLiteral:
		out.Value = strconv.Quote(node.Value)
	case ast.CharLiteral:
		out.Value = strconv.QuoteRune(node.Value)
	case ast.BoolLiteral:
		out.Value = strconv.FormatBool(node.Value)
	case ast.UnaryExpression:
		out.Value = node.Op.Value
		out.children(node.Operand)
	case ast.BinaryExpression:
		out.Value = node.Op.Value
		out.children(node.Left, node.Right)
	case ast.CallExpression:
		out.children(node.Callee)
		for _, arg := range node.Args {
			out.children(arg)
		}
	}

	return out
}

// children appends the converted nodes as children of n.
func (n *Node) children(nodes ...ast.Node) {
	for _, node := range nodes {
		n.Children = append(n.Children, build(node))
	}
}
