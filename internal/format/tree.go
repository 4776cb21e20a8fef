package format

import (
	"fmt"
	"io"
	"strings"

	"go.followtheprocess.codes/polyglot/internal/syntax/ast"
)

// treeIndent is the indentation added for each level of the tree.
const treeIndent = "  "

// TreeExporter is an [Exporter] that renders the syntax tree as an indented outline,
// one node per line as "<kind> <line>:<column> [value]".
type TreeExporter struct{}

// Export implements [Exporter] for [TreeExporter].
func (t TreeExporter) Export(w io.Writer, file ast.File) error {
	var out strings.Builder
	writeTree(&out, Build(file), 0)

	if _, err := io.WriteString(w, out.String()); err != nil {
		return fmt.Errorf("could not write tree: %w", err)
	}

	return nil
}

// writeTree writes node and its children at the given depth.
func writeTree(out *strings.Builder, node Node, depth int) {
	out.WriteString(strings.Repeat(treeIndent, depth))
	out.WriteString(node.Kind)

	if node.Pos != "" {
		out.WriteByte(' ')
		out.WriteString(node.Pos)
	}

	if node.Value != "" {
		out.WriteByte(' ')
		out.WriteString(node.Value)
	}

	out.WriteByte('\n')

	for _, child := range node.Children {
		writeTree(out, child, depth+1)
	}
}
