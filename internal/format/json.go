package format

import (
	"encoding/json"
	"io"

	"go.followtheprocess.codes/polyglot/internal/syntax/ast"
)

// JSONExporter is an [Exporter] that transforms the syntax tree into a JSON document.
type JSONExporter struct{}

// Export implements [Exporter] for [JSONExporter] and exports the given file
// as a complete JSON document.
func (j JSONExporter) Export(w io.Writer, file ast.File) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(Build(file))
}
