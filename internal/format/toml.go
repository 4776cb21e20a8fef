package format

import (
	"io"

	"github.com/BurntSushi/toml"
	"go.followtheprocess.codes/polyglot/internal/syntax/ast"
)

// TOMLExporter is an [Exporter] that transforms the syntax tree into a TOML document.
type TOMLExporter struct{}

// Export implements [Exporter] for [TOMLExporter] and exports the given file
// as a complete TOML document.
func (t TOMLExporter) Export(w io.Writer, file ast.File) error {
	encoder := toml.NewEncoder(w)
	encoder.Indent = ""

	return encoder.Encode(Build(file))
}
