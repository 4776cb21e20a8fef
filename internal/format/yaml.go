package format

import (
	"io"

	"go.followtheprocess.codes/polyglot/internal/syntax/ast"
	"go.yaml.in/yaml/v4"
)

const yamlIndent = 2

// YAMLExporter is an [Exporter] that transforms the syntax tree into a YAML document.
type YAMLExporter struct{}

// Export implements [Exporter] for [YAMLExporter] and exports the given file as
// a complete YAML document.
func (y YAMLExporter) Export(w io.Writer, file ast.File) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(yamlIndent)

	if err := encoder.Encode(Build(file)); err != nil {
		return err
	}

	return encoder.Close()
}
