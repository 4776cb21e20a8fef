// Package syntaxtest provides syntax level test utilities.
package syntaxtest

import (
	"io/fs"
	"iter"
	"path/filepath"
	"testing"

	"go.followtheprocess.codes/polyglot/internal/syntax/ast"
	"go.followtheprocess.codes/polyglot/internal/syntax/parser"
	"go.followtheprocess.codes/polyglot/internal/syntax/scanner"
)

// Parse scans and parses src, failing the test if either phase reports a diagnostic.
func Parse(tb testing.TB, name, src string) ast.File {
	tb.Helper()

	tokens, err := scanner.New(name, []byte(src)).Tokenize()
	if err != nil {
		tb.Fatalf("unexpected diagnostic scanning %s: %v", name, err)
	}

	file, err := parser.New(name, tokens).Parse()
	if err != nil {
		tb.Fatalf("unexpected diagnostic parsing %s: %v", name, err)
	}

	return file
}

// AllFilesWithExtension returns an iterator over all filepaths under
// root with the matching extension, recursively.
//
// A call to AllFilesWithExtension like this:
//
//	for file, err := range AllFilesWithExtension(".", ".go") {
//	    // Loop body
//	}
//
// Is roughly equivalent to the following in bash:
//
//	for file in **/*.go; do { # stuff }; done
func AllFilesWithExtension(root, ext string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}

			if d.Type().IsRegular() && filepath.Ext(d.Name()) == ext {
				if !yield(path, nil) {
					return fs.SkipAll
				}
			}

			return nil
		})
		if err != nil {
			yield("", err)
		}
	}
}
