package resolver_test

import (
	"flag"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"go.followtheprocess.codes/polyglot/internal/diag"
	"go.followtheprocess.codes/polyglot/internal/syntax/parser"
	"go.followtheprocess.codes/polyglot/internal/syntax/resolver"
	"go.followtheprocess.codes/polyglot/internal/syntax/resolver/builtins"
	"go.followtheprocess.codes/polyglot/internal/syntax/scanner"
	"go.followtheprocess.codes/polyglot/internal/syntax/syntaxtest"
	"go.followtheprocess.codes/test"
	"go.followtheprocess.codes/txtar"
	"go.uber.org/goleak"
)

var update = flag.Bool("update", false, "Update testdata")

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

			parsed := syntaxtest.Parse(t, name, strings.TrimSuffix(src, "\n"))

			diagnostic := resolver.New(name, builtins.NewLibrary()).Analyze(parsed)
			test.True(t, diagnostic == nil, test.Context("unexpected semantic error: %v", diagnostic))
		})
	}
}

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

			parsed := syntaxtest.Parse(t, name, strings.TrimSuffix(src, "\n"))

			diagnostic := resolver.New(name, builtins.NewLibrary()).Analyze(parsed)
			test.True(t, diagnostic != nil, test.Context("Analyze() did not return an error but should have"))
			test.Equal(t, diagnostic.Kind(), diag.KindSemantic)

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

func TestLibrary(t *testing.T) {
	src := ">> string\n\n? loud := shout(\"hi\")"
	parsed := syntaxtest.Parse(t, "lib.pg", src)

	// The real library knows nothing of shout
	diagnostic := resolver.New("lib.pg", builtins.NewLibrary()).Analyze(parsed)
	test.True(t, diagnostic != nil, test.Context("expected shout to be undefined"))
	test.Equal(t, diagnostic.Error(), "semantic error (line 3, column 11): undefined: shout")

	diagnostic = resolver.New("lib.pg", syntaxtest.NewTestLibrary()).Analyze(parsed)
	test.True(t, diagnostic == nil, test.Context("unexpected semantic error: %v", diagnostic))
}

func TestFirstErrorWins(t *testing.T) {
	// Two problems, the one earlier in the file is reported
	src := "? x: i = \"one\"\n? y: b = 2"
	parsed := syntaxtest.Parse(t, "two.pg", src)

	diagnostic := resolver.New("two.pg", builtins.NewLibrary()).Analyze(parsed)
	test.True(t, diagnostic != nil)

	pos, ok := diag.Located(diagnostic)
	test.True(t, ok)
	test.Equal(t, pos.Line, 1)
	test.Equal(t, pos.StartCol, 10)
}

func TestAnalyzeDoesNotMutate(t *testing.T) {
	src := ">> io\n\nmain() {\n    ? x := 1\n    print(x)\n}"
	parsed := syntaxtest.Parse(t, "same.pg", src)
	before := len(parsed.Statements)

	diagnostic := resolver.New("same.pg", builtins.NewLibrary()).Analyze(parsed)
	test.True(t, diagnostic == nil, test.Context("unexpected semantic error: %v", diagnostic))

	// Analysing twice with fresh resolvers gives the same answer
	again := resolver.New("same.pg", builtins.NewLibrary()).Analyze(parsed)
	test.True(t, again == nil)
	test.Equal(t, len(parsed.Statements), before)
}

func FuzzResolver(f *testing.F) {
	// Get all valid source from testdata for the corpus
	validPattern := filepath.Join("testdata", "valid", "*.txtar")
	validFiles, err := filepath.Glob(validPattern)
	test.Ok(f, err)

	// Invalid ones too!
	invalidPattern := filepath.Join("testdata", "invalid", "*.txtar")
	invalidFiles, err := filepath.Glob(invalidPattern)
	test.Ok(f, err)

	files := slices.Concat(validFiles, invalidFiles)

	for _, file := range files {
		archive, err := txtar.ParseFile(file)
		test.Ok(f, err)

		src, ok := archive.Read("src.pg")
		test.True(f, ok, test.Context("%s missing src.pg", file))

		// Add the src to the fuzz corpus
		f.Add(src)
	}

	// Property: The resolver never panics or loops indefinitely, fuzz by default will
	// catch both of these
	f.Fuzz(func(t *testing.T, src string) {
		tokens, lexErr := scanner.New("fuzz", []byte(src)).Tokenize()
		if lexErr != nil {
			return
		}

		parsed, parseErr := parser.New("fuzz", tokens).Parse()
		if parseErr != nil {
			return
		}

		diagnostic := resolver.New("fuzz", builtins.NewLibrary()).Analyze(parsed)
		if diagnostic == nil {
			return
		}

		// Property: If there is an error, it is a located semantic error
		test.Equal(t, diagnostic.Kind(), diag.KindSemantic)

		pos, ok := diag.Located(diagnostic)
		test.True(t, ok)
		test.True(t, pos.IsValid(), test.Context("error position %#v is not valid", pos))
	})
}
