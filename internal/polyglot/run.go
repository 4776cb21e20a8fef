package polyglot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"unicode/utf8"

	"go.followtheprocess.codes/msg"
	"go.followtheprocess.codes/polyglot/internal/codegen"
	"go.followtheprocess.codes/polyglot/internal/diag"
	"go.followtheprocess.codes/polyglot/internal/format"
	"go.followtheprocess.codes/polyglot/internal/pipeline"
	"go.followtheprocess.codes/polyglot/internal/syntax/ast"
	"go.followtheprocess.codes/polyglot/internal/syntax/parser"
	"go.followtheprocess.codes/polyglot/internal/syntax/resolver"
	"go.followtheprocess.codes/polyglot/internal/syntax/resolver/builtins"
	"go.followtheprocess.codes/polyglot/internal/syntax/scanner"
	"go.followtheprocess.codes/polyglot/internal/syntax/token"
)

// Usage is the message printed when polyglot is called with the wrong arguments.
const Usage = "usage: polyglot <source-file.pg>"

var (
	// ErrUsage is returned when polyglot is called with anything other than exactly
	// one source file argument, or with invalid options.
	ErrUsage = errors.New("invalid usage")

	// ErrCompile is returned, wrapping the [diag.Diagnostic], when compilation fails.
	ErrCompile = errors.New("compilation failed")

	// ErrInvalidUTF8 is the cause of the [diag.IOError] reported for a source file
	// that is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("source is not valid UTF-8")
)

// ExitCode returns the process exit status for the error returned from [Polyglot.Run].
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	return 1
}

// Run compiles the single source file named in args.
func (p Polyglot) Run(ctx context.Context, args []string, options Options) error {
	logger := p.logger.Prefixed("run")
	logger.Debug("Starting polyglot", slog.String("version", p.version), slog.Any("args", args))

	if len(args) != 1 {
		logger.Debug("Wrong number of arguments", slog.Int("got", len(args)))
		fmt.Fprintln(p.stderr, Usage)

		return ErrUsage
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	path := args[0]
	logger = logger.With(slog.String("file", path))

	src, diagnostic := readSource(path)
	if diagnostic != nil {
		return p.fail(options.ErrorFormat, diagnostic)
	}

	logger.Debug("Read source file", slog.Int("bytes", len(src)))

	cfg, cfgPath, diagnostic := loadConfig(path, options.Config)
	if diagnostic != nil {
		return p.fail(options.ErrorFormat, diagnostic)
	}

	if cfgPath != "" {
		logger.Debug("Loaded config", slog.String("config", cfgPath))
	}

	options = options.merge(cfg)
	if err := options.Validate(); err != nil {
		fmt.Fprintf(p.stderr, "%v\n%s\n", err, Usage)
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	options = options.withDefaults()
	logger.Debug("Compile configuration", slog.Any("options", options))

	stages, err := newStages(options)
	if err != nil {
		return err
	}

	var timings *pipeline.Timings

	reporters := []pipeline.Reporter{logReporter{logger: logger}}
	if !options.Quiet {
		reporters = append(reporters, consoleReporter{w: p.stdout})
	}

	if options.Timings {
		timings = pipeline.NewTimings(nil)
		reporters = append(reporters, timings)
	}

	opts := []pipeline.Option{pipeline.WithReporter(pipeline.Multi(reporters...))}
	if options.Verify {
		opts = append(opts, pipeline.VerifyDeterminism())
	}

	compiler := pipeline.New(stages, opts...)

	output, diagnostic := compiler.Compile(pipeline.Request{Name: path, Source: string(src)})

	if timings != nil {
		if err := p.printTimings(options.ErrorFormat, timings); err != nil {
			return err
		}
	}

	if diagnostic != nil {
		return p.fail(options.ErrorFormat, diagnostic)
	}

	logger.Debug("Compilation succeeded", slog.Int("bytes", len(output)))

	if !options.Quiet {
		msg.Fsuccess(p.stdout, "compilation succeeded")
	}

	fmt.Fprint(p.stdout, output)

	return nil
}

// printTimings writes the phase timings to stderr, as a single JSON object when
// diagnostics are JSON so that stderr stays machine readable.
func (p Polyglot) printTimings(errorFormat string, timings *pipeline.Timings) error {
	if errorFormat != ErrorFormatJSON {
		fmt.Fprint(p.stderr, timings.Summary())
		return nil
	}

	data, err := json.Marshal(timings.Report())
	if err != nil {
		return fmt.Errorf("could not encode timings: %w", err)
	}

	fmt.Fprintf(p.stderr, "%s\n", data)

	return nil
}

// fail reports a diagnostic on stderr in the requested format and returns the
// error [Polyglot.Run] should return.
func (p Polyglot) fail(errorFormat string, diagnostic diag.Diagnostic) error {
	if errorFormat == ErrorFormatJSON {
		data, err := diag.JSON(diagnostic)
		if err != nil {
			return err
		}

		fmt.Fprintf(p.stderr, "%s\n", data)
	} else {
		msg.Ferror(p.stderr, "compilation error: %s", diag.Render(diagnostic))
	}

	return fmt.Errorf("%w: %w", ErrCompile, diagnostic)
}

// readSource reads the whole of the file at path, any failure is a [diag.IOError].
func readSource(path string) ([]byte, diag.Diagnostic) {
	f, err := os.Open(path)
	if err != nil {
		return nil, diag.FromIO(err)
	}
	defer f.Close()

	src, err := io.ReadAll(f)
	if err != nil {
		return nil, diag.FromIO(err)
	}

	if !utf8.Valid(src) {
		return nil, diag.FromIO(fmt.Errorf("%s: %w", path, ErrInvalidUTF8))
	}

	return src, nil
}

// newStages returns the compilation stages for the configured target.
func newStages(options Options) (pipeline.Stages[token.Token, ast.File], error) {
	stages := pipeline.Stages[token.Token, ast.File]{
		NewLexer: func(req pipeline.Request) pipeline.Lexer[token.Token] {
			return scanner.New(req.Name, []byte(req.Source), scanner.WithSymbols(options.symbols))
		},
		NewParser: func(name string, tokens []token.Token) pipeline.Parser[ast.File] {
			return parser.New(name, tokens)
		},
		NewAnalyzer: func(name string) pipeline.Analyzer[ast.File] {
			return resolver.New(name, builtins.NewLibrary())
		},
	}

	if options.Target == TargetCPP {
		stages.NewGenerator = func() pipeline.Generator[ast.File] {
			return codegen.New(codegen.Options{Indent: options.Indent})
		}

		return stages, nil
	}

	exporter, err := format.ByName(options.Target)
	if err != nil {
		return stages, err
	}

	stages.NewGenerator = func() pipeline.Generator[ast.File] {
		return format.Generator{Exporter: exporter}
	}

	return stages, nil
}
