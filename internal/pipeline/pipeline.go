// Package pipeline implements the polyglot compilation pipeline.
//
// A [Pipeline] runs the four compilation phases in order: lexical analysis, syntax analysis,
// semantic analysis and code generation. Each phase is performed by a collaborator built
// fresh for every compilation from the factories in [Stages], and the first phase to fail
// ends the compilation with its [diag.Diagnostic].
//
// The pipeline is generic over the token and syntax tree types so the tree is passed
// from parser to analyser to generator without the pipeline ever looking inside it.
package pipeline

import (
	"fmt"
	"strings"

	"go.followtheprocess.codes/polyglot/internal/diag"
)

// Request is a single compilation request.
type Request struct {
	// Name is the name of the source, used in diagnostics and progress output.
	Name string

	// Source is the full source text.
	Source string
}

// Lexer turns source text into a token sequence.
type Lexer[T any] interface {
	// Tokenize scans the whole source, on failure the diagnostic is a [diag.LexError].
	Tokenize() ([]T, diag.Diagnostic)
}

// Parser turns a token sequence into a syntax tree.
type Parser[N any] interface {
	// Parse builds the tree, on failure the diagnostic is a [diag.SyntaxError].
	Parse() (N, diag.Diagnostic)
}

// Analyzer validates a syntax tree.
type Analyzer[N any] interface {
	// Analyze checks the tree without modifying it, returning a [diag.SemanticError]
	// if it is invalid.
	Analyze(tree N) diag.Diagnostic
}

// Generator produces output text from a validated syntax tree.
type Generator[N any] interface {
	// Generate emits the output, on failure the diagnostic is a [diag.CodeGenError].
	Generate(tree N) (string, diag.Diagnostic)
}

// Stages holds the factories used to build the collaborator for each phase.
//
// Every factory is called at most once per compilation, and not at all if an earlier
// phase has failed.
type Stages[T, N any] struct {
	NewLexer     func(req Request) Lexer[T]
	NewParser    func(name string, tokens []T) Parser[N]
	NewAnalyzer  func(name string) Analyzer[N]
	NewGenerator func() Generator[N]
}

// Option is a functional option for configuring a [Pipeline].
type Option func(*options)

// options holds the configuration shared by every instantiation of [Pipeline].
type options struct {
	reporter Reporter
	verify   bool
}

// WithReporter sets the [Reporter] that receives progress events, by default
// progress is discarded.
func WithReporter(reporter Reporter) Option {
	return func(o *options) {
		if reporter != nil {
			o.reporter = reporter
		}
	}
}

// VerifyDeterminism makes the pipeline run a second, fresh generator over the same
// validated tree and fail with a [diag.CodeGenError] if the two outputs differ.
func VerifyDeterminism() Option {
	return func(o *options) {
		o.verify = true
	}
}

// Pipeline is the compilation pipeline.
//
// A Pipeline holds no per compilation state, so [Pipeline.Compile] may be called
// any number of times, including concurrently, provided the reporter allows it.
type Pipeline[T, N any] struct {
	stages  Stages[T, N]
	options options
}

// New returns a new [Pipeline] building its phases from stages.
func New[T, N any](stages Stages[T, N], opts ...Option) *Pipeline[T, N] {
	cfg := options{reporter: NopReporter{}}

	for _, opt := range opts {
		opt(&cfg)
	}

	return &Pipeline[T, N]{
		stages:  stages,
		options: cfg,
	}
}

// Compile runs all four phases over req, returning the generated output.
//
// The first phase to fail stops the compilation and its diagnostic is returned
// unchanged, no later phase is constructed.
func (p *Pipeline[T, N]) Compile(req Request) (string, diag.Diagnostic) {
	reporter := p.options.reporter

	reporter.Begin(req.Name)

	reporter.PhaseStart(PhaseLex)

	tokens, err := p.stages.NewLexer(req).Tokenize()
	if err != nil {
		return "", err
	}

	reporter.PhaseDone(PhaseLex, fmt.Sprintf("produced %d tokens", len(tokens)))

	reporter.PhaseStart(PhaseParse)

	tree, err := p.stages.NewParser(req.Name, tokens).Parse()
	if err != nil {
		return "", err
	}

	reporter.PhaseDone(PhaseParse, "built abstract syntax tree")

	reporter.PhaseStart(PhaseAnalyze)

	if err = p.stages.NewAnalyzer(req.Name).Analyze(tree); err != nil {
		return "", err
	}

	reporter.PhaseDone(PhaseAnalyze, "semantic checks passed")

	reporter.PhaseStart(PhaseGenerate)

	output, err := p.stages.NewGenerator().Generate(tree)
	if err != nil {
		return "", err
	}

	if p.options.verify {
		again, err := p.stages.NewGenerator().Generate(tree)
		if err != nil {
			return "", err
		}

		if line, differs := firstDifference(output, again); differs {
			return "", diag.CodeGenError{
				Msg: fmt.Sprintf("non-deterministic output: two runs over the same tree differ at line %d", line),
			}
		}
	}

	reporter.PhaseDone(PhaseGenerate, fmt.Sprintf("generated %d lines", countLines(output)))

	return output, nil
}

// countLines returns the number of lines in text, a final line without a
// trailing newline still counts.
func countLines(text string) int {
	if text == "" {
		return 0
	}

	lines := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		lines++
	}

	return lines
}

// firstDifference returns the 1 indexed line at which a and b first differ, and
// whether they differ at all.
func firstDifference(a, b string) (int, bool) {
	if a == b {
		return 0, false
	}

	aLines := strings.Split(a, "\n")
	bLines := strings.Split(b, "\n")

	for i := range min(len(aLines), len(bLines)) {
		if aLines[i] != bLines[i] {
			return i + 1, true
		}
	}

	return min(len(aLines), len(bLines)) + 1, true
}
