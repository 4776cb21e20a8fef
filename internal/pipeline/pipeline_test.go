package pipeline_test

import (
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.followtheprocess.codes/polyglot/internal/codegen"
	"go.followtheprocess.codes/polyglot/internal/diag"
	"go.followtheprocess.codes/polyglot/internal/pipeline"
	"go.followtheprocess.codes/polyglot/internal/syntax"
	"go.followtheprocess.codes/polyglot/internal/syntax/ast"
	"go.followtheprocess.codes/polyglot/internal/syntax/parser"
	"go.followtheprocess.codes/polyglot/internal/syntax/resolver"
	"go.followtheprocess.codes/polyglot/internal/syntax/resolver/builtins"
	"go.followtheprocess.codes/polyglot/internal/syntax/scanner"
	"go.followtheprocess.codes/polyglot/internal/syntax/token"
	"go.followtheprocess.codes/test"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"
)

// counts records how many times each stage factory was called.
type counts struct {
	lexers     atomic.Int32
	parsers    atomic.Int32
	analyzers  atomic.Int32
	generators atomic.Int32
}

// failures configures which fake stage should fail.
type failures struct {
	lex      diag.Diagnostic
	parse    diag.Diagnostic
	analyze  diag.Diagnostic
	generate diag.Diagnostic
}

type fakeLexer struct {
	err diag.Diagnostic
	src string
}

func (l fakeLexer) Tokenize() ([]string, diag.Diagnostic) {
	if l.err != nil {
		return nil, l.err
	}

	return strings.Fields(l.src), nil
}

type fakeParser struct {
	err    diag.Diagnostic
	tokens []string
}

func (p fakeParser) Parse() ([]string, diag.Diagnostic) {
	if p.err != nil {
		return nil, p.err
	}

	return p.tokens, nil
}

type fakeAnalyzer struct {
	err diag.Diagnostic
}

func (a fakeAnalyzer) Analyze([]string) diag.Diagnostic {
	return a.err
}

type fakeGenerator struct {
	err diag.Diagnostic
}

func (g fakeGenerator) Generate(tree []string) (string, diag.Diagnostic) {
	if g.err != nil {
		return "", g.err
	}

	return strings.Join(tree, "\n") + "\n", nil
}

// flakyGenerator includes its run number in the output so no two runs agree.
type flakyGenerator struct {
	run int32
}

func (g flakyGenerator) Generate(tree []string) (string, diag.Diagnostic) {
	return fmt.Sprintf("%s\nrun %d\n", strings.Join(tree, "\n"), g.run), nil
}

func fakeStages(c *counts, fail failures) pipeline.Stages[string, []string] {
	return pipeline.Stages[string, []string]{
		NewLexer: func(req pipeline.Request) pipeline.Lexer[string] {
			c.lexers.Add(1)
			return fakeLexer{src: req.Source, err: fail.lex}
		},
		NewParser: func(_ string, tokens []string) pipeline.Parser[[]string] {
			c.parsers.Add(1)
			return fakeParser{tokens: tokens, err: fail.parse}
		},
		NewAnalyzer: func(string) pipeline.Analyzer[[]string] {
			c.analyzers.Add(1)
			return fakeAnalyzer{err: fail.analyze}
		},
		NewGenerator: func() pipeline.Generator[[]string] {
			c.generators.Add(1)
			return fakeGenerator{err: fail.generate}
		},
	}
}

// recorder is a Reporter that records every event as a line of text.
type recorder struct {
	events []string
}

func (r *recorder) Begin(name string) {
	r.events = append(r.events, "begin "+name)
}

func (r *recorder) PhaseStart(phase pipeline.Phase) {
	r.events = append(r.events, fmt.Sprintf("[%d/%d] %s", phase.Step(), pipeline.NumPhases, phase))
}

func (r *recorder) PhaseDone(phase pipeline.Phase, summary string) {
	r.events = append(r.events, fmt.Sprintf("%s: %s", phase, summary))
}

func TestCompile(t *testing.T) {
	c := &counts{}
	rec := &recorder{}

	p := pipeline.New(fakeStages(c, failures{}), pipeline.WithReporter(rec))

	got, err := p.Compile(pipeline.Request{Name: "ok.pg", Source: "one two three"})
	test.True(t, err == nil, test.Context("unexpected diagnostic: %v", err))
	test.Equal(t, got, "one\ntwo\nthree\n")

	want := []string{
		"begin ok.pg",
		"[1/4] lexical analysis",
		"lexical analysis: produced 3 tokens",
		"[2/4] syntax analysis",
		"syntax analysis: built abstract syntax tree",
		"[3/4] semantic analysis",
		"semantic analysis: semantic checks passed",
		"[4/4] code generation",
		"code generation: generated 3 lines",
	}

	test.EqualFunc(t, rec.events, want, slices.Equal)

	test.Equal(t, c.lexers.Load(), 1)
	test.Equal(t, c.parsers.Load(), 1)
	test.Equal(t, c.analyzers.Load(), 1)
	test.Equal(t, c.generators.Load(), 1)
}

func TestFailFast(t *testing.T) {
	lex := diag.LexError{Msg: "bad char", Pos: syntax.Position{Name: "x.pg", Line: 1, StartCol: 1, EndCol: 1}}
	parse := diag.SyntaxError{Msg: "bad tree", Pos: syntax.Position{Name: "x.pg", Line: 2, StartCol: 3, EndCol: 3}}
	analyze := diag.SemanticError{Msg: "bad types", Pos: syntax.Position{Name: "x.pg", Line: 3, StartCol: 5, EndCol: 6}}
	generate := diag.CodeGenError{Msg: "bad output"}

	tests := []struct {
		want       diag.Diagnostic // The diagnostic Compile should return unchanged
		fail       failures        // Which stage fails
		name       string          // Name of the test case
		parsers    int32           // Expected number of parsers built
		analyzers  int32           // Expected number of analyzers built
		generators int32           // Expected number of generators built
		events     int             // Expected number of reporter events
	}{
		{
			name:   "lex",
			fail:   failures{lex: lex},
			want:   lex,
			events: 2,
		},
		{
			name:    "parse",
			fail:    failures{parse: parse},
			want:    parse,
			parsers: 1,
			events:  4,
		},
		{
			name:      "analyze",
			fail:      failures{analyze: analyze},
			want:      analyze,
			parsers:   1,
			analyzers: 1,
			events:    6,
		},
		{
			name:       "generate",
			fail:       failures{generate: generate},
			want:       generate,
			parsers:    1,
			analyzers:  1,
			generators: 1,
			events:     8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &counts{}
			rec := &recorder{}

			p := pipeline.New(fakeStages(c, tt.fail), pipeline.WithReporter(rec))

			got, err := p.Compile(pipeline.Request{Name: "x.pg", Source: "a b"})
			test.Equal(t, got, "")
			test.True(t, err != nil, test.Context("expected a diagnostic"))
			test.Equal(t, err.Kind(), tt.want.Kind())
			test.Equal(t, err.Error(), tt.want.Error())

			test.Equal(t, c.lexers.Load(), 1)
			test.Equal(t, c.parsers.Load(), tt.parsers)
			test.Equal(t, c.analyzers.Load(), tt.analyzers)
			test.Equal(t, c.generators.Load(), tt.generators)

			// The failing phase is started but never reported done
			test.Equal(t, len(rec.events), tt.events)
		})
	}
}

func TestVerifyDeterminism(t *testing.T) {
	t.Run("stable", func(t *testing.T) {
		c := &counts{}
		p := pipeline.New(fakeStages(c, failures{}), pipeline.VerifyDeterminism())

		got, err := p.Compile(pipeline.Request{Name: "ok.pg", Source: "one two"})
		test.True(t, err == nil, test.Context("unexpected diagnostic: %v", err))
		test.Equal(t, got, "one\ntwo\n")

		// Two fresh generators, one for the real run and one to compare
		test.Equal(t, c.generators.Load(), 2)
	})

	t.Run("unstable", func(t *testing.T) {
		c := &counts{}
		stages := fakeStages(c, failures{})
		stages.NewGenerator = func() pipeline.Generator[[]string] {
			return flakyGenerator{run: c.generators.Add(1)}
		}

		p := pipeline.New(stages, pipeline.VerifyDeterminism())

		got, err := p.Compile(pipeline.Request{Name: "flaky.pg", Source: "one two"})
		test.Equal(t, got, "")
		test.True(t, err != nil, test.Context("expected a diagnostic"))
		test.Equal(t, err.Kind(), diag.KindCodeGen)
		test.Equal(
			t,
			err.Error(),
			"code-generation error: non-deterministic output: two runs over the same tree differ at line 3",
		)
	})

	t.Run("off", func(t *testing.T) {
		c := &counts{}
		stages := fakeStages(c, failures{})
		stages.NewGenerator = func() pipeline.Generator[[]string] {
			return flakyGenerator{run: c.generators.Add(1)}
		}

		p := pipeline.New(stages)

		got, err := p.Compile(pipeline.Request{Name: "flaky.pg", Source: "one"})
		test.True(t, err == nil)
		test.Equal(t, got, "one\nrun 1\n")
		test.Equal(t, c.generators.Load(), 1)
	})
}

// polyglot returns the real compiler stages.
func polyglot() pipeline.Stages[token.Token, ast.File] {
	return pipeline.Stages[token.Token, ast.File]{
		NewLexer: func(req pipeline.Request) pipeline.Lexer[token.Token] {
			return scanner.New(req.Name, []byte(req.Source))
		},
		NewParser: func(name string, tokens []token.Token) pipeline.Parser[ast.File] {
			return parser.New(name, tokens)
		},
		NewAnalyzer: func(name string) pipeline.Analyzer[ast.File] {
			return resolver.New(name, builtins.NewLibrary())
		},
		NewGenerator: func() pipeline.Generator[ast.File] {
			return codegen.New(codegen.Options{})
		},
	}
}

func TestCompilePolyglot(t *testing.T) {
	tests := []struct {
		name string    // Name of the test case
		src  string    // Source to compile
		err  string    // Expected rendered diagnostic, empty if compilation succeeds
		kind diag.Kind // Expected diagnostic kind
	}{
		{
			name: "valid",
			src:  ">> io\n\nmain() {\n    print(\"hi\")\n}",
		},
		{
			name: "lexical",
			src:  "? x := 1 ~ 2",
			err:  "lexical error (line 1, column 10): unrecognised character '~'",
			kind: diag.KindLex,
		},
		{
			name: "semantic",
			src:  "main() {\n    print(\"hi\")\n}",
			err:  "semantic error (line 2, column 5): \"print\" requires '>> io'",
			kind: diag.KindSemantic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := pipeline.New(polyglot(), pipeline.VerifyDeterminism())

			got, err := p.Compile(pipeline.Request{Name: tt.name + ".pg", Source: tt.src})
			if tt.err == "" {
				test.True(t, err == nil, test.Context("unexpected diagnostic: %v", err))
				test.True(t, strings.Contains(got, "int main() {"), test.Context("no main in output:\n%s", got))

				return
			}

			test.True(t, err != nil, test.Context("expected a diagnostic"))
			test.Equal(t, got, "")
			test.Equal(t, err.Kind(), tt.kind)
			test.Equal(t, diag.Render(err), tt.err)
		})
	}
}

func TestCompileConcurrent(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := pipeline.New(polyglot())

	src := ">> io\n\nsquare(x: i): i {\n    <- x * x\n}\n\nmain() {\n    print(square(4))\n}"

	want, err := p.Compile(pipeline.Request{Name: "square.pg", Source: src})
	test.True(t, err == nil, test.Context("unexpected diagnostic: %v", err))

	outputs := make([]string, 16)

	var group errgroup.Group
	for i := range outputs {
		group.Go(func() error {
			got, diagnostic := p.Compile(pipeline.Request{Name: "square.pg", Source: src})
			if diagnostic != nil {
				return diagnostic
			}

			outputs[i] = got

			return nil
		})
	}

	test.Ok(t, group.Wait())

	for _, got := range outputs {
		test.Diff(t, got, want)
	}
}

func TestPhase(t *testing.T) {
	test.Equal(t, pipeline.PhaseLex.String(), "lexical analysis")
	test.Equal(t, pipeline.PhaseParse.String(), "syntax analysis")
	test.Equal(t, pipeline.PhaseAnalyze.String(), "semantic analysis")
	test.Equal(t, pipeline.PhaseGenerate.String(), "code generation")
	test.Equal(t, pipeline.Phase(12).String(), "Phase(12)")

	test.Equal(t, pipeline.PhaseLex.Step(), 1)
	test.Equal(t, pipeline.PhaseGenerate.Step(), pipeline.NumPhases)
}

func TestMulti(t *testing.T) {
	first := &recorder{}
	second := &recorder{}

	reporter := pipeline.Multi(first, nil, second)
	reporter.Begin("multi.pg")
	reporter.PhaseStart(pipeline.PhaseLex)
	reporter.PhaseDone(pipeline.PhaseLex, "produced 1 tokens")

	test.Equal(t, len(first.events), 3)
	test.Equal(t, strings.Join(first.events, "\n"), strings.Join(second.events, "\n"))

	// Must not panic
	pipeline.NopReporter{}.Begin("nop.pg")
	pipeline.Multi().PhaseDone(pipeline.PhaseParse, "nothing")
}

// fakeClock advances by step every time it is read.
type fakeClock struct {
	now  time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	now := c.now
	c.now = c.now.Add(c.step)

	return now
}

func TestTimings(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), step: 2 * time.Millisecond}
	timings := pipeline.NewTimings(clock.Now)

	p := pipeline.New(fakeStages(&counts{}, failures{}), pipeline.WithReporter(timings))

	_, err := p.Compile(pipeline.Request{Name: "time.pg", Source: "a b"})
	test.True(t, err == nil)

	phases := timings.Phases()
	test.Equal(t, len(phases), pipeline.NumPhases)

	for i, phase := range phases {
		test.Equal(t, phase.Phase, pipeline.Phase(i))
		test.Equal(t, phase.Duration, 2*time.Millisecond)
	}

	want := `timings:
  lexical analysis        2.00 ms  // produced 2 tokens
  syntax analysis         2.00 ms  // built abstract syntax tree
  semantic analysis       2.00 ms  // semantic checks passed
  code generation         2.00 ms  // generated 2 lines
  total                   8.00 ms
`
	test.Diff(t, timings.Summary(), want)

	report := timings.Report()
	test.Equal(t, report.Name, "time.pg")
	test.Equal(t, len(report.Phases), pipeline.NumPhases)
	test.Equal(t, report.Phases[0].Name, "lexical analysis")
	test.Equal(t, report.TotalMS, 8.0)
}

func TestTimingsFailedPhase(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), step: time.Millisecond}
	timings := pipeline.NewTimings(clock.Now)

	fail := failures{analyze: diag.SemanticError{Msg: "nope"}}
	p := pipeline.New(fakeStages(&counts{}, fail), pipeline.WithReporter(timings))

	_, err := p.Compile(pipeline.Request{Name: "fail.pg", Source: "a"})
	test.True(t, err != nil)

	// Only the phases that finished are reported
	test.Equal(t, len(timings.Phases()), 2)
}
