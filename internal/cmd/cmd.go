// Package cmd implements polyglot's CLI.
package cmd

import (
	"context"
	"errors"
	"os"

	"go.followtheprocess.codes/cli"
	"go.followtheprocess.codes/cli/flag"
	"go.followtheprocess.codes/msg"
	"go.followtheprocess.codes/polyglot/internal/polyglot"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

const long = `
Polyglot compiles a program written in the polyglot symbol language
into C++17, running it through lexical, syntax and semantic analysis
before generating code.

Options may also be set in a 'polyglot.toml' file next to the source
file (or one passed with '--config'), flags always take precedence over
the file.

The '--target' flag selects what is generated, by default this is C++
but the validated syntax tree may be printed instead as an indented
tree, JSON, YAML or TOML.

A '[symbols]' table in the config file lets full width punctuation such
as '（' stand in for its ASCII symbol.
`

// Build builds and returns the polyglot CLI.
//
// Any extra options are applied after polyglot's own so callers may override
// the arguments and output streams.
func Build(extra ...cli.Option) (*cli.Command, error) {
	var options polyglot.Options

	opts := []cli.Option{
		cli.Short("Compile polyglot source files to C++"),
		cli.Long(long),
		cli.Version(version),
		cli.Commit(commit),
		cli.BuildDate(date),
		cli.Example("Compile a program to C++", "polyglot ./hello.pg"),
		cli.Example("Print only the generated code, checking it is deterministic", "polyglot ./hello.pg --quiet --verify"),
		cli.Example("Show the syntax tree as YAML", "polyglot ./hello.pg --target yaml"),
		cli.Example("Report diagnostics as JSON with per phase timings", "polyglot ./hello.pg --error-format json --timings"),
		cli.Flag(&options.Target, "target", 't', "Output target, one of (cpp|tree|json|yaml|toml)"),
		cli.Flag(&options.Config, "config", 'c', "Path to a polyglot.toml config file"),
		cli.Flag(&options.ErrorFormat, "error-format", flag.NoShortHand, "Diagnostic format, one of (text|json)"),
		cli.Flag(&options.Quiet, "quiet", 'q', "Only print the generated output"),
		cli.Flag(&options.Timings, "timings", flag.NoShortHand, "Print how long each phase took"),
		cli.Flag(&options.Verify, "verify", flag.NoShortHand, "Generate twice and fail if the outputs differ"),
		cli.Flag(&options.Debug, "debug", 'd', "Enable debug logging"),
		cli.Run(func(ctx context.Context, cmd *cli.Command) error {
			// The source file is positional, Run owns the arity check so that
			// zero or several files give the same usage error
			app := polyglot.New(options.Debug, version, cmd.Stdout(), cmd.Stderr())
			return app.Run(ctx, cmd.Args(), options)
		}),
	}

	return cli.New("polyglot", append(opts, extra...)...)
}

// Execute builds and runs the CLI, reporting any error not already reported
// and returning the process exit code.
func Execute(ctx context.Context, extra ...cli.Option) int {
	command, err := Build(extra...)
	if err != nil {
		msg.Ferror(os.Stderr, "%v", err)
		return 1
	}

	err = command.Execute(ctx)

	// Usage and compilation errors have already been reported
	if err != nil && !errors.Is(err, polyglot.ErrUsage) && !errors.Is(err, polyglot.ErrCompile) {
		msg.Ferror(os.Stderr, "%v", err)
	}

	return polyglot.ExitCode(err)
}
