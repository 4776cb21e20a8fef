package polyglot

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"go.followtheprocess.codes/polyglot/internal/codegen"
	"go.followtheprocess.codes/polyglot/internal/diag"
	"go.followtheprocess.codes/polyglot/internal/syntax/token"
)

// ConfigFile is the name of the config file looked for alongside the source file.
const ConfigFile = "polyglot.toml"

// Targets.
const (
	TargetCPP  = "cpp"  // C++17 source, the default
	TargetTree = "tree" // Indented syntax tree
	TargetJSON = "json" // Syntax tree as JSON
	TargetYAML = "yaml" // Syntax tree as YAML
	TargetTOML = "toml" // Syntax tree as TOML
)

// Error formats.
const (
	ErrorFormatText = "text" // A single human readable line
	ErrorFormatJSON = "json" // A single line JSON object
)

var (
	targets      = []string{TargetCPP, TargetTree, TargetJSON, TargetYAML, TargetTOML}
	errorFormats = []string{ErrorFormatText, ErrorFormatJSON}
)

// Options are the options passed to [Polyglot.Run].
//
// Zero values mean "not set" so that the config file can fill them in, flags
// that are set always win over the config file.
type Options struct {
	// Target is the output target, one of [TargetCPP], [TargetTree], [TargetJSON],
	// [TargetYAML] or [TargetTOML].
	Target string

	// Config is the path to a config file, if empty a polyglot.toml next to the
	// source file is used if there is one.
	Config string

	// ErrorFormat is the format diagnostics are printed in, one of [ErrorFormatText]
	// or [ErrorFormatJSON].
	ErrorFormat string

	// Indent is the number of spaces per indentation level in generated C++.
	Indent int

	// Quiet suppresses progress output and the success banner.
	Quiet bool

	// Timings prints how long each phase took to stderr.
	Timings bool

	// Verify runs code generation twice and fails if the outputs differ.
	Verify bool

	// Debug enables debug logging.
	Debug bool

	// symbols are the alternative symbol spellings from the config file.
	symbols map[rune]token.Kind
}

// LogValue implements [slog.LogValuer] for [Options].
func (o Options) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("target", o.Target),
		slog.String("config", o.Config),
		slog.String("error-format", o.ErrorFormat),
		slog.Int("indent", o.Indent),
		slog.Bool("quiet", o.Quiet),
		slog.Bool("timings", o.Timings),
		slog.Bool("verify", o.Verify),
		slog.Int("symbols", len(o.symbols)),
	)
}

// Validate reports whether the Options are valid, returning an error if not.
//
// nil means the options are valid.
func (o Options) Validate() error {
	switch {
	case o.Target != "" && !slices.Contains(targets, o.Target):
		return fmt.Errorf("unknown target %q, expected one of (%s)", o.Target, strings.Join(targets, "|"))
	case o.ErrorFormat != "" && !slices.Contains(errorFormats, o.ErrorFormat):
		return fmt.Errorf(
			"unknown error format %q, expected one of (%s)",
			o.ErrorFormat,
			strings.Join(errorFormats, "|"),
		)
	case o.Indent < 0:
		return fmt.Errorf("indent cannot be negative, got %d", o.Indent)
	default:
		return nil
	}
}

// withDefaults fills in any unset option with its default.
func (o Options) withDefaults() Options {
	if o.Target == "" {
		o.Target = TargetCPP
	}

	if o.ErrorFormat == "" {
		o.ErrorFormat = ErrorFormatText
	}

	if o.Indent == 0 {
		o.Indent = codegen.DefaultIndent
	}

	return o
}

// Config is the contents of a polyglot.toml file.
type Config struct {
	// Symbols is the [symbols] table, mapping a single non ASCII character to the
	// operator or punctuation it stands for, e.g. "（" = "(".
	Symbols     map[string]string `toml:"symbols"`
	Target      string            `toml:"target"`
	ErrorFormat string            `toml:"error_format"`
	CPP         CPPConfig         `toml:"cpp"`
	Quiet       bool              `toml:"quiet"`
	Timings     bool              `toml:"timings"`
	Verify      bool              `toml:"verify"`

	symbols map[rune]token.Kind // Symbols once validated
}

// symbolTable validates the [symbols] table, returning it keyed by rune.
//
// Aliases must be a single non ASCII character that could not otherwise start a
// token, so they can never change the meaning of an existing program.
func (c Config) symbolTable() (map[rune]token.Kind, error) {
	if len(c.Symbols) == 0 {
		return nil, nil
	}

	table := make(map[rune]token.Kind, len(c.Symbols))

	// Sorted so the first bad entry reported is always the same one
	for _, alias := range slices.Sorted(maps.Keys(c.Symbols)) {
		char, size := utf8.DecodeRuneInString(alias)

		switch {
		case size != len(alias) || char == utf8.RuneError:
			return nil, fmt.Errorf("symbol alias %q must be a single character", alias)
		case char < utf8.RuneSelf:
			return nil, fmt.Errorf("symbol alias %q is ASCII and already has a meaning", alias)
		case !unicode.IsPunct(char) && !unicode.IsSymbol(char):
			return nil, fmt.Errorf("symbol alias %q is not a punctuation or symbol character", alias)
		}

		kind, ok := token.Symbol(c.Symbols[alias])
		if !ok {
			return nil, fmt.Errorf("symbol alias %q maps to %q which is not an operator or punctuation symbol", alias, c.Symbols[alias])
		}

		table[char] = kind
	}

	return table, nil
}

// CPPConfig is the [cpp] table of a polyglot.toml file.
type CPPConfig struct {
	Indent int `toml:"indent"`
}

// merge fills in every option not set by a flag from cfg.
func (o Options) merge(cfg Config) Options {
	if o.Target == "" {
		o.Target = cfg.Target
	}

	if o.ErrorFormat == "" {
		o.ErrorFormat = cfg.ErrorFormat
	}

	if o.Indent == 0 {
		o.Indent = cfg.CPP.Indent
	}

	o.Quiet = o.Quiet || cfg.Quiet
	o.Timings = o.Timings || cfg.Timings
	o.Verify = o.Verify || cfg.Verify
	o.symbols = cfg.symbols

	return o
}

// loadConfig loads the config for compiling source.
//
// An explicit path must exist, otherwise a missing polyglot.toml next to the
// source is not an error and results in an empty [Config].
func loadConfig(source, explicit string) (Config, string, diag.Diagnostic) {
	path := explicit
	if path == "" {
		path = filepath.Join(filepath.Dir(source), ConfigFile)

		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return Config{}, "", nil
		}
	}

	var cfg Config

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, path, diag.FromIO(fmt.Errorf("could not load config: %w", err))
	}

	if undecoded := meta.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}

		return Config{}, path, diag.FromIO(
			fmt.Errorf("could not load config: %s: unknown keys: %s", path, strings.Join(keys, ", ")),
		)
	}

	cfg.symbols, err = cfg.symbolTable()
	if err != nil {
		return Config{}, path, diag.FromIO(fmt.Errorf("could not load config: %s: %w", path, err))
	}

	return cfg, path, nil
}
