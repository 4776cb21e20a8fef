// Package polyglot implements the functionality of the program, the CLI in package cmd is simply the
// entrypoint to exported functions and methods in this package.
package polyglot

import (
	"io"

	"go.followtheprocess.codes/log"
)

// Polyglot represents the polyglot program.
type Polyglot struct {
	stdout  io.Writer   // Normal program output is written here
	stderr  io.Writer   // Logs and errors are written here
	logger  *log.Logger // The logger for the application
	version string      // The program version
}

// New returns a new [Polyglot].
func New(debug bool, version string, stdout, stderr io.Writer) Polyglot {
	level := log.LevelInfo
	if debug {
		level = log.LevelDebug
	}

	logger := log.New(stderr, log.Prefix("polyglot"), log.WithLevel(level))

	return Polyglot{
		stdout:  stdout,
		stderr:  stderr,
		logger:  logger,
		version: version,
	}
}
