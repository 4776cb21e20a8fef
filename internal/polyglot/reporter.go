package polyglot

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.followtheprocess.codes/hue"
	"go.followtheprocess.codes/log"
	"go.followtheprocess.codes/polyglot/internal/pipeline"
)

// Styles.
const (
	// heading is the style used for the "Compiling" banner.
	heading = hue.Bold

	// step is the style used for the [n/4] phase counters.
	step = hue.Cyan | hue.Bold

	// dimmed is the style used for the summary printed after each phase.
	dimmed = hue.BrightBlack | hue.Italic
)

// stepWidth is the width of a "[n/4] " phase counter, phase summaries are
// indented by this much so they line up under the phase name.
const stepWidth = len("[1/4] ")

// consoleReporter is a [pipeline.Reporter] that prints progress for humans.
type consoleReporter struct {
	w io.Writer
}

func (c consoleReporter) Begin(name string) {
	fmt.Fprintf(c.w, "%s %s\n", heading.Text("Compiling"), name)
}

func (c consoleReporter) PhaseStart(phase pipeline.Phase) {
	counter := fmt.Sprintf("[%d/%d]", phase.Step(), pipeline.NumPhases)
	fmt.Fprintf(c.w, "%s %s\n", step.Text(counter), phase)
}

func (c consoleReporter) PhaseDone(_ pipeline.Phase, summary string) {
	fmt.Fprintf(c.w, "%s%s\n", strings.Repeat(" ", stepWidth), dimmed.Text(summary))
}

// logReporter is a [pipeline.Reporter] that mirrors progress into debug logs.
type logReporter struct {
	logger *log.Logger
}

func (l logReporter) Begin(name string) {
	l.logger.Debug("Starting compilation", slog.String("file", name))
}

func (l logReporter) PhaseStart(phase pipeline.Phase) {
	l.logger.Debug("Starting phase", slog.String("phase", phase.String()), slog.Int("step", phase.Step()))
}

func (l logReporter) PhaseDone(phase pipeline.Phase, summary string) {
	l.logger.Debug("Finished phase", slog.String("phase", phase.String()), slog.String("summary", summary))
}
