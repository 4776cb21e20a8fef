package pipeline

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// PhaseTiming is the recorded duration of a single phase.
type PhaseTiming struct {
	Phase    Phase
	Start    time.Time
	Duration time.Duration
	Note     string
	done     bool
}

// TimingReport is a serialisable summary of a [Timings].
type TimingReport struct {
	Name    string              `json:"name"`
	Phases  []PhaseTimingReport `json:"phases"`
	TotalMS float64             `json:"total_ms"`
}

// PhaseTimingReport is the serialisable form of a [PhaseTiming].
type PhaseTimingReport struct {
	Name       string  `json:"name"`
	Note       string  `json:"note,omitempty"`
	DurationMS float64 `json:"duration_ms"`
}

// Timings is a [Reporter] that records how long each phase takes.
//
// It is safe for concurrent use but is intended to observe a single compilation,
// a second Begin discards anything recorded so far.
type Timings struct {
	now    func() time.Time
	name   string
	phases []PhaseTiming
	mu     sync.Mutex
}

// NewTimings returns a new [Timings] using clock to tell the time, a nil clock
// means [time.Now].
func NewTimings(clock func() time.Time) *Timings {
	if clock == nil {
		clock = time.Now
	}

	return &Timings{now: clock}
}

// Begin implements [Reporter].
func (t *Timings) Begin(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.name = name
	t.phases = t.phases[:0]
}

// PhaseStart implements [Reporter].
func (t *Timings) PhaseStart(phase Phase) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.phases = append(t.phases, PhaseTiming{Phase: phase, Start: t.now()})
}

// PhaseDone implements [Reporter].
func (t *Timings) PhaseDone(phase Phase, summary string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := len(t.phases) - 1; i >= 0; i-- {
		if t.phases[i].Phase == phase && !t.phases[i].done {
			t.phases[i].Duration = t.now().Sub(t.phases[i].Start)
			t.phases[i].Note = summary
			t.phases[i].done = true

			return
		}
	}
}

// Phases returns the completed phase timings in the order they ran.
func (t *Timings) Phases() []PhaseTiming {
	t.mu.Lock()
	defer t.mu.Unlock()

	completed := make([]PhaseTiming, 0, len(t.phases))
	for _, phase := range t.phases {
		if phase.done {
			completed = append(completed, phase)
		}
	}

	return completed
}

// Summary renders the timings as a human readable table.
func (t *Timings) Summary() string {
	phases := t.Phases()

	s := &strings.Builder{}
	s.WriteString("timings:\n")

	var total time.Duration
	for _, phase := range phases {
		total += phase.Duration
		fmt.Fprintf(s, "  %-20s %7.2f ms", phase.Phase, milliseconds(phase.Duration))

		if phase.Note != "" {
			fmt.Fprintf(s, "  // %s", phase.Note)
		}

		s.WriteByte('\n')
	}

	fmt.Fprintf(s, "  %-20s %7.2f ms\n", "total", milliseconds(total))

	return s.String()
}

// Report returns the timings in a form suitable for serialisation.
func (t *Timings) Report() TimingReport {
	phases := t.Phases()

	t.mu.Lock()
	name := t.name
	t.mu.Unlock()

	report := TimingReport{
		Name:   name,
		Phases: make([]PhaseTimingReport, 0, len(phases)),
	}

	var total time.Duration
	for _, phase := range phases {
		total += phase.Duration
		report.Phases = append(report.Phases, PhaseTimingReport{
			Name:       phase.Phase.String(),
			Note:       phase.Note,
			DurationMS: milliseconds(phase.Duration),
		})
	}

	report.TotalMS = milliseconds(total)

	return report
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
