package pipeline

// Reporter receives progress events from a [Pipeline].
//
// Events arrive in order: Begin once, then a PhaseStart and PhaseDone pair for
// each phase that succeeds. A failing phase gets a PhaseStart but no PhaseDone.
type Reporter interface {
	// Begin is called once at the start of a compilation with the request name.
	Begin(name string)

	// PhaseStart is called immediately before phase runs.
	PhaseStart(phase Phase)

	// PhaseDone is called after phase succeeds with a short summary of what it did.
	PhaseDone(phase Phase, summary string)
}

// NopReporter is a [Reporter] that discards every event.
type NopReporter struct{}

// Begin implements [Reporter] and does nothing.
func (NopReporter) Begin(string) {}

// PhaseStart implements [Reporter] and does nothing.
func (NopReporter) PhaseStart(Phase) {}

// PhaseDone implements [Reporter] and does nothing.
func (NopReporter) PhaseDone(Phase, string) {}

// multi fans events out to a list of reporters.
type multi []Reporter

// Multi returns a [Reporter] that passes every event to each of reporters in order,
// nil reporters are skipped.
func Multi(reporters ...Reporter) Reporter {
	m := make(multi, 0, len(reporters))
	for _, reporter := range reporters {
		if reporter != nil {
			m = append(m, reporter)
		}
	}

	return m
}

func (m multi) Begin(name string) {
	for _, reporter := range m {
		reporter.Begin(name)
	}
}

func (m multi) PhaseStart(phase Phase) {
	for _, reporter := range m {
		reporter.PhaseStart(phase)
	}
}

func (m multi) PhaseDone(phase Phase, summary string) {
	for _, reporter := range m {
		reporter.PhaseDone(phase, summary)
	}
}
