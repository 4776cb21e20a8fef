package pipeline

import "fmt"

// Phase is one of the four ordered compilation phases.
type Phase int

// Phase definitions, in the order they run.
const (
	PhaseLex      Phase = iota // PhaseLex
	PhaseParse                 // PhaseParse
	PhaseAnalyze               // PhaseAnalyze
	PhaseGenerate              // PhaseGenerate
)

// NumPhases is the number of phases in a compilation.
const NumPhases = int(PhaseGenerate) + 1

// phaseNames are the user facing descriptions of each phase.
var phaseNames = [...]string{
	PhaseLex:      "lexical analysis",
	PhaseParse:    "syntax analysis",
	PhaseAnalyze:  "semantic analysis",
	PhaseGenerate: "code generation",
}

// String returns the description of the phase, e.g. "lexical analysis".
func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}

	return phaseNames[p]
}

// Step returns the 1 indexed position of the phase in the pipeline.
func (p Phase) Step() int {
	return int(p) + 1
}
