package orchestrator

import "fmt"

// Phase is the state of one recipe invocation inside the orchestrator's
// machine. Transitions are validated by Transition; the machine itself is a
// pure function, independent of how input is collected.
type Phase int

const (
	PhasePending Phase = iota
	PhaseResolving
	PhaseChecking
	PhaseExecuting
	PhaseRecording
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseResolving:
		return "resolving-dependencies"
	case PhaseChecking:
		return "checking-state"
	case PhaseExecuting:
		return "executing"
	case PhaseRecording:
		return "recording"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Terminal reports whether the phase ends the machine.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseFailed
}

// Transition validates and performs one phase transition. PhaseFailed is
// reachable from every non-terminal phase; everything else follows the fixed
// forward path, with PhaseChecking allowed to jump straight to PhaseDone for
// an already satisfied recipe.
func Transition(from, to Phase) (Phase, error) {
	if to == PhaseFailed && !from.Terminal() {
		return PhaseFailed, nil
	}
	allowed := map[Phase][]Phase{
		PhasePending:   {PhaseResolving},
		PhaseResolving: {PhaseChecking},
		PhaseChecking:  {PhaseExecuting, PhaseDone},
		PhaseExecuting: {PhaseRecording, PhaseDone},
		PhaseRecording: {PhaseDone},
	}
	for _, next := range allowed[from] {
		if next == to {
			return to, nil
		}
	}
	return from, fmt.Errorf("invalid phase transition %s -> %s", from, to)
}
