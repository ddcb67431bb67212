package orchestrator

import (
	"time"
)

// Status summarizes how one recipe in the expanded chain ended.
type Status string

const (
	// StatusSatisfied means the recorded fingerprint matched and nothing ran.
	StatusSatisfied Status = "satisfied"
	// StatusExecuted means every step ran to its expected exit code.
	StatusExecuted Status = "executed"
	// StatusFailed means a step or the state store failed; the chain stopped.
	StatusFailed Status = "failed"
	// StatusSkipped means an earlier recipe in the chain failed first.
	StatusSkipped Status = "skipped"
)

// StepOutcome reports one step of one recipe.
type StepOutcome struct {
	Name     string
	ExitCode int
	Duration time.Duration
	// Pid is set for detached steps whose process outlives the run.
	Pid int
	Err error
}

// RecipeOutcome reports one recipe of the expanded chain.
type RecipeOutcome struct {
	Recipe      string
	Status      Status
	Phase       Phase
	Fingerprint string
	Steps       []StepOutcome
	Elapsed     time.Duration
	Err         error
}

// Result is the structured report of one orchestrator invocation.
type Result struct {
	RunID    string
	Recipe   string
	Network  string
	Outcomes []RecipeOutcome
	Elapsed  time.Duration
	Err      error
}

// Failed reports whether the invocation ended in a failure.
func (r *Result) Failed() bool {
	return r.Err != nil
}

// DetachedPids lists the processes started detached during the run, in
// start order. The caller owns their termination.
func (r *Result) DetachedPids() []int {
	var pids []int
	for _, outcome := range r.Outcomes {
		for _, step := range outcome.Steps {
			if step.Pid > 0 {
				pids = append(pids, step.Pid)
			}
		}
	}
	return pids
}
