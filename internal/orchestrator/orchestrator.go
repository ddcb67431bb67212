package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vk/chainrig/internal/config"
	"github.com/vk/chainrig/internal/ctxlog"
	"github.com/vk/chainrig/internal/fingerprint"
	"github.com/vk/chainrig/internal/recipe"
	"github.com/vk/chainrig/internal/state"
	"github.com/vk/chainrig/internal/supervisor"
)

// ErrAlreadyRunning reports a concurrent orchestrator invocation for the
// same network. The second invocation fails fast instead of interleaving.
var ErrAlreadyRunning = errors.New("another orchestrator run is in progress for this network")

// Store is the orchestrator's view of the state store.
type Store interface {
	Ping(ctx context.Context) error
	IsSatisfied(ctx context.Context, network, recipe, fingerprint string) (bool, error)
	Record(ctx context.Context, rec state.ExecutionRecord) error
	Invalidate(ctx context.Context, network, recipe string) error
	AcquireRunLock(ctx context.Context, network string) (func(), error)
}

// StepRunner is the orchestrator's view of the process supervisor.
type StepRunner interface {
	Run(ctx context.Context, step recipe.Step, profile *config.NetworkProfile) (*supervisor.ProcessResult, error)
}

// Orchestrator sequences recipes against one network profile.
type Orchestrator struct {
	Registry   *recipe.Registry
	Store      Store
	Supervisor StepRunner

	// Force invalidates the requested recipe's execution record before the
	// run, re-executing it even when its fingerprint is unchanged.
	// Prerequisites keep their records.
	Force bool
}

// New wires an orchestrator.
func New(registry *recipe.Registry, store Store, runner StepRunner) *Orchestrator {
	return &Orchestrator{Registry: registry, Store: store, Supervisor: runner}
}

// Run resolves the named recipe, executes its prerequisite chain in order
// and returns a structured result. The result is returned even on failure;
// Result.Err carries the first error encountered.
func (o *Orchestrator) Run(ctx context.Context, name string, profile *config.NetworkProfile) *Result {
	logger := ctxlog.FromContext(ctx).With("recipe", name, "network", profile.Name)
	start := time.Now()
	result := &Result{
		RunID:   uuid.NewString(),
		Recipe:  name,
		Network: profile.Name,
	}

	release, err := o.Store.AcquireRunLock(ctx, profile.Name)
	if err != nil {
		if errors.Is(err, state.ErrLocked) {
			result.Err = fmt.Errorf("%w: %v", ErrAlreadyRunning, err)
		} else {
			result.Err = err
		}
		result.Elapsed = time.Since(start)
		return result
	}
	defer release()

	order, err := o.Registry.ExecutionOrder(name)
	if err != nil {
		result.Err = err
		result.Elapsed = time.Since(start)
		return result
	}

	if o.Force {
		if err := o.Store.Invalidate(ctx, profile.Name, name); err != nil {
			result.Err = err
			result.Elapsed = time.Since(start)
			return result
		}
		logger.Info("♻️ Invalidated prior record, forcing re-execution.")
	}

	logger.Info("🚀 Starting run.", "run_id", result.RunID, "chain", chainNames(order))
	for i, rec := range order {
		if result.Err != nil {
			// An earlier recipe failed; the rest of the chain never starts.
			result.Outcomes = append(result.Outcomes, RecipeOutcome{
				Recipe: rec.Name,
				Status: StatusSkipped,
				Phase:  PhasePending,
			})
			continue
		}

		outcome := o.runRecipe(ctx, rec, profile, result.RunID)
		result.Outcomes = append(result.Outcomes, outcome)
		if outcome.Err != nil {
			result.Err = fmt.Errorf("recipe %q (%d of %d): %w", rec.Name, i+1, len(order), outcome.Err)
		}
	}
	result.Elapsed = time.Since(start)

	if result.Err != nil {
		logger.Error("❌ Run failed.", "run_id", result.RunID, "error", result.Err)
	} else {
		logger.Info("🏁 Run finished.", "run_id", result.RunID, "elapsed", result.Elapsed.Round(time.Millisecond))
	}
	return result
}

// runRecipe drives one recipe through the phase machine.
func (o *Orchestrator) runRecipe(ctx context.Context, rec *recipe.Recipe, profile *config.NetworkProfile, runID string) RecipeOutcome {
	logger := ctxlog.FromContext(ctx).With("recipe", rec.Name, "network", profile.Name)
	start := time.Now()
	outcome := RecipeOutcome{Recipe: rec.Name, Phase: PhasePending}

	fail := func(err error) RecipeOutcome {
		outcome.Phase, _ = Transition(outcome.Phase, PhaseFailed)
		outcome.Status = StatusFailed
		outcome.Err = err
		outcome.Elapsed = time.Since(start)
		return outcome
	}
	advance := func(to Phase) error {
		next, err := Transition(outcome.Phase, to)
		if err != nil {
			return err
		}
		outcome.Phase = next
		return nil
	}

	// Prerequisites were expanded by the caller; this recipe's own machine
	// passes straight through the resolving phase.
	if err := advance(PhaseResolving); err != nil {
		return fail(err)
	}
	if err := advance(PhaseChecking); err != nil {
		return fail(err)
	}

	if rec.Volatile {
		// Volatile recipes skip idempotency tracking, but they still need
		// the shared database up before starting (the indexer writes to it).
		if err := o.Store.Ping(ctx); err != nil {
			return fail(err)
		}
	} else {
		fp, err := fingerprint.Compute(rec.Inputs(profile))
		if err != nil {
			return fail(fmt.Errorf("computing fingerprint: %w", err))
		}
		outcome.Fingerprint = fp

		satisfied, err := o.Store.IsSatisfied(ctx, profile.Name, rec.Name, fp)
		if err != nil {
			return fail(err)
		}
		if satisfied {
			if err := advance(PhaseDone); err != nil {
				return fail(err)
			}
			outcome.Status = StatusSatisfied
			outcome.Elapsed = time.Since(start)
			logger.Info("✅ Already satisfied, skipping.", "fingerprint", fp[:12])
			return outcome
		}
	}

	if err := advance(PhaseExecuting); err != nil {
		return fail(err)
	}
	for i, step := range rec.Steps(profile) {
		procResult, err := o.Supervisor.Run(ctx, step, profile)
		stepOutcome := StepOutcome{Name: step.Name, Err: err}
		if procResult != nil {
			stepOutcome.ExitCode = procResult.ExitCode
			stepOutcome.Duration = procResult.Duration
			stepOutcome.Pid = procResult.Pid
		}
		outcome.Steps = append(outcome.Steps, stepOutcome)
		if err != nil {
			// Hard stop: no partial credit, no execution record.
			return fail(fmt.Errorf("step %d (%q): %w", i+1, step.Name, err))
		}
	}

	if rec.Volatile {
		if err := advance(PhaseDone); err != nil {
			return fail(err)
		}
		outcome.Status = StatusExecuted
		outcome.Elapsed = time.Since(start)
		return outcome
	}

	if err := advance(PhaseRecording); err != nil {
		return fail(err)
	}
	record := state.ExecutionRecord{
		Network:     profile.Name,
		Recipe:      rec.Name,
		Fingerprint: outcome.Fingerprint,
		RunID:       runID,
		CompletedAt: time.Now().UTC(),
	}
	if err := o.Store.Record(ctx, record); err != nil {
		// The side effects already happened; surface this loudly so the
		// operator can reconcile instead of silently losing the marker.
		logger.Warn("⚠️ Steps succeeded but the execution record could not be written; the next run will re-execute.", "error", err)
		return fail(err)
	}

	if err := advance(PhaseDone); err != nil {
		return fail(err)
	}
	outcome.Status = StatusExecuted
	outcome.Elapsed = time.Since(start)
	return outcome
}

func chainNames(order []*recipe.Recipe) []string {
	names := make([]string, len(order))
	for i, rec := range order {
		names[i] = rec.Name
	}
	return names
}
