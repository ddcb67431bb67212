package shell

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vk/chainrig/internal/orchestrator"
	"github.com/vk/chainrig/internal/supervisor"
)

// FormatResult renders a structured orchestrator result as operator-facing
// text. Successful runs get a summary; failures additionally carry the full
// captured subprocess output.
func FormatResult(result *orchestrator.Result) string {
	var b strings.Builder

	verdict := "ok"
	if result.Failed() {
		verdict = "FAILED"
	}
	fmt.Fprintf(&b, "run %s on %s: %s — %s (%s)\n",
		shortID(result.RunID), result.Network, result.Recipe, verdict,
		result.Elapsed.Round(time.Millisecond))

	for _, outcome := range result.Outcomes {
		fmt.Fprintf(&b, "  %s %-16s %s\n", statusIcon(outcome.Status), outcome.Recipe, describeOutcome(outcome))
	}

	if result.Failed() {
		fmt.Fprintf(&b, "error: %v\n", result.Err)
		var exitErr *supervisor.NonZeroExitError
		if errors.As(result.Err, &exitErr) && exitErr.Output != "" {
			fmt.Fprintf(&b, "--- captured output ---\n%s\n", strings.TrimRight(exitErr.Output, "\n"))
		}
	}
	return b.String()
}

func describeOutcome(outcome orchestrator.RecipeOutcome) string {
	switch outcome.Status {
	case orchestrator.StatusSatisfied:
		return "already satisfied"
	case orchestrator.StatusExecuted:
		return fmt.Sprintf("executed (%d steps, %s)", len(outcome.Steps), outcome.Elapsed.Round(time.Millisecond))
	case orchestrator.StatusSkipped:
		return "skipped"
	case orchestrator.StatusFailed:
		if n := len(outcome.Steps); n > 0 {
			last := outcome.Steps[n-1]
			return fmt.Sprintf("failed at step %d (%s)", n, last.Name)
		}
		return "failed before executing"
	default:
		return string(outcome.Status)
	}
}

func statusIcon(status orchestrator.Status) string {
	switch status {
	case orchestrator.StatusSatisfied, orchestrator.StatusExecuted:
		return "✅"
	case orchestrator.StatusFailed:
		return "❌"
	case orchestrator.StatusSkipped:
		return "⏭️"
	default:
		return "•"
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
