package recipe

import (
	"time"

	"github.com/vk/chainrig/internal/config"
	"github.com/vk/chainrig/internal/fingerprint"
)

// Step is one declarative subprocess invocation within a Recipe. Steps are
// typed values interpreted uniformly by the supervisor, never inline shell.
type Step struct {
	// Name identifies the step in logs and structured results.
	Name string

	// Command and Args are the executable and its arguments.
	Command string
	Args    []string

	// Dir is the working directory, empty for the orchestrator's own.
	Dir string

	// ExpectedExit is the exit code that counts as success, normally 0.
	ExpectedExit int

	// Timeout bounds the step; zero means the supervisor's default.
	Timeout time.Duration

	// Detach starts the process in the background and returns once ReadyURL
	// answers, instead of waiting for the process to exit. Used by the
	// long-running indexer.
	Detach   bool
	ReadyURL string
}

// Recipe is a named, composite deployment operation. Recipes are defined
// statically in the registry and immutable at runtime; their steps and
// fingerprint inputs are materialized against a resolved NetworkProfile.
type Recipe struct {
	Name        string
	Description string

	// Requires lists prerequisite recipes, executed first in this order.
	Requires []string

	// Volatile recipes never consult or write execution records; they are
	// re-run on every invocation (run-indexer).
	Volatile bool

	// Steps materializes the subprocess invocations for a profile.
	Steps func(p *config.NetworkProfile) []Step

	// Inputs declares the fingerprint sources deciding idempotency. Nil for
	// volatile recipes.
	Inputs func(p *config.NetworkProfile) []fingerprint.Source
}
