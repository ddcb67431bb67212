package app

import (
	"fmt"

	"github.com/vk/chainrig/internal/recipe"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// RecipeName is the recipe to run; empty starts the interactive shell.
	RecipeName string

	// Network selects the target network; when empty, the NETWORK
	// environment variable decides at run time.
	Network string

	NetworksPath    string
	CredentialsPath string

	LogFormat string
	LogLevel  string

	// DryRun logs the subprocesses that would run without spawning them and
	// keeps all state in memory.
	DryRun bool

	// Force invalidates the requested recipe's record before running.
	Force bool

	// Attach keeps run-indexer in the foreground until interrupted.
	Attach bool
}

// NewConfig validates the configuration. A non-empty recipe name must name a
// built-in recipe.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.RecipeName != "" {
		if _, err := recipe.Builtin().Get(cfg.RecipeName); err != nil {
			return nil, fmt.Errorf("%w (run with no recipe for the menu)", err)
		}
	}
	return &cfg, nil
}
