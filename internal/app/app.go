package app

import (
	"io"
	"log/slog"

	"github.com/vk/chainrig/internal/orchestrator"
	"github.com/vk/chainrig/internal/recipe"
	"github.com/vk/chainrig/internal/supervisor"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *recipe.Registry
	supervisor *supervisor.Supervisor

	// store, when pre-set, replaces the Postgres store. Used by tests and
	// dry runs.
	store orchestrator.Store
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and the built-in
// recipe registry.
func NewApp(outW io.Writer, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	sup := supervisor.New()
	sup.DryRun = cfg.DryRun

	return &App{
		outW:       outW,
		logger:     logger,
		config:     cfg,
		registry:   recipe.Builtin(),
		supervisor: sup,
	}
}

// SetStore injects a state store, bypassing the Postgres connection. This is
// primarily for testing.
func (a *App) SetStore(store orchestrator.Store) {
	a.store = store
}

// Registry returns the application's recipe registry. This is primarily for
// testing.
func (a *App) Registry() *recipe.Registry {
	return a.registry
}
