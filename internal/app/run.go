package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/vk/chainrig/internal/config"
	"github.com/vk/chainrig/internal/ctxlog"
	"github.com/vk/chainrig/internal/orchestrator"
	"github.com/vk/chainrig/internal/shell"
	"github.com/vk/chainrig/internal/state"
)

// Run executes the main application logic: resolve the network profile, open
// the state store, and either run the requested recipe or start the
// interactive shell on stdin.
func (a *App) Run(ctx context.Context, environ map[string]string, stdin io.Reader) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	networkName := a.config.Network
	if networkName == "" {
		networkName = environ["NETWORK"]
	}
	if networkName == "" {
		return errors.New("no network selected: pass --network or set NETWORK (local|testnet|mainnet)")
	}

	profile, err := config.Resolve(networkName, environ, config.Options{
		NetworksPath:    a.config.NetworksPath,
		CredentialsPath: a.config.CredentialsPath,
	})
	if err != nil {
		return fmt.Errorf("resolving configuration: %w", err)
	}
	a.logger.Debug("Network profile resolved.", "network", profile.Name, "rpc", profile.RPCEndpoint)

	store := a.store
	if store == nil {
		if a.config.DryRun {
			// Dry runs never touch the shared database.
			store = state.NewMemoryStore()
		} else {
			pg, err := state.Open(ctx, profile.Database)
			if err != nil {
				return err
			}
			defer pg.Close()
			store = pg
		}
	}

	orch := orchestrator.New(a.registry, store, a.supervisor)
	orch.Force = a.config.Force

	if a.config.RecipeName == "" {
		return shell.New(stdin, a.outW, a.registry, orch, profile).Run(ctx)
	}

	result := orch.Run(ctx, a.config.RecipeName, profile)
	fmt.Fprint(a.outW, shell.FormatResult(result))
	if result.Err != nil {
		return result.Err
	}

	if a.config.Attach {
		a.waitAttached(ctx, result)
	}
	return nil
}

// waitAttached blocks until the context is cancelled, then terminates every
// process the run left behind (the detached indexer).
func (a *App) waitAttached(ctx context.Context, result *orchestrator.Result) {
	pids := result.DetachedPids()
	if len(pids) == 0 {
		return
	}
	a.logger.Info("🔌 Attached; interrupt to stop the indexer.", "pids", pids)
	<-ctx.Done()
	for _, pid := range pids {
		if err := a.supervisor.Terminate(pid); err != nil {
			a.logger.Warn("Failed to terminate detached process.", "pid", pid, "error", err)
		}
	}
	a.logger.Info("🛑 Indexer stopped.")
}
