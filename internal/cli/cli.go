package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/chainrig/internal/app"
	"github.com/vk/chainrig/internal/orchestrator"
	"github.com/vk/chainrig/internal/recipe"
	"github.com/vk/chainrig/internal/state"
	"github.com/vk/chainrig/internal/supervisor"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

const usageText = `chainrig - deployment orchestrator for the store contracts and indexer.

Usage:
  chainrig [options] [RECIPE]

Recipes:
  build-contracts   Compile the store and factory contracts to wasm.
  create-accounts   Provision the factory and minter accounts.
  deploy            Deploy the built factory contract.
  create-store      Instantiate a store through the factory.
  run-indexer       Start the local indexer and wait until ready.

Without a recipe, an interactive menu is started.

Options:
`

// Parse processes command-line arguments. It returns a populated app config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("chainrig", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, usageText)
		flagSet.PrintDefaults()
	}

	networkFlag := flagSet.String("network", "", "Target network: local, testnet or mainnet. Defaults to $NETWORK.")
	networksPathFlag := flagSet.String("networks-file", "networks.hcl", "Path to the network definitions file.")
	credentialsPathFlag := flagSet.String("credentials-file", "credentials.yaml", "Path to the credentials file.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	dryRunFlag := flagSet.Bool("dry-run", false, "Log the commands that would run without executing them.")
	forceFlag := flagSet.Bool("force", false, "Invalidate the recipe's prior record and re-execute it.")
	attachFlag := flagSet.Bool("attach", false, "With run-indexer: block until interrupted, then stop the indexer.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	recipeName := ""
	switch flagSet.NArg() {
	case 0:
	case 1:
		recipeName = flagSet.Arg(0)
	default:
		return nil, false, &ExitError{Code: 2, Message: "at most one recipe may be given"}
	}
	if *attachFlag && recipeName != recipe.RunIndexer {
		return nil, false, &ExitError{Code: 2, Message: "--attach only applies to run-indexer"}
	}

	cfg, err := app.NewConfig(app.Config{
		RecipeName:      recipeName,
		Network:         *networkFlag,
		NetworksPath:    *networksPathFlag,
		CredentialsPath: *credentialsPathFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		DryRun:          *dryRunFlag,
		Force:           *forceFlag,
		Attach:          *attachFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	return cfg, false, nil
}

// ExitCodeFor maps a failed run onto the process exit code contract:
// run-indexer startup failures exit 2, every other recipe failure exits 1.
func ExitCodeFor(recipeName string, err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if recipeName == recipe.RunIndexer {
		return 2
	}
	return 1
}

// Describe renders a failure for the operator, naming the failure kind the
// way the error taxonomy distinguishes them.
func Describe(err error) string {
	switch {
	case errors.Is(err, orchestrator.ErrAlreadyRunning):
		return fmt.Sprintf("already running: %v", err)
	case errors.Is(err, state.ErrUnavailable):
		return fmt.Sprintf("state store: %v", err)
	case errors.Is(err, supervisor.ErrTimeout), errors.Is(err, supervisor.ErrCancelled):
		return fmt.Sprintf("subprocess: %v", err)
	default:
		return err.Error()
	}
}
