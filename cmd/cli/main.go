package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/chainrig/internal/app"
	"github.com/vk/chainrig/internal/cli"
	"github.com/vk/chainrig/internal/config"
)

// main is the entrypoint for the chainrig application.
func main() {
	recipeName, err := run(os.Stdout, os.Args[1:])
	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, cli.Describe(err))
		os.Exit(cli.ExitCodeFor(recipeName, err))
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. It returns the selected recipe name so main can map failures to
// the right exit code.
func run(outW io.Writer, args []string) (string, error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return "", err
	}
	if shouldExit {
		return "", nil
	}

	// An operator interrupt cancels the run; the supervisor kills the
	// current subprocess group before the cancellation propagates up.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainrigApp := app.NewApp(outW, os.Stderr, appConfig)
	return appConfig.RecipeName, chainrigApp.Run(ctx, config.Environ(os.Environ()), os.Stdin)
}
