// Package shell presents the orchestrator's recipes as an interactive menu.
// It collects input, invokes the orchestrator and renders structured results
// as text; all business logic stays in the orchestrator.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vk/chainrig/internal/config"
	"github.com/vk/chainrig/internal/orchestrator"
	"github.com/vk/chainrig/internal/recipe"
)

// Runner is the shell's view of the orchestrator.
type Runner interface {
	Run(ctx context.Context, name string, profile *config.NetworkProfile) *orchestrator.Result
}

// Shell is a line-oriented menu over the recipe registry.
type Shell struct {
	in           io.Reader
	out          io.Writer
	registry     *recipe.Registry
	orchestrator Runner
	profile      *config.NetworkProfile
}

// New wires a shell.
func New(in io.Reader, out io.Writer, registry *recipe.Registry, runner Runner, profile *config.NetworkProfile) *Shell {
	return &Shell{in: in, out: out, registry: registry, orchestrator: runner, profile: profile}
}

// Run loops until the operator quits, the input ends or ctx is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintf(s.out, "chainrig — network %s (%s)\n", s.profile.Name, s.profile.RPCEndpoint)
	s.printMenu()

	scanner := bufio.NewScanner(s.in)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case "q", "quit", "exit":
			return nil
		case "?", "help":
			s.printMenu()
			continue
		}

		name, ok := s.resolveSelection(input)
		if !ok {
			fmt.Fprintf(s.out, "unknown selection %q, type ? for the menu\n", input)
			continue
		}

		result := s.orchestrator.Run(ctx, name, s.profile)
		fmt.Fprint(s.out, FormatResult(result))
	}
}

// resolveSelection accepts either a menu number or a recipe name.
func (s *Shell) resolveSelection(input string) (string, bool) {
	names := s.registry.Names()
	if idx, err := strconv.Atoi(input); err == nil {
		if idx < 1 || idx > len(names) {
			return "", false
		}
		return names[idx-1], true
	}
	if _, err := s.registry.Get(input); err != nil {
		return "", false
	}
	return input, true
}

func (s *Shell) printMenu() {
	for i, name := range s.registry.Names() {
		rec, err := s.registry.Get(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(s.out, "  %d. %-16s %s\n", i+1, name, rec.Description)
	}
	fmt.Fprintln(s.out, "  q. quit")
}
