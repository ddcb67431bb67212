package supervisor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/vk/chainrig/internal/config"
	"github.com/vk/chainrig/internal/ctxlog"
	"github.com/vk/chainrig/internal/recipe"
)

// defaultTimeout applies to steps that do not declare their own.
const defaultTimeout = 10 * time.Minute

// maxCapturedOutput bounds how much subprocess output is retained for
// failure reports. Output beyond the cap is still streamed to the logger.
const maxCapturedOutput = 1 << 20

// ProcessResult describes one finished (or, for detached steps, started)
// subprocess. It is transient: the orchestrator consumes it immediately.
type ProcessResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration

	// Pid is set for detached steps; the process keeps running after Run
	// returns and can be terminated through its process group.
	Pid int
}

// Supervisor interprets declarative recipe steps as real subprocesses.
type Supervisor struct {
	// DryRun logs the commands that would run instead of spawning them.
	DryRun bool

	// probe overrides the readiness probe in tests.
	probe func(ctx context.Context, url string) error
}

// New returns a Supervisor.
func New() *Supervisor {
	return &Supervisor{}
}

// Run executes one step with the profile's environment overlay. It returns
// ErrTimeout when the step deadline expires, ErrCancelled when ctx is
// cancelled from above, and NonZeroExitError when the process exits with an
// unexpected code. In every failure case the step's whole process group is
// killed before Run returns.
func (s *Supervisor) Run(ctx context.Context, step recipe.Step, profile *config.NetworkProfile) (*ProcessResult, error) {
	logger := ctxlog.FromContext(ctx).With("step", step.Name, "command", step.Command)

	if s.DryRun {
		logger.Info("🔎 Dry run, skipping execution.", "args", step.Args)
		return &ProcessResult{ExitCode: step.ExpectedExit}, nil
	}

	timeout := step.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if step.Detach {
		return s.runDetached(stepCtx, ctx, step, profile)
	}
	return s.runAttached(stepCtx, ctx, step, profile)
}

// command builds the exec.Cmd for a step. The child gets its own process
// group so that a timeout or cancellation can kill the step's entire subtree.
func (s *Supervisor) command(ctx context.Context, step recipe.Step, profile *config.NetworkProfile) *exec.Cmd {
	cmd := exec.CommandContext(ctx, step.Command, step.Args...)
	cmd.Dir = step.Dir
	cmd.Env = append(os.Environ(), profile.EnvOverlay()...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return killGroup(cmd.Process.Pid)
	}
	// Give the group kill a moment to take effect before Wait gives up.
	cmd.WaitDelay = 5 * time.Second
	return cmd
}

func (s *Supervisor) runAttached(stepCtx, parentCtx context.Context, step recipe.Step, profile *config.NetworkProfile) (*ProcessResult, error) {
	logger := ctxlog.FromContext(parentCtx).With("step", step.Name)

	var stdout, stderr bytes.Buffer
	cmd := s.command(stepCtx, step, profile)
	cmd.Stdout = newStreamWriter(logger, "stdout", &stdout)
	cmd.Stderr = newStreamWriter(logger, "stderr", &stderr)

	logger.Info("▶️ Running step.", "args", step.Args)
	start := time.Now()
	err := cmd.Run()
	result := &ProcessResult{
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		if stepCtx.Err() != nil {
			return result, s.contextFailure(stepCtx, parentCtx, step)
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return result, fmt.Errorf("starting %q: %w", step.Command, err)
		}
	}
	if result.ExitCode != step.ExpectedExit {
		return result, &NonZeroExitError{
			Code:     result.ExitCode,
			Expected: step.ExpectedExit,
			Output:   combinedOutput(result),
		}
	}

	logger.Info("✅ Step finished.", "duration", result.Duration.Round(time.Millisecond))
	return result, nil
}

// runDetached starts the process in the background and returns once the
// step's readiness URL answers. The process outlives the Run call; only its
// startup is supervised here.
func (s *Supervisor) runDetached(stepCtx, parentCtx context.Context, step recipe.Step, profile *config.NetworkProfile) (*ProcessResult, error) {
	logger := ctxlog.FromContext(parentCtx).With("step", step.Name)

	var stdout, stderr bytes.Buffer
	// Detached processes get a background context: the step timeout bounds
	// startup only, not the process lifetime.
	cmd := s.command(context.Background(), step, profile)
	cmd.Stdout = newStreamWriter(logger, "stdout", &stdout)
	cmd.Stderr = newStreamWriter(logger, "stderr", &stderr)

	logger.Info("▶️ Starting detached process.", "args", step.Args)
	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %q: %w", step.Command, err)
	}

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	probe := s.probe
	if probe == nil {
		probe = httpProbe
	}

	ready := make(chan error, 1)
	go func() { ready <- probe(stepCtx, step.ReadyURL) }()

	result := &ProcessResult{Pid: cmd.Process.Pid}
	select {
	case <-exited:
		result.ExitCode = cmd.ProcessState.ExitCode()
		result.Stdout = stdout.String()
		result.Stderr = stderr.String()
		result.Duration = time.Since(start)
		return result, &NonZeroExitError{
			Code:     result.ExitCode,
			Expected: step.ExpectedExit,
			Output:   combinedOutput(result),
		}
	case err := <-ready:
		result.Duration = time.Since(start)
		if err != nil {
			_ = killGroup(cmd.Process.Pid)
			return result, s.contextFailure(stepCtx, parentCtx, step)
		}
	}

	logger.Info("✅ Detached process ready.", "pid", result.Pid, "duration", result.Duration.Round(time.Millisecond))
	return result, nil
}

// contextFailure maps a dead step context onto the supervisor error
// taxonomy: cancellation from above wins over the step's own deadline.
func (s *Supervisor) contextFailure(stepCtx, parentCtx context.Context, step recipe.Step) error {
	if parentCtx.Err() != nil {
		return fmt.Errorf("step %q: %w", step.Name, ErrCancelled)
	}
	if errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("step %q after %s: %w", step.Name, step.Timeout, ErrTimeout)
	}
	return fmt.Errorf("step %q: %w", step.Name, ErrCancelled)
}

// Terminate kills the process group of a previously detached process.
func (s *Supervisor) Terminate(pid int) error {
	return killGroup(pid)
}

func killGroup(pid int) error {
	err := syscall.Kill(-pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}

func combinedOutput(r *ProcessResult) string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}
