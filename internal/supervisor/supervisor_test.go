package supervisor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/chainrig/internal/config"
	"github.com/vk/chainrig/internal/recipe"
)

func testProfile() *config.NetworkProfile {
	return &config.NetworkProfile{
		Name:          "local",
		RPCEndpoint:   "http://127.0.0.1:3030",
		AccountPrefix: "test.near",
		Database: config.Database{
			User: "u", Password: "p", Host: "h", Port: 5432, Name: "d",
		},
	}
}

func TestRunCapturesStdout(t *testing.T) {
	s := New()
	result, err := s.Run(context.Background(), recipe.Step{
		Name:    "hello",
		Command: "echo",
		Args:    []string{"hello", "world"},
		Timeout: 10 * time.Second,
	}, testProfile())

	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "hello world\n", result.Stdout)
	assert.Greater(t, result.Duration, time.Duration(0))
}

func TestRunAppliesEnvOverlay(t *testing.T) {
	s := New()
	result, err := s.Run(context.Background(), recipe.Step{
		Name:    "env",
		Command: "sh",
		Args:    []string{"-c", "printf '%s' \"$NEAR_ENV\""},
		Timeout: 10 * time.Second,
	}, testProfile())

	require.NoError(t, err)
	assert.Equal(t, "local", result.Stdout)
}

func TestRunUnexpectedExitCode(t *testing.T) {
	s := New()
	result, err := s.Run(context.Background(), recipe.Step{
		Name:    "fail",
		Command: "sh",
		Args:    []string{"-c", "echo boom >&2; exit 3"},
		Timeout: 10 * time.Second,
	}, testProfile())

	var exitErr *NonZeroExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, 0, exitErr.Expected)
	assert.Contains(t, exitErr.Output, "boom")
	assert.Equal(t, 3, result.ExitCode)
}

func TestRunHonorsDeclaredExpectedExit(t *testing.T) {
	s := New()
	result, err := s.Run(context.Background(), recipe.Step{
		Name:         "expected-nonzero",
		Command:      "sh",
		Args:         []string{"-c", "exit 3"},
		ExpectedExit: 3,
		Timeout:      10 * time.Second,
	}, testProfile())

	require.NoError(t, err)
	assert.Equal(t, 3, result.ExitCode)
}

func TestRunTimeoutKillsProcess(t *testing.T) {
	s := New()
	start := time.Now()
	_, err := s.Run(context.Background(), recipe.Step{
		Name:    "slow",
		Command: "sleep",
		Args:    []string{"30"},
		Timeout: 200 * time.Millisecond,
	}, testProfile())

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 10*time.Second, "the process group must be killed, not waited out")
}

func TestRunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	s := New()
	_, err := s.Run(ctx, recipe.Step{
		Name:    "interrupted",
		Command: "sleep",
		Args:    []string{"30"},
		Timeout: 30 * time.Second,
	}, testProfile())

	assert.ErrorIs(t, err, ErrCancelled)
}

func TestRunMissingCommand(t *testing.T) {
	s := New()
	_, err := s.Run(context.Background(), recipe.Step{
		Name:    "missing",
		Command: "definitely-not-a-real-binary-4f2a",
		Timeout: 10 * time.Second,
	}, testProfile())

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestDryRunSpawnsNothing(t *testing.T) {
	s := New()
	s.DryRun = true
	result, err := s.Run(context.Background(), recipe.Step{
		Name:    "dry",
		Command: "definitely-not-a-real-binary-4f2a",
	}, testProfile())

	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
}

func TestRunDetachedReturnsOnceReady(t *testing.T) {
	s := New()
	s.probe = func(ctx context.Context, url string) error {
		assert.Equal(t, "http://127.0.0.1:3034/healthz", url)
		return nil
	}

	result, err := s.Run(context.Background(), recipe.Step{
		Name:     "indexer",
		Command:  "sleep",
		Args:     []string{"30"},
		Timeout:  5 * time.Second,
		Detach:   true,
		ReadyURL: "http://127.0.0.1:3034/healthz",
	}, testProfile())

	require.NoError(t, err)
	require.Greater(t, result.Pid, 0)
	assert.NoError(t, s.Terminate(result.Pid))
}

func TestRunDetachedEarlyExitFails(t *testing.T) {
	s := New()
	s.probe = func(ctx context.Context, url string) error {
		<-ctx.Done()
		return ctx.Err()
	}

	_, err := s.Run(context.Background(), recipe.Step{
		Name:     "indexer",
		Command:  "sh",
		Args:     []string{"-c", "exit 1"},
		Timeout:  5 * time.Second,
		Detach:   true,
		ReadyURL: "http://127.0.0.1:3034/healthz",
	}, testProfile())

	var exitErr *NonZeroExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)
}

func TestRunDetachedStartupTimeout(t *testing.T) {
	s := New()
	s.probe = func(ctx context.Context, url string) error {
		<-ctx.Done()
		return ctx.Err()
	}

	_, err := s.Run(context.Background(), recipe.Step{
		Name:     "indexer",
		Command:  "sleep",
		Args:     []string{"30"},
		Timeout:  200 * time.Millisecond,
		Detach:   true,
		ReadyURL: "http://127.0.0.1:3034/healthz",
	}, testProfile())

	assert.ErrorIs(t, err, ErrTimeout)
}
