package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/chainrig/internal/orchestrator"
	"github.com/vk/chainrig/internal/recipe"
	"github.com/vk/chainrig/internal/supervisor"
)

func TestParseRecipeSubcommand(t *testing.T) {
	var out bytes.Buffer
	cfg, shouldExit, err := Parse([]string{"--network", "testnet", "deploy"}, &out)
	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Equal(t, "deploy", cfg.RecipeName)
	assert.Equal(t, "testnet", cfg.Network)
	assert.Equal(t, "networks.hcl", cfg.NetworksPath)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestParseNoRecipeMeansShell(t *testing.T) {
	var out bytes.Buffer
	cfg, shouldExit, err := Parse([]string{"--network", "local"}, &out)
	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Empty(t, cfg.RecipeName)
}

func TestParseUnknownRecipe(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"teleport"}, &out)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, exitErr.Message, `unknown recipe "teleport"`)
}

func TestParseRejectsMultipleRecipes(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"deploy", "create-store"}, &out)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestParseAttachOnlyForRunIndexer(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"--attach", "deploy"}, &out)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)

	cfg, _, err := Parse([]string{"--attach", "run-indexer"}, &out)
	require.NoError(t, err)
	assert.True(t, cfg.Attach)
}

func TestParseValidatesLogFlags(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"--log-format", "xml", "deploy"}, &out)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)

	_, _, err = Parse([]string{"--log-level", "loud", "deploy"}, &out)
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestParseHelpExitsCleanly(t *testing.T) {
	var out bytes.Buffer
	cfg, shouldExit, err := Parse([]string{"--help"}, &out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Recipes:")
}

func TestExitCodeFor(t *testing.T) {
	stepFailure := &supervisor.NonZeroExitError{Code: 1}

	assert.Equal(t, 0, ExitCodeFor("deploy", nil))
	assert.Equal(t, 1, ExitCodeFor(recipe.Deploy, stepFailure))
	assert.Equal(t, 1, ExitCodeFor(recipe.BuildContracts, stepFailure))
	assert.Equal(t, 2, ExitCodeFor(recipe.RunIndexer, supervisor.ErrTimeout), "indexer startup failure exits 2")
	assert.Equal(t, 1, ExitCodeFor(recipe.CreateStore, orchestrator.ErrAlreadyRunning))
	assert.Equal(t, 2, ExitCodeFor("deploy", &ExitError{Code: 2, Message: "usage"}))
}

func TestDescribeNamesFailureKind(t *testing.T) {
	assert.Contains(t, Describe(orchestrator.ErrAlreadyRunning), "already running")
	assert.Contains(t, Describe(errors.New("plain")), "plain")
}
