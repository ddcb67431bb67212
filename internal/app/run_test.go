package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/chainrig/internal/config"
	"github.com/vk/chainrig/internal/recipe"
)

func testEnviron() map[string]string {
	return map[string]string{
		"NETWORK":           "local",
		"POSTGRES_USER":     "indexer",
		"POSTGRES_PASSWORD": "hunter2",
		"POSTGRES_HOST":     "127.0.0.1",
		"POSTGRES_DATABASE": "mintlake",
	}
}

func TestRunDryRunRecipeEndToEnd(t *testing.T) {
	testApp, store, out, _ := SetupAppTest(t, Config{
		RecipeName: recipe.CreateAccounts,
		DryRun:     true,
	})

	err := testApp.Run(context.Background(), testEnviron(), strings.NewReader(""))
	require.NoError(t, err)

	assert.Contains(t, out.String(), "create-accounts")
	assert.Contains(t, out.String(), "executed")

	rec, ok := store.Get("local", recipe.CreateAccounts)
	require.True(t, ok, "dry runs still track state in their in-memory store")
	assert.NotEmpty(t, rec.Fingerprint)
}

func TestRunRequiresNetwork(t *testing.T) {
	testApp, _, _, _ := SetupAppTest(t, Config{RecipeName: recipe.Deploy, DryRun: true})

	environ := testEnviron()
	delete(environ, "NETWORK")
	err := testApp.Run(context.Background(), environ, strings.NewReader(""))
	assert.ErrorContains(t, err, "no network selected")
}

func TestRunSurfacesConfigErrors(t *testing.T) {
	testApp, _, _, _ := SetupAppTest(t, Config{RecipeName: recipe.Deploy, DryRun: true})

	environ := testEnviron()
	environ["NETWORK"] = "betanet"
	err := testApp.Run(context.Background(), environ, strings.NewReader(""))
	assert.ErrorIs(t, err, config.ErrUnknownNetwork)
}

func TestRunNetworkFlagBeatsEnvironment(t *testing.T) {
	testApp, store, _, _ := SetupAppTest(t, Config{
		RecipeName: recipe.CreateAccounts,
		Network:    "testnet",
		DryRun:     true,
	})

	err := testApp.Run(context.Background(), testEnviron(), strings.NewReader(""))
	require.NoError(t, err)

	_, ok := store.Get("testnet", recipe.CreateAccounts)
	assert.True(t, ok, "the flag-selected network scopes the records")
}

func TestRunStartsShellWithoutRecipe(t *testing.T) {
	testApp, _, out, _ := SetupAppTest(t, Config{DryRun: true})

	err := testApp.Run(context.Background(), testEnviron(), strings.NewReader("q\n"))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "network local")
	assert.Contains(t, out.String(), "run-indexer")
}

func TestNewConfigRejectsUnknownRecipe(t *testing.T) {
	_, err := NewConfig(Config{RecipeName: "teleport"})
	require.Error(t, err)
	var unknown *recipe.UnknownRecipeError
	assert.ErrorAs(t, err, &unknown)
}
