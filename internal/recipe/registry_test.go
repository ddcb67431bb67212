package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func named(name string, requires ...string) *Recipe {
	return &Recipe{Name: name, Requires: requires}
}

func TestNewRejectsDuplicateNames(t *testing.T) {
	_, err := New(named("a"), named("a"))
	assert.ErrorContains(t, err, "duplicate recipe")
}

func TestNewRejectsUndefinedPrerequisite(t *testing.T) {
	_, err := New(named("a", "ghost"))
	assert.ErrorContains(t, err, `requires undefined recipe "ghost"`)
}

func TestNewRejectsCycleAtLoadTime(t *testing.T) {
	t.Run("direct cycle", func(t *testing.T) {
		_, err := New(named("a", "b"), named("b", "a"))
		var cyclic *CyclicDependencyError
		require.ErrorAs(t, err, &cyclic)
		assert.Contains(t, cyclic.Path, "a")
		assert.Contains(t, cyclic.Path, "b")
	})

	t.Run("self cycle", func(t *testing.T) {
		_, err := New(named("a", "a"))
		var cyclic *CyclicDependencyError
		require.ErrorAs(t, err, &cyclic)
	})

	t.Run("transitive cycle", func(t *testing.T) {
		_, err := New(named("a", "b"), named("b", "c"), named("c", "a"))
		var cyclic *CyclicDependencyError
		require.ErrorAs(t, err, &cyclic)
	})
}

func TestGetUnknownRecipe(t *testing.T) {
	r, err := New(named("a"))
	require.NoError(t, err)

	_, err = r.Get("nope")
	var unknown *UnknownRecipeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nope", unknown.Name)
}

func TestExecutionOrder(t *testing.T) {
	r, err := New(
		named("build"),
		named("accounts"),
		named("deploy", "build", "accounts"),
		named("store", "deploy"),
	)
	require.NoError(t, err)

	orderOf := func(name string) []string {
		recipes, err := r.ExecutionOrder(name)
		require.NoError(t, err)
		names := make([]string, len(recipes))
		for i, rec := range recipes {
			names[i] = rec.Name
		}
		return names
	}

	t.Run("prerequisites before dependents, declaration order ties", func(t *testing.T) {
		assert.Equal(t, []string{"build", "accounts", "deploy", "store"}, orderOf("store"))
	})

	t.Run("shared prerequisites appear once", func(t *testing.T) {
		assert.Equal(t, []string{"build", "accounts", "deploy"}, orderOf("deploy"))
	})

	t.Run("leaf recipe expands to itself", func(t *testing.T) {
		assert.Equal(t, []string{"build"}, orderOf("build"))
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		first := orderOf("store")
		for i := 0; i < 20; i++ {
			assert.Equal(t, first, orderOf("store"))
		}
	})
}
