package recipe

import (
	"fmt"
	"strings"
)

// UnknownRecipeError reports a lookup of a recipe name the registry does not
// hold.
type UnknownRecipeError struct {
	Name string
}

func (e *UnknownRecipeError) Error() string {
	return fmt.Sprintf("unknown recipe %q", e.Name)
}

// CyclicDependencyError reports a prerequisite cycle found while validating
// the registry. This is a programming error in the recipe definitions and is
// raised at load time, never during a run.
type CyclicDependencyError struct {
	Path []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic recipe dependency: %s", strings.Join(e.Path, " -> "))
}
