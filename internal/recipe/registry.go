package recipe

import (
	"fmt"
)

// Registry maps recipe names to their definitions and answers prerequisite
// expansion queries. It is immutable after New returns.
type Registry struct {
	recipes map[string]*Recipe
	order   []string
}

// New builds a registry from the given recipes and validates the prerequisite
// graph: duplicate names, references to undefined recipes and cycles are all
// load-time errors.
func New(recipes ...*Recipe) (*Registry, error) {
	r := &Registry{recipes: make(map[string]*Recipe, len(recipes))}
	for _, rec := range recipes {
		if _, ok := r.recipes[rec.Name]; ok {
			return nil, fmt.Errorf("duplicate recipe %q", rec.Name)
		}
		r.recipes[rec.Name] = rec
		r.order = append(r.order, rec.Name)
	}

	for _, rec := range recipes {
		for _, req := range rec.Requires {
			if _, ok := r.recipes[req]; !ok {
				return nil, fmt.Errorf("recipe %q requires undefined recipe %q", rec.Name, req)
			}
		}
	}
	if err := r.detectCycles(); err != nil {
		return nil, err
	}
	return r, nil
}

// Get returns the named recipe or an UnknownRecipeError.
func (r *Registry) Get(name string) (*Recipe, error) {
	rec, ok := r.recipes[name]
	if !ok {
		return nil, &UnknownRecipeError{Name: name}
	}
	return rec, nil
}

// Names returns all recipe names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// ExecutionOrder expands the named recipe's prerequisite graph into a flat
// sequence, prerequisites before dependents. Ties among independent
// prerequisites are broken by declaration order, so the result is
// deterministic. The graph was validated cycle-free at load time.
func (r *Registry) ExecutionOrder(name string) ([]*Recipe, error) {
	root, ok := r.recipes[name]
	if !ok {
		return nil, &UnknownRecipeError{Name: name}
	}

	var ordered []*Recipe
	visited := make(map[string]bool)

	var visit func(rec *Recipe)
	visit = func(rec *Recipe) {
		if visited[rec.Name] {
			return
		}
		visited[rec.Name] = true
		for _, req := range rec.Requires {
			visit(r.recipes[req])
		}
		ordered = append(ordered, rec)
	}
	visit(root)
	return ordered, nil
}

// detectCycles walks the prerequisite graph depth-first with the classic
// temporary/permanent marking. A node found in the temporary set is part of a
// cycle; the path from its first occurrence is reported.
func (r *Registry) detectCycles() error {
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)
	var stack []string

	var visit func(name string) error
	visit = func(name string) error {
		if permanent[name] {
			return nil
		}
		if temporary[name] {
			path := append(cyclePathFrom(stack, name), name)
			return &CyclicDependencyError{Path: path}
		}

		temporary[name] = true
		stack = append(stack, name)
		for _, req := range r.recipes[name].Requires {
			if err := visit(req); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		delete(temporary, name)
		permanent[name] = true
		return nil
	}

	for _, name := range r.order {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

func cyclePathFrom(stack []string, name string) []string {
	for i, n := range stack {
		if n == name {
			return append([]string(nil), stack[i:]...)
		}
	}
	return append([]string(nil), stack...)
}
