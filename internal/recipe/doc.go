// Package recipe defines the named units of deployment work and the registry
// that holds them. A Recipe is an ordered list of subprocess Steps plus the
// names of the recipes it requires first; the registry validates the
// prerequisite graph at load time and expands it into a deterministic
// execution order.
package recipe
