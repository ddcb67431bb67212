// Package orchestrator is the control loop tying the other components
// together. For a requested recipe it expands the prerequisite order through
// the registry, drives each recipe through an explicit phase machine
// (checking recorded state, executing steps through the supervisor,
// recording success), and reports a structured result. A network-scoped run
// lock guarantees that two invocations for the same network fail fast
// instead of interleaving on-chain side effects.
package orchestrator
