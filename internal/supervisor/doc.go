// Package supervisor launches, monitors and terminates the external
// subprocesses a recipe step describes: build tools, the chain CLI and the
// indexer. It overlays network-scoped environment onto each process, streams
// output for observability while capturing it for failure reports, enforces
// per-step timeouts by killing the whole process group, and knows how to
// start the long-running indexer detached behind an HTTP readiness probe.
// The supervisor holds no durable state beyond a single Run call.
package supervisor
