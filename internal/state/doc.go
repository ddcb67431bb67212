// Package state persists execution records, the idempotency markers that
// make recipes safe to re-run. Records are keyed by (network, recipe) and
// hold the fingerprint of the inputs the last successful run saw; a re-run
// with an unchanged fingerprint is a no-op, a changed fingerprint supersedes
// the record. The Postgres implementation shares the indexer's database and
// also provides the network-scoped advisory lock that keeps two orchestrator
// invocations from interleaving. An in-memory implementation backs tests.
package state
