package state

import (
	"errors"
	"time"
)

// ErrUnavailable reports that the underlying storage cannot be reached. The
// orchestrator treats this as fatal for the whole run: without reliable
// idempotency tracking, re-executing on-chain steps risks duplicate side
// effects.
var ErrUnavailable = errors.New("state store unavailable")

// ErrLocked reports that another orchestrator invocation holds the run lock
// for the same network.
var ErrLocked = errors.New("another run holds the network lock")

// ExecutionRecord is the durable fact that a recipe completed successfully
// for a network with a given input fingerprint. Records are never mutated in
// place; a re-run with a changed fingerprint writes a superseding record.
type ExecutionRecord struct {
	Network     string
	Recipe      string
	Fingerprint string
	RunID       string
	CompletedAt time.Time
}
