package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSatisfiedOnlyOnExactFingerprint(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	ok, err := s.IsSatisfied(ctx, "local", "deploy", "fp-1")
	require.NoError(t, err)
	assert.False(t, ok, "fresh store has no records")

	require.NoError(t, s.Record(ctx, ExecutionRecord{
		Network: "local", Recipe: "deploy", Fingerprint: "fp-1",
		RunID: "run-a", CompletedAt: time.Now(),
	}))

	ok, err = s.IsSatisfied(ctx, "local", "deploy", "fp-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.IsSatisfied(ctx, "local", "deploy", "fp-2")
	require.NoError(t, err)
	assert.False(t, ok, "a changed fingerprint forces re-execution")

	ok, err = s.IsSatisfied(ctx, "testnet", "deploy", "fp-1")
	require.NoError(t, err)
	assert.False(t, ok, "records are network scoped")
}

func TestMemoryStoreRecordSupersedes(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Record(ctx, ExecutionRecord{Network: "local", Recipe: "deploy", Fingerprint: "fp-1", RunID: "run-a"}))
	require.NoError(t, s.Record(ctx, ExecutionRecord{Network: "local", Recipe: "deploy", Fingerprint: "fp-2", RunID: "run-b"}))

	rec, ok := s.Get("local", "deploy")
	require.True(t, ok)
	assert.Equal(t, "fp-2", rec.Fingerprint)
	assert.Equal(t, "run-b", rec.RunID)

	satisfied, err := s.IsSatisfied(ctx, "local", "deploy", "fp-1")
	require.NoError(t, err)
	assert.False(t, satisfied, "the prior record is superseded, not kept")
}

func TestMemoryStoreInvalidate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Record(ctx, ExecutionRecord{Network: "local", Recipe: "deploy", Fingerprint: "fp-1"}))
	require.NoError(t, s.Invalidate(ctx, "local", "deploy"))

	ok, err := s.IsSatisfied(ctx, "local", "deploy", "fp-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreRunLock(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	release, err := s.AcquireRunLock(ctx, "local")
	require.NoError(t, err)

	_, err = s.AcquireRunLock(ctx, "local")
	assert.ErrorIs(t, err, ErrLocked, "second acquisition for the same network fails fast")

	otherRelease, err := s.AcquireRunLock(ctx, "testnet")
	require.NoError(t, err, "locks are network scoped")
	otherRelease()

	release()
	release2, err := s.AcquireRunLock(ctx, "local")
	require.NoError(t, err, "the lock is reacquirable after release")
	release2()
}
