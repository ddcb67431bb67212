package state

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-process implementation of the record store. It backs
// tests and dry runs; it provides the same semantics as PostgresStore but no
// durability and no cross-process locking.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]ExecutionRecord
	locks   map[string]bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]ExecutionRecord),
		locks:   make(map[string]bool),
	}
}

func key(network, recipe string) string {
	return network + "/" + recipe
}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

// IsSatisfied reports whether a record with the exact fingerprint exists.
func (s *MemoryStore) IsSatisfied(ctx context.Context, network, recipe, fingerprint string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key(network, recipe)]
	return ok && rec.Fingerprint == fingerprint, nil
}

// Record stores rec, superseding any prior record for the same key.
func (s *MemoryStore) Record(ctx context.Context, rec ExecutionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key(rec.Network, rec.Recipe)] = rec
	return nil
}

// Invalidate drops the record for (network, recipe).
func (s *MemoryStore) Invalidate(ctx context.Context, network, recipe string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key(network, recipe))
	return nil
}

// Get returns the stored record, if any. Test helper.
func (s *MemoryStore) Get(network, recipe string) (ExecutionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key(network, recipe)]
	return rec, ok
}

// AcquireRunLock mirrors the Postgres advisory lock within one process.
func (s *MemoryStore) AcquireRunLock(ctx context.Context, network string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks[network] {
		return nil, fmt.Errorf("network %q: %w", network, ErrLocked)
	}
	s.locks[network] = true
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.locks, network)
	}, nil
}
