package sequence

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore implements Store with process-local counters. Suitable for
// tests and single-instance deployments; production multi-instance setups
// should use PostgresStore so counters survive restarts.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMemoryStore creates an empty in-memory counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counters: make(map[string]int64),
	}
}

func counterKey(tenantID uuid.UUID, prefix string) string {
	return tenantID.String() + ":" + prefix
}

// Increment advances the counter under a single lock, which serializes all
// allocations for the same pair.
func (s *MemoryStore) Increment(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := counterKey(tenantID, prefix)
	s.counters[key]++
	return s.counters[key], nil
}

// Current returns the last issued value for the pair.
func (s *MemoryStore) Current(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.counters[counterKey(tenantID, prefix)], nil
}

// Seed initializes the counter, refusing to move it backwards.
func (s *MemoryStore) Seed(ctx context.Context, tenantID uuid.UUID, prefix string, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := counterKey(tenantID, prefix)
	if current := s.counters[key]; current > value {
		return fmt.Errorf("%w: counter already at %d, cannot seed to %d", ErrInvalidCounterState, current, value)
	}

	s.counters[key] = value
	return nil
}
