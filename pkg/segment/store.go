package segment

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists customer segment assignments. Assignments are nullable:
// a customer that has never been classified has no segment.
type Store interface {
	// GetSegment returns the stored segment for a customer, empty string
	// when none is assigned.
	GetSegment(ctx context.Context, tenantID, customerID uuid.UUID) (string, error)

	// SetSegment stores the segment assignment for a customer.
	SetSegment(ctx context.Context, tenantID, customerID uuid.UUID, segmentID string) error
}

// MemoryStore is a process-local Store for tests and single-instance use.
type MemoryStore struct {
	mu       sync.RWMutex
	segments map[uuid.UUID]map[uuid.UUID]string
}

// NewMemoryStore creates an empty in-memory segment store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		segments: make(map[uuid.UUID]map[uuid.UUID]string),
	}
}

func (s *MemoryStore) GetSegment(ctx context.Context, tenantID, customerID uuid.UUID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.segments[tenantID][customerID], nil
}

func (s *MemoryStore) SetSegment(ctx context.Context, tenantID, customerID uuid.UUID, segmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.segments[tenantID] == nil {
		s.segments[tenantID] = make(map[uuid.UUID]string)
	}
	s.segments[tenantID][customerID] = segmentID
	return nil
}

// PostgresStore persists segment assignments on the customers table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Store backed by the given connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("segment: pgx pool is required")
	}
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) GetSegment(ctx context.Context, tenantID, customerID uuid.UUID) (string, error) {
	var segmentID *string
	err := s.pool.QueryRow(ctx, `
		SELECT segment_id FROM customers WHERE tenant_id = $1 AND id = $2`,
		tenantID, customerID,
	).Scan(&segmentID)
	if err != nil {
		return "", err
	}
	if segmentID == nil {
		return "", nil
	}
	return *segmentID, nil
}

func (s *PostgresStore) SetSegment(ctx context.Context, tenantID, customerID uuid.UUID, segmentID string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE customers SET segment_id = $3, updated_at = now()
		WHERE tenant_id = $1 AND id = $2`,
		tenantID, customerID, segmentID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
