package sequence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on a tenant_counters table. The increment
// is a single upsert statement, so the database serializes concurrent
// allocations on the (tenant_id, prefix) row and no update is ever lost.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Store backed by the given connection pool.
// The tenant_counters table is created by the bundled migrations.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("sequence: pgx pool is required")
	}
	return &PostgresStore{pool: pool}
}

// Increment atomically bumps the counter row and returns the new value.
func (s *PostgresStore) Increment(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error) {
	var value int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO tenant_counters (tenant_id, prefix, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (tenant_id, prefix)
		DO UPDATE SET value = tenant_counters.value + 1, updated_at = now()
		RETURNING value`,
		tenantID, prefix,
	).Scan(&value)
	if err != nil {
		return 0, err
	}

	return value, nil
}

// Current returns the last issued value, zero when no row exists.
func (s *PostgresStore) Current(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error) {
	var value int64
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(
			(SELECT value FROM tenant_counters WHERE tenant_id = $1 AND prefix = $2), 0
		)`,
		tenantID, prefix,
	).Scan(&value)
	if err != nil {
		return 0, err
	}

	return value, nil
}

// Seed initializes the counter, refusing to move an existing row backwards.
func (s *PostgresStore) Seed(ctx context.Context, tenantID uuid.UUID, prefix string, value int64) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO tenant_counters (tenant_id, prefix, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id, prefix)
		DO UPDATE SET value = EXCLUDED.value, updated_at = now()
		WHERE tenant_counters.value <= EXCLUDED.value`,
		tenantID, prefix, value,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: counter for %q already ahead of seed %d", ErrInvalidCounterState, prefix, value)
	}

	return nil
}
