package stats

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements OrderSource and Writer on the orders and
// customers tables created by the bundled migrations. Reads see only
// committed rows, which gives the aggregator its point-in-time snapshot
// guarantee.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by the given connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("stats: pgx pool is required")
	}
	return &PostgresStore{pool: pool}
}

// ListByCustomer returns the customer's committed orders.
func (s *PostgresStore) ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]Order, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, tenant_id, customer_id, number, status, total, created_at
		FROM orders
		WHERE tenant_id = $1 AND customer_id = $2
		ORDER BY created_at`,
		tenantID, customerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.TenantID, &o.CustomerID, &o.Number, &o.Status, &o.Total, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// CustomerIDs returns the identifiers of every customer of the tenant.
func (s *PostgresStore) CustomerIDs(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id FROM customers WHERE tenant_id = $1 ORDER BY id`,
		tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SaveStats writes the statistics block onto the customer row in a single
// statement, so a cancelled batch never leaves a customer half-updated.
func (s *PostgresStore) SaveStats(ctx context.Context, tenantID, customerID uuid.UUID, st Stats) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE customers
		SET orders_count = $3,
		    lifetime_value = $4,
		    average_order_value = $5,
		    first_order_at = $6,
		    last_order_at = $7,
		    updated_at = now()
		WHERE tenant_id = $1 AND id = $2`,
		tenantID, customerID,
		st.OrdersCount, st.LifetimeValue, st.AverageOrderValue, st.FirstOrderAt, st.LastOrderAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
