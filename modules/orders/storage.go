package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vendory/bizcore/pkg/pg"
	"github.com/vendory/bizcore/pkg/stats"
)

// ErrDuplicateNumber is returned when an order number is already taken
// within the tenant.
var ErrDuplicateNumber = errors.New("orders: duplicate order number")

// ErrCustomerNotFound is returned when the order references a customer
// that does not exist within the tenant.
var ErrCustomerNotFound = errors.New("orders: customer not found")

// Storage persists orders and answers the usage counters the limits
// service needs.
type Storage interface {
	// CreateOrder persists a new order. The order number must be unique
	// within the tenant.
	CreateOrder(ctx context.Context, order stats.Order) error

	// CustomerExists reports whether the customer belongs to the tenant.
	CustomerExists(ctx context.Context, tenantID, customerID uuid.UUID) (bool, error)

	// CountOrdersThisMonth returns the number of orders the tenant created
	// in the current calendar month.
	CountOrdersThisMonth(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// CountCustomers returns the number of customers of the tenant.
	CountCustomers(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// PostgresStorage implements Storage on the orders and customers tables.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage creates a Storage backed by the given connection pool.
func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	if pool == nil {
		panic("orders: pgx pool is required")
	}
	return &PostgresStorage{pool: pool}
}

func (s *PostgresStorage) CreateOrder(ctx context.Context, order stats.Order) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO orders (id, tenant_id, customer_id, number, status, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		order.ID, order.TenantID, order.CustomerID, order.Number, order.Status, order.Total, order.CreatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return errors.Join(ErrDuplicateNumber, err)
		}
		if pg.IsForeignKeyViolationError(err) {
			return errors.Join(ErrCustomerNotFound, err)
		}
		return err
	}
	return nil
}

func (s *PostgresStorage) CustomerExists(ctx context.Context, tenantID, customerID uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM customers WHERE tenant_id = $1 AND id = $2)`,
		tenantID, customerID,
	).Scan(&exists)
	return exists, err
}

func (s *PostgresStorage) CountOrdersThisMonth(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM orders
		WHERE tenant_id = $1 AND created_at >= date_trunc('month', now())`,
		tenantID,
	).Scan(&count)
	return count, err
}

func (s *PostgresStorage) CountCustomers(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM customers WHERE tenant_id = $1`,
		tenantID,
	).Scan(&count)
	return count, err
}
