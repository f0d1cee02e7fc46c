package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresProvider implements Provider on the tenants table. Identifiers
// are matched against the tenant ID when they parse as a UUID, and
// against the subdomain otherwise.
type PostgresProvider struct {
	pool *pgxpool.Pool
}

// NewPostgresProvider creates a Provider backed by the given connection pool.
func NewPostgresProvider(pool *pgxpool.Pool) *PostgresProvider {
	if pool == nil {
		panic("tenant: pgx pool is required")
	}
	return &PostgresProvider{pool: pool}
}

func (p *PostgresProvider) GetByIdentifier(ctx context.Context, identifier string) (*Tenant, error) {
	if identifier == "" {
		return nil, ErrInvalidIdentifier
	}

	query := `
		SELECT id, subdomain, name, plan_id, currency, active, numbering_prefix, created_at
		FROM tenants
		WHERE subdomain = $1`
	if _, err := uuid.Parse(identifier); err == nil {
		query = `
			SELECT id, subdomain, name, plan_id, currency, active, numbering_prefix, created_at
			FROM tenants
			WHERE id = $1`
	}

	var (
		t      Tenant
		prefix *string
	)
	err := p.pool.QueryRow(ctx, query, identifier).Scan(
		&t.ID, &t.Subdomain, &t.Name, &t.PlanID, &t.Currency, &t.Active, &prefix, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}

	if prefix != nil && *prefix != "" {
		t.Numbering = &NumberingSettings{Prefix: *prefix}
	}

	return &t, nil
}
