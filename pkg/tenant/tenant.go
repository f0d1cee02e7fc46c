package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tenant is the unit of data partitioning. Every derived-state operation in
// this module is scoped to exactly one tenant; nothing crosses this boundary.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Subdomain string    `json:"subdomain"`
	Name      string    `json:"name"`
	PlanID    string    `json:"plan_id"`
	Currency  string    `json:"currency"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`

	// Numbering holds the tenant's document-numbering settings. A nil value
	// means defaults (year-month prefix) apply.
	Numbering *NumberingSettings `json:"numbering,omitempty"`
}

// NumberingSettings configures how document numbers are generated for a
// tenant. Counters themselves live in the sequence store, not here.
type NumberingSettings struct {
	// Prefix overrides the default year-month prefix when non-empty.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// Provider loads tenant information from a data source.
// Implementations should handle various identifier formats
// (UUID, subdomain, etc.) based on application needs.
type Provider interface {
	// GetByIdentifier retrieves a tenant using any unique identifier.
	// Returns ErrTenantNotFound if no tenant matches the identifier.
	GetByIdentifier(ctx context.Context, identifier string) (*Tenant, error)
}
