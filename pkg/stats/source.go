package stats

import (
	"context"

	"github.com/google/uuid"
)

// OrderSource reads committed orders for aggregation. Implementations must
// only expose fully committed orders: the aggregator reflects a
// point-in-time snapshot and must never see a partial write.
type OrderSource interface {
	// ListByCustomer returns all committed orders of one customer within
	// the tenant.
	ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]Order, error)

	// CustomerIDs returns the identifiers of every customer of the tenant.
	CustomerIDs(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error)
}

// Writer persists a customer's recomputed statistics block.
type Writer interface {
	SaveStats(ctx context.Context, tenantID, customerID uuid.UUID, s Stats) error
}
