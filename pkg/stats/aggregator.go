package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Aggregator recomputes customer statistics from order history.
type Aggregator struct {
	source OrderSource
	writer Writer
	log    *slog.Logger
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithLogger sets the logger used for batch progress and per-customer
// failures.
func WithLogger(log *slog.Logger) AggregatorOption {
	return func(a *Aggregator) {
		if log != nil {
			a.log = log
		}
	}
}

// NewAggregator creates an Aggregator. Panics when source or writer is nil.
func NewAggregator(source OrderSource, writer Writer, opts ...AggregatorOption) *Aggregator {
	if source == nil {
		panic("stats: order source is required")
	}
	if writer == nil {
		panic("stats: writer is required")
	}

	a := &Aggregator{
		source: source,
		writer: writer,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Recompute derives the customer's statistics from their committed orders
// and persists the result. Idempotent: with no intervening order changes,
// two runs produce identical statistics.
func (a *Aggregator) Recompute(ctx context.Context, tenantID, customerID uuid.UUID) (Stats, error) {
	orders, err := a.source.ListByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return Stats{}, errors.Join(ErrFailedToLoadOrders, err)
	}

	s := Compute(orders)

	if err := a.writer.SaveStats(ctx, tenantID, customerID, s); err != nil {
		return Stats{}, errors.Join(ErrFailedToSaveStats, err)
	}

	return s, nil
}

// BatchResult reports per-customer outcomes of a batch recomputation.
type BatchResult struct {
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	FailedIDs []uuid.UUID `json:"failed_ids,omitempty"`
}

// Err returns ErrPartialBatchFailure when any customer failed, nil
// otherwise.
func (r BatchResult) Err() error {
	if r.Failed == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d succeeded, %d failed", ErrPartialBatchFailure, r.Succeeded, r.Failed)
}

// RecomputeAll recomputes statistics for every customer of the tenant.
// Customers are processed independently: a failure is logged and counted,
// never propagated as a hard failure of the batch. Cancelling the context
// stops after the in-flight customer; no customer is left half-updated.
func (a *Aggregator) RecomputeAll(ctx context.Context, tenantID uuid.UUID) (BatchResult, error) {
	customerIDs, err := a.source.CustomerIDs(ctx, tenantID)
	if err != nil {
		return BatchResult{}, errors.Join(ErrFailedToListCustomers, err)
	}

	var result BatchResult
	for _, customerID := range customerIDs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if _, err := a.Recompute(ctx, tenantID, customerID); err != nil {
			result.Failed++
			result.FailedIDs = append(result.FailedIDs, customerID)
			a.log.ErrorContext(ctx, "customer stats recompute failed",
				slog.String("tenant_id", tenantID.String()),
				slog.String("customer_id", customerID.String()),
				slog.Any("error", err),
			)
			continue
		}
		result.Succeeded++
	}

	return result, nil
}
