package recalc

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vendory/bizcore/pkg/limits"
	"github.com/vendory/bizcore/pkg/segment"
	"github.com/vendory/bizcore/pkg/stats"
)

// defaultWorkers bounds per-customer concurrency within one batch run.
const defaultWorkers = 4

// CustomerLister enumerates the customers of a tenant.
// stats.MemoryStore and stats.PostgresStore both satisfy it.
type CustomerLister interface {
	CustomerIDs(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error)
}

// RuleResolver loads the segmentation ruleset of a tenant.
type RuleResolver func(ctx context.Context, tenantID uuid.UUID) (*segment.Ruleset, error)

// Result reports the outcome of one recalculation run.
type Result struct {
	// CustomersUpdated is the number of customers whose statistics were
	// successfully recomputed and reclassified.
	CustomersUpdated int `json:"customers_updated"`

	// SegmentsChanged counts customers whose segment assignment actually
	// moved; unchanged assignments are not rewritten.
	SegmentsChanged int `json:"segments_changed"`

	Failed    int         `json:"failed"`
	FailedIDs []uuid.UUID `json:"failed_ids,omitempty"`
}

// Orchestrator runs the stats-then-segments refresh over a tenant.
type Orchestrator struct {
	agg      *stats.Aggregator
	lister   CustomerLister
	segments segment.Store
	rules    RuleResolver
	limits   limits.LimitsService
	log      *slog.Logger
	workers  int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithWorkers sets the per-customer concurrency bound.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithLogger sets the logger used for per-customer failures.
func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// NewOrchestrator wires the batch driver. All collaborators are required
// except the limits service: passing nil disables the feature gate, which
// is only appropriate for internal maintenance jobs.
func NewOrchestrator(agg *stats.Aggregator, lister CustomerLister, segments segment.Store, rules RuleResolver, limitsSvc limits.LimitsService, opts ...Option) *Orchestrator {
	if agg == nil {
		panic("recalc: stats aggregator is required")
	}
	if lister == nil {
		panic("recalc: customer lister is required")
	}
	if segments == nil {
		panic("recalc: segment store is required")
	}
	if rules == nil {
		panic("recalc: rule resolver is required")
	}

	o := &Orchestrator{
		agg:      agg,
		lister:   lister,
		segments: segments,
		rules:    rules,
		limits:   limitsSvc,
		log:      slog.Default(),
		workers:  defaultWorkers,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RecalculateAll refreshes statistics and segment assignment for every
// customer of the tenant. Fails with ErrPlanForbidden before any work when
// the tenant's plan lacks the segmentation feature.
func (o *Orchestrator) RecalculateAll(ctx context.Context, tenantID uuid.UUID) (Result, error) {
	if o.limits != nil {
		if err := o.limits.RequireFeature(ctx, tenantID, limits.FeatureSegmentation); err != nil {
			return Result{}, errors.Join(ErrPlanForbidden, err)
		}
	}

	rules, err := o.rules(ctx, tenantID)
	if err != nil {
		return Result{}, errors.Join(ErrFailedToResolveRules, err)
	}

	customerIDs, err := o.lister.CustomerIDs(ctx, tenantID)
	if err != nil {
		return Result{}, errors.Join(ErrFailedToListCustomers, err)
	}

	var (
		mu     sync.Mutex
		result Result
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for _, customerID := range customerIDs {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			changed, err := o.refreshCustomer(gctx, tenantID, customerID, rules)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Isolated failure: count it, let the batch continue.
				result.Failed++
				result.FailedIDs = append(result.FailedIDs, customerID)
				o.log.ErrorContext(gctx, "customer recalculation failed",
					slog.String("tenant_id", tenantID.String()),
					slog.String("customer_id", customerID.String()),
					slog.Any("error", err),
				)
				return nil
			}
			result.CustomersUpdated++
			if changed {
				result.SegmentsChanged++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	o.log.InfoContext(ctx, "tenant recalculation finished",
		slog.String("tenant_id", tenantID.String()),
		slog.Int("customers_updated", result.CustomersUpdated),
		slog.Int("segments_changed", result.SegmentsChanged),
		slog.Int("failed", result.Failed),
	)

	return result, nil
}

// refreshCustomer recomputes one customer's statistics, classifies them and
// persists the segment only when it moved.
func (o *Orchestrator) refreshCustomer(ctx context.Context, tenantID, customerID uuid.UUID, rules *segment.Ruleset) (changed bool, err error) {
	s, err := o.agg.Recompute(ctx, tenantID, customerID)
	if err != nil {
		return false, err
	}

	next := rules.Classify(s)

	current, err := o.segments.GetSegment(ctx, tenantID, customerID)
	if err != nil {
		return false, err
	}
	if current == next {
		return false, nil
	}

	if err := o.segments.SetSegment(ctx, tenantID, customerID, next); err != nil {
		return false, err
	}
	return true, nil
}
