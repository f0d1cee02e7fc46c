package stats

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the read-side view of a committed order used for aggregation.
// Only fully committed orders are visible to the aggregator.
type Order struct {
	ID         uuid.UUID       `json:"id"`
	TenantID   uuid.UUID       `json:"tenant_id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Number     string          `json:"number"`
	Status     string          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Stats is the derived statistics block of a customer.
type Stats struct {
	OrdersCount       int64           `json:"orders_count"`
	LifetimeValue     decimal.Decimal `json:"lifetime_value"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	FirstOrderAt      *time.Time      `json:"first_order_at,omitempty"`
	LastOrderAt       *time.Time      `json:"last_order_at,omitempty"`
}

// Zero returns the statistics of a customer with no orders.
func Zero() Stats {
	return Stats{
		LifetimeValue:     decimal.Zero,
		AverageOrderValue: decimal.Zero,
	}
}

// Equal reports whether two statistics blocks are identical. Decimal
// fields compare by value, not representation.
func (s Stats) Equal(other Stats) bool {
	return s.OrdersCount == other.OrdersCount &&
		s.LifetimeValue.Equal(other.LifetimeValue) &&
		s.AverageOrderValue.Equal(other.AverageOrderValue) &&
		equalTime(s.FirstOrderAt, other.FirstOrderAt) &&
		equalTime(s.LastOrderAt, other.LastOrderAt)
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// Compute derives statistics from a set of orders. Pure function: the
// same order set always yields the same result, regardless of order.
func Compute(orders []Order) Stats {
	if len(orders) == 0 {
		return Zero()
	}

	s := Stats{OrdersCount: int64(len(orders)), LifetimeValue: decimal.Zero}

	var first, last time.Time
	for i, o := range orders {
		s.LifetimeValue = s.LifetimeValue.Add(o.Total)
		if i == 0 || o.CreatedAt.Before(first) {
			first = o.CreatedAt
		}
		if i == 0 || o.CreatedAt.After(last) {
			last = o.CreatedAt
		}
	}

	s.AverageOrderValue = s.LifetimeValue.DivRound(decimal.NewFromInt(s.OrdersCount), 2)
	s.FirstOrderAt = &first
	s.LastOrderAt = &last

	return s
}
