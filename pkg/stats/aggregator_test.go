package stats_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendory/bizcore/pkg/stats"
)

func newOrder(tenantID, customerID uuid.UUID, total float64, createdAt time.Time) stats.Order {
	return stats.Order{
		ID:         uuid.New(),
		TenantID:   tenantID,
		CustomerID: customerID,
		Status:     "confirmed",
		Total:      decimal.NewFromFloat(total),
		CreatedAt:  createdAt,
	}
}

func TestCompute(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	customerID := uuid.New()

	t.Run("no orders", func(t *testing.T) {
		t.Parallel()

		s := stats.Compute(nil)
		assert.Equal(t, int64(0), s.OrdersCount)
		assert.True(t, s.LifetimeValue.IsZero())
		assert.True(t, s.AverageOrderValue.IsZero())
		assert.Nil(t, s.FirstOrderAt)
		assert.Nil(t, s.LastOrderAt)
	})

	t.Run("two orders", func(t *testing.T) {
		t.Parallel()

		earlier := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
		later := time.Date(2025, 2, 20, 9, 0, 0, 0, time.UTC)

		s := stats.Compute([]stats.Order{
			newOrder(tenantID, customerID, 150, earlier),
			newOrder(tenantID, customerID, 300, later),
		})

		assert.Equal(t, int64(2), s.OrdersCount)
		assert.True(t, s.LifetimeValue.Equal(decimal.NewFromInt(450)), "lifetime value: %s", s.LifetimeValue)
		assert.True(t, s.AverageOrderValue.Equal(decimal.NewFromInt(225)), "average order value: %s", s.AverageOrderValue)
		require.NotNil(t, s.FirstOrderAt)
		require.NotNil(t, s.LastOrderAt)
		assert.Equal(t, earlier, *s.FirstOrderAt)
		assert.Equal(t, later, *s.LastOrderAt)
	})

	t.Run("order of orders does not matter", func(t *testing.T) {
		t.Parallel()

		a := newOrder(tenantID, customerID, 99.90, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
		b := newOrder(tenantID, customerID, 0.10, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
		c := newOrder(tenantID, customerID, 50, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))

		first := stats.Compute([]stats.Order{a, b, c})
		second := stats.Compute([]stats.Order{c, a, b})

		assert.True(t, first.Equal(second))
		assert.Equal(t, b.CreatedAt, *first.FirstOrderAt)
		assert.Equal(t, a.CreatedAt, *first.LastOrderAt)
	})

	t.Run("average rounds to two decimals", func(t *testing.T) {
		t.Parallel()

		s := stats.Compute([]stats.Order{
			newOrder(tenantID, customerID, 10, time.Now()),
			newOrder(tenantID, customerID, 10, time.Now()),
			newOrder(tenantID, customerID, 10, time.Now()),
		})

		// 30 / 3 == 10; 10.00 after rounding
		assert.True(t, s.AverageOrderValue.Equal(decimal.NewFromInt(10)))

		s = stats.Compute([]stats.Order{
			newOrder(tenantID, customerID, 10, time.Now()),
			newOrder(tenantID, customerID, 5, time.Now()),
			newOrder(tenantID, customerID, 5, time.Now()),
		})
		assert.True(t, s.AverageOrderValue.Equal(decimal.NewFromFloat(6.67)))
	})
}

func TestAggregator_Recompute(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	customerID := uuid.New()

	t.Run("persists derived stats", func(t *testing.T) {
		t.Parallel()

		store := stats.NewMemoryStore()
		store.AddOrder(newOrder(tenantID, customerID, 150, time.Now().Add(-time.Hour)))
		store.AddOrder(newOrder(tenantID, customerID, 300, time.Now()))

		agg := stats.NewAggregator(store, store)

		s, err := agg.Recompute(context.Background(), tenantID, customerID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), s.OrdersCount)

		saved, ok := store.GetStats(tenantID, customerID)
		require.True(t, ok)
		assert.True(t, s.Equal(saved))
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		store := stats.NewMemoryStore()
		store.AddOrder(newOrder(tenantID, customerID, 49.99, time.Now()))
		agg := stats.NewAggregator(store, store)

		first, err := agg.Recompute(context.Background(), tenantID, customerID)
		require.NoError(t, err)
		second, err := agg.Recompute(context.Background(), tenantID, customerID)
		require.NoError(t, err)

		assert.True(t, first.Equal(second))
	})

	t.Run("customer without orders gets zeroed stats", func(t *testing.T) {
		t.Parallel()

		store := stats.NewMemoryStore()
		store.AddCustomer(tenantID, customerID)
		agg := stats.NewAggregator(store, store)

		s, err := agg.Recompute(context.Background(), tenantID, customerID)
		require.NoError(t, err)
		assert.True(t, s.Equal(stats.Zero()))
	})
}

// failingWriter fails for one specific customer and delegates the rest.
type failingWriter struct {
	inner  stats.Writer
	failID uuid.UUID
}

func (w *failingWriter) SaveStats(ctx context.Context, tenantID, customerID uuid.UUID, s stats.Stats) error {
	if customerID == w.failID {
		return errors.New("write refused")
	}
	return w.inner.SaveStats(ctx, tenantID, customerID, s)
}

func TestAggregator_RecomputeAll(t *testing.T) {
	t.Parallel()

	t.Run("all customers processed", func(t *testing.T) {
		t.Parallel()

		tenantID := uuid.New()
		store := stats.NewMemoryStore()
		for i := 0; i < 5; i++ {
			store.AddOrder(newOrder(tenantID, uuid.New(), 100, time.Now()))
		}

		agg := stats.NewAggregator(store, store)

		result, err := agg.RecomputeAll(context.Background(), tenantID)
		require.NoError(t, err)
		assert.Equal(t, 5, result.Succeeded)
		assert.Equal(t, 0, result.Failed)
		assert.NoError(t, result.Err())
	})

	t.Run("one failure does not abort the batch", func(t *testing.T) {
		t.Parallel()

		tenantID := uuid.New()
		store := stats.NewMemoryStore()
		bad := uuid.New()
		store.AddOrder(newOrder(tenantID, bad, 10, time.Now()))
		for i := 0; i < 3; i++ {
			store.AddOrder(newOrder(tenantID, uuid.New(), 10, time.Now()))
		}

		agg := stats.NewAggregator(store, &failingWriter{inner: store, failID: bad})

		result, err := agg.RecomputeAll(context.Background(), tenantID)
		require.NoError(t, err)
		assert.Equal(t, 3, result.Succeeded)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, []uuid.UUID{bad}, result.FailedIDs)
		assert.ErrorIs(t, result.Err(), stats.ErrPartialBatchFailure)
	})

	t.Run("cancellation stops between customers", func(t *testing.T) {
		t.Parallel()

		tenantID := uuid.New()
		store := stats.NewMemoryStore()
		for i := 0; i < 10; i++ {
			store.AddOrder(newOrder(tenantID, uuid.New(), 10, time.Now()))
		}

		agg := stats.NewAggregator(store, store)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := agg.RecomputeAll(ctx, tenantID)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, result.Succeeded)
	})

	t.Run("isolated per tenant", func(t *testing.T) {
		t.Parallel()

		store := stats.NewMemoryStore()
		tenantA := uuid.New()
		tenantB := uuid.New()
		store.AddOrder(newOrder(tenantA, uuid.New(), 10, time.Now()))
		store.AddOrder(newOrder(tenantB, uuid.New(), 10, time.Now()))

		agg := stats.NewAggregator(store, store)

		result, err := agg.RecomputeAll(context.Background(), tenantA)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Succeeded)
	})
}
