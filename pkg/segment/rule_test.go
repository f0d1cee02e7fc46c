package segment_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendory/bizcore/pkg/segment"
	"github.com/vendory/bizcore/pkg/stats"
)

func i64(v int64) *int64 { return &v }

func iptr(v int) *int { return &v }

func dec(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func statsWith(orders int64, ltv float64, lastOrderAgo time.Duration) stats.Stats {
	s := stats.Stats{
		OrdersCount:       orders,
		LifetimeValue:     decimal.NewFromFloat(ltv),
		AverageOrderValue: decimal.Zero,
	}
	if orders > 0 {
		last := time.Now().UTC().Add(-lastOrderAgo)
		s.LastOrderAt = &last
		s.FirstOrderAt = &last
	}
	return s
}

func testRules(t *testing.T) *segment.Ruleset {
	t.Helper()

	rs, err := segment.NewRuleset([]segment.Rule{
		{Priority: 1, SegmentID: "vip", MinLifetimeValue: dec(1000)},
		{Priority: 2, SegmentID: "loyal", MinOrders: i64(5)},
		{Priority: 3, SegmentID: "dormant", MinDaysSinceLastOrder: iptr(90)},
		{Priority: 4, SegmentID: "new", MinOrders: i64(1), MaxOrders: i64(1)},
	})
	require.NoError(t, err)
	return rs
}

func TestRuleset_Classify(t *testing.T) {
	t.Parallel()

	rules := testRules(t)

	tests := []struct {
		name string
		in   stats.Stats
		want string
	}{
		{name: "high value wins first", in: statsWith(2, 1500, time.Hour), want: "vip"},
		{name: "loyal by order count", in: statsWith(7, 300, time.Hour), want: "loyal"},
		{name: "dormant by recency", in: statsWith(2, 100, 100*24*time.Hour), want: "dormant"},
		{name: "single order is new", in: statsWith(1, 50, time.Hour), want: "new"},
		{name: "no orders unmatched", in: stats.Zero(), want: segment.Unclassified},
		{name: "mid customer unmatched", in: statsWith(3, 200, time.Hour), want: segment.Unclassified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, rules.Classify(tt.in))
		})
	}
}

func TestRuleset_PriorityOrderDecidesOverlap(t *testing.T) {
	t.Parallel()

	// Both rules match a customer with 10 orders and LTV 2000; priority
	// order decides the winner.
	s := statsWith(10, 2000, time.Hour)

	first, err := segment.NewRuleset([]segment.Rule{
		{Priority: 1, SegmentID: "vip", MinLifetimeValue: dec(1000)},
		{Priority: 2, SegmentID: "loyal", MinOrders: i64(5)},
	})
	require.NoError(t, err)
	assert.Equal(t, "vip", first.Classify(s))

	flipped, err := segment.NewRuleset([]segment.Rule{
		{Priority: 2, SegmentID: "vip", MinLifetimeValue: dec(1000)},
		{Priority: 1, SegmentID: "loyal", MinOrders: i64(5)},
	})
	require.NoError(t, err)
	assert.Equal(t, "loyal", flipped.Classify(s))
}

func TestRuleset_Deterministic(t *testing.T) {
	t.Parallel()

	rules := testRules(t)
	s := statsWith(7, 1200, time.Hour)

	first := rules.Classify(s)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, rules.Classify(s))
	}
}

func TestNewRuleset_Validation(t *testing.T) {
	t.Parallel()

	t.Run("missing segment id", func(t *testing.T) {
		t.Parallel()

		_, err := segment.NewRuleset([]segment.Rule{{Priority: 1, MinOrders: i64(1)}})
		assert.ErrorIs(t, err, segment.ErrInvalidRule)
	})

	t.Run("reserved segment id", func(t *testing.T) {
		t.Parallel()

		_, err := segment.NewRuleset([]segment.Rule{
			{Priority: 1, SegmentID: segment.Unclassified, MinOrders: i64(1)},
		})
		assert.ErrorIs(t, err, segment.ErrInvalidRule)
	})

	t.Run("no conditions", func(t *testing.T) {
		t.Parallel()

		_, err := segment.NewRuleset([]segment.Rule{{Priority: 1, SegmentID: "vip"}})
		assert.ErrorIs(t, err, segment.ErrInvalidRule)
	})

	t.Run("negative priority", func(t *testing.T) {
		t.Parallel()

		_, err := segment.NewRuleset([]segment.Rule{
			{Priority: -1, SegmentID: "vip", MinOrders: i64(1)},
		})
		assert.ErrorIs(t, err, segment.ErrInvalidRule)
	})

	t.Run("duplicate priority", func(t *testing.T) {
		t.Parallel()

		_, err := segment.NewRuleset([]segment.Rule{
			{Priority: 1, SegmentID: "vip", MinOrders: i64(1)},
			{Priority: 1, SegmentID: "loyal", MinOrders: i64(5)},
		})
		assert.ErrorIs(t, err, segment.ErrDuplicatePriority)
	})

	t.Run("empty ruleset classifies everything unclassified", func(t *testing.T) {
		t.Parallel()

		rs, err := segment.NewRuleset(nil)
		require.NoError(t, err)
		assert.Equal(t, segment.Unclassified, rs.Classify(statsWith(100, 9999, time.Hour)))
	})
}

func TestParseRules(t *testing.T) {
	t.Parallel()

	t.Run("valid yaml", func(t *testing.T) {
		t.Parallel()

		rs, err := segment.ParseRules([]byte(`
- priority: 1
  segment_id: vip
  min_lifetime_value: "1000"
- priority: 2
  segment_id: dormant
  min_days_since_last_order: 90
`))
		require.NoError(t, err)

		assert.Equal(t, "vip", rs.Classify(statsWith(1, 2000, time.Hour)))
		assert.Equal(t, "dormant", rs.Classify(statsWith(1, 10, 200*24*time.Hour)))
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		t.Parallel()

		_, err := segment.ParseRules([]byte(`
- priority: 1
  segment_id: vip
  color: red
`))
		assert.ErrorIs(t, err, segment.ErrFailedToParseRules)
	})

	t.Run("invalid rule rejected", func(t *testing.T) {
		t.Parallel()

		_, err := segment.ParseRules([]byte(`
- priority: 1
  segment_id: vip
`))
		assert.ErrorIs(t, err, segment.ErrInvalidRule)
	})
}
