package segment

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vendory/bizcore/pkg/stats"
)

// Unclassified is the sentinel segment for customers no rule matches.
const Unclassified = "unclassified"

// Rule assigns a segment to customers whose statistics satisfy all of its
// bounds. Nil bounds are ignored; all set bounds are inclusive and must
// hold together for the rule to match.
type Rule struct {
	Priority  int    `json:"priority" yaml:"priority"`
	SegmentID string `json:"segment_id" yaml:"segment_id"`

	MinOrders *int64 `json:"min_orders,omitempty" yaml:"min_orders,omitempty"`
	MaxOrders *int64 `json:"max_orders,omitempty" yaml:"max_orders,omitempty"`

	MinLifetimeValue *decimal.Decimal `json:"min_lifetime_value,omitempty" yaml:"min_lifetime_value,omitempty"`
	MaxLifetimeValue *decimal.Decimal `json:"max_lifetime_value,omitempty" yaml:"max_lifetime_value,omitempty"`

	// Bounds on days elapsed since the customer's last order. A customer
	// with no orders never matches a rule that sets either bound.
	MinDaysSinceLastOrder *int `json:"min_days_since_last_order,omitempty" yaml:"min_days_since_last_order,omitempty"`
	MaxDaysSinceLastOrder *int `json:"max_days_since_last_order,omitempty" yaml:"max_days_since_last_order,omitempty"`
}

// validate checks the rule's schema: a segment identifier, a non-negative
// priority and at least one bound.
func (r Rule) validate() error {
	if r.SegmentID == "" {
		return fmt.Errorf("%w: missing segment_id", ErrInvalidRule)
	}
	if r.SegmentID == Unclassified {
		return fmt.Errorf("%w: segment_id %q is reserved", ErrInvalidRule, Unclassified)
	}
	if r.Priority < 0 {
		return fmt.Errorf("%w: segment %q has negative priority %d", ErrInvalidRule, r.SegmentID, r.Priority)
	}
	if r.MinOrders == nil && r.MaxOrders == nil &&
		r.MinLifetimeValue == nil && r.MaxLifetimeValue == nil &&
		r.MinDaysSinceLastOrder == nil && r.MaxDaysSinceLastOrder == nil {
		return fmt.Errorf("%w: segment %q has no conditions", ErrInvalidRule, r.SegmentID)
	}
	return nil
}

// matches reports whether the statistics satisfy every set bound.
func (r Rule) matches(s stats.Stats, now time.Time) bool {
	if r.MinOrders != nil && s.OrdersCount < *r.MinOrders {
		return false
	}
	if r.MaxOrders != nil && s.OrdersCount > *r.MaxOrders {
		return false
	}
	if r.MinLifetimeValue != nil && s.LifetimeValue.LessThan(*r.MinLifetimeValue) {
		return false
	}
	if r.MaxLifetimeValue != nil && s.LifetimeValue.GreaterThan(*r.MaxLifetimeValue) {
		return false
	}

	if r.MinDaysSinceLastOrder != nil || r.MaxDaysSinceLastOrder != nil {
		if s.LastOrderAt == nil {
			return false
		}
		days := int(now.Sub(*s.LastOrderAt).Hours() / 24)
		if r.MinDaysSinceLastOrder != nil && days < *r.MinDaysSinceLastOrder {
			return false
		}
		if r.MaxDaysSinceLastOrder != nil && days > *r.MaxDaysSinceLastOrder {
			return false
		}
	}

	return true
}

// Ruleset is a validated, priority-ordered set of segmentation rules.
type Ruleset struct {
	rules []Rule
	now   func() time.Time
}

// RulesetOption configures a Ruleset.
type RulesetOption func(*Ruleset)

// WithClock overrides the time source used for recency bounds.
func WithClock(now func() time.Time) RulesetOption {
	return func(rs *Ruleset) {
		if now != nil {
			rs.now = now
		}
	}
}

// NewRuleset validates the rules and orders them by ascending priority.
// Duplicate priorities are rejected: first-match-wins must be an explicit
// ordering, not an accident of input order.
func NewRuleset(rules []Rule, opts ...RulesetOption) (*Ruleset, error) {
	seen := make(map[int]string, len(rules))
	for _, r := range rules {
		if err := r.validate(); err != nil {
			return nil, err
		}
		if other, dup := seen[r.Priority]; dup {
			return nil, fmt.Errorf("%w: %d used by %q and %q", ErrDuplicatePriority, r.Priority, other, r.SegmentID)
		}
		seen[r.Priority] = r.SegmentID
	}

	ordered := slices.Clone(rules)
	slices.SortFunc(ordered, func(a, b Rule) int { return a.Priority - b.Priority })

	rs := &Ruleset{
		rules: ordered,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs, nil
}

// Rules returns the rules in evaluation order.
func (rs *Ruleset) Rules() []Rule {
	return slices.Clone(rs.rules)
}

// Classify returns the segment of the first matching rule, or Unclassified
// when no rule matches. Total and deterministic for a fixed clock.
func (rs *Ruleset) Classify(s stats.Stats) string {
	now := rs.now().UTC()
	for _, r := range rs.rules {
		if r.matches(s, now) {
			return r.SegmentID
		}
	}
	return Unclassified
}
