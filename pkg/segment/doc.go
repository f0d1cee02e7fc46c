// Package segment partitions customers into mutually exclusive segments by
// evaluating an ordered rule set over their derived statistics.
//
// Rules are evaluated in ascending priority order and the first match wins,
// which makes classification a deterministic total partition: every
// statistics value maps to exactly one segment, with Unclassified as the
// fallback bucket. Duplicate priorities are rejected at construction so the
// winning rule is never an accident of slice order.
//
//	rules, err := segment.NewRuleset([]segment.Rule{
//	    {Priority: 1, SegmentID: "vip", MinLifetimeValue: dec(1000)},
//	    {Priority: 2, SegmentID: "regular", MinOrders: i64(3)},
//	})
//	id := rules.Classify(customerStats) // "vip", "regular" or segment.Unclassified
package segment
