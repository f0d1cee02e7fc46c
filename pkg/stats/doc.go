// Package stats recomputes derived customer statistics (order count,
// lifetime value, average order value, first/last order timestamps) from
// the customer's order history.
//
// Statistics are never hand-edited: they are always derived from the
// tenant's committed orders, so recomputing is idempotent: two runs over
// the same order set produce identical output. Batch recomputation treats
// every customer independently: one failing customer is recorded in the
// batch result and the run continues.
package stats
