// Package recalc drives the full segmentation refresh for a tenant: every
// customer's statistics are recomputed from order history, the customer is
// reclassified against the tenant's segment rules, and the assignment is
// persisted only when it changed.
//
// The run is gated on the plan's segmentation feature before any work
// begins. Customers are processed with bounded concurrency and complete
// isolation: one failure is counted and logged, the batch continues.
// Cancelling the context stops after in-flight customers; a re-triggered
// run simply supersedes the previous one customer by customer.
package recalc
