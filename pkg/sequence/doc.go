// Package sequence issues gap-free, strictly increasing document numbers
// per tenant and prefix, used for order and invoice numbering.
//
// Each (tenant, prefix) pair owns an independent counter. Incrementing the
// counter is a single atomic operation in the backing Store, so concurrent
// allocations can never observe or emit the same value. A plain
// read-then-write is not an acceptable Store implementation.
//
// Numbers are formatted as "prefix-NNNN" with 4-digit zero padding; once a
// counter passes 9999 the numeric suffix simply widens.
//
//	alloc := sequence.NewAllocator(sequence.NewMemoryStore())
//	num, err := alloc.Next(ctx, tenantID, "2025-01")
//	// num == "2025-01-0001"
//
// An empty prefix falls back to the current year-month ("2006-01" layout),
// matching tenants that have not configured custom numbering.
package sequence
