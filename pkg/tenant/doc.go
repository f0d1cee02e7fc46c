// Package tenant defines the tenant model and context propagation helpers
// used by every other package in this module.
//
// A tenant is the hard isolation boundary: plan limits, document-numbering
// counters, customer statistics and segment assignments are all partitioned
// by tenant ID and never cross it.
//
// The package deliberately stays small. Loading tenants is delegated to a
// Provider implementation; request-scoped access goes through the context
// helpers:
//
//	t, ok := tenant.FromContext(ctx)
//	if !ok {
//		// reject: operation requires a resolved tenant
//	}
package tenant
