// Package limits provides the plan catalog and usage-limit evaluation for
// tenant resources: subscription tiers map to resource limits and feature
// flags, and every resource-creation path asks this package for permission
// before writing.
//
// Key concepts:
//
//   - Plan: a subscription tier with resource limits and feature flags
//   - Resource: countable entities like products, customers, categories
//   - Feature: plan capabilities like segmentation or custom numbering
//   - CounterFunc: counts current resource usage for a tenant
//
// Basic usage:
//
//	source := limits.NewFileSource("config/plans.yaml")
//	counters := limits.NewRegistry()
//	counters.Register(limits.ResourceCustomers, customerCounter)
//
//	svc, err := limits.NewLimitsService(ctx, source, counters, planResolver)
//
//	check, err := svc.Check(ctx, tenantID, limits.ResourceCustomers)
//	if err != nil {
//	    // plan/counter failure
//	}
//	if !check.Allowed {
//	    // reject with check.Current / check.Limit for an upgrade prompt
//	}
//
// The check is deliberately advisory: no transaction spans the check and
// the subsequent insert, so two concurrent creations can both pass and
// overshoot the limit by one. That overage is bounded and accepted; the
// counts themselves stay correct because they are always re-derived from
// the store.
package limits
