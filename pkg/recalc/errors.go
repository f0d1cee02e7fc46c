package recalc

import "errors"

// Domain errors for recalculation operations
var (
	ErrPlanForbidden         = errors.New("recalc.errors.plan_forbidden")
	ErrFailedToResolveRules  = errors.New("recalc.errors.failed_to_resolve_rules")
	ErrFailedToListCustomers = errors.New("recalc.errors.failed_to_list_customers")
)
