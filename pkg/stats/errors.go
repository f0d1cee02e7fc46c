package stats

import "errors"

// Domain errors for stats operations
var (
	ErrFailedToLoadOrders    = errors.New("stats.errors.failed_to_load_orders")
	ErrFailedToListCustomers = errors.New("stats.errors.failed_to_list_customers")
	ErrFailedToSaveStats     = errors.New("stats.errors.failed_to_save_stats")
	ErrPartialBatchFailure   = errors.New("stats.errors.partial_batch_failure")
)
