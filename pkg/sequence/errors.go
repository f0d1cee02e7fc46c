package sequence

import "errors"

// Domain errors for sequence operations
var (
	ErrInvalidPrefix       = errors.New("sequence.errors.invalid_prefix")
	ErrInvalidCounterState = errors.New("sequence.errors.invalid_counter_state")
	ErrFailedToAllocate    = errors.New("sequence.errors.failed_to_allocate")
)
