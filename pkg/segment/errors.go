package segment

import "errors"

// Domain errors for segmentation operations
var (
	ErrInvalidRule          = errors.New("segment.errors.invalid_rule")
	ErrDuplicatePriority    = errors.New("segment.errors.duplicate_priority")
	ErrFailedToParseRules   = errors.New("segment.errors.failed_to_parse_rules")
	ErrFailedToSaveSegment  = errors.New("segment.errors.failed_to_save_segment")
	ErrFailedToLoadSegments = errors.New("segment.errors.failed_to_load_segments")
)
