package limits

// Resource represents a countable tenant resource type.
type Resource string

// Predefined resource types.
const (
	ResourceProducts       Resource = "products"
	ResourceCustomers      Resource = "customers"
	ResourceCategories     Resource = "categories"
	ResourceOrdersPerMonth Resource = "orders_per_month"
	// extend as needed
)

// Limit constants
const (
	// Unlimited represents a resource with no limit (-1)
	Unlimited int64 = -1
)

// Feature is a string type representing a plan-specific feature flag.
type Feature string

// Predefined feature flags for plans.
const (
	FeatureSegmentation    Feature = "segmentation"     // Rule-based customer segmentation
	FeatureCustomNumbering Feature = "custom_numbering" // Tenant-configured document number prefixes
	FeatureAPIAccess       Feature = "api_access"       // Programmatic API access
	// Add more as needed
)

// UsageInfo contains the current usage and limit for a resource.
type UsageInfo struct {
	Current int64 `json:"current"`
	Limit   int64 `json:"limit"`
}

// UsageCheck is the result of evaluating whether a tenant may create one
// more instance of a resource. Current and Limit are surfaced so callers
// can render upgrade prompts.
type UsageCheck struct {
	Allowed    bool  `json:"allowed"`
	Current    int64 `json:"current"`
	Limit      int64 `json:"limit"`
	Percentage int   `json:"percentage"` // 0-100; 0 for unlimited resources
}
