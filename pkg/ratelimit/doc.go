// Package ratelimit provides a fixed-window request throttle keyed by an
// arbitrary identifier (IP, tenant ID, API key).
//
// The first request for a key opens a window of the configured duration
// with count 1; further requests increment the counter until the window
// expires, at which point the counter resets rather than decays. Expired
// windows are evicted by a background sweep to bound memory.
//
// The default MemoryStore is process-local and advisory: it does not
// coordinate across instances. For horizontally scaled deployments plug in
// RedisStore, which shares windows through a single INCR-based counter.
//
//	limiter, _ := ratelimit.NewFixedWindow(ratelimit.NewMemoryStore(), 100, time.Minute)
//	result, err := limiter.Allow(ctx, clientIP)
//	if err == nil && !result.Allowed {
//	    // respond 429 with result.ResetAt
//	}
package ratelimit
