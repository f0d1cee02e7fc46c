package orders

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vendory/bizcore/pkg/ratelimit"
	"github.com/vendory/bizcore/pkg/tenant"
)

type Mountable interface {
	Handle() http.Handler
}

// RouterOptions configures the orders module router.
type RouterOptions struct {
	Service Mountable

	// Limiter throttles write traffic per tenant when set.
	Limiter ratelimit.Limiter
}

// Router creates the orders module router. The rate limit key combines a
// module scope with the tenant ID, so one noisy tenant cannot starve the
// others and the orders window never shares a backend counter with other
// modules throttling the same tenant.
//
// Example:
//
//	svc := orders.NewService(storage, limitsSvc, allocator, agg)
//
//	r := chi.NewRouter()
//	r.Mount("/orders", orders.Router(orders.RouterOptions{
//	    Service: svc,
//	    Limiter: limiter,
//	}))
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	r.Use(tenant.RequireTenant(nil))

	if opts.Limiter != nil {
		key := ratelimit.Composite(ratelimit.Static("orders"), tenantKey)
		r.Use(ratelimit.Middleware(opts.Limiter, key))
	}

	if opts.Service != nil {
		r.Mount("/", opts.Service.Handle())
	}

	return r
}

// tenantKey scopes rate limit counters to the tenant in context.
func tenantKey(r *http.Request) string {
	if id, ok := tenant.IDFromContext(r.Context()); ok {
		return id.String()
	}
	return ""
}
