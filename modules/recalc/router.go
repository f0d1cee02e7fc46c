package recalc

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vendory/bizcore/pkg/ratelimit"
	"github.com/vendory/bizcore/pkg/tenant"
)

type Mountable interface {
	Handle() http.Handler
}

// RouterOptions configures the recalculation module router.
type RouterOptions struct {
	Service Mountable

	// Limiter throttles recalculation runs per tenant when set. Batch
	// recomputation is expensive, so the limit should be tight.
	Limiter ratelimit.Limiter
}

// Router creates the recalculation module router.
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	r.Use(tenant.RequireTenant(nil))

	if opts.Limiter != nil {
		key := ratelimit.Composite(ratelimit.Static("recalc"), tenantKey)
		r.Use(ratelimit.Middleware(opts.Limiter, key))
	}

	if opts.Service != nil {
		r.Mount("/", opts.Service.Handle())
	}

	return r
}

func tenantKey(r *http.Request) string {
	if id, ok := tenant.IDFromContext(r.Context()); ok {
		return id.String()
	}
	return ""
}
