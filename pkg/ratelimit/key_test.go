package ratelimit_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vendory/bizcore/pkg/ratelimit"
)

// failingStore simulates backend outages for fail-open tests.
type failingStore struct{}

func (failingStore) IncrementAndGet(context.Context, string, int, time.Duration) (int64, time.Duration, error) {
	return 0, 0, errors.New("store unavailable")
}

func (failingStore) Get(context.Context, string) (int64, time.Duration, error) {
	return 0, 0, errors.New("store unavailable")
}

func (failingStore) Delete(context.Context, string) error {
	return errors.New("store unavailable")
}

func TestComposite(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.RemoteAddr = "192.168.1.1:5555"
	req.Header.Set("X-Tenant", "acme")

	remoteAddr := func(r *http.Request) string { return r.RemoteAddr }
	tenantHeader := func(r *http.Request) string { return r.Header.Get("X-Tenant") }
	empty := func(*http.Request) string { return "" }

	t.Run("single short key passes through", func(t *testing.T) {
		t.Parallel()

		key := ratelimit.Composite(tenantHeader)(req)
		assert.Equal(t, "acme", key)
	})

	t.Run("joins multiple parts with colon", func(t *testing.T) {
		t.Parallel()

		key := ratelimit.Composite(tenantHeader, remoteAddr)(req)
		assert.Equal(t, "acme:192.168.1.1:5555", key)
	})

	t.Run("skips empty parts", func(t *testing.T) {
		t.Parallel()

		key := ratelimit.Composite(empty, tenantHeader, empty)(req)
		assert.Equal(t, "acme", key)
	})

	t.Run("all empty yields empty key", func(t *testing.T) {
		t.Parallel()

		key := ratelimit.Composite(empty, empty)(req)
		assert.Empty(t, key)
	})

	t.Run("static scopes namespace counters", func(t *testing.T) {
		t.Parallel()

		// Two endpoint groups throttling the same tenant against one
		// store must land on distinct counters.
		orders := ratelimit.Composite(ratelimit.Static("orders"), tenantHeader)(req)
		recalcs := ratelimit.Composite(ratelimit.Static("recalc"), tenantHeader)(req)

		assert.Equal(t, "orders:acme", orders)
		assert.Equal(t, "recalc:acme", recalcs)
		assert.NotEqual(t, orders, recalcs)
	})

	t.Run("long keys are hashed", func(t *testing.T) {
		t.Parallel()

		long := func(*http.Request) string { return strings.Repeat("x", 100) }

		key := ratelimit.Composite(long)(req)
		assert.Len(t, key, 32)
		assert.NotContains(t, key, "x")

		// Stable across invocations.
		assert.Equal(t, key, ratelimit.Composite(long)(req))
	})
}
