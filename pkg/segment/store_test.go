package segment_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendory/bizcore/pkg/segment"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	store := segment.NewMemoryStore()
	tenantID := uuid.New()
	customerID := uuid.New()

	t.Run("unassigned customer has empty segment", func(t *testing.T) {
		got, err := store.GetSegment(context.Background(), tenantID, customerID)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, store.SetSegment(context.Background(), tenantID, customerID, "vip"))

		got, err := store.GetSegment(context.Background(), tenantID, customerID)
		require.NoError(t, err)
		assert.Equal(t, "vip", got)
	})

	t.Run("tenants do not leak", func(t *testing.T) {
		got, err := store.GetSegment(context.Background(), uuid.New(), customerID)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestMemoryStore_Concurrent(t *testing.T) {
	t.Parallel()

	store := segment.NewMemoryStore()
	tenantID := uuid.New()

	var wg sync.WaitGroup
	wg.Add(50)
	for i := 0; i < 50; i++ {
		go func() {
			defer wg.Done()
			customerID := uuid.New()
			assert.NoError(t, store.SetSegment(context.Background(), tenantID, customerID, "loyal"))
			got, err := store.GetSegment(context.Background(), tenantID, customerID)
			assert.NoError(t, err)
			assert.Equal(t, "loyal", got)
		}()
	}
	wg.Wait()
}
