package stats

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory order and customer store implementing both
// OrderSource and Writer. Used in tests and single-instance deployments.
type MemoryStore struct {
	mu        sync.RWMutex
	orders    map[uuid.UUID][]Order             // tenantID -> orders
	customers map[uuid.UUID]map[uuid.UUID]Stats // tenantID -> customerID -> stats
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders:    make(map[uuid.UUID][]Order),
		customers: make(map[uuid.UUID]map[uuid.UUID]Stats),
	}
}

// AddCustomer registers a customer with zeroed statistics.
func (s *MemoryStore) AddCustomer(tenantID, customerID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.customers[tenantID] == nil {
		s.customers[tenantID] = make(map[uuid.UUID]Stats)
	}
	if _, exists := s.customers[tenantID][customerID]; !exists {
		s.customers[tenantID][customerID] = Zero()
	}
}

// AddOrder commits an order, making it visible to the aggregator. The
// order's customer is registered implicitly.
func (s *MemoryStore) AddOrder(o Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[o.TenantID] = append(s.orders[o.TenantID], o)

	if o.CustomerID != (uuid.UUID{}) {
		if s.customers[o.TenantID] == nil {
			s.customers[o.TenantID] = make(map[uuid.UUID]Stats)
		}
		if _, exists := s.customers[o.TenantID][o.CustomerID]; !exists {
			s.customers[o.TenantID][o.CustomerID] = Zero()
		}
	}
}

// ListByCustomer returns the customer's committed orders.
func (s *MemoryStore) ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Order
	for _, o := range s.orders[tenantID] {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

// CustomerIDs returns every known customer of the tenant in stable order.
func (s *MemoryStore) CustomerIDs(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(s.customers[tenantID]))
	for id := range s.customers[tenantID] {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return slices.Compare(a[:], b[:])
	})
	return ids, nil
}

// SaveStats stores the recomputed statistics block.
func (s *MemoryStore) SaveStats(ctx context.Context, tenantID, customerID uuid.UUID, st Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.customers[tenantID] == nil {
		s.customers[tenantID] = make(map[uuid.UUID]Stats)
	}
	s.customers[tenantID][customerID] = st
	return nil
}

// GetStats returns the stored statistics block for a customer.
func (s *MemoryStore) GetStats(tenantID, customerID uuid.UUID) (Stats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.customers[tenantID][customerID]
	return st, ok
}
