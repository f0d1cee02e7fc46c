package orders

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendory/bizcore/pkg/binder"
	"github.com/vendory/bizcore/pkg/limits"
	"github.com/vendory/bizcore/pkg/sequence"
	"github.com/vendory/bizcore/pkg/stats"
	"github.com/vendory/bizcore/pkg/tenant"
	"github.com/vendory/bizcore/pkg/validator"
)

// Service handles order creation and the derived state that hangs off it:
// plan limit checks, document numbering and customer statistics.
type Service struct {
	storage   Storage
	limits    limits.LimitsService
	allocator *sequence.Allocator
	agg       *stats.Aggregator
	log       *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService wires the order flow. All collaborators are required.
func NewService(storage Storage, limitsSvc limits.LimitsService, allocator *sequence.Allocator, agg *stats.Aggregator, opts ...ServiceOption) *Service {
	if storage == nil {
		panic("orders: storage is required")
	}
	if limitsSvc == nil {
		panic("orders: limits service is required")
	}
	if allocator == nil {
		panic("orders: sequence allocator is required")
	}
	if agg == nil {
		panic("orders: stats aggregator is required")
	}

	s := &Service{
		storage:   storage,
		limits:    limitsSvc,
		allocator: allocator,
		agg:       agg,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle returns the HTTP handler for the orders module.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Post("/", s.createOrder)
	r.Get("/next-number", s.nextNumber)
	r.Get("/usage", s.usage)

	return r
}

// CreateOrderRequest is the payload for creating an order.
type CreateOrderRequest struct {
	CustomerID string `json:"customer_id"`
	Total      string `json:"total"`
	Status     string `json:"status"`
}

// OrderResponse is the representation of a created order.
type OrderResponse struct {
	ID         uuid.UUID       `json:"id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Number     string          `json:"number"`
	Status     string          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	CreatedAt  time.Time       `json:"created_at"`
	Stats      stats.Stats     `json:"customer_stats"`
}

// CreateOrder runs the full creation flow: limit check, number
// allocation, persistence and statistics refresh for the customer.
func (s *Service) CreateOrder(ctx context.Context, t *tenant.Tenant, req CreateOrderRequest) (*OrderResponse, error) {
	if req.Status == "" {
		req.Status = "new"
	}

	if err := validator.Apply(
		validator.RequiredString("customer_id", req.CustomerID),
		validator.ValidUUID("customer_id", req.CustomerID),
		validator.RequiredString("total", req.Total),
		validator.InListString("status", req.Status, []string{"new", "paid", "shipped", "completed"}),
	); err != nil {
		return nil, err
	}

	total, err := decimal.NewFromString(req.Total)
	if err != nil || total.IsNegative() {
		return nil, validator.ValidationErrors{{
			Field:          "total",
			Message:        "must be a non-negative decimal amount",
			TranslationKey: "validation.decimal",
		}}
	}

	customerID := uuid.MustParse(req.CustomerID)

	exists, err := s.storage.CustomerExists(ctx, t.ID, customerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrCustomerNotFound
	}

	// Advisory check: runs right before the insert, a bounded overage
	// under concurrent creations is accepted.
	if err := s.limits.CanCreate(ctx, t.ID, limits.ResourceOrdersPerMonth); err != nil {
		return nil, err
	}

	var prefix string
	if t.Numbering != nil {
		prefix = t.Numbering.Prefix
	}

	number, err := s.allocator.Next(ctx, t.ID, prefix)
	if err != nil {
		return nil, err
	}

	order := stats.Order{
		ID:         uuid.New(),
		TenantID:   t.ID,
		CustomerID: customerID,
		Number:     number,
		Status:     req.Status,
		Total:      total,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.storage.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	// Keep the customer's derived statistics fresh. A failure here is
	// logged, not returned: the order is committed and the next
	// recalculation run repairs the statistics.
	customerStats, err := s.agg.Recompute(ctx, t.ID, customerID)
	if err != nil {
		s.log.ErrorContext(ctx, "stats refresh after order creation failed",
			slog.String("tenant_id", t.ID.String()),
			slog.String("customer_id", customerID.String()),
			slog.Any("error", err),
		)
	}

	s.log.InfoContext(ctx, "order created",
		slog.String("tenant_id", t.ID.String()),
		slog.String("order_id", order.ID.String()),
		slog.String("number", number),
	)

	return &OrderResponse{
		ID:         order.ID,
		CustomerID: order.CustomerID,
		Number:     order.Number,
		Status:     order.Status,
		Total:      order.Total,
		CreatedAt:  order.CreatedAt,
		Stats:      customerStats,
	}, nil
}

func (s *Service) createOrder(w http.ResponseWriter, r *http.Request) {
	t, ok := tenant.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "tenant required")
		return
	}

	var req CreateOrderRequest
	if err := binder.JSON()(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := s.CreateOrder(r.Context(), t, req)
	if err != nil {
		s.respondCreateError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, resp)
}

func (s *Service) respondCreateError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case validator.IsValidationError(err):
		respondValidationError(w, validator.ExtractValidationErrors(err))
	case errors.Is(err, ErrCustomerNotFound):
		respondError(w, http.StatusNotFound, "customer not found")
	case errors.Is(err, limits.ErrLimitExceeded):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrDuplicateNumber):
		respondError(w, http.StatusConflict, "order number already taken")
	case errors.Is(err, sequence.ErrInvalidPrefix):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.ErrorContext(r.Context(), "order creation failed", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// nextNumber previews the next document number without allocating it.
func (s *Service) nextNumber(w http.ResponseWriter, r *http.Request) {
	t, ok := tenant.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "tenant required")
		return
	}

	var prefix string
	if t.Numbering != nil {
		prefix = t.Numbering.Prefix
	}

	number, err := s.allocator.Peek(r.Context(), t.ID, prefix)
	if err != nil {
		s.log.ErrorContext(r.Context(), "number preview failed", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"next_number": number})
}

// usage reports the tenant's resource usage against its plan limits.
func (s *Service) usage(w http.ResponseWriter, r *http.Request) {
	t, ok := tenant.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "tenant required")
		return
	}

	all, err := s.limits.GetAllUsage(r.Context(), t.ID)
	if err != nil {
		s.log.ErrorContext(r.Context(), "usage lookup failed", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, all)
}
