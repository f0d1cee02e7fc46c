package recalc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vendory/bizcore/pkg/pg"
	"github.com/vendory/bizcore/pkg/recalc"
	"github.com/vendory/bizcore/pkg/segment"
	"github.com/vendory/bizcore/pkg/tenant"
	"github.com/vendory/bizcore/pkg/validator"
)

// Service exposes tenant-wide recalculation and segment lookups over HTTP.
type Service struct {
	orch     *recalc.Orchestrator
	segments segment.Store
	log      *slog.Logger
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

// NewService creates the recalculation service.
func NewService(orch *recalc.Orchestrator, segments segment.Store, opts ...ServiceOption) *Service {
	if orch == nil {
		panic("recalc: orchestrator is required")
	}
	if segments == nil {
		panic("recalc: segment store is required")
	}

	s := &Service{
		orch:     orch,
		segments: segments,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle returns the HTTP handler for the recalculation module.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Post("/", s.recalculate)
	r.Get("/segments/{customerID}", s.customerSegment)

	return r
}

// RecalculateResponse reports the outcome of a recalculation run.
type RecalculateResponse struct {
	Success          bool        `json:"success"`
	CustomersUpdated int         `json:"customers_updated"`
	SegmentsChanged  int         `json:"segments_changed"`
	Failed           int         `json:"failed,omitempty"`
	FailedIDs        []uuid.UUID `json:"failed_ids,omitempty"`
}

// Recalculate refreshes statistics and segments for every customer of the
// tenant. Success means the run completed; individual customer failures
// are carried in the counters.
func (s *Service) Recalculate(ctx context.Context, tenantID uuid.UUID) (RecalculateResponse, error) {
	result, err := s.orch.RecalculateAll(ctx, tenantID)
	if err != nil {
		return RecalculateResponse{}, err
	}

	return RecalculateResponse{
		Success:          true,
		CustomersUpdated: result.CustomersUpdated,
		SegmentsChanged:  result.SegmentsChanged,
		Failed:           result.Failed,
		FailedIDs:        result.FailedIDs,
	}, nil
}

func (s *Service) recalculate(w http.ResponseWriter, r *http.Request) {
	t, ok := tenant.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "tenant required")
		return
	}

	resp, err := s.Recalculate(r.Context(), t.ID)
	if err != nil {
		switch {
		case errors.Is(err, recalc.ErrPlanForbidden):
			respondError(w, http.StatusForbidden, "segmentation is not available on the current plan")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			respondError(w, http.StatusRequestTimeout, "recalculation cancelled")
		default:
			s.log.ErrorContext(r.Context(), "recalculation failed",
				slog.String("tenant_id", t.ID.String()),
				slog.Any("error", err),
			)
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Service) customerSegment(w http.ResponseWriter, r *http.Request) {
	t, ok := tenant.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "tenant required")
		return
	}

	raw := chi.URLParam(r, "customerID")
	if err := validator.Apply(validator.ValidUUID("customer_id", raw)); err != nil {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	customerID := uuid.MustParse(raw)

	segmentID, err := s.segments.GetSegment(r.Context(), t.ID, customerID)
	if err != nil {
		if pg.IsNotFoundError(err) {
			respondError(w, http.StatusNotFound, "customer not found")
			return
		}
		s.log.ErrorContext(r.Context(), "segment lookup failed",
			slog.String("tenant_id", t.ID.String()),
			slog.Any("error", err),
		)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"customer_id": customerID.String(),
		"segment":     segmentID,
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
