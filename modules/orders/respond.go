package orders

import (
	"encoding/json"
	"net/http"

	"github.com/vendory/bizcore/pkg/validator"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondValidationError(w http.ResponseWriter, errs validator.ValidationErrors) {
	fields := make(map[string][]string, len(errs.Fields()))
	for _, field := range errs.Fields() {
		fields[field] = errs.Get(field)
	}
	respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"error":  "validation failed",
		"fields": fields,
	})
}
