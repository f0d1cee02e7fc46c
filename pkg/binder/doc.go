// Package binder decodes HTTP request bodies into Go structs.
//
// Only JSON bodies are supported. The binder enforces the Content-Type
// header and rejects unknown or malformed payloads with sentinel errors
// that handlers can map to HTTP status codes.
//
// # Basic Usage
//
//	type CreateOrderRequest struct {
//	    CustomerID string `json:"customer_id"`
//	    Total      string `json:"total"`
//	}
//
//	var req CreateOrderRequest
//	if err := binder.JSON()(r, &req); err != nil {
//	    // respond with 400
//	}
//
// # Error Handling
//
//   - ErrUnsupportedMediaType: Content-Type is not application/json
//   - ErrFailedToParseJSON: body is not valid JSON for the target struct
//   - ErrMissingContentType: Content-Type header is absent
package binder
