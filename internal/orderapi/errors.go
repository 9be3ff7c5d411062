package orderapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a structured error response from the data service. Callers
// use errors.As to extract it:
//
//	var apiErr *orderapi.APIError
//	if errors.As(err, &apiErr) {
//	    if apiErr.StatusCode == http.StatusConflict { ... }
//	}
type APIError struct {
	// Code is the backend error code (e.g. "PGRST301", "42501").
	Code string `json:"code"`
	// Message is the human-readable error description from the backend.
	Message string `json:"message"`
	// StatusCode is the HTTP status code of the response.
	StatusCode int `json:"-"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("orderapi: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("orderapi: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// IsTransient reports whether err is worth retrying: connection failures,
// rate limiting (429), and server errors (5xx). Client errors (4xx except
// 429) indicate a permanent problem and are not transient. Context
// cancellation is never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests {
			return true
		}
		if apiErr.StatusCode >= http.StatusInternalServerError {
			return true
		}
		if apiErr.StatusCode >= http.StatusBadRequest {
			return false
		}
	}

	// Non-API errors (connection refused, timeout, EOF) are transient.
	return true
}
