package models

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("trip not found in any store")
var ErrValidation = errors.New("invalid or missing required input")
var ErrAssociation = errors.New("failed to register trip creator as participant")

// ErrPersistence marks durable-store failures. On best-effort paths it is
// logged and swallowed; the draft copy stays authoritative.
var ErrPersistence = errors.New("durable store operation failed")

// UpstreamError is returned when the recommendation or user-management
// service answers with a non-2xx status or times out. The response body is
// kept verbatim for diagnostics.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s service unreachable: %s", e.Service, e.Body)
	}
	return fmt.Sprintf("%s service returned %d: %s", e.Service, e.StatusCode, e.Body)
}

// ErrorResponse is the JSON body returned for failed HTTP requests.
type ErrorResponse struct {
	Message string `json:"message"`
}
