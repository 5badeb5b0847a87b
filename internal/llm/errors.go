package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the provider. The status code is
// preserved so callers can classify the failure.
type APIError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("anthropic API error %d: %s", e.StatusCode, e.Body)
}

// StatusOverloaded is Anthropic's "overloaded_error" status code.
const StatusOverloaded = 529

// IsTransient reports whether err is a rate-limit (429) or overloaded
// (529) API error — the conditions worth retrying after a pause.
// Everything else (auth failures, malformed requests, network errors)
// is not retried.
func IsTransient(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusTooManyRequests ||
		apiErr.StatusCode == StatusOverloaded
}
