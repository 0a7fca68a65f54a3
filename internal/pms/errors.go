package pms

import (
	"fmt"
	"net/http"
)

// AuthError indicates the PMS rejected our credentials (401/403).
// It is fatal: retrying cannot help until the credentials are fixed.
type AuthError struct {
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (status %d): %s", e.Status, e.Body)
}

// RateLimitError indicates a 429 response. The client retries these with
// exponential backoff; once retries are exhausted the final error is still
// a RateLimitError with Attempts set to the total number of calls made.
type RateLimitError struct {
	Attempts int
}

func (e *RateLimitError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("rate limited after %d attempts", e.Attempts)
	}
	return "rate limited"
}

// APIError is a non-retryable HTTP-status failure from the PMS API,
// carrying the status code and response body. 5xx statuses are server
// errors; they are surfaced to the caller, not retried.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.Status, e.Body)
}

// IsServerError reports whether the failure was on the PMS side (5xx).
func (e *APIError) IsServerError() bool {
	return e.Status >= 500
}

// NetworkError indicates the request produced no HTTP response at all
// (connection failure, timeout). The original transport error is preserved.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// classifyStatus converts a non-2xx HTTP response into a typed error.
func classifyStatus(status int, body string) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AuthError{Status: status, Body: body}
	case status == http.StatusTooManyRequests:
		return &RateLimitError{Attempts: 1}
	default:
		return &APIError{Status: status, Body: body}
	}
}
