package provider

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a provider failure so callers can branch on
// retryability instead of parsing message strings.
type ErrorKind string

const (
	// KindAuth means a bad or missing credential. Not retryable.
	KindAuth ErrorKind = "auth"
	// KindRateLimited means the provider throttled us. Retryable with backoff.
	KindRateLimited ErrorKind = "rate_limited"
	// KindUnavailable means a transient provider outage. Retryable.
	KindUnavailable ErrorKind = "unavailable"
	// KindInvalidResponse means a malformed or unexpected payload. Not
	// retryable without changing the input.
	KindInvalidResponse ErrorKind = "invalid_response"
	// KindRejected means the provider declined the content. Not retryable.
	KindRejected ErrorKind = "rejected"
)

// Error is the uniform failure type surfaced by every provider adapter.
type Error struct {
	Kind     ErrorKind
	Provider string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether re-invoking the call with identical input can
// reasonably succeed.
func (e *Error) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindUnavailable
}

// NewError builds a provider error of the given kind.
func NewError(kind ErrorKind, providerName, message string) *Error {
	return &Error{Kind: kind, Provider: providerName, Message: message}
}

// WrapError attaches a cause to a provider error.
func WrapError(kind ErrorKind, providerName string, err error) *Error {
	return &Error{Kind: kind, Provider: providerName, Message: err.Error(), Err: err}
}

// AsError extracts a *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// ErrorFromStatus maps an HTTP status code from a provider API to the error
// taxonomy. Bodies are truncated into the message for log context only.
func ErrorFromStatus(providerName string, statusCode int, body []byte) *Error {
	msg := fmt.Sprintf("status %d: %s", statusCode, truncateBody(body))

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return NewError(KindAuth, providerName, msg)
	case statusCode == http.StatusTooManyRequests:
		return NewError(KindRateLimited, providerName, msg)
	case statusCode >= 500:
		return NewError(KindUnavailable, providerName, msg)
	case statusCode == http.StatusBadRequest:
		// Content-policy declines come back as 400s on generation APIs.
		return NewError(KindRejected, providerName, msg)
	default:
		return NewError(KindInvalidResponse, providerName, msg)
	}
}

func truncateBody(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
