// Package providers holds what the registry clients share: the normalised
// failure taxonomy and the HTTP call helper.
package providers

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies a failed registry call.
type ErrorCategory string

const (
	ErrorTimeout        ErrorCategory = "timeout"
	ErrorBadData        ErrorCategory = "bad_data"        // body did not decode or violated the contract
	ErrorAuthentication ErrorCategory = "authentication"  // 401 or 403 on the forwarded token
	ErrorProviderOutage ErrorCategory = "provider_outage" // 5xx, transport failure or open circuit
	ErrorRateLimited    ErrorCategory = "rate_limited"
	ErrorInternal       ErrorCategory = "internal"
)

// transient categories count against the circuit breaker and may be retried.
var transient = map[ErrorCategory]bool{
	ErrorTimeout:        true,
	ErrorProviderOutage: true,
	ErrorRateLimited:    true,
}

// ProviderError is a categorised failure from one registry.
type ProviderError struct {
	Category ErrorCategory
	Registry string
	Detail   string
	Cause    error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("provider %s [%s]: %s", e.Registry, e.Category, e.Detail)
	if e.Cause == nil {
		return msg
	}
	return msg + ": " + e.Cause.Error()
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// Retryable reports whether the category is transient.
func (e *ProviderError) Retryable() bool { return transient[e.Category] }

func NewProviderError(category ErrorCategory, registry, detail string, cause error) *ProviderError {
	return &ProviderError{Category: category, Registry: registry, Detail: detail, Cause: cause}
}

// IsRetryable reports whether err carries a transient ProviderError.
func IsRetryable(err error) bool {
	if pe, ok := asProviderError(err); ok {
		return pe.Retryable()
	}
	return false
}

// GetCategory returns the category of err, or ErrorInternal when err is not a
// ProviderError.
func GetCategory(err error) ErrorCategory {
	if pe, ok := asProviderError(err); ok {
		return pe.Category
	}
	return ErrorInternal
}

func asProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	ok := errors.As(err, &pe)
	return pe, ok
}
