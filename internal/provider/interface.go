package provider

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrInvalidAPIKey = errors.New("invalid API key")

// Error codes carried by ProviderError.
const (
	CodeAuthFailed  = "AUTH_FAILED"
	CodeNotFound    = "NOT_FOUND"
	CodeRateLimited = "RATE_LIMITED"
	CodeUnavailable = "UNAVAILABLE"
	CodeUnknown     = "UNKNOWN"
)

// Locale supplies the user's language for outbound provider requests
type Locale interface {
	Language() string
}

// Preferences exposes the user controlled proxy settings. The proxy list is
// treated as append-only for the lifetime of the process.
type Preferences interface {
	ProxyEnabled() bool
	ProxyURLs() []string
}

// ProviderError represents an error from an upstream provider
type ProviderError struct {
	Provider   string
	Code       string
	Message    string
	Status     int
	Retry      bool
	RetryAfter int // Seconds to wait before retry
}

func (e *ProviderError) Error() string {
	return e.Message
}

// IsNotFound reports whether err is a provider "no such record" failure.
func IsNotFound(err error) bool {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Code == CodeNotFound
	}
	return false
}

// IsRetryable reports whether the provider flagged err as transient.
func IsRetryable(err error) bool {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Retry
	}
	return false
}

// StatusError maps an upstream HTTP status onto a ProviderError.
func StatusError(providerName string, status int, body string) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &ProviderError{
			Provider: providerName,
			Code:     CodeAuthFailed,
			Message:  fmt.Sprintf("%s authentication failed: HTTP %d", providerName, status),
			Status:   status,
		}
	case status == http.StatusNotFound:
		return &ProviderError{
			Provider: providerName,
			Code:     CodeNotFound,
			Message:  fmt.Sprintf("%s resource not found", providerName),
			Status:   status,
		}
	case status == http.StatusTooManyRequests:
		return &ProviderError{
			Provider:   providerName,
			Code:       CodeRateLimited,
			Message:    fmt.Sprintf("%s rate limit exceeded", providerName),
			Status:     status,
			Retry:      true,
			RetryAfter: 10,
		}
	case status >= 500:
		return &ProviderError{
			Provider:   providerName,
			Code:       CodeUnavailable,
			Message:    fmt.Sprintf("%s service unavailable: HTTP %d", providerName, status),
			Status:     status,
			Retry:      true,
			RetryAfter: 30,
		}
	}

	msg := fmt.Sprintf("%s error: HTTP %d", providerName, status)
	if body != "" {
		msg += ": " + body
	}
	return &ProviderError{
		Provider: providerName,
		Code:     CodeUnknown,
		Message:  msg,
		Status:   status,
	}
}
