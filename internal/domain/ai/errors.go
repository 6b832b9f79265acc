package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
	ErrQuotaExceeded = errors.New("ai quota exceeded")
	// ErrUnavailable covers every other provider failure.
	ErrUnavailable = errors.New("ai service unavailable")
	// ErrUnparseable means the model answered but not with the expected JSON shape.
	ErrUnparseable = errors.New("ai response could not be parsed")
)

// ProviderError keeps the upstream detail while matching one of the
// sentinels above through errors.Is.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Classify wraps a raw SDK error. 429 and quota codes become ErrQuotaExceeded.
func Classify(provider string, status int, code, message string, cause error) error {
	sentinel := ErrUnavailable
	if status == 429 || code == "insufficient_quota" || code == "rate_limit_exceeded" {
		sentinel = ErrQuotaExceeded
	}
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &ProviderError{
		Provider:   provider,
		StatusCode: status,
		Message:    message,
		Err:        errors.Join(sentinel, cause),
	}
}

// IsUpstream reports whether err came from the provider side.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrQuotaExceeded)
}
