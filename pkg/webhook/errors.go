package webhook

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrDeliveryFailed   = errors.New("webhook delivery failed")
	ErrPermanentFailure = errors.New("permanent webhook failure")
	ErrCircuitOpen      = errors.New("webhook circuit breaker is open")
	ErrInvalidPayload   = errors.New("invalid webhook payload")
	ErrInvalidURL       = errors.New("invalid webhook URL")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMissingSecret    = errors.New("webhook secret is required")
	ErrTimeout          = errors.New("webhook request timeout")
	ErrTemporaryFailure = errors.New("temporary webhook failure")
	ErrPayloadTooLarge  = errors.New("webhook payload too large")
	ErrSignatureExpired = errors.New("webhook signature expired")
)

// StatusError is a non-2xx answer from a webhook endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("webhook returned status %d", e.Code)
	}
	return fmt.Sprintf("webhook returned status %d: %s", e.Code, e.Body)
}

// StatusCode reports the status for retry classification. Statuses the
// receiver may accept later (408, 425, 429) report 0 and stay retryable.
func (e *StatusError) StatusCode() int {
	if isRetryableStatus(e.Code) {
		return 0
	}
	return e.Code
}

// Permanent reports whether retrying cannot change the answer.
func (e *StatusError) Permanent() bool {
	return e.Code >= 400 && e.Code < 500 && !isRetryableStatus(e.Code)
}

func isRetryableStatus(code int) bool {
	switch code {
	case 408, 425, 429:
		return true
	}
	return false
}

// breakerOpenError stops the retry loop: it reports 423 Locked, a status the
// retry engine treats as terminal.
type breakerOpenError struct{}

func (breakerOpenError) Error() string   { return ErrCircuitOpen.Error() }
func (breakerOpenError) Unwrap() error   { return ErrCircuitOpen }
func (breakerOpenError) StatusCode() int { return http.StatusLocked }

var errBreakerOpen error = breakerOpenError{}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen)
}
