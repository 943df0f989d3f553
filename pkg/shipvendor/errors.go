package shipvendor

import (
	"errors"
	"fmt"
)

// ErrMissingID is returned when an operation needs a checkout session id and got none.
var ErrMissingID = errors.New("shipvendor: checkout session id is required")

// APIError is a non-2xx answer from the vendor API.
// Statuses below 500 stop the retry loop; the body is kept for logs only.
type APIError struct {
	Operation string
	Status    int
	Body      string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shipping vendor %s: status %d", e.Operation, e.Status)
}

// StatusCode lets the retry engine classify the failure.
func (e *APIError) StatusCode() int { return e.Status }
