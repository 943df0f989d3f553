package apperror

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrymomot/shipconnect/pkg/retry"
)

// Stable public codes for failures that are not *Error values.
const (
	CodeInternal            = "internal_error"
	CodeUpstreamUnavailable = "upstream_unavailable"
	CodeUpstreamRejected    = "upstream_rejected"
	CodeUpstreamTimeout     = "upstream_timeout"
)

// Resolve maps any error to a response status and its public detail.
// Upstream bodies and private fields never leave this function.
func Resolve(err error) (int, Detail) {
	if e, ok := As(err); ok {
		return e.HTTPStatus(), e.Public()
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, Detail{Code: CodeUpstreamTimeout, Message: "upstream service timed out"}
	case retry.IsExhausted(err):
		return http.StatusBadGateway, Detail{Code: CodeUpstreamUnavailable, Message: "upstream service is unavailable"}
	case retry.IsTerminal(err):
		return http.StatusBadGateway, Detail{Code: CodeUpstreamRejected, Message: "upstream service rejected the request"}
	default:
		return http.StatusInternalServerError, Detail{Code: CodeInternal, Message: http.StatusText(http.StatusInternalServerError)}
	}
}
