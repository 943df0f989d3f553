package api

import "github.com/dmitrymomot/shipconnect/pkg/apperror"

// Public error codes of the API.
const (
	CodeInvalidBody      = "request.invalid_body"
	CodeInvalidField     = "request.invalid_field"
	CodeRouteNotFound    = "route.not_found"
	CodeSessionNotFound  = "checkout.session_not_found"
	CodeSignatureInvalid = "webhook.signature_invalid"
	CodeEventInvalid     = "webhook.event_invalid"
	CodeRelayCircuitOpen = "webhook.relay_circuit_open"
)

var (
	errRouteNotFound   = apperror.NotFound(CodeRouteNotFound, "route not found")
	errSessionNotFound = apperror.NotFound(CodeSessionNotFound, "checkout session not found")
)
