package auth

import "github.com/dmitrymomot/shipconnect/pkg/reqctx"

// Principal is the verified context extracted from a session.
type Principal struct {
	CartID        string
	CallbackURL   string
	CorrelationID string
}

// Authentication is either a HeaderAuth (unverified) or a SessionAuth (verified).
// The set of variants is closed: the marker method is unexported.
type Authentication interface {
	reqctx.Authentication
	isAuthentication()
}

// HeaderAuth wraps the raw session header sent by the client. It grants nothing.
type HeaderAuth struct {
	Header string
}

// NewHeaderAuth wraps a raw header value.
func NewHeaderAuth(header string) HeaderAuth {
	return HeaderAuth{Header: header}
}

func (HeaderAuth) isAuthentication() {}

// IsAuthenticated always reports false.
func (HeaderAuth) IsAuthenticated() bool { return false }

// SessionAuth is the result of a successful session verification.
// It is only built by Manager.Authenticate and cannot be changed afterwards.
type SessionAuth struct {
	sessionID string
	principal Principal
}

func (SessionAuth) isAuthentication() {}

// IsAuthenticated always reports true.
func (SessionAuth) IsAuthenticated() bool { return true }

// SessionID returns the verified session handle.
func (s SessionAuth) SessionID() string { return s.sessionID }

// Principal returns the principal resolved from the session.
func (s SessionAuth) Principal() Principal { return s.principal }

var (
	_ Authentication = HeaderAuth{}
	_ Authentication = SessionAuth{}
)
