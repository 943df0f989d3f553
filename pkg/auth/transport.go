package auth

import (
	"errors"
	"net/http"
	"strings"
)

// DefaultHeader carries the session handle on inbound requests.
const DefaultHeader = "X-Session-Id"

// ErrHeaderMissing is returned when a request carries no session header.
var ErrHeaderMissing = errors.New("session header missing")

// HeaderTransport reads the session handle from a request header.
type HeaderTransport struct {
	headerName string
	prefix     string
}

// HeaderOption is a functional option for HeaderTransport.
type HeaderOption func(*HeaderTransport)

// WithHeaderPrefix sets the prefix stripped from the header value.
func WithHeaderPrefix(prefix string) HeaderOption {
	return func(t *HeaderTransport) {
		t.prefix = prefix
	}
}

// NewHeaderTransport creates a header transport. The "Bearer " prefix is stripped by default.
func NewHeaderTransport(headerName string, opts ...HeaderOption) *HeaderTransport {
	if headerName == "" {
		headerName = DefaultHeader
	}
	t := &HeaderTransport{
		headerName: headerName,
		prefix:     "Bearer ",
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Extract returns the unverified HeaderAuth of the request.
func (t *HeaderTransport) Extract(r *http.Request) (HeaderAuth, error) {
	value := strings.TrimSpace(r.Header.Get(t.headerName))
	if t.prefix != "" {
		value = strings.TrimPrefix(value, t.prefix)
	}
	if value == "" {
		return HeaderAuth{}, ErrHeaderMissing
	}
	return NewHeaderAuth(value), nil
}
