package auth

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/shipconnect/pkg/apperror"
	"github.com/dmitrymomot/shipconnect/pkg/reqctx"
)

// ErrorHandler renders an authentication failure.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type middlewareConfig struct {
	transport    *HeaderTransport
	errorHandler ErrorHandler
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

// WithTransport overrides how the session header is read.
func WithTransport(t *HeaderTransport) MiddlewareOption {
	return func(c *middlewareConfig) {
		if t != nil {
			c.transport = t
		}
	}
}

// WithErrorHandler overrides the 401 JSON response.
func WithErrorHandler(h ErrorHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	apperror.Render(w, err)
}

// Middleware authenticates every request before it reaches the handler.
// It expects reqctx.Middleware to run first. On success the SessionAuth and the
// session's correlation id (when present) are written to the request context
// and the correlation id replaces the X-Correlation-ID response header.
func Middleware(m *Manager, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		transport:    NewHeaderTransport(DefaultHeader),
		errorHandler: defaultErrorHandler,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			header, err := cfg.transport.Extract(r)
			if err != nil {
				cfg.errorHandler(w, r, apperror.Auth(CodeHeaderMissing, "session header is required", apperror.WithCause(err)))
				return
			}
			reqctx.Update(ctx, reqctx.Patch{Authentication: header})

			sa, err := m.Authenticate(ctx, header)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}

			patch := reqctx.Patch{Authentication: sa}
			if corr := sa.Principal().CorrelationID; corr != "" {
				patch.CorrelationID = &corr
				w.Header().Set(reqctx.CorrelationIDHeader, corr)
			}
			reqctx.Update(ctx, patch)

			next.ServeHTTP(w, r)
		})
	}
}

// FromContext returns the verified SessionAuth of the request, if any.
func FromContext(ctx context.Context) (SessionAuth, bool) {
	sa, ok := reqctx.Get(ctx).Authentication.(SessionAuth)
	return sa, ok
}

// PrincipalFromContext returns the verified principal of the request, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	sa, ok := FromContext(ctx)
	if !ok {
		return Principal{}, false
	}
	return sa.Principal(), true
}
