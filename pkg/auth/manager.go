package auth

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/shipconnect/pkg/apperror"
	"github.com/dmitrymomot/shipconnect/pkg/logger"
	"github.com/dmitrymomot/shipconnect/pkg/sessionstore"
)

// SessionVerifier fetches and validates a session by its handle.
type SessionVerifier interface {
	VerifySession(ctx context.Context, sessionID string) (*sessionstore.Record, error)
}

// Manager turns a raw session header into a verified SessionAuth.
type Manager struct {
	verifier SessionVerifier
	logger   *slog.Logger
	observe  func(ctx context.Context, err error)
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets a logger for the manager.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithObserver registers a callback invoked after every authentication with
// its error (nil on success). Useful for metrics.
func WithObserver(fn func(ctx context.Context, err error)) ManagerOption {
	return func(m *Manager) {
		m.observe = fn
	}
}

// NewManager creates an authentication manager backed by verifier.
func NewManager(verifier SessionVerifier, opts ...ManagerOption) *Manager {
	m := &Manager{
		verifier: verifier,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Authenticate verifies the session named by the header and builds its principal.
// Any failure is reported as an auth error with a generic message; the
// underlying error is kept as its cause for logging only. It never retries.
func (m *Manager) Authenticate(ctx context.Context, h HeaderAuth) (SessionAuth, error) {
	sa, err := m.authenticate(ctx, h)
	if m.observe != nil {
		m.observe(ctx, err)
	}
	return sa, err
}

func (m *Manager) authenticate(ctx context.Context, h HeaderAuth) (SessionAuth, error) {
	rec, err := m.verifier.VerifySession(ctx, h.Header)
	if err != nil {
		return SessionAuth{}, m.fail(ctx, err)
	}

	cartID, err := rec.CartID()
	if err != nil {
		return SessionAuth{}, m.fail(ctx, err)
	}

	sa := SessionAuth{
		sessionID: h.Header,
		principal: Principal{
			CartID:        cartID,
			CallbackURL:   rec.CallbackURL(),
			CorrelationID: rec.CorrelationID(),
		},
	}

	m.logger.DebugContext(ctx, "session authenticated",
		logger.SessionID(sa.sessionID),
		logger.CartID(cartID),
	)

	return sa, nil
}

func (m *Manager) fail(ctx context.Context, cause error) error {
	m.logger.WarnContext(ctx, "authentication failed", logger.Error(cause))
	return apperror.Auth(CodeSessionInactive, "session is not active", apperror.WithCause(cause))
}
