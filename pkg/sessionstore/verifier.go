package sessionstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/dmitrymomot/shipconnect/pkg/apperror"
	"github.com/dmitrymomot/shipconnect/pkg/logger"
)

const sessionPath = "/{projectKey}/sessions/{sessionID}"

// Verifier fetches sessions from the session store and checks their lifecycle state.
// It owns the process-wide access credential cache; construct one per process
// and pass it to every consumer.
type Verifier struct {
	tokens     TokenProvider
	cache      *TokenCache
	client     *http.Client
	http       *resty.Client
	projectKey string
	logger     *slog.Logger
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithTokenCache sets the credential cache. Useful to observe the cache in tests.
func WithTokenCache(c *TokenCache) VerifierOption {
	return func(v *Verifier) {
		if c != nil {
			v.cache = c
		}
	}
}

// WithVerifierHTTPClient sets the underlying HTTP client used for session requests.
func WithVerifierHTTPClient(client *http.Client) VerifierOption {
	return func(v *Verifier) {
		if client != nil {
			v.client = client
		}
	}
}

// WithVerifierLogger sets a logger for the verifier.
func WithVerifierLogger(l *slog.Logger) VerifierOption {
	return func(v *Verifier) {
		if l != nil {
			v.logger = l
		}
	}
}

// NewVerifier creates a session verifier obtaining credentials from tokens.
func NewVerifier(cfg Config, tokens TokenProvider, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		tokens:     tokens,
		cache:      NewTokenCache(),
		client:     &http.Client{},
		projectKey: cfg.ProjectKey,
		logger:     logger.Discard(),
	}

	for _, opt := range opts {
		opt(v)
	}

	// resty's SetTimeout writes to the client it wraps; work on a copy so a
	// client shared with other components keeps its own timeout.
	hc := *v.client
	v.http = resty.NewWithClient(&hc).
		SetBaseURL(cfg.APIURL).
		SetTimeout(cfg.timeout()).
		SetHeader("Accept", "application/json")

	return v
}

// VerifySession fetches the session and returns it when it is ACTIVE.
//
// The cached credential is used when present. If the session store answers
// 401 or 403 a fresh credential is requested and the fetch is repeated once.
// A 404 is an authentication failure; any other non-2xx response, transport
// error or undecodable body is a general failure. A session in any state
// other than ACTIVE is an authentication failure.
func (v *Verifier) VerifySession(ctx context.Context, sessionID string) (*Record, error) {
	if sessionID == "" {
		return nil, apperror.Auth(CodeSessionNotFound, "session not found",
			apperror.WithPrivate("reason", "empty session id"),
		)
	}

	cred, ok := v.cache.Get()
	if !ok {
		var err error
		if cred, err = v.refreshCredential(ctx); err != nil {
			return nil, err
		}
	}

	resp, err := v.fetch(ctx, sessionID, cred)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		v.logger.InfoContext(ctx, "session store rejected access token, refreshing",
			slog.Int("status", resp.StatusCode()),
		)
		if cred, err = v.refreshCredential(ctx); err != nil {
			return nil, err
		}
		if resp, err = v.fetch(ctx, sessionID, cred); err != nil {
			return nil, err
		}
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusNotFound:
		return nil, apperror.Auth(CodeSessionNotFound, "session not found",
			apperror.WithPrivate("status", code),
			apperror.WithPrivate("status_text", http.StatusText(code)),
		)
	case code < 200 || code > 299:
		return nil, apperror.General(CodeSessionFetchFailed, "could not get session",
			apperror.WithPrivate("status", code),
			apperror.WithPrivate("status_text", http.StatusText(code)),
		)
	}

	var rec Record
	if err := json.Unmarshal(resp.Body(), &rec); err != nil {
		return nil, apperror.General(CodeSessionMalformed, "could not decode session",
			apperror.WithPrivate("body", string(resp.Body())),
			apperror.WithCause(err),
		)
	}

	if !rec.IsActive() {
		return nil, apperror.Auth(CodeSessionInactive,
			"session is not ACTIVE, current status: "+string(rec.LifecycleState),
			apperror.WithPrivate("record", string(resp.Body())),
		)
	}

	return &rec, nil
}

// Ready makes sure a credential is cached, fetching one if needed.
// Suitable as a readiness probe.
func (v *Verifier) Ready(ctx context.Context) error {
	if _, ok := v.cache.Get(); ok {
		return nil
	}
	_, err := v.refreshCredential(ctx)
	return err
}

// Invalidate drops the cached credential; the next verification fetches a new one.
func (v *Verifier) Invalidate() {
	v.cache.Invalidate()
}

func (v *Verifier) refreshCredential(ctx context.Context) (AccessCredential, error) {
	cred, err := v.tokens.AccessToken(ctx)
	if err != nil {
		return AccessCredential{}, err
	}
	v.cache.Set(cred)
	return cred, nil
}

func (v *Verifier) fetch(ctx context.Context, sessionID string, cred AccessCredential) (*resty.Response, error) {
	resp, err := v.http.R().
		SetContext(ctx).
		SetAuthToken(cred.Token).
		SetPathParams(map[string]string{
			"projectKey": v.projectKey,
			"sessionID":  sessionID,
		}).
		Get(sessionPath)
	if err != nil {
		appErr := apperror.General(CodeSessionFetchFailed, "could not get session", apperror.WithCause(err))
		v.logger.ErrorContext(ctx, "session store request failed", logger.Error(appErr))
		return nil, appErr
	}
	return resp, nil
}
