package sessionstore

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/dmitrymomot/shipconnect/pkg/apperror"
	"github.com/dmitrymomot/shipconnect/pkg/logger"
)

// TokenProvider obtains access credentials for the session store.
type TokenProvider interface {
	AccessToken(ctx context.Context) (AccessCredential, error)
}

// Authorizer exchanges the static client credentials for an access token
// using the OAuth2 client credentials grant. It does not cache nor retry:
// every call hits the token endpoint.
type Authorizer struct {
	oauth  clientcredentials.Config
	client *http.Client
	logger *slog.Logger
}

var _ TokenProvider = (*Authorizer)(nil)

// AuthorizerOption configures an Authorizer.
type AuthorizerOption func(*Authorizer)

// WithAuthorizerHTTPClient sets the HTTP client used for token requests.
func WithAuthorizerHTTPClient(client *http.Client) AuthorizerOption {
	return func(a *Authorizer) {
		if client != nil {
			a.client = client
		}
	}
}

// WithAuthorizerLogger sets a logger for the authorizer.
func WithAuthorizerLogger(l *slog.Logger) AuthorizerOption {
	return func(a *Authorizer) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAuthorizer creates an authorizer posting to {AuthURL}/oauth/token.
func NewAuthorizer(cfg Config, opts ...AuthorizerOption) *Authorizer {
	a := &Authorizer{
		oauth: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     strings.TrimRight(cfg.AuthURL, "/") + "/oauth/token",
			Scopes:       cfg.Scopes,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		client: &http.Client{Timeout: cfg.timeout()},
		logger: logger.Discard(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// AccessToken requests a new access credential.
// A non-2xx response yields a general *apperror.Error holding the status and
// response body as private fields.
func (a *Authorizer) AccessToken(ctx context.Context) (AccessCredential, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.client)

	tok, err := a.oauth.Token(ctx)
	if err != nil {
		opts := []apperror.Option{apperror.WithCause(err)}

		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil {
			opts = append(opts,
				apperror.WithPrivate("status", rerr.Response.StatusCode),
				apperror.WithPrivate("body", string(rerr.Body)),
			)
		}

		appErr := apperror.General(CodeTokenFailed, "could not obtain access token", opts...)
		a.logger.ErrorContext(ctx, "session store token request failed", logger.Error(appErr))
		return AccessCredential{}, appErr
	}

	cred := AccessCredential{
		Token:     tok.AccessToken,
		TokenType: tok.TokenType,
		Scope:     extraString(tok, "scope"),
		ExpiresIn: expiresIn(tok),
	}

	a.logger.DebugContext(ctx, "obtained session store access token",
		slog.String("scope", cred.Scope),
		slog.Int("expires_in", cred.ExpiresIn),
	)

	return cred, nil
}

func extraString(tok *oauth2.Token, key string) string {
	switch v := tok.Extra(key).(type) {
	case string:
		return v
	default:
		return ""
	}
}

func expiresIn(tok *oauth2.Token) int {
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	if !tok.Expiry.IsZero() {
		return int(time.Until(tok.Expiry).Round(time.Second).Seconds())
	}
	return 0
}
