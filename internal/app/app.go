package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/shipconnect/internal/api"
	"github.com/dmitrymomot/shipconnect/internal/metrics"
	"github.com/dmitrymomot/shipconnect/pkg/auth"
	"github.com/dmitrymomot/shipconnect/pkg/httpserver"
	"github.com/dmitrymomot/shipconnect/pkg/logger"
	"github.com/dmitrymomot/shipconnect/pkg/sessionstore"
	"github.com/dmitrymomot/shipconnect/pkg/shipvendor"
	"github.com/dmitrymomot/shipconnect/pkg/webhook"
)

// App is the wired service.
type App struct {
	cfg     Config
	log     *slog.Logger
	handler http.Handler
	server  *httpserver.Server
}

// Option configures New.
type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient routes every outbound call through hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// New wires the session store, the vendor client, metrics and the HTTP API.
func New(cfg Config, log *slog.Logger, opts ...Option) *App {
	if log == nil {
		log = logger.Discard()
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	m := metrics.New()

	authorizer := sessionstore.NewAuthorizer(cfg.SessionStore,
		sessionstore.WithAuthorizerLogger(log.With(logger.Component("authorizer"))),
		sessionstore.WithAuthorizerHTTPClient(o.httpClient),
	)
	verifier := sessionstore.NewVerifier(cfg.SessionStore, authorizer,
		sessionstore.WithVerifierLogger(log.With(logger.Component("session_verifier"))),
		sessionstore.WithVerifierHTTPClient(o.httpClient),
	)
	manager := auth.NewManager(verifier,
		auth.WithLogger(log.With(logger.Component("auth"))),
		auth.WithObserver(m.ObserveAuth),
	)

	vendor := shipvendor.New(cfg.ShipVendor,
		shipvendor.WithLogger(log.With(logger.Component("ship_vendor"))),
		shipvendor.WithAttemptObserver(m.ObserveAttempt),
		shipvendor.WithHTTPClient(o.httpClient),
	)

	relay := api.NewRelay(cfg.Relay,
		webhook.NewSenderWithClient(o.httpClient),
		webhook.WithOnDelivery(m.ObserveDelivery),
	)

	handler := api.NewRouter(api.Deps{
		Auth:          manager,
		Vendor:        vendor,
		Forwarder:     relay,
		Metrics:       m,
		Logger:        log.With(logger.Component("api")),
		WebhookSecret: cfg.ShipVendor.WebhookSecret,
		ReadinessChecks: []httpserver.Check{
			{Name: "session_store", Fn: verifier.Ready},
		},
	})

	server := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log.With(logger.Component("http"))),
	)

	return &App{
		cfg:     cfg,
		log:     log,
		handler: handler,
		server:  server,
	}
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run serves HTTP until ctx is done or a termination signal arrives.
func (a *App) Run(ctx context.Context) error {
	a.log.InfoContext(ctx, "starting service",
		slog.String("service", a.cfg.ServiceName),
		slog.String("env", a.cfg.Env.String()),
		slog.String("ship_vendor_env", a.cfg.ShipVendor.Environment.String()),
	)
	return a.server.Run(ctx, a.handler)
}
