package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/shipconnect/pkg/auth"
	"github.com/dmitrymomot/shipconnect/pkg/httpserver"
	"github.com/dmitrymomot/shipconnect/pkg/logger"
	"github.com/dmitrymomot/shipconnect/pkg/reqctx"
	"github.com/dmitrymomot/shipconnect/pkg/shipvendor"
)

// Vendor is the subset of the shipping vendor client the handlers use.
type Vendor interface {
	CreateCheckoutSession(ctx context.Context, in shipvendor.CreateSessionRequest) (*shipvendor.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*shipvendor.CheckoutSession, error)
	PullCheckoutSession(ctx context.Context, id string) (*shipvendor.CheckoutSession, error)
	UpdateCheckoutSession(ctx context.Context, in shipvendor.UpdateSessionRequest) (*shipvendor.CheckoutSession, error)
	CompleteCheckoutSession(ctx context.Context, id string) (*shipvendor.CheckoutSession, error)
}

// Forwarder relays a verified vendor event to the shop.
type Forwarder interface {
	Forward(ctx context.Context, callbackURL string, payload []byte) error
}

// Instrumentation is implemented by internal/metrics.
type Instrumentation interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

// Deps are the collaborators of the router. Auth and Vendor are required.
type Deps struct {
	Auth      *auth.Manager
	Vendor    Vendor
	Forwarder Forwarder
	Metrics   Instrumentation
	Logger    *slog.Logger

	// WebhookSecret verifies inbound vendor webhooks. Without it the webhook route is not mounted.
	WebhookSecret string
	// WebhookMaxAge rejects webhook signatures older than this.
	WebhookMaxAge time.Duration

	ReadinessChecks  []httpserver.Check
	ReadinessTimeout time.Duration
}

const (
	defaultWebhookMaxAge    = 5 * time.Minute
	defaultReadinessTimeout = 5 * time.Second
)

// NewRouter builds the service HTTP handler.
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = logger.Discard()
	}
	if d.WebhookMaxAge <= 0 {
		d.WebhookMaxAge = defaultWebhookMaxAge
	}
	if d.ReadinessTimeout <= 0 {
		d.ReadinessTimeout = defaultReadinessTimeout
	}

	errs := errorRenderer{log: d.Logger}
	checkout := &checkoutHandler{vendor: d.Vendor, errs: errs}
	hooks := &webhookHandler{
		secret:    d.WebhookSecret,
		maxAge:    d.WebhookMaxAge,
		forwarder: d.Forwarder,
		log:       d.Logger,
		errs:      errs,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(reqctx.Middleware)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errs.render(w, r, errRouteNotFound)
	})

	r.Get("/healthz", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(d.Logger, d.ReadinessTimeout, d.ReadinessChecks...))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		if d.WebhookSecret != "" {
			r.Post("/webhooks/vendor", hooks.vendor)
		}

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(d.Auth, auth.WithErrorHandler(errs.render)))

			r.Route("/checkout/sessions", func(r chi.Router) {
				r.Post("/", checkout.create)
				r.Get("/{id}", checkout.get)
				r.Patch("/{id}", checkout.update)
				r.Post("/{id}/pull", checkout.pull)
				r.Post("/{id}/complete", checkout.complete)
			})
		})
	})

	return r
}
