package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/shipconnect/pkg/apperror"
	"github.com/dmitrymomot/shipconnect/pkg/retry"
	"github.com/dmitrymomot/shipconnect/pkg/webhook"
)

const namespace = "shipconnect"

// Auth results.
const (
	AuthSuccess  = "success"
	AuthRejected = "rejected"
	AuthError    = "error"
)

// Metrics owns the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	retryAttempts     *prometheus.CounterVec
	authResults       *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	webhookDeliveries *prometheus.CounterVec
}

// New creates and registers all collectors, Go runtime and process metrics included.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		retryAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retry_attempts_total",
				Help:      "Upstream call attempts by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		authResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_results_total",
				Help:      "Session authentication results",
			},
			[]string{"result"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "route"},
		),
		webhookDeliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_deliveries_total",
				Help:      "Relayed webhook delivery attempts",
			},
			[]string{"result", "status"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.retryAttempts,
		m.authResults,
		m.httpRequests,
		m.httpDuration,
		m.webhookDeliveries,
	)
	return m
}

// Registry exposes the registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveAttempt counts one retry engine attempt. It fits shipvendor.WithAttemptObserver.
func (m *Metrics) ObserveAttempt(operation string, a retry.Attempt) {
	m.retryAttempts.WithLabelValues(operation, string(a.Outcome)).Inc()
}

// ObserveAuth counts an authentication result. It fits auth.WithObserver.
// The auth manager reports every failure as an auth error, so the result is
// taken from its cause: an upstream or unclassified failure counts as an error.
func (m *Metrics) ObserveAuth(_ context.Context, err error) {
	m.authResults.WithLabelValues(authResult(err)).Inc()
}

func authResult(err error) string {
	if err == nil {
		return AuthSuccess
	}
	outer, ok := apperror.As(err)
	if !ok || outer.Kind == apperror.KindGeneral {
		return AuthError
	}
	cause := outer.Unwrap()
	if cause == nil {
		return AuthRejected
	}
	inner, ok := apperror.As(cause)
	if !ok || inner.Kind == apperror.KindGeneral {
		return AuthError
	}
	return AuthRejected
}

// ObserveDelivery counts a webhook delivery attempt. It fits webhook.WithOnDelivery.
func (m *Metrics) ObserveDelivery(r webhook.DeliveryResult) {
	result := "failure"
	if r.Success {
		result = "success"
	}
	status := "none"
	if r.StatusCode > 0 {
		status = strconv.Itoa(r.StatusCode)
	}
	m.webhookDeliveries.WithLabelValues(result, status).Inc()
}

// Middleware records request count and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
