package api

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrymomot/shipconnect/pkg/reqctx"
	"github.com/dmitrymomot/shipconnect/pkg/webhook"
)

// RelayConfig configures the callback relay.
type RelayConfig struct {
	SigningSecret    string        `env:"RELAY_SIGNING_SECRET"`
	MaxRetries       int           `env:"RELAY_MAX_RETRIES" envDefault:"3"`
	Timeout          time.Duration `env:"RELAY_TIMEOUT" envDefault:"10s"`
	FailureThreshold int           `env:"RELAY_BREAKER_FAILURES" envDefault:"5"`
	RecoveryTimeout  time.Duration `env:"RELAY_BREAKER_RECOVERY" envDefault:"30s"`
}

// Relay posts vendor events to shop callbacks. Each callback host gets its own
// circuit breaker.
type Relay struct {
	cfg    RelayConfig
	sender *webhook.Sender
	opts   []webhook.SendOption

	mu       sync.Mutex
	breakers map[string]*webhook.CircuitBreaker
}

// NewRelay creates a relay. Extra options apply to every delivery.
func NewRelay(cfg RelayConfig, sender *webhook.Sender, opts ...webhook.SendOption) *Relay {
	if sender == nil {
		sender = webhook.NewSender()
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = 30 * time.Second
	}
	return &Relay{
		cfg:      cfg,
		sender:   sender,
		opts:     opts,
		breakers: make(map[string]*webhook.CircuitBreaker),
	}
}

// Forward delivers payload to callbackURL, signed when a secret is configured.
func (r *Relay) Forward(ctx context.Context, callbackURL string, payload []byte) error {
	opts := []webhook.SendOption{
		webhook.WithMaxRetries(r.cfg.MaxRetries),
		webhook.WithTimeout(r.cfg.Timeout),
		webhook.WithHeader(reqctx.CorrelationIDHeader, reqctx.CorrelationID(ctx)),
	}
	if r.cfg.SigningSecret != "" {
		opts = append(opts, webhook.WithSignature(r.cfg.SigningSecret))
	}
	if u, err := url.Parse(callbackURL); err == nil && u.Host != "" {
		opts = append(opts, webhook.WithCircuitBreaker(r.breaker(u.Host)))
	}
	opts = append(opts, r.opts...)

	return r.sender.Send(ctx, callbackURL, payload, opts...)
}

func (r *Relay) breaker(host string) *webhook.CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	cb, ok := r.breakers[host]
	if !ok {
		cb = webhook.NewCircuitBreaker(r.cfg.FailureThreshold, 1, r.cfg.RecoveryTimeout)
		r.breakers[host] = cb
	}
	return cb
}
