package shipvendor

import (
	"strings"
	"time"

	"github.com/dmitrymomot/shipconnect/pkg/environment"
	"github.com/dmitrymomot/shipconnect/pkg/retry"
)

// DefaultHost is the vendor API host. The environment selects the base path under it.
const DefaultHost = "https://api.shipvendor.io"

// DefaultTimeout bounds a single HTTP attempt.
const DefaultTimeout = 10 * time.Second

// Config holds the vendor credentials and retry knobs.
type Config struct {
	APIKey      string                  `env:"SHIP_VENDOR_API_KEY,required"`
	Environment environment.Environment `env:"SHIP_VENDOR_ENVIRONMENT" envDefault:"staging"`
	// BaseURL overrides the environment-derived base URL.
	BaseURL       string `env:"SHIP_VENDOR_BASE_URL"`
	WebhookSecret string `env:"SHIP_VENDOR_WEBHOOK_SECRET"`

	Timeout         time.Duration `env:"SHIP_VENDOR_TIMEOUT" envDefault:"10s"`
	MaxAttempts     int           `env:"SHIP_VENDOR_MAX_ATTEMPTS" envDefault:"5"`
	InitialInterval time.Duration `env:"SHIP_VENDOR_INITIAL_INTERVAL" envDefault:"1s"`
	BackoffFactor   float64       `env:"SHIP_VENDOR_BACKOFF_FACTOR" envDefault:"2"`
	MaxDelay        time.Duration `env:"SHIP_VENDOR_MAX_DELAY" envDefault:"5s"`
}

// BaseURLFor returns the vendor base URL of env. Anything but production
// talks to the staging environment.
func BaseURLFor(env environment.Environment) string {
	if env.IsProduction() {
		return DefaultHost + "/production"
	}
	return DefaultHost + "/staging"
}

func (c Config) baseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return BaseURLFor(c.Environment)
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func retryConfig[T any](c Config, operation string) retry.Config[T] {
	return retry.Config[T]{
		MaxAttempts:     c.MaxAttempts,
		InitialInterval: c.InitialInterval,
		BackoffFactor:   c.BackoffFactor,
		MaxDelay:        c.MaxDelay,
		TerminalMessage: "shipping vendor request failed: " + operation,
	}
}
