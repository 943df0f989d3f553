package app

import (
	"github.com/dmitrymomot/shipconnect/internal/api"
	"github.com/dmitrymomot/shipconnect/pkg/environment"
	"github.com/dmitrymomot/shipconnect/pkg/httpserver"
	"github.com/dmitrymomot/shipconnect/pkg/sessionstore"
	"github.com/dmitrymomot/shipconnect/pkg/shipvendor"
)

// Config is the complete service configuration, loaded from the environment.
type Config struct {
	Env         environment.Environment `env:"APP_ENV" envDefault:"development"`
	ServiceName string                  `env:"SERVICE_NAME" envDefault:"shipconnect"`
	LogLevel    string                  `env:"LOG_LEVEL"`

	SessionStore sessionstore.Config
	ShipVendor   shipvendor.Config
	HTTP         httpserver.Config
	Relay        api.RelayConfig
}
