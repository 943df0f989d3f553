package sessionstore

import "time"

// Config holds the static client credentials and endpoints of the session store.
type Config struct {
	ClientID     string        `env:"SESSION_STORE_CLIENT_ID,required"`
	ClientSecret string        `env:"SESSION_STORE_CLIENT_SECRET,required"`
	AuthURL      string        `env:"SESSION_STORE_AUTH_URL,required"`
	APIURL       string        `env:"SESSION_STORE_API_URL,required"`
	ProjectKey   string        `env:"SESSION_STORE_PROJECT_KEY,required"`
	Scopes       []string      `env:"SESSION_STORE_SCOPES" envSeparator:" "`
	Timeout      time.Duration `env:"SESSION_STORE_TIMEOUT" envDefault:"10s"`
}

// DefaultTimeout bounds every call to the session store when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}
