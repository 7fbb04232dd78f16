package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config holds the identity service configuration, parsed once at startup
// from environment variables.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR"    envDefault:":8080"`
	BaseURL  string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieSecure is disabled only for plain-HTTP local development.
	CookieSecure bool `env:"COOKIE_SECURE" envDefault:"true"`

	Mongo  MongoConfig
	Token  TokenConfig
	Google GoogleConfig
	Consul ConsulConfig
}

// MongoConfig holds the identity store connection settings.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"      envDefault:"mongodb://localhost:27017"`
	Database string `env:"MONGO_DATABASE" envDefault:"plume"`
}

// TokenConfig holds session token signing settings.
type TokenConfig struct {
	Secret    string        `env:"ACCESS_TOKEN_SECRET"`
	Issuer    string        `env:"ACCESS_TOKEN_ISSUER"     envDefault:"plume-identity"`
	ExpiresIn time.Duration `env:"ACCESS_TOKEN_EXPIRES_IN" envDefault:"720h"`
}

// GoogleConfig holds the OAuth client used to validate Google sign-ins.
type GoogleConfig struct {
	ClientID string `env:"GOOGLE_CLIENT_ID"`
}

// ConsulConfig holds service registration settings. Registration is skipped
// when Addr is empty.
type ConsulConfig struct {
	Addr        string `env:"CONSUL_HTTP_ADDR"`
	ServiceName string `env:"CONSUL_SERVICE_NAME" envDefault:"identity-service"`
	ServiceAddr string `env:"CONSUL_SERVICE_ADDR" envDefault:"127.0.0.1"`
	ServicePort int    `env:"CONSUL_SERVICE_PORT" envDefault:"8080"`
}

// New parses the configuration from environment variables.
func New(logger *zerolog.Logger) *Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate configuration")
	}

	return &cfg
}

func (c *Config) validate() error {
	if c.Token.Secret == "" {
		return fmt.Errorf("missing ACCESS_TOKEN_SECRET environment variable")
	}
	if c.Token.ExpiresIn <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRES_IN must be positive")
	}

	return nil
}
