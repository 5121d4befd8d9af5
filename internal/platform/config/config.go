// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Optional integrations (object storage, mail, event broker) are disabled by
leaving their variables empty; the composition root then wires no-op adapters.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the storefront API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL   string `env:"DATABASE_URL,required"`
	// MigrationPath overrides the embedded migrations with a directory on disk.
	MigrationPath string `env:"MIGRATION_PATH"`

	// Device state and volatile tokens (Redis)
	RedisURL       string        `env:"REDIS_URL,required"`
	DeviceStateTTL time.Duration `env:"DEVICE_STATE_TTL" envDefault:"720h"`

	// Session signing keys
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH,required"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH,required"`

	// GatewayTimeout bounds every call the auth flow makes to the data gateway.
	GatewayTimeout time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"5s"`

	// ConfirmRedirectURL is where the confirmation mail sends the user back to.
	ConfirmRedirectURL string `env:"CONFIRM_REDIRECT_URL" envDefault:"http://localhost:5173/login"`

	// Object Storage (Google Cloud Storage)
	GCSBucket        string `env:"GCS_BUCKET"`
	GCSPublicBaseURL string `env:"GCS_PUBLIC_BASE_URL" envDefault:"https://storage.googleapis.com"`
	// GCSEndpoint points the client at an emulator (fake-gcs-server) without credentials.
	GCSEndpoint string `env:"GCS_ENDPOINT"`

	// Transactional mail (SendGrid)
	SendGridAPIKey string `env:"SENDGRID_API_KEY"`
	MailFrom       string `env:"MAIL_FROM" envDefault:"no-reply@souk-bazaar.ma"`

	// Domain events (RabbitMQ)
	AMQPURL        string `env:"AMQP_URL"`
	EventsExchange string `env:"EVENTS_EXCHANGE" envDefault:"souk.events"`

	// Cross-Origin Resource Sharing
	ExtraOrigins []string `env:"EXTRA_ORIGINS" envSeparator:","`

	// CookieSecure marks device and session cookies Secure. Off only for local HTTP.
	CookieSecure bool `env:"COOKIE_SECURE" envDefault:"true"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	cfg := &Config{}

	// Fails if any field marked 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.GatewayTimeout <= 0 {
		return nil, fmt.Errorf("config: GATEWAY_TIMEOUT must be positive, got %s", cfg.GatewayTimeout)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the extra CORS origins configured for production.
func (c *Config) AllowedOrigins() []string {
	return c.ExtraOrigins
}
