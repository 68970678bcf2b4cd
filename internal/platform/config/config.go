// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, token signer) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage drivers for identity records.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Backends for pending one-time codes.
const (
	OTPStoreDatabase = "database"
	OTPStoreRedis    = "redis"
)

// SMS providers.
const (
	SMSProviderLog    = "log"
	SMSProviderTwilio = "twilio"
)

// # Configuration Schema

// Config holds all runtime configuration for the Krishi Mitra API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"3001"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Identity storage
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH"  envDefault:"./data/krishi.db"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// One-time code storage. "database" keeps codes on the identity row,
	// "redis" keeps them as expiring keys.
	OTPStore string `env:"OTP_STORE" envDefault:"database"`
	RedisURL string `env:"REDIS_URL"`

	// Session token signing
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	// Credential strategies. Either or both may be enabled.
	PasswordAuthEnabled bool `env:"AUTH_PASSWORD_ENABLED" envDefault:"true"`
	OTPAuthEnabled      bool `env:"AUTH_OTP_ENABLED"      envDefault:"true"`

	// SMS delivery
	SMSProvider      string        `env:"SMS_PROVIDER"       envDefault:"log"`
	SMSCountryPrefix string        `env:"SMS_COUNTRY_PREFIX" envDefault:"+91"`
	SMSTimeout       time.Duration `env:"SMS_TIMEOUT"        envDefault:"10s"`
	TwilioAccountSID string        `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string        `env:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string        `env:"TWILIO_FROM_NUMBER"`
	TwilioBaseURL    string        `env:"TWILIO_BASE_URL"    envDefault:"https://api.twilio.com"`

	// Cross-Origin Resource Sharing
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"https://krishi-mitra-sage.vercel.app"`

	// AdvisoryTablePath optionally replaces the compiled-in region/crop catalogue.
	AdvisoryTablePath string `env:"ADVISORY_TABLE_PATH"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Validate checks the rules that span more than one field.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORE_DRIVER=postgres"))
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required when STORE_DRIVER=sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver))
	}

	switch c.OTPStore {
	case OTPStoreDatabase:
	case OTPStoreRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when OTP_STORE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported OTP_STORE %q", c.OTPStore))
	}

	switch c.SMSProvider {
	case SMSProviderLog:
		if c.IsProduction() {
			errs = append(errs, errors.New("SMS_PROVIDER=log is not allowed when ENVIRONMENT=production"))
		}
	case SMSProviderTwilio:
		if c.TwilioAccountSID == "" || c.TwilioAuthToken == "" || c.TwilioFromNumber == "" {
			errs = append(errs, errors.New("TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_FROM_NUMBER are required when SMS_PROVIDER=twilio"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported SMS_PROVIDER %q", c.SMSProvider))
	}

	if !c.PasswordAuthEnabled && !c.OTPAuthEnabled {
		errs = append(errs, errors.New("at least one of AUTH_PASSWORD_ENABLED or AUTH_OTP_ENABLED must be true"))
	}

	return errors.Join(errs...)
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UsesRedis reports whether a Redis client has to be opened at startup.
func (c *Config) UsesRedis() bool {
	return c.OTPStore == OTPStoreRedis
}
