// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/krishimitra/internal/platform/config"
)

/*
TestLoad_Defaults verifies defaults applied when only required keys are present.
*/
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/krishi")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.ServerPort)
	assert.Equal(t, config.StorePostgres, cfg.StoreDriver)
	assert.Equal(t, config.OTPStoreDatabase, cfg.OTPStore)
	assert.Equal(t, config.SMSProviderLog, cfg.SMSProvider)
	assert.Equal(t, "+91", cfg.SMSCountryPrefix)
	assert.Equal(t, 10*time.Second, cfg.SMSTimeout)
	assert.True(t, cfg.PasswordAuthEnabled)
	assert.True(t, cfg.OTPAuthEnabled)
	assert.Equal(t, []string{"https://krishi-mitra-sage.vercel.app"}, cfg.AllowedOrigins)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.UsesRedis())
}

/*
TestLoad_MissingSecret ensures the signing secret is mandatory.
*/
func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/krishi")

	_, err := config.Load()
	require.Error(t, err)
}

/*
TestConfig_Validate covers the cross-field rules.
*/
func TestConfig_Validate(t *testing.T) {
	base := func() config.Config {
		return config.Config{
			StoreDriver:         config.StorePostgres,
			DatabaseURL:         "postgres://localhost/krishi",
			OTPStore:            config.OTPStoreDatabase,
			SMSProvider:         config.SMSProviderLog,
			PasswordAuthEnabled: true,
			OTPAuthEnabled:      true,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{"valid", func(c *config.Config) {}, ""},
		{"postgres_without_url", func(c *config.Config) { c.DatabaseURL = "" }, "DATABASE_URL"},
		{"sqlite_without_url", func(c *config.Config) {
			c.StoreDriver = config.StoreSQLite
			c.DatabaseURL = ""
			c.SQLitePath = "/tmp/krishi.db"
		}, ""},
		{"unknown_driver", func(c *config.Config) { c.StoreDriver = "mongo" }, "STORE_DRIVER"},
		{"redis_without_url", func(c *config.Config) { c.OTPStore = config.OTPStoreRedis }, "REDIS_URL"},
		{"twilio_without_credentials", func(c *config.Config) { c.SMSProvider = config.SMSProviderTwilio }, "TWILIO_ACCOUNT_SID"},
		{"twilio_without_from_number", func(c *config.Config) {
			c.SMSProvider = config.SMSProviderTwilio
			c.TwilioAccountSID = "AC123"
			c.TwilioAuthToken = "token"
		}, "TWILIO_FROM_NUMBER"},
		{"log_provider_in_production", func(c *config.Config) { c.Environment = "production" }, "SMS_PROVIDER=log"},
		{"twilio_in_production", func(c *config.Config) {
			c.Environment = "production"
			c.SMSProvider = config.SMSProviderTwilio
			c.TwilioAccountSID = "AC123"
			c.TwilioAuthToken = "token"
			c.TwilioFromNumber = "+15005550006"
		}, ""},
		{"no_strategy", func(c *config.Config) {
			c.PasswordAuthEnabled = false
			c.OTPAuthEnabled = false
		}, "AUTH_PASSWORD_ENABLED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
