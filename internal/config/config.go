// Package config handles configuration for the Skill Link client,
// including defaults, an optional .env file, environment variables,
// and command-line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Config holds runtime settings for the Skill Link application.
//
// Fields:
//   - DatabaseDSN: PostgreSQL DSN for the row store (pgx).
//   - TokenSecret: HMAC secret for signing session tokens (HS256).
//   - TokenTTL: session token lifetime; expiry ends the session.
//   - S3AccessKey / S3SecretKey: credentials for the S3-compatible backend.
//   - S3Region / S3BaseEndpoint: object storage settings.
type Config struct {
	DatabaseDSN    string
	TokenSecret    string
	TokenTTL       time.Duration
	S3AccessKey    string
	S3SecretKey    string
	S3Region       string
	S3BaseEndpoint string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = ""
	c.TokenSecret = ""
	c.TokenTTL = 60 * time.Minute
	c.S3AccessKey = "admin"
	c.S3SecretKey = "secretpassword"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment (including an optional .env file) and finally from
// command-line flags. The result is validated; a missing or malformed
// required setting is a fatal startup error.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings for presence and well-formedness.
// It is called before any backend call is attempted.
func (c *Config) Validate() error {
	if c.DatabaseDSN == "" {
		return errors.New("config: database DSN must be set (SKILLLINK_DATABASE_DSN or -d)")
	}
	if _, err := url.Parse(c.DatabaseDSN); err != nil {
		return fmt.Errorf("config: invalid database DSN %q: %w", c.DatabaseDSN, err)
	}
	if c.S3BaseEndpoint == "" {
		return errors.New("config: object storage endpoint must be set (SKILLLINK_S3_ENDPOINT or -e)")
	}
	u, err := url.Parse(c.S3BaseEndpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: invalid object storage endpoint %q", c.S3BaseEndpoint)
	}
	if c.TokenSecret == "" {
		return errors.New("config: token secret must be set (SKILLLINK_TOKEN_SECRET or -s)")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("config: token TTL must be positive, got %v", c.TokenTTL)
	}
	return nil
}
