// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file,
when present, is merged into the environment first (see cmd/api).

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, SMTP, S3) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

// MinSessionSecretLength is the minimum byte length of the HS256 signing secret.
const MinSessionSecretLength = 32

// # Configuration Schema

// Config holds all runtime configuration for the FamVault server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Session token signing and lifetime. A zero SessionTTL issues tokens
	// without an expiry claim.
	SessionSecret string        `env:"SESSION_SECRET,required"`
	SessionTTL    time.Duration `env:"SESSION_TTL"   envDefault:"168h"`
	CookieSecure  bool          `env:"COOKIE_SECURE" envDefault:"false"`

	// Credential hashing and one-time codes
	BcryptCost        int           `env:"BCRYPT_COST"         envDefault:"10"`
	OTPTTL            time.Duration `env:"OTP_TTL"             envDefault:"10m"`
	OTPResendCooldown time.Duration `env:"OTP_RESEND_COOLDOWN" envDefault:"60s"`

	// Outbound mail. An empty SMTPHost switches to the log-only sender.
	SMTPHost     string        `env:"SMTP_HOST"`
	SMTPPort     string        `env:"SMTP_PORT"     envDefault:"465"`
	SMTPUsername string        `env:"SMTP_USERNAME"`
	SMTPPassword string        `env:"SMTP_PASSWORD"`
	SMTPFrom     string        `env:"SMTP_FROM"`
	MailTimeout  time.Duration `env:"MAIL_TIMEOUT"  envDefault:"10s"`

	// MailLogBody makes the log-only sender print message bodies, one-time
	// codes included. Development only.
	MailLogBody bool `env:"MAIL_LOG_BODY" envDefault:"false"`

	// Object Storage (S3-compatible, e.g. MinIO)
	S3Bucket    string `env:"S3_BUCKET"     envDefault:"famvault"`
	S3Region    string `env:"S3_REGION"     envDefault:"us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`

	// MaxUploadBytes caps a single document upload.
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`

	// Cross-Origin Resource Sharing
	ExtraOrigins []string `env:"EXTRA_ORIGINS" envSeparator:","`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("config: SESSION_SECRET must be at least %d bytes", MinSessionSecretLength)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("config: BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.OTPTTL <= 0 {
		return fmt.Errorf("config: OTP_TTL must be positive")
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("config: SESSION_TTL must not be negative")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: MAX_UPLOAD_BYTES must be positive")
	}
	if c.MailLogBody && c.IsProduction() {
		return fmt.Errorf("config: MAIL_LOG_BODY must not be set in production")
	}
	return nil
}

// MailEnabled reports whether real SMTP delivery is configured.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
