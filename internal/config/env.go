package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables. An optional
// .env file in the working directory is loaded first; variables already
// present in the environment take precedence over the file.
//
// Supported variables:
//
//	SKILLLINK_DATABASE_DSN   PostgreSQL DSN
//	SKILLLINK_TOKEN_SECRET   session token HMAC secret
//	SKILLLINK_TOKEN_TTL      session token lifetime, minutes
//	SKILLLINK_S3_ACCESS_KEY  object storage access key
//	SKILLLINK_S3_SECRET_KEY  object storage secret key
//	SKILLLINK_S3_REGION      object storage region
//	SKILLLINK_S3_ENDPOINT    object storage base endpoint URL
func parseEnv(config *Config) {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	if v := os.Getenv("SKILLLINK_DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("SKILLLINK_TOKEN_SECRET"); v != "" {
		config.TokenSecret = v
	}
	if v := os.Getenv("SKILLLINK_TOKEN_TTL"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil {
			config.TokenTTL = time.Duration(minutes) * time.Minute
		}
	}
	if v := os.Getenv("SKILLLINK_S3_ACCESS_KEY"); v != "" {
		config.S3AccessKey = v
	}
	if v := os.Getenv("SKILLLINK_S3_SECRET_KEY"); v != "" {
		config.S3SecretKey = v
	}
	if v := os.Getenv("SKILLLINK_S3_REGION"); v != "" {
		config.S3Region = v
	}
	if v := os.Getenv("SKILLLINK_S3_ENDPOINT"); v != "" {
		config.S3BaseEndpoint = v
	}
}
