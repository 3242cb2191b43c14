// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every environment-sourced setting for the server.
//
// SecretKey is required: token minting cannot work without it and Validate
// treats its absence as a fatal misconfiguration rather than a per-request
// error.
type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	AppName string `env:"APP_NAME" envDefault:"Commerce API"`
	Env     string `env:"ENV" envDefault:"DEV"`

	DatabaseURL string `env:"DATABASE_URL"`

	SecretKey       string        `env:"SECRET_KEY"`
	Algorithm       string        `env:"ALGORITHM" envDefault:"HS256"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"720h"`
	OAuthStateTTL   time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI  string `env:"GOOGLE_REDIRECT_URI"`
	// Endpoint overrides, empty means the Google defaults. Used by tests and
	// local fakes.
	GoogleAuthURL     string `env:"GOOGLE_AUTH_URL"`
	GoogleTokenURL    string `env:"GOOGLE_TOKEN_URL"`
	GoogleUserInfoURL string `env:"GOOGLE_USERINFO_URL"`

	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	AWSRegion          string `env:"AWS_REGION" envDefault:"us-east-1"`
	S3Bucket           string `env:"S3_BUCKET_NAME"`
	S3BaseURL          string `env:"S3_BASE_URL"`
	S3Endpoint         string `env:"S3_ENDPOINT"`

	AllowedOrigins []string `env:"CORS_ORIGINS" envSeparator:","`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings whose absence must stop the server at startup.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY is not set in environment variables")
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set in environment variables")
	}
	return nil
}

// Addr returns the listen address for http.Server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
