// Package config loads typed service configuration from the environment.
// A local .env file is honored when present so development setups need no
// exported variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full configuration surface of the API process.
type Config struct {
	Addr        string `env:"GREETLY_ADDR" envDefault:":8080"`
	DatabaseDSN string `env:"GREETLY_PG_DSN"`

	Auth Auth `envPrefix:"GREETLY_AUTH_"`

	RateBurst  int `env:"GREETLY_RATE_BURST" envDefault:"20"`
	RatePerSec int `env:"GREETLY_RATE_PER_SEC" envDefault:"10"`
}

// Auth configures the session core: signing key material, token lifetime
// and the silent-renewal threshold. None of these are ever hard-coded.
type Auth struct {
	SigningKey string        `env:"SECRET,required,notEmpty"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"30m"`
	RenewAfter time.Duration `env:"RENEW_AFTER" envDefault:"5m"`
}

// Load reads configuration from the environment and validates it.
// Validation failures are configuration errors and fatal at startup.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Auth.TokenTTL <= 0 {
		return errors.New("config: token ttl must be greater than zero")
	}
	if c.Auth.RenewAfter <= 0 {
		return errors.New("config: renewal threshold must be greater than zero")
	}
	if c.Auth.RenewAfter >= c.Auth.TokenTTL {
		return errors.New("config: renewal threshold must be below token ttl")
	}
	if c.RateBurst <= 0 || c.RatePerSec <= 0 {
		return errors.New("config: rate limits must be greater than zero")
	}
	return nil
}
