package config

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata" // embedded zoneinfo for minimal containers

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ErrorKind classifies configuration failures
type ErrorKind string

const (
	ErrParsing    ErrorKind = "parsing"
	ErrValidation ErrorKind = "validation"
)

// Error is returned by Load
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Load reads the configuration, applies defaults and validates it
func Load() (*Config, error) {
	// a missing .env is fine; existing variables are never overridden
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &Error{Kind: ErrParsing, Message: "failed to process environment configuration", Err: err}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, &Error{Kind: ErrValidation, Message: "configuration validation failed", Err: err}
	}

	if err := cfg.validateDependencies(); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, &Error{Kind: ErrValidation, Message: "unknown TIMEZONE " + cfg.Timezone, Err: err}
	}
	cfg.Location = loc

	return &cfg, nil
}

// validateDependencies checks settings that only matter for some choices
func (c *Config) validateDependencies() error {
	var errs []error
	if c.Forecast.Provider == "arome" && c.Forecast.AROMEAPIKey == "" {
		errs = append(errs, errors.New("AROME_API_KEY is required when FORECAST_PROVIDER=arome"))
	}
	if c.Cooldown.Backend == "redis" && c.Cooldown.RedisAddr == "" {
		errs = append(errs, errors.New("REDIS_ADDR is required when COOLDOWN_BACKEND=redis"))
	}
	if len(errs) > 0 {
		return &Error{Kind: ErrValidation, Message: "incomplete configuration", Err: errors.Join(errs...)}
	}
	return nil
}
