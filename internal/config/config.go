package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	PolicyStrict = "strict"
	PolicyLegacy = "legacy"

	defaultTokenSecret = "default-secret-key-change-in-production"
)

type Config struct {
	Port            string        `envconfig:"PORT" default:"5000"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`

	DBUrl  string `envconfig:"DB_URL"`
	DBName string `envconfig:"DB_NAME" default:"manufacturer"`

	RedisURL       string        `envconfig:"REDIS_URL"`
	IdempotencyTTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`

	AccessTokenSecret string        `envconfig:"ACCESS_TOKEN_SECRET"`
	TokenTTL          time.Duration `envconfig:"TOKEN_TTL" default:"1h"`
	AccessPolicy      string        `envconfig:"ACCESS_POLICY" default:"strict"`

	StripeSecretKey string `envconfig:"STRIPE_SECRET_KEY"`
	PaymentCurrency string `envconfig:"PAYMENT_CURRENCY" default:"usd"`
	VerifyPayments  bool   `envconfig:"VERIFY_PAYMENTS" default:"true"`

	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"10"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"20"`
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using process environment")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.AccessPolicy = strings.ToLower(strings.TrimSpace(c.AccessPolicy))
	if c.AccessPolicy == "" {
		c.AccessPolicy = PolicyStrict
	}
	switch c.AccessPolicy {
	case PolicyStrict, PolicyLegacy:
	default:
		return fmt.Errorf("ACCESS_POLICY must be %q or %q, got %q", PolicyStrict, PolicyLegacy, c.AccessPolicy)
	}

	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}

	c.PaymentCurrency = strings.ToLower(strings.TrimSpace(c.PaymentCurrency))
	if c.PaymentCurrency == "" {
		c.PaymentCurrency = "usd"
	}
	return nil
}

// TokenSecret returns the signing secret and whether the development default was substituted.
func (c Config) TokenSecret() (string, bool) {
	if c.AccessTokenSecret == "" {
		return defaultTokenSecret, true
	}
	return c.AccessTokenSecret, false
}

func (c Config) Strict() bool {
	return c.AccessPolicy == PolicyStrict
}
