package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`
	SecretKey   string `env:"SECRET_KEY,required" validate:"required,min=32"`
	BaseURL     string `env:"BASE_URL" validate:"omitempty,url"`

	OrderNumberPrefix string `env:"ORDER_NUMBER_PREFIX" envDefault:"ANIS" validate:"required,alphanum,uppercase"`
	Currency          string `env:"CURRENCY" envDefault:"NGN" validate:"required,len=3,uppercase"`

	// Flat tax applied to the discounted subtotal at checkout, in basis points.
	TaxRateBasisPoints int `env:"TAX_RATE_BASIS_POINTS" envDefault:"0" validate:"min=0,max=10000"`

	PaystackSecretKey    string `env:"PAYSTACK_SECRET_KEY"`
	PaystackPublicKey    string `env:"PAYSTACK_PUBLIC_KEY"`
	FlutterwaveSecretKey string `env:"FLUTTERWAVE_SECRET_KEY"`
	FlutterwavePublicKey string `env:"FLUTTERWAVE_PUBLIC_KEY"`
	StripeSecretKey      string `env:"STRIPE_SECRET_KEY"`

	EmailProvider string `env:"EMAIL_PROVIDER" validate:"omitempty,oneof=resend mailgun postmark"`
	EmailAPIKey   string `env:"EMAIL_API_KEY"`
	EmailFrom     string `env:"EMAIL_FROM" validate:"omitempty,email"`
	EmailDomain   string `env:"EMAIL_DOMAIN"`

	CacheProvider         string `env:"CACHE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	SessionStoreProvider  string `env:"SESSION_STORE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	RedisConnectionString string `env:"REDIS_CONNECTION_STRING" envDefault:"redis://localhost:6379/0" validate:"required_if=CacheProvider redis,required_if=SessionStoreProvider redis"`

	EncryptionKey string `env:"ENCRYPTION_KEY,required" validate:"required,len=32"`

	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json"`
	Port      string     `env:"PORT" envDefault:"8080"`
}

var configValidator = validator.New()

func Load() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	hasEmailProvider := strings.TrimSpace(c.EmailProvider) != ""
	hasEmailAPIKey := strings.TrimSpace(c.EmailAPIKey) != ""
	if hasEmailProvider != hasEmailAPIKey {
		return fmt.Errorf("EMAIL_PROVIDER and EMAIL_API_KEY must be set together")
	}
	if hasEmailProvider && strings.TrimSpace(c.EmailFrom) == "" {
		return fmt.Errorf("EMAIL_FROM is required when EMAIL_PROVIDER is set")
	}
	if c.EmailProvider == "mailgun" && strings.TrimSpace(c.EmailDomain) == "" {
		return fmt.Errorf("EMAIL_DOMAIN is required when EMAIL_PROVIDER is mailgun")
	}

	baseURL := strings.TrimSpace(c.BaseURL)
	if baseURL != "" {
		parsed, err := url.Parse(baseURL)
		if err != nil || parsed.Hostname() == "" {
			return fmt.Errorf("BASE_URL must be a valid absolute URL")
		}
		if !isLocalHost(parsed.Hostname()) && !strings.EqualFold(parsed.Scheme, "https") {
			return fmt.Errorf("BASE_URL must use https outside local development")
		}
	}

	return nil
}

// HasPaymentGateway reports whether at least one gateway has credentials configured.
func (c *Config) HasPaymentGateway() bool {
	return strings.TrimSpace(c.PaystackSecretKey) != "" ||
		strings.TrimSpace(c.FlutterwaveSecretKey) != "" ||
		strings.TrimSpace(c.StripeSecretKey) != ""
}

func isLocalHost(host string) bool {
	switch strings.ToLower(strings.TrimSpace(host)) {
	case "localhost", "127.0.0.1", "::1":
		return true
	default:
		return false
	}
}
