package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Config holds the complete application configuration, loadable from
// environment variables (SETTLE_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (SETTLE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`

	SellerCountry      string `default:"SE" usage:"Seller country code, decides the applicable VAT table" flag:"seller-country"`
	Currency           string `default:"SEK" usage:"Currency label for all monetary results"`
	CreditMinimumOrder string `default:"500" usage:"Smallest order total payable on credit terms" flag:"credit-minimum-order"`
	GlobalMOQ          int    `default:"1" usage:"Global minimum order quantity floor" flag:"global-moq"`

	RegistryFilterPath string `default:"" usage:"Path to the company registry bloom filter built by registry-ingest" flag:"registry-filter"`

	VIES      VIESConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig

	// Parsed form of CreditMinimumOrder, filled by LoadConfig.
	creditMinimumOrder decimal.Decimal
}

// VIESConfig controls the optional online VAT confirmation client.
type VIESConfig struct {
	BaseURL string        `default:"" usage:"Base URL of a VIES-compatible confirmation service; empty disables online confirmation" flag:"vies-base-url"`
	Timeout time.Duration `default:"5s" usage:"Per-request timeout for online confirmation" flag:"vies-timeout"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// CreditMinimum returns the parsed credit minimum order amount.
func (c *Config) CreditMinimum() decimal.Decimal {
	return c.creditMinimumOrder
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "SETTLE",
		Files:     []string{"config.yaml", "/etc/settlement/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set SETTLE_DATABASE_URL or DATABASE_URL")
	}

	minimum, err := decimal.NewFromString(cfg.CreditMinimumOrder)
	if err != nil {
		return nil, errors.Wrap(err, "parse credit minimum order")
	}
	if minimum.IsNegative() {
		return nil, errors.New("credit minimum order must not be negative")
	}
	cfg.creditMinimumOrder = minimum

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's SETTLE_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
