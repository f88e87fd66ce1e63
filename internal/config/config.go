package config

import (
	"fmt"

	pkgconfig "github.com/annaigorevna5/sensual-beauty/pkg/config"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Key under which the cart is persisted.
	CartStorageKey string `env:"CART_STORAGE_KEY" envDefault:"storefront:cart"`

	// Catalog seed file.
	CatalogPath string `env:"CATALOG_PATH" envDefault:"data/catalog.json"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Tracing
	TracingEnabled  bool    `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint    string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TraceSampleRate float64 `env:"TRACE_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8" envSeparator:","`

	// Browse geometry
	PageSize       int   `env:"PAGE_SIZE" envDefault:"9"`
	PageIncrement  int   `env:"PAGE_INCREMENT" envDefault:"6"`
	MaxPriceFilter int64 `env:"MAX_PRICE_FILTER" envDefault:"50000"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("invalid page size: %d", c.PageSize)
	}
	if c.PageIncrement < 1 {
		return fmt.Errorf("invalid page increment: %d", c.PageIncrement)
	}
	if c.MaxPriceFilter < 1 {
		return fmt.Errorf("invalid max price filter: %d", c.MaxPriceFilter)
	}
	if c.TraceSampleRate < 0 || c.TraceSampleRate > 1 {
		return fmt.Errorf("invalid trace sample rate: %f", c.TraceSampleRate)
	}
	return nil
}
