// Package common provides shared utilities for Folio
package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Folio
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Clients     ClientsConfig   `toml:"clients"`
	Analytics   AnalyticsConfig `toml:"analytics"`
	Logging     LoggingConfig   `toml:"logging"`
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds storage configuration for the two storage areas:
// the embedded portfolio store and the SurrealDB market-data cache.
type StorageConfig struct {
	PortfolioPath string `toml:"portfolio_path"` // BadgerHold directory for snapshots + reports
	Address       string `toml:"address"`        // SurrealDB endpoint for the market cache
	Username      string `toml:"username"`
	Password      string `toml:"password"`
	Namespace     string `toml:"namespace"`
	Database      string `toml:"database"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Plaid  PlaidConfig  `toml:"plaid"`
	EODHD  EODHDConfig  `toml:"eodhd"`
	Gemini GeminiConfig `toml:"gemini"`
}

// PlaidConfig holds account-aggregation feed configuration
type PlaidConfig struct {
	BaseURL   string `toml:"base_url"`
	ClientID  string `toml:"client_id"`
	Secret    string `toml:"secret"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *PlaidConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// EODHDConfig holds market-data provider configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration for optional report summaries
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// AnalyticsConfig holds tunables for the analytics engine.
type AnalyticsConfig struct {
	VaRConfidence   float64 `toml:"var_confidence"`    // parametric VaR confidence level, default 0.95
	MinHistory      int     `toml:"min_history"`       // minimum return samples per symbol, default 30
	LookbackDays    int     `toml:"lookback_days"`     // return-series lookback window, default 252
	BenchmarkSymbol string  `toml:"benchmark_symbol"`  // beta benchmark, default "SPY.US"
	LookupTimeout   string  `toml:"lookup_timeout"`    // per-symbol external lookup timeout, default "10s"
}

// GetLookupTimeout parses and returns the per-symbol lookup timeout.
func (c *AnalyticsConfig) GetLookupTimeout() time.Duration {
	d, err := time.ParseDuration(c.LookupTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			PortfolioPath: "data/portfolio",
			Address:       "ws://localhost:8000",
			Username:      "root",
			Password:      "root",
			Namespace:     "folio",
			Database:      "folio",
		},
		Clients: ClientsConfig{
			Plaid: PlaidConfig{
				BaseURL:   "https://production.plaid.com",
				RateLimit: 5,
				Timeout:   "30s",
			},
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Analytics: AnalyticsConfig{
			VaRConfidence:   0.95,
			MinHistory:      30,
			LookbackDays:    252,
			BenchmarkSymbol: "SPY.US",
			LookupTimeout:   "10s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FOLIO_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FOLIO_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if addr := os.Getenv("FOLIO_STORAGE_ADDRESS"); addr != "" {
		config.Storage.Address = addr
	}

	if path := os.Getenv("FOLIO_PORTFOLIO_PATH"); path != "" {
		config.Storage.PortfolioPath = path
	}

	if key := os.Getenv("FOLIO_EODHD_API_KEY"); key != "" {
		config.Clients.EODHD.APIKey = key
	}

	if id := os.Getenv("FOLIO_PLAID_CLIENT_ID"); id != "" {
		config.Clients.Plaid.ClientID = id
	}

	if secret := os.Getenv("FOLIO_PLAID_SECRET"); secret != "" {
		config.Clients.Plaid.Secret = secret
	}

	if key := os.Getenv("FOLIO_GEMINI_API_KEY"); key != "" {
		config.Clients.Gemini.APIKey = key
	}

	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}
