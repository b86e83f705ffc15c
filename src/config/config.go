package config

import (
	"fmt"
	"os"

	"price-aggregator/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// Defaults for every tunable the price subsystem depends on. Endpoints are
// public, key-less APIs; the spread fields feed the synthetic half-spread
// applied to rates-derived quotes.
const (
	DefaultCryptoEndpoint = "https://api.binance.com/api/v3/ticker/bookTicker"
	DefaultRatesEndpoint  = "https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@latest/v1/currencies/usd.json"

	DefaultCryptoTTLMs = 3000
	DefaultRatesTTLMs  = 5000

	DefaultRetryBackoffSeconds   = 30
	DefaultSubscribeBatchSize    = 50
	DefaultSubscribeBatchDelayMs = 500
	DefaultStatusLogDelaySeconds = 10
	DefaultDeployTimeoutSeconds  = 300
)

// -----------------------------------------------------------------------------

// NewConfig creates a new Config instance from a YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.ApplyDefaults()

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// ApplyDefaults fills every zero-valued tunable with its default so a minimal
// YAML file (name/host/port only) yields a fully working service.
func (c *Config) ApplyDefaults() {
	if c.Venue.RetryBackoffSeconds == 0 {
		c.Venue.RetryBackoffSeconds = DefaultRetryBackoffSeconds
	}
	if c.Venue.SubscribeBatchSize == 0 {
		c.Venue.SubscribeBatchSize = DefaultSubscribeBatchSize
	}
	if c.Venue.SubscribeBatchDelayMs == 0 {
		c.Venue.SubscribeBatchDelayMs = DefaultSubscribeBatchDelayMs
	}
	if c.Venue.StatusLogDelaySeconds == 0 {
		c.Venue.StatusLogDelaySeconds = DefaultStatusLogDelaySeconds
	}
	if c.Venue.DeployTimeoutSeconds == 0 {
		c.Venue.DeployTimeoutSeconds = DefaultDeployTimeoutSeconds
	}

	if c.Fallback.CryptoEndpoint == "" {
		c.Fallback.CryptoEndpoint = DefaultCryptoEndpoint
	}
	if c.Fallback.RatesEndpoint == "" {
		c.Fallback.RatesEndpoint = DefaultRatesEndpoint
	}
	if c.Fallback.CryptoTTLMs == 0 {
		c.Fallback.CryptoTTLMs = DefaultCryptoTTLMs
	}
	if c.Fallback.RatesTTLMs == 0 {
		c.Fallback.RatesTTLMs = DefaultRatesTTLMs
	}
	if c.Fallback.MajorSpread == 0 {
		c.Fallback.MajorSpread = 0.0001 // 1 pip
	}
	if c.Fallback.JPYSpread == 0 {
		c.Fallback.JPYSpread = 0.01 // 1 pip at JPY scale
	}
	if c.Fallback.GoldSpreadPct == 0 {
		c.Fallback.GoldSpreadPct = 0.0003
	}
	if c.Fallback.SilverSpreadPct == 0 {
		c.Fallback.SilverSpreadPct = 0.0005
	}
	if c.Fallback.PGMSpreadPct == 0 {
		c.Fallback.PGMSpreadPct = 0.001
	}

	if c.NATS.SubjectPrefix == "" {
		c.NATS.SubjectPrefix = "prices"
	}

	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = 10
	}
	if c.Network.ConcurrentRequests == 0 {
		c.Network.ConcurrentRequests = 5
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	// Validate App configuration (Flattened)
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration (Flattened)
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate fallback configuration
	if c.Fallback.CryptoTTLMs < 0 || c.Fallback.RatesTTLMs < 0 {
		return fmt.Errorf("fallback TTLs cannot be negative")
	}
	if c.Fallback.MajorSpread < 0 || c.Fallback.JPYSpread < 0 {
		return fmt.Errorf("spread constants cannot be negative")
	}

	// Validate venue configuration. Missing credentials are NOT an error:
	// the streaming feed stays disconnected and the REST fallbacks carry
	// all quoting. Retry settings still need to be sane.
	if c.Venue.RetryBackoffSeconds <= 0 {
		return fmt.Errorf("venue retry backoff must be greater than 0")
	}
	if c.Venue.MaxRetries < 0 {
		return fmt.Errorf("venue max retries cannot be negative")
	}
	if c.Venue.SubscribeBatchSize <= 0 {
		return fmt.Errorf("venue subscribe batch size must be greater than 0")
	}

	// Validate storage configuration
	if c.Storage.Enabled {
		if c.Storage.DBType == "" {
			return fmt.Errorf("database type cannot be empty when storage is enabled")
		}
		if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
		if c.Storage.DBType == "postgres" && c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	}

	// Validate NATS configuration
	if c.NATS.Enabled && len(c.NATS.Servers) == 0 {
		return fmt.Errorf("NATS servers list cannot be empty when NATS is enabled")
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.Network.ConcurrentRequests <= 0 {
		return fmt.Errorf("concurrent requests must be greater than 0")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
