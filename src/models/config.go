package models

// MConfig Structure
type MConfig struct {
	Name     string          `yaml:"name"`
	Host     string          `yaml:"host"`
	Port     int             `yaml:"port"`
	LogLevel string          `yaml:"log_level"`
	Venue    MVenueConfig    `yaml:"venue"`
	Fallback MFallbackConfig `yaml:"fallback"`
	NATS     MNATSConfig     `yaml:"nats"`
	Storage  MStorageConfig  `yaml:"storage"`
	Network  MNetworkConfig  `yaml:"network"`
}

// MVenueConfig configures the primary streaming trading-terminal venue.
// Token and AccountID are both required for the live feed; when either is
// missing the feed stays disconnected and quotes come from the REST
// fallback sources only.
type MVenueConfig struct {
	APIURL                string `yaml:"api_url"`
	StreamURL             string `yaml:"stream_url"`
	Token                 string `yaml:"token"`
	AccountID             string `yaml:"account_id"`
	RetryBackoffSeconds   int    `yaml:"retry_backoff_seconds"`
	MaxRetries            int    `yaml:"max_retries"` // 0 = retry forever
	SubscribeBatchSize    int    `yaml:"subscribe_batch_size"`
	SubscribeBatchDelayMs int    `yaml:"subscribe_batch_delay_ms"`
	StatusLogDelaySeconds int    `yaml:"status_log_delay_seconds"`
	DeployTimeoutSeconds  int    `yaml:"deploy_timeout_seconds"`
}

// MFallbackConfig configures the two REST fallback sources and the
// synthetic spreads applied to rates-derived quotes.
type MFallbackConfig struct {
	CryptoEndpoint string `yaml:"crypto_endpoint"`
	CryptoTTLMs    int    `yaml:"crypto_ttl_ms"`
	RatesEndpoint  string `yaml:"rates_endpoint"`
	RatesTTLMs     int    `yaml:"rates_ttl_ms"`

	// Synthetic spreads: absolute for forex pairs, fraction of mid for metals.
	MajorSpread     float64 `yaml:"major_spread"`
	JPYSpread       float64 `yaml:"jpy_spread"`
	GoldSpreadPct   float64 `yaml:"gold_spread_pct"`
	SilverSpreadPct float64 `yaml:"silver_spread_pct"`
	PGMSpreadPct    float64 `yaml:"pgm_spread_pct"`
}

type MNATSConfig struct {
	Enabled       bool     `yaml:"enabled"`
	Servers       []string `yaml:"servers"`
	SubjectPrefix string   `yaml:"subject_prefix"`
}

type MStorageConfig struct {
	Enabled            bool   `yaml:"enabled"`
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	Enabled            bool     `yaml:"enabled"`
	Proxies            []string `yaml:"proxies"`
	RequestTimeout     int      `yaml:"timeout"`
	MaxRetries         int      `yaml:"retries"`
	ConcurrentRequests int      `yaml:"concurrent_requests"`
	UserAgent          string   `yaml:"user_agent"`
}
