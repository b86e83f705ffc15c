package config

import (
	"os"
	"path/filepath"
	"testing"
)

// -----------------------------------------------------------------------------

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// -----------------------------------------------------------------------------

func TestMinimalConfigGetsDefaults(t *testing.T) {
	path := writeConfig(t, `
name: test
host: 127.0.0.1
port: 8765
`)

	cfg, err := NewConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Fallback.CryptoEndpoint != DefaultCryptoEndpoint {
		t.Fatalf("crypto endpoint default not applied: %q", cfg.Fallback.CryptoEndpoint)
	}
	if cfg.Fallback.CryptoTTLMs != DefaultCryptoTTLMs || cfg.Fallback.RatesTTLMs != DefaultRatesTTLMs {
		t.Fatalf("TTL defaults not applied: %d/%d", cfg.Fallback.CryptoTTLMs, cfg.Fallback.RatesTTLMs)
	}
	if cfg.Venue.RetryBackoffSeconds != DefaultRetryBackoffSeconds {
		t.Fatalf("retry backoff default not applied: %d", cfg.Venue.RetryBackoffSeconds)
	}
	if cfg.Venue.SubscribeBatchSize != DefaultSubscribeBatchSize {
		t.Fatalf("batch size default not applied: %d", cfg.Venue.SubscribeBatchSize)
	}
	if cfg.Fallback.MajorSpread != 0.0001 || cfg.Fallback.JPYSpread != 0.01 {
		t.Fatalf("spread defaults not applied: %v/%v", cfg.Fallback.MajorSpread, cfg.Fallback.JPYSpread)
	}
	if cfg.NATS.SubjectPrefix != "prices" {
		t.Fatalf("NATS prefix default not applied: %q", cfg.NATS.SubjectPrefix)
	}
}

// -----------------------------------------------------------------------------

func TestMissingVenueCredentialsIsNotAnError(t *testing.T) {
	path := writeConfig(t, `
name: test
host: 127.0.0.1
port: 8765
venue:
  api_url: https://example.test
  stream_url: wss://example.test/stream
`)

	if _, err := NewConfig(path); err != nil {
		t.Fatalf("config without venue credentials must load: %v", err)
	}
}

// -----------------------------------------------------------------------------

func TestValidationFailures(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing name", "host: 127.0.0.1\nport: 8765\n"},
		{"privileged port", "name: test\nhost: 127.0.0.1\nport: 80\n"},
		{"negative ttl", "name: test\nhost: 127.0.0.1\nport: 8765\nfallback:\n  crypto_ttl_ms: -1\n"},
		{"negative retries", "name: test\nhost: 127.0.0.1\nport: 8765\nvenue:\n  max_retries: -1\n"},
		{"sqlite without path", "name: test\nhost: 127.0.0.1\nport: 8765\nstorage:\n  enabled: true\n  db_type: sqlite\n"},
		{"nats without servers", "name: test\nhost: 127.0.0.1\nport: 8765\nnats:\n  enabled: true\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.yaml)
			if _, err := NewConfig(path); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}
