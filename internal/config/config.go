// Package config holds the settings shared by the recon commands.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"bounty-recon/internal/defillama"
)

// Environment variables read by ApplyEnv.
const (
	EnvDefiLlamaBaseURL = "DEFILLAMA_BASE_URL"
	EnvDefiLlamaTimeout = "DEFILLAMA_TIMEOUT"
	EnvPostgresDSN      = "POSTGRES_DSN"
	EnvClickhouseDSN    = "CLICKHOUSE_DSN"
	EnvPushgatewayURL   = "PUSHGATEWAY_URL"
	EnvVerbose          = "RECON_VERBOSE"
)

// DefaultMetricsJob is the Pushgateway job name for refresh runs.
const DefaultMetricsJob = "refresh_tvl"

// Config holds all recon tool configuration.
type Config struct {
	DefiLlama DefiLlamaConfig `yaml:"defillama"`
	Storage   StorageConfig   `yaml:"storage"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Verbose   bool            `yaml:"verbose"`
}

// DefiLlamaConfig configures the TVL fetcher.
type DefiLlamaConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"` // Go duration or whole seconds
}

// StorageConfig configures optional run history. Empty DSNs disable a store.
type StorageConfig struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
}

// MetricsConfig configures the Pushgateway. An empty URL disables pushing.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
	Job            string `yaml:"job"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		DefiLlama: DefiLlamaConfig{
			BaseURL: defillama.DefaultBaseURL,
			Timeout: defillama.DefaultTimeout.String(),
		},
		Metrics: MetricsConfig{
			Job: DefaultMetricsJob,
		},
	}
}

// Load reads an optional YAML file over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides fields from set, non-empty environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDefiLlamaBaseURL); v != "" {
		c.DefiLlama.BaseURL = v
	}
	if v := os.Getenv(EnvDefiLlamaTimeout); v != "" {
		c.DefiLlama.Timeout = v
	}
	if v := os.Getenv(EnvPostgresDSN); v != "" {
		c.Storage.PostgresDSN = v
	}
	if v := os.Getenv(EnvClickhouseDSN); v != "" {
		c.Storage.ClickhouseDSN = v
	}
	if v := os.Getenv(EnvPushgatewayURL); v != "" {
		c.Metrics.PushgatewayURL = v
	}
	if v := os.Getenv(EnvVerbose); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Verbose = b
		}
	}
}

// FetchTimeout returns the DefiLlama timeout. Invalid or non-positive
// values fall back to the client default.
func (c *Config) FetchTimeout() time.Duration {
	return ParseTimeout(c.DefiLlama.Timeout, defillama.DefaultTimeout)
}

// ParseTimeout accepts "45s"-style durations or whole seconds ("45").
func ParseTimeout(s string, fallback time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}

// LoadEnvFile loads KEY=VALUE pairs from path into the environment.
// Existing variables win. A missing file is not an error.
func LoadEnvFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = unquote(strings.TrimSpace(value))

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}
