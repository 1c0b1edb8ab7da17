// Package common provides shared utilities for Verdict
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Verdict
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Clients     ClientsConfig   `toml:"clients"`
	Pipeline    PipelineConfig  `toml:"pipeline"`
	Benchmark   BenchmarkConfig `toml:"benchmark"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds storage configuration for the 2 storage areas.
type StorageConfig struct {
	Records AreaConfig `toml:"records"` // fused records (BadgerHold)
	Reports AreaConfig `toml:"reports"` // analysis reports (BadgerHold)
}

// AreaConfig holds path configuration for a storage area.
type AreaConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD        ProviderConfig `toml:"eodhd"`
	FMP          ProviderConfig `toml:"fmp"`
	AlphaVantage ProviderConfig `toml:"alphavantage"`
}

// ProviderConfig holds one market data provider's API configuration
type ProviderConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *ProviderConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// PipelineConfig holds tunables for the analysis pipeline.
type PipelineConfig struct {
	ScanConcurrency int     `toml:"scan_concurrency"` // parallel symbols during batch analysis
	DefaultCV       float64 `toml:"default_cv"`       // coefficient of variation fallback for synthetic curves
	FairBandPct     float64 `toml:"fair_band_pct"`    // |deviation| below this is "fair" (fraction, e.g. 0.10)
	MinAnnualYears  int     `toml:"min_annual_years"` // history depth for growth metrics
}

// BenchmarkConfig overrides built-in industry baselines, keyed by sector or
// industry name.
type BenchmarkConfig struct {
	Overrides map[string]IndustryStatsConfig `toml:"overrides"`
}

// IndustryStatsConfig is one configured industry baseline.
type IndustryStatsConfig struct {
	Sector string             `toml:"sector"`
	Means  map[string]float64 `toml:"means"` // metric -> industry mean
	CV     float64            `toml:"cv"`
	Beta   float64            `toml:"beta"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
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
			Records: AreaConfig{Path: "data/records"},
			Reports: AreaConfig{Path: "data/reports"},
		},
		Clients: ClientsConfig{
			EODHD: ProviderConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
			FMP: ProviderConfig{
				BaseURL:   "https://financialmodelingprep.com/api/v3",
				RateLimit: 5,
				Timeout:   "30s",
			},
			AlphaVantage: ProviderConfig{
				BaseURL:   "https://www.alphavantage.co",
				RateLimit: 1,
				Timeout:   "30s",
			},
		},
		Pipeline: PipelineConfig{
			ScanConcurrency: 4,
			DefaultCV:       0.5,
			FairBandPct:     0.10,
			MinAnnualYears:  4,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Outputs:    []string{"console", "file"},
			FilePath:   "./logs/verdict.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
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

	if err := validatePipeline(&config.Pipeline); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("VERDICT_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("VERDICT_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("VERDICT_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("VERDICT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("VERDICT_DATA_PATH"); path != "" {
		config.Storage.Records.Path = path + "/records"
		config.Storage.Reports.Path = path + "/reports"
	}

	if key := os.Getenv("EODHD_API_KEY"); key != "" {
		config.Clients.EODHD.APIKey = key
	}
	if key := os.Getenv("FMP_API_KEY"); key != "" {
		config.Clients.FMP.APIKey = key
	}
	if key := os.Getenv("ALPHAVANTAGE_API_KEY"); key != "" {
		config.Clients.AlphaVantage.APIKey = key
	}

	if n := os.Getenv("VERDICT_SCAN_CONCURRENCY"); n != "" {
		if v, err := strconv.Atoi(n); err == nil && v > 0 {
			config.Pipeline.ScanConcurrency = v
		}
	}
}

// validatePipeline clamps pipeline tunables to usable ranges.
func validatePipeline(p *PipelineConfig) error {
	if p.ScanConcurrency < 1 {
		p.ScanConcurrency = 1
	}
	if p.DefaultCV <= 0 {
		p.DefaultCV = 0.5
	}
	if p.FairBandPct < 0 || p.FairBandPct >= 1 {
		return fmt.Errorf("pipeline fair_band_pct must be in [0, 1): got %v", p.FairBandPct)
	}
	if p.MinAnnualYears < 2 {
		p.MinAnnualYears = 2
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveAPIKey returns the first non-empty value among the named environment
// variables and the config fallback.
func ResolveAPIKey(fallback string, envNames ...string) (string, error) {
	for _, name := range envNames {
		if v := os.Getenv(name); v != "" {
			return v, nil
		}
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", fmt.Errorf("API key not found in environment (%s) or config", strings.Join(envNames, ", "))
}
