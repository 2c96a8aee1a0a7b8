// Package config defines the top-level configuration for edgescout and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by EDGESCOUT_* environment variables.
type Config struct {
	Anthropic  AnthropicConfig  `toml:"anthropic"`
	Perplexity PerplexityConfig `toml:"perplexity"`
	Polymarket PolymarketConfig `toml:"polymarket"`
	Pipeline   PipelineConfig   `toml:"pipeline"`
	Postgres   PostgresConfig   `toml:"postgres"`
	Redis      RedisConfig      `toml:"redis"`
	S3         S3Config         `toml:"s3"`
	Notify     NotifyConfig     `toml:"notify"`
	Report     ReportConfig     `toml:"report"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// AnthropicConfig holds the judgment model settings.
type AnthropicConfig struct {
	ApiKey            string   `toml:"api_key"`
	BaseURL           string   `toml:"base_url"`
	Model             string   `toml:"model"`
	MaxTokens         int      `toml:"max_tokens"`
	Temperature       float64  `toml:"temperature"`
	Timeout           duration `toml:"timeout"`
	RequestsPerMinute int      `toml:"requests_per_minute"`
}

// PerplexityConfig holds the research model settings.
type PerplexityConfig struct {
	ApiKey            string   `toml:"api_key"`
	BaseURL           string   `toml:"base_url"`
	Model             string   `toml:"model"`
	MaxTokens         int      `toml:"max_tokens"`
	Temperature       float64  `toml:"temperature"`
	Timeout           duration `toml:"timeout"`
	RequestsPerMinute int      `toml:"requests_per_minute"`
}

// PolymarketConfig holds the Gamma API endpoint and HTTP parameters.
type PolymarketConfig struct {
	GammaHost  string   `toml:"gamma_host"`
	ApiTimeout duration `toml:"api_timeout"`
}

// PipelineConfig holds scan caps, hard-filter criteria, and scheduling
// parameters for the opportunity pipeline.
type PipelineConfig struct {
	MaxMarketsToScan     int      `toml:"max_markets_to_scan"`
	MaxMarketsToResearch int      `toml:"max_markets_to_research"`
	MaxMarketsToJudge    int      `toml:"max_markets_to_judge"`
	MinLiquidityUSD      float64  `toml:"min_liquidity_usd"`
	MinVolume24hUSD      float64  `toml:"min_volume_24h_usd"`
	MinDaysToResolution  int      `toml:"min_days_to_resolution"`
	MaxDaysToResolution  int      `toml:"max_days_to_resolution"`
	MinEdge              float64  `toml:"min_edge"`
	ScanInterval         duration `toml:"scan_interval"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for run archival.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// ReportConfig holds report rendering parameters.
type ReportConfig struct {
	MaxOpportunities int  `toml:"max_opportunities"`
	Console          bool `toml:"console"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "6h", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "6h" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Anthropic: AnthropicConfig{
			BaseURL:           "https://api.anthropic.com",
			Model:             "claude-sonnet-4-20250514",
			MaxTokens:         4096,
			Temperature:       0.3,
			Timeout:           duration{30 * time.Second},
			RequestsPerMinute: 20,
		},
		Perplexity: PerplexityConfig{
			BaseURL:           "https://api.perplexity.ai",
			Model:             "sonar-pro",
			MaxTokens:         4096,
			Temperature:       0.2,
			Timeout:           duration{60 * time.Second},
			RequestsPerMinute: 20,
		},
		Polymarket: PolymarketConfig{
			GammaHost:  "https://gamma-api.polymarket.com",
			ApiTimeout: duration{30 * time.Second},
		},
		Pipeline: PipelineConfig{
			MaxMarketsToScan:     100,
			MaxMarketsToResearch: 10,
			MaxMarketsToJudge:    5,
			MinLiquidityUSD:      1000,
			MinVolume24hUSD:      500,
			MinDaysToResolution:  1,
			MaxDaysToResolution:  90,
			MinEdge:              0.05,
			ScanInterval:         duration{6 * time.Hour},
		},
		Postgres: PostgresConfig{
			DSN:           "",
			Host:          "localhost",
			Port:          5432,
			Database:      "postgres",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "edgescout-runs",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Notify: NotifyConfig{
			Events: []string{"opportunities", "error"},
		},
		Report: ReportConfig{
			MaxOpportunities: 10,
			Console:          true,
		},
		Mode:     "once",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"once":      true,
	"scheduled": true,
	"status":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: once, scheduled, status)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Providers: both keys are required for everything except status mode.
	if c.Mode != "status" {
		if c.Anthropic.ApiKey == "" {
			errs = append(errs, "anthropic: api_key is required for mode "+c.Mode)
		}
		if c.Perplexity.ApiKey == "" {
			errs = append(errs, "perplexity: api_key is required for mode "+c.Mode)
		}
	}
	if c.Anthropic.Model == "" {
		errs = append(errs, "anthropic: model must not be empty")
	}
	if c.Anthropic.MaxTokens < 1 {
		errs = append(errs, "anthropic: max_tokens must be >= 1")
	}
	if c.Perplexity.Model == "" {
		errs = append(errs, "perplexity: model must not be empty")
	}
	if c.Perplexity.MaxTokens < 1 {
		errs = append(errs, "perplexity: max_tokens must be >= 1")
	}

	// Polymarket endpoint
	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}

	// Pipeline
	if c.Pipeline.MaxMarketsToScan < 1 {
		errs = append(errs, "pipeline: max_markets_to_scan must be >= 1")
	}
	if c.Pipeline.MaxMarketsToResearch < 1 {
		errs = append(errs, "pipeline: max_markets_to_research must be >= 1")
	}
	if c.Pipeline.MaxMarketsToJudge < 1 {
		errs = append(errs, "pipeline: max_markets_to_judge must be >= 1")
	}
	if c.Pipeline.MinLiquidityUSD < 0 {
		errs = append(errs, "pipeline: min_liquidity_usd must be >= 0")
	}
	if c.Pipeline.MinVolume24hUSD < 0 {
		errs = append(errs, "pipeline: min_volume_24h_usd must be >= 0")
	}
	if c.Pipeline.MinDaysToResolution < 0 {
		errs = append(errs, "pipeline: min_days_to_resolution must be >= 0")
	}
	if c.Pipeline.MaxDaysToResolution > 0 && c.Pipeline.MaxDaysToResolution < c.Pipeline.MinDaysToResolution {
		errs = append(errs, "pipeline: max_days_to_resolution must not be less than min_days_to_resolution")
	}
	if c.Pipeline.MinEdge <= 0 || c.Pipeline.MinEdge >= 1 {
		errs = append(errs, fmt.Sprintf("pipeline: min_edge must be in (0, 1), got %g", c.Pipeline.MinEdge))
	}
	if c.Mode == "scheduled" && c.Pipeline.ScanInterval.Duration < time.Minute {
		errs = append(errs, "pipeline: scan_interval must be at least 1m for scheduled mode")
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3: only checked when archival is enabled.
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
	}

	// Notify: token and chat ID must be set together.
	tt := c.Notify.TelegramToken != ""
	tc := c.Notify.TelegramChatID != ""
	if tt != tc {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	// Report
	if c.Report.MaxOpportunities < 1 {
		errs = append(errs, "report: max_opportunities must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
