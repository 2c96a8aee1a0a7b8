package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies EDGESCOUT_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known EDGESCOUT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file. Generic compatibility aliases are applied before their
// EDGESCOUT_* counterparts, so the project-specific variable always wins.
func applyEnvOverrides(cfg *Config) {
	// ── Anthropic ──
	setStr(&cfg.Anthropic.ApiKey, "ANTHROPIC_API_KEY") // compatibility alias
	setStr(&cfg.Anthropic.ApiKey, "EDGESCOUT_ANTHROPIC_API_KEY")
	setStr(&cfg.Anthropic.BaseURL, "EDGESCOUT_ANTHROPIC_BASE_URL")
	setStr(&cfg.Anthropic.Model, "EDGESCOUT_ANTHROPIC_MODEL")
	setInt(&cfg.Anthropic.MaxTokens, "EDGESCOUT_ANTHROPIC_MAX_TOKENS")
	setFloat64(&cfg.Anthropic.Temperature, "EDGESCOUT_ANTHROPIC_TEMPERATURE")
	setDuration(&cfg.Anthropic.Timeout, "EDGESCOUT_ANTHROPIC_TIMEOUT")
	setInt(&cfg.Anthropic.RequestsPerMinute, "EDGESCOUT_ANTHROPIC_REQUESTS_PER_MINUTE")

	// ── Perplexity ──
	setStr(&cfg.Perplexity.ApiKey, "PERPLEXITY_API_KEY") // compatibility alias
	setStr(&cfg.Perplexity.ApiKey, "EDGESCOUT_PERPLEXITY_API_KEY")
	setStr(&cfg.Perplexity.BaseURL, "EDGESCOUT_PERPLEXITY_BASE_URL")
	setStr(&cfg.Perplexity.Model, "EDGESCOUT_PERPLEXITY_MODEL")
	setInt(&cfg.Perplexity.MaxTokens, "EDGESCOUT_PERPLEXITY_MAX_TOKENS")
	setFloat64(&cfg.Perplexity.Temperature, "EDGESCOUT_PERPLEXITY_TEMPERATURE")
	setDuration(&cfg.Perplexity.Timeout, "EDGESCOUT_PERPLEXITY_TIMEOUT")
	setInt(&cfg.Perplexity.RequestsPerMinute, "EDGESCOUT_PERPLEXITY_REQUESTS_PER_MINUTE")

	// ── Polymarket ──
	setStr(&cfg.Polymarket.GammaHost, "EDGESCOUT_POLYMARKET_GAMMA_HOST")
	setDuration(&cfg.Polymarket.ApiTimeout, "EDGESCOUT_POLYMARKET_API_TIMEOUT")

	// ── Pipeline ──
	setInt(&cfg.Pipeline.MaxMarketsToScan, "EDGESCOUT_PIPELINE_MAX_MARKETS_TO_SCAN")
	setInt(&cfg.Pipeline.MaxMarketsToResearch, "EDGESCOUT_PIPELINE_MAX_MARKETS_TO_RESEARCH")
	setInt(&cfg.Pipeline.MaxMarketsToJudge, "EDGESCOUT_PIPELINE_MAX_MARKETS_TO_JUDGE")
	setFloat64(&cfg.Pipeline.MinLiquidityUSD, "EDGESCOUT_PIPELINE_MIN_LIQUIDITY_USD")
	setFloat64(&cfg.Pipeline.MinVolume24hUSD, "EDGESCOUT_PIPELINE_MIN_VOLUME_24H_USD")
	setInt(&cfg.Pipeline.MinDaysToResolution, "EDGESCOUT_PIPELINE_MIN_DAYS_TO_RESOLUTION")
	setInt(&cfg.Pipeline.MaxDaysToResolution, "EDGESCOUT_PIPELINE_MAX_DAYS_TO_RESOLUTION")
	setFloat64(&cfg.Pipeline.MinEdge, "EDGESCOUT_PIPELINE_MIN_EDGE")
	setDuration(&cfg.Pipeline.ScanInterval, "EDGESCOUT_PIPELINE_SCAN_INTERVAL")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "EDGESCOUT_DATABASE_URL") // compatibility alias
	setStr(&cfg.Postgres.DSN, "EDGESCOUT_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "EDGESCOUT_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "EDGESCOUT_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "EDGESCOUT_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "EDGESCOUT_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "EDGESCOUT_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "EDGESCOUT_POSTGRES_SSL_MODE") // compatibility alias
	setStr(&cfg.Postgres.SSLMode, "EDGESCOUT_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "EDGESCOUT_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "EDGESCOUT_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "EDGESCOUT_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "EDGESCOUT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "EDGESCOUT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "EDGESCOUT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "EDGESCOUT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "EDGESCOUT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "EDGESCOUT_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "EDGESCOUT_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "EDGESCOUT_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "EDGESCOUT_S3_REGION")
	setStr(&cfg.S3.Bucket, "EDGESCOUT_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "EDGESCOUT_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "EDGESCOUT_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "EDGESCOUT_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "EDGESCOUT_S3_FORCE_PATH_STYLE")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "EDGESCOUT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "EDGESCOUT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "EDGESCOUT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "EDGESCOUT_NOTIFY_EVENTS")

	// ── Report ──
	setInt(&cfg.Report.MaxOpportunities, "EDGESCOUT_REPORT_MAX_OPPORTUNITIES")
	setBool(&cfg.Report.Console, "EDGESCOUT_REPORT_CONSOLE")

	// ── Top-level ──
	setStr(&cfg.Mode, "EDGESCOUT_MODE")
	setStr(&cfg.LogLevel, "EDGESCOUT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
