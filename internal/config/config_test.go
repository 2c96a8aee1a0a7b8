package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.Anthropic.ApiKey = "sk-ant-test"
	cfg.Perplexity.ApiKey = "pplx-test"
	return cfg
}

func writeTOML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, 100, cfg.Pipeline.MaxMarketsToScan)
	assert.Equal(t, 10, cfg.Pipeline.MaxMarketsToResearch)
	assert.Equal(t, 5, cfg.Pipeline.MaxMarketsToJudge)
	assert.Equal(t, 1000.0, cfg.Pipeline.MinLiquidityUSD)
	assert.Equal(t, 500.0, cfg.Pipeline.MinVolume24hUSD)
	assert.Equal(t, 0.05, cfg.Pipeline.MinEdge)
	assert.Equal(t, 6*time.Hour, cfg.Pipeline.ScanInterval.Duration)
	assert.Equal(t, "https://gamma-api.polymarket.com", cfg.Polymarket.GammaHost)
	assert.Equal(t, 4096, cfg.Anthropic.MaxTokens)
	assert.Equal(t, 0.2, cfg.Perplexity.Temperature)
	assert.Equal(t, "once", cfg.Mode)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeTOML(t, `
mode = "scheduled"
log_level = "debug"

[anthropic]
api_key = "sk-ant-file"
model = "claude-test"

[perplexity]
api_key = "pplx-file"

[pipeline]
max_markets_to_judge = 3
min_edge = 0.08
scan_interval = "2h"

[postgres]
host = "db.internal"
port = 5433
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "scheduled", cfg.Mode)
	assert.Equal(t, "claude-test", cfg.Anthropic.Model)
	assert.Equal(t, 3, cfg.Pipeline.MaxMarketsToJudge)
	assert.Equal(t, 0.08, cfg.Pipeline.MinEdge)
	assert.Equal(t, 2*time.Hour, cfg.Pipeline.ScanInterval.Duration)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, 5433, cfg.Postgres.Port)

	// Untouched fields keep their defaults.
	assert.Equal(t, 100, cfg.Pipeline.MaxMarketsToScan)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	path := writeTOML(t, `
[anthropic]
api_key = "from-file"
`)

	t.Setenv("EDGESCOUT_ANTHROPIC_API_KEY", "from-env")
	t.Setenv("EDGESCOUT_PIPELINE_MAX_MARKETS_TO_SCAN", "25")
	t.Setenv("EDGESCOUT_PIPELINE_MIN_EDGE", "0.1")
	t.Setenv("EDGESCOUT_PIPELINE_SCAN_INTERVAL", "90m")
	t.Setenv("EDGESCOUT_REDIS_TLS_ENABLED", "true")
	t.Setenv("EDGESCOUT_NOTIFY_EVENTS", "opportunities, error")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Anthropic.ApiKey)
	assert.Equal(t, 25, cfg.Pipeline.MaxMarketsToScan)
	assert.Equal(t, 0.1, cfg.Pipeline.MinEdge)
	assert.Equal(t, 90*time.Minute, cfg.Pipeline.ScanInterval.Duration)
	assert.True(t, cfg.Redis.TLSEnabled)
	assert.Equal(t, []string{"opportunities", "error"}, cfg.Notify.Events)
}

func TestEnvOverridesPrefixedBeatsAlias(t *testing.T) {
	path := writeTOML(t, "")

	t.Setenv("ANTHROPIC_API_KEY", "ambient")
	t.Setenv("EDGESCOUT_ANTHROPIC_API_KEY", "project")
	t.Setenv("PERPLEXITY_API_KEY", "ambient")
	t.Setenv("EDGESCOUT_PERPLEXITY_API_KEY", "project")
	t.Setenv("EDGESCOUT_DATABASE_URL", "postgres://alias")
	t.Setenv("EDGESCOUT_POSTGRES_DSN", "postgres://prefixed")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "project", cfg.Anthropic.ApiKey)
	assert.Equal(t, "project", cfg.Perplexity.ApiKey)
	assert.Equal(t, "postgres://prefixed", cfg.Postgres.DSN)
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = "turbo"
	cfg.Anthropic.ApiKey = ""
	cfg.Pipeline.MaxMarketsToJudge = 0
	cfg.Pipeline.MinEdge = 1.5
	cfg.Redis.Addr = ""

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "unknown mode")
	assert.Contains(t, msg, "anthropic: api_key")
	assert.Contains(t, msg, "max_markets_to_judge")
	assert.Contains(t, msg, "min_edge")
	assert.Contains(t, msg, "redis: addr")
}

func TestValidateModeStatusSkipsProviderKeys(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "status"
	require.NoError(t, cfg.Validate())
}

func TestValidateDayWindow(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.MinDaysToResolution = 30
	cfg.Pipeline.MaxDaysToResolution = 7

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_days_to_resolution")
}

func TestValidateScheduledInterval(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = "scheduled"
	cfg.Pipeline.ScanInterval.Duration = 30 * time.Second

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan_interval")
}

func TestValidateTelegramPair(t *testing.T) {
	cfg := validConfig()
	cfg.Notify.TelegramToken = "token-only"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram_token and telegram_chat_id")
}

func TestRedactedConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Postgres.Password = "hunter2"
	cfg.Redis.Password = "redispass"
	cfg.S3.SecretKey = "s3secret"
	cfg.Notify.TelegramToken = "tg-token"
	cfg.Notify.TelegramChatID = "12345"

	red := RedactedConfig(&cfg)

	assert.Equal(t, "***", red.Anthropic.ApiKey)
	assert.Equal(t, "***", red.Perplexity.ApiKey)
	assert.Equal(t, "***", red.Postgres.Password)
	assert.Equal(t, "***", red.Redis.Password)
	assert.Equal(t, "***", red.S3.SecretKey)
	assert.Equal(t, "***", red.Notify.TelegramToken)

	// Non-secret fields pass through unchanged.
	assert.Equal(t, cfg.Postgres.Host, red.Postgres.Host)
	assert.Equal(t, cfg.Notify.TelegramChatID, red.Notify.TelegramChatID)

	// Originals must not be modified.
	assert.Equal(t, "hunter2", cfg.Postgres.Password)
	assert.NotContains(t, strings.Join(red.Notify.Events, ","), "***")
}
