package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "https://www.dodsbirsttr.mil", cfg.Portal.BaseURL)
	assert.Equal(t, "https://www.defense.gov", cfg.News.BaseURL)
	assert.Equal(t, 100, cfg.Collector.PageSize)
	assert.Equal(t, 10, cfg.Collector.MaxConsecutiveEmptyPages)
	assert.Equal(t, 50, cfg.Collector.QuickEmptyPageThreshold)
	assert.Equal(t, 500, cfg.Collector.MaxPages)
	assert.Equal(t, 1, cfg.Detail.Concurrency)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NotEmpty(t, cfg.HTTP.UserAgent)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("OPPINTEL_COLLECTOR_PAGE_SIZE", "250")
	t.Setenv("OPPINTEL_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.Collector.PageSize)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitLoggerBadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	assert.NoError(t, err)
}
