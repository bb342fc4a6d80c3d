package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7860, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 0.95, cfg.HoldingsDamping)
	assert.Equal(t, 20.0, cfg.HoldingsMinCoverage)
	assert.Equal(t, 0.001, cfg.OfficialEpsilon)
	assert.Equal(t, 8, cfg.BatchConcurrency)
	assert.Equal(t, 20*time.Second, cfg.BatchTimeout)
	assert.Less(t, cfg.BatchTimeout, HTTPWriteTimeout)
	assert.Equal(t, 40, cfg.QuoteChunkSize)
	assert.Equal(t, 2*time.Second, cfg.OfficialTimeout)
	assert.Equal(t, 4*time.Second, cfg.HistoryTimeout)
	assert.Equal(t, 4*time.Second, cfg.HoldingsTimeout)
	assert.Equal(t, 3*time.Second, cfg.QuoteTimeout)
	assert.Empty(t, cfg.MarketHolidays)
	assert.True(t, len(cfg.DataDir) > 0 && cfg.DataDir[0] == '/')
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("HOLDINGS_DAMPING", "0.9")
	t.Setenv("OFFICIAL_TIMEOUT", "1500ms")
	t.Setenv("QUOTE_TIMEOUT", "5")
	t.Setenv("MARKET_HOLIDAYS", "2024-02-12, 2024-02-13,")
	t.Setenv("DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 0.9, cfg.HoldingsDamping)
	assert.Equal(t, 1500*time.Millisecond, cfg.OfficialTimeout)
	assert.Equal(t, 5*time.Second, cfg.QuoteTimeout)
	assert.Equal(t, []string{"2024-02-12", "2024-02-13"}, cfg.MarketHolidays)
	assert.True(t, cfg.DevMode)
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("BATCH_CONCURRENCY", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.BatchConcurrency)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:                7860,
			HoldingsDamping:     0.95,
			HoldingsMinCoverage: 20,
			BatchConcurrency:    8,
			QuoteChunkSize:      40,
			OfficialTimeout:     time.Second,
			HistoryTimeout:      time.Second,
			HoldingsTimeout:     time.Second,
			QuoteTimeout:        time.Second,
			BatchTimeout:        20 * time.Second,
			UpstreamRPS:         20,
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Port = 0 }},
		{"damping zero", func(c *Config) { c.HoldingsDamping = 0 }},
		{"damping above one", func(c *Config) { c.HoldingsDamping = 1.2 }},
		{"coverage", func(c *Config) { c.HoldingsMinCoverage = 120 }},
		{"epsilon", func(c *Config) { c.OfficialEpsilon = -1 }},
		{"concurrency", func(c *Config) { c.BatchConcurrency = 0 }},
		{"chunk", func(c *Config) { c.QuoteChunkSize = 0 }},
		{"timeout", func(c *Config) { c.HistoryTimeout = 0 }},
		{"batch timeout unset", func(c *Config) { c.BatchTimeout = 0 }},
		{"batch timeout at write deadline", func(c *Config) { c.BatchTimeout = HTTPWriteTimeout }},
		{"rps", func(c *Config) { c.UpstreamRPS = 0 }},
		{"holiday", func(c *Config) { c.MarketHolidays = []string{"12/02/2024"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
