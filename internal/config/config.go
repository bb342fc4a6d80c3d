// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aristath/fundnav/internal/utils"
	"github.com/joho/godotenv"
)

// HTTPWriteTimeout is the server's response write deadline. A batch must finish well inside it.
const HTTPWriteTimeout = 30 * time.Second

// Config holds application configuration
type Config struct {
	DataDir  string // Directory for client_data.db (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	GeminiAPIKey string
	GeminiModel  string

	ProxyTablePath string // Optional YAML override for the built-in proxy table

	HoldingsDamping     float64
	HoldingsMinCoverage float64
	OfficialEpsilon     float64

	BatchConcurrency int
	BatchTimeout     time.Duration // Deadline for a whole batch; late funds degrade to STALE
	QuoteChunkSize   int

	OfficialTimeout time.Duration
	HistoryTimeout  time.Duration
	HoldingsTimeout time.Duration
	QuoteTimeout    time.Duration

	UpstreamRPS    float64
	MarketHolidays []string // YYYY-MM-DD, exchange-local
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:             absDataDir,
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		Port:                getEnvAsInt("PORT", 7860),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		ProxyTablePath:      getEnv("PROXY_TABLE_PATH", ""),
		HoldingsDamping:     getEnvAsFloat("HOLDINGS_DAMPING", 0.95),
		HoldingsMinCoverage: getEnvAsFloat("HOLDINGS_MIN_COVERAGE", 20),
		OfficialEpsilon:     getEnvAsFloat("OFFICIAL_EPSILON", 0.001),
		BatchConcurrency:    getEnvAsInt("BATCH_CONCURRENCY", 8),
		BatchTimeout:        getEnvAsDuration("BATCH_TIMEOUT", 20*time.Second),
		QuoteChunkSize:      getEnvAsInt("QUOTE_CHUNK_SIZE", 40),
		OfficialTimeout:     getEnvAsDuration("OFFICIAL_TIMEOUT", 2*time.Second),
		HistoryTimeout:      getEnvAsDuration("HISTORY_TIMEOUT", 4*time.Second),
		HoldingsTimeout:     getEnvAsDuration("HOLDINGS_TIMEOUT", 4*time.Second),
		QuoteTimeout:        getEnvAsDuration("QUOTE_TIMEOUT", 3*time.Second),
		UpstreamRPS:         getEnvAsFloat("UPSTREAM_RPS", 20),
		MarketHolidays:      utils.ParseCSV(os.Getenv("MARKET_HOLIDAYS")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that tunables are within usable ranges
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.HoldingsDamping <= 0 || c.HoldingsDamping > 1 {
		return fmt.Errorf("HOLDINGS_DAMPING must be in (0, 1], got %v", c.HoldingsDamping)
	}
	if c.HoldingsMinCoverage < 0 || c.HoldingsMinCoverage > 100 {
		return fmt.Errorf("HOLDINGS_MIN_COVERAGE must be in [0, 100], got %v", c.HoldingsMinCoverage)
	}
	if c.OfficialEpsilon < 0 {
		return fmt.Errorf("OFFICIAL_EPSILON must not be negative, got %v", c.OfficialEpsilon)
	}
	if c.BatchConcurrency < 1 {
		return fmt.Errorf("BATCH_CONCURRENCY must be at least 1, got %d", c.BatchConcurrency)
	}
	if c.QuoteChunkSize < 1 {
		return fmt.Errorf("QUOTE_CHUNK_SIZE must be at least 1, got %d", c.QuoteChunkSize)
	}
	for name, d := range map[string]time.Duration{
		"OFFICIAL_TIMEOUT": c.OfficialTimeout,
		"HISTORY_TIMEOUT":  c.HistoryTimeout,
		"HOLDINGS_TIMEOUT": c.HoldingsTimeout,
		"QUOTE_TIMEOUT":    c.QuoteTimeout,
		"BATCH_TIMEOUT":    c.BatchTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if c.BatchTimeout >= HTTPWriteTimeout {
		return fmt.Errorf("BATCH_TIMEOUT must be below the %s write timeout, got %s", HTTPWriteTimeout, c.BatchTimeout)
	}
	if c.UpstreamRPS <= 0 {
		return fmt.Errorf("UPSTREAM_RPS must be positive, got %v", c.UpstreamRPS)
	}
	for _, day := range c.MarketHolidays {
		if _, err := time.Parse("2006-01-02", day); err != nil {
			return fmt.Errorf("invalid MARKET_HOLIDAYS entry %q: %w", day, err)
		}
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("2s") or a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultValue
}
