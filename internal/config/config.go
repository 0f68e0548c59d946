package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Common
	Environment string
	LogLevel    string

	// Database
	Database DatabaseConfig

	// Market data providers
	MarketData MarketDataConfig

	// Components
	Engine   EngineConfig
	Telegram TelegramConfig
	API      APIConfig
}

// DatabaseConfig holds SQLite configuration
type DatabaseConfig struct {
	Path         string
	BusyTimeout  time.Duration
	MaxOpenConns int
}

// MarketDataConfig holds market data provider configuration
type MarketDataConfig struct {
	BaseURL        string
	APIKey         string
	RatesBaseURL   string
	RatesAPIKey    string
	RequestTimeout time.Duration
	PriceCacheTTL  time.Duration
	CacheMaxSize   int
}

// EngineConfig holds evaluation engine configuration
type EngineConfig struct {
	ScanInterval   time.Duration
	InitialDelay   time.Duration
	CandleHistory  int
	VolumeLookback int
}

// TelegramConfig holds bot delivery configuration
type TelegramConfig struct {
	BotToken        string
	SignalChannelID string
	AdminID         int64
	SendTimeout     time.Duration
}

// APIConfig holds REST API configuration
type APIConfig struct {
	Port int
}

// Load loads configuration from environment variables
// It automatically loads .env file if it exists in the current directory or parent directories
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Path:         getEnv("DB_PATH", "pricepulse.db"),
			BusyTimeout:  getEnvAsDuration("DB_BUSY_TIMEOUT", 5*time.Second),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 1),
		},
		MarketData: MarketDataConfig{
			BaseURL:        getEnv("MARKET_DATA_BASE_URL", "https://min-api.cryptocompare.com"),
			APIKey:         getEnv("MARKET_DATA_API_KEY", ""),
			RatesBaseURL:   getEnv("RATES_BASE_URL", "https://v6.exchangerate-api.com"),
			RatesAPIKey:    getEnv("RATES_API_KEY", ""),
			RequestTimeout: getEnvAsDuration("MARKET_DATA_TIMEOUT", 10*time.Second),
			PriceCacheTTL:  getEnvAsDuration("PRICE_CACHE_TTL", 60*time.Second),
			CacheMaxSize:   getEnvAsInt("PRICE_CACHE_MAX_SIZE", 1000),
		},
		Engine: EngineConfig{
			ScanInterval:   getEnvAsDuration("ENGINE_SCAN_INTERVAL", 60*time.Second),
			InitialDelay:   getEnvAsDuration("ENGINE_INITIAL_DELAY", 10*time.Second),
			CandleHistory:  getEnvAsInt("ENGINE_CANDLE_HISTORY", 50),
			VolumeLookback: getEnvAsInt("ENGINE_VOLUME_LOOKBACK", 10),
		},
		Telegram: TelegramConfig{
			BotToken:        getEnv("TELEGRAM_BOT_TOKEN", ""),
			SignalChannelID: getEnv("TELEGRAM_SIGNAL_CHANNEL_ID", ""),
			AdminID:         getEnvAsInt64("TELEGRAM_ADMIN_ID", 0),
			SendTimeout:     getEnvAsDuration("TELEGRAM_SEND_TIMEOUT", 10*time.Second),
		},
		API: APIConfig{
			Port: getEnvAsInt("API_PORT", 8080),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if c.Engine.ScanInterval <= 0 {
		return fmt.Errorf("ENGINE_SCAN_INTERVAL must be positive")
	}
	if c.Engine.CandleHistory < 35 {
		return fmt.Errorf("ENGINE_CANDLE_HISTORY must be at least 35 for MACD evaluation")
	}
	if c.Engine.VolumeLookback < 2 {
		return fmt.Errorf("ENGINE_VOLUME_LOOKBACK must be at least 2")
	}
	if c.MarketData.RequestTimeout <= 0 {
		return fmt.Errorf("MARKET_DATA_TIMEOUT must be positive")
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
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
