package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/paaavkata/crypto-market-dashboard/pkg/coingecko"
)

type Config struct {
	HTTPPort         string           `yaml:"http_port"`
	CoinGecko        coingecko.Config `yaml:"coingecko"`
	ListPollInterval time.Duration    `yaml:"list_poll_interval"`
	SwapPollInterval time.Duration    `yaml:"swap_poll_interval"`
	MockFallback     bool             `yaml:"mock_fallback"`
	ChartMAPeriod    int              `yaml:"chart_ma_period"`
}

func Default() *Config {
	return &Config{
		HTTPPort: "8080",
		CoinGecko: coingecko.Config{
			BaseURL:    coingecko.BaseURL,
			Timeout:    30 * time.Second,
			RetryCount: 3,
			PerPage:    50,
		},
		ListPollInterval: 60 * time.Second,
		SwapPollInterval: 30 * time.Second,
		MockFallback:     true,
		ChartMAPeriod:    5,
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by CONFIG_FILE and the environment, in that order of precedence.
func Load() (*Config, error) {
	cfg := Default()

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.HTTPPort = getEnv("HTTP_PORT", cfg.HTTPPort)
	cfg.CoinGecko.BaseURL = getEnv("COINGECKO_BASE_URL", cfg.CoinGecko.BaseURL)
	cfg.CoinGecko.APIKey = getEnv("COINGECKO_API_KEY", cfg.CoinGecko.APIKey)
	cfg.CoinGecko.Timeout = getEnvSeconds("COINGECKO_TIMEOUT_SECONDS", cfg.CoinGecko.Timeout)
	cfg.CoinGecko.RetryCount = getEnvInt("COINGECKO_RETRY_COUNT", cfg.CoinGecko.RetryCount)
	cfg.CoinGecko.PerPage = getEnvInt("COINGECKO_PER_PAGE", cfg.CoinGecko.PerPage)
	cfg.ListPollInterval = getEnvDuration("LIST_POLL_INTERVAL", cfg.ListPollInterval)
	cfg.SwapPollInterval = getEnvDuration("SWAP_POLL_INTERVAL", cfg.SwapPollInterval)
	cfg.MockFallback = getEnvBool("MOCK_FALLBACK", cfg.MockFallback)
	cfg.ChartMAPeriod = getEnvInt("CHART_MA_PERIOD", cfg.ChartMAPeriod)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return errors.New("http port is required")
	}
	if c.CoinGecko.BaseURL == "" {
		return errors.New("coingecko base url is required")
	}
	if c.CoinGecko.Timeout <= 0 {
		return fmt.Errorf("coingecko timeout must be positive, got %s", c.CoinGecko.Timeout)
	}
	if c.CoinGecko.PerPage < 1 || c.CoinGecko.PerPage > 250 {
		return fmt.Errorf("coingecko per page must be between 1 and 250, got %d", c.CoinGecko.PerPage)
	}
	if c.ListPollInterval <= 0 || c.SwapPollInterval <= 0 {
		return errors.New("poll intervals must be positive")
	}
	if c.ChartMAPeriod < 0 {
		return fmt.Errorf("chart moving average period must not be negative, got %d", c.ChartMAPeriod)
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvSeconds reads a whole number of seconds. The default passes through
// untouched when the variable is unset or malformed.
func getEnvSeconds(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
