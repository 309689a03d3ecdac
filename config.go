package portfolios

import (
	"fmt"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"
)

// Config holds the configuration of a portfolio and of its data sources.
type Config struct {
	Name      string        `toml:"name"`
	Currency  string        `toml:"currency"`
	Benchmark string        `toml:"benchmark"`
	DataDir   string        `toml:"data_dir"` // price cache directory
	Replay    ReplayConfig  `toml:"replay"`
	EODHD     EODHDConfig   `toml:"eodhd"`
	Logging   LoggingConfig `toml:"logging"`
}

// ReplayConfig holds the replay tolerances.
type ReplayConfig struct {
	SellClampFactor float64 `toml:"sell_clamp_factor"`
	ZeroEpsilon     float64 `toml:"zero_epsilon"`
	ContinueOnError bool    `toml:"continue_on_error"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// EODHDAPIKeyEnv is the environment variable read when no API key is configured.
const EODHDAPIKeyEnv = "EODHD_API_KEY"

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Name:      "main",
		Currency:  "USD",
		Benchmark: DefaultBenchmark,
		DataDir:   ".folio",
		Replay: ReplayConfig{
			SellClampFactor: 1.0001,
			ZeroEpsilon:     0.0001,
		},
		EODHD: EODHDConfig{
			BaseURL: "https://eodhd.com/api",
			Timeout: "30s",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Missing files are skipped, later files override earlier ones.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()
	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(config)
	config.Currency = strings.ToUpper(config.Currency)
	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if config.EODHD.APIKey == "" {
		config.EODHD.APIKey = os.Getenv(EODHDAPIKeyEnv)
	}
	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// Options returns the portfolio options matching the configuration.
func (c *Config) Options() []Option {
	var opts []Option
	if c.Replay.SellClampFactor > 0 {
		opts = append(opts, WithSellClampFactor(decimal.NewFromFloat(c.Replay.SellClampFactor)))
	}
	if c.Replay.ZeroEpsilon > 0 {
		opts = append(opts, WithZeroEpsilon(decimal.NewFromFloat(c.Replay.ZeroEpsilon)))
	}
	if c.Replay.ContinueOnError {
		opts = append(opts, WithContinueOnError())
	}
	return opts
}
