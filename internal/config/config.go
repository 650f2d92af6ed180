package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the meridian platform.
type Config struct {
	Storage Storage       `yaml:"storage"`
	Feed    FeedConfig    `yaml:"feed"`
	Alpaca  Alpaca        `yaml:"alpaca"`
	Logging Logging       `yaml:"logging"`
	Trading TradingConfig `yaml:"trading"`
	Limits  LimitsConfig  `yaml:"limits"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// FeedConfig selects and tunes the bar source.
type FeedConfig struct {
	// Provider is "alpaca" (network) or "parquet" (local cache only).
	Provider        string `yaml:"provider"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
	// CacheBars writes fetched bars through to the Parquet cache.
	CacheBars bool `yaml:"cache_bars"`
}

// Alpaca holds credentials and endpoints for the Alpaca APIs.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
	DataURL   string `yaml:"data_url"`
	// DataFeed is the stream feed name, e.g. "iex" or "sip".
	DataFeed string `yaml:"data_feed"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TradingConfig defines simulation and execution parameters.
type TradingConfig struct {
	InitialCapital float64 `yaml:"initial_capital"`
	Timeframe      string  `yaml:"timeframe"`
	PaperMode      bool    `yaml:"paper_mode"`
	// Plugins lists enabled signal plugins by name. Empty means all.
	Plugins []string `yaml:"plugins"`
}

// LimitsConfig defines the trading-limits gate thresholds.
type LimitsConfig struct {
	NoTradeWindowMin     int     `yaml:"no_trade_window_min"`
	MaxConsecutiveLosses int     `yaml:"max_consecutive_losses"`
	MinDailyWinRate      float64 `yaml:"min_daily_win_rate"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns a Config populated with the platform defaults. Load
// starts from these so a sparse YAML file still yields a usable setup.
func Default() *Config {
	return &Config{
		Storage: Storage{
			DataDir:    "data",
			SQLitePath: "meridian.db",
		},
		Feed: FeedConfig{
			Provider:  "alpaca",
			CacheBars: true,
		},
		Alpaca: Alpaca{
			BaseURL:  "https://paper-api.alpaca.markets",
			DataFeed: "iex",
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
		Trading: TradingConfig{
			InitialCapital: 10000,
			Timeframe:      "1Day",
			PaperMode:      true,
		},
		Limits: LimitsConfig{
			NoTradeWindowMin:     30,
			MaxConsecutiveLosses: 5,
			MinDailyWinRate:      0.51,
		},
	}
}

// Load reads the YAML configuration file at the given path, parses it
// over the defaults, and then applies environment variable overrides. A
// missing file is not an error; defaults plus environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_BASE_URL"); v != "" {
		cfg.Alpaca.BaseURL = v
	}
	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Alpaca.DataURL = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("NO_TRADE_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Limits.NoTradeWindowMin = n
		}
	}
	if v := os.Getenv("MAX_CONSECUTIVE_LOSSES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Limits.MaxConsecutiveLosses = n
		}
	}
	if v := os.Getenv("MIN_DAILY_WIN_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Limits.MinDailyWinRate = f
		}
	}

	// Standard Alpaca env vars (highest priority — canonical names used by SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}
