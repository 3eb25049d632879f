package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/multierr"
)

// CompassConfig holds the tunable parameters of the compass computation.
type CompassConfig struct {
	RatioPeriod    int `toml:"ratio_period"`    // default 100
	MomentumPeriod int `toml:"momentum_period"` // default 35
	TailLength     int `toml:"tail_length"`     // default 5
	MinPeriods     int `toml:"min_periods"`     // default 50
	// RankWindow switches the percentile rank to a trailing window of this
	// many points. 0 keeps the expanding window.
	RankWindow int `toml:"rank_window"`
	// Workers bounds per-symbol concurrency; 0 = GOMAXPROCS.
	Workers int `toml:"workers"`
}

// MinRows is the smallest table the engine accepts.
func (c CompassConfig) MinRows() int {
	return c.RatioPeriod + c.MomentumPeriod + c.TailLength
}

// DisplayConfig controls which price fields reach the published document.
type DisplayConfig struct {
	ShowPrices      bool `toml:"show_prices"`
	ShowPercentages bool `toml:"show_percentages"`
}

type LogConfig struct {
	Level      string `toml:"level"`    // debug, info, warn, error
	Encoding   string `toml:"encoding"` // json, console
	FilePath   string `toml:"file_path"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// ScheduleConfig drives `compass watch`.
type ScheduleConfig struct {
	Cron string `toml:"cron"`
}

// InputConfig names the files the CLI reads and writes.
type InputConfig struct {
	PricesPath   string `toml:"prices_path"`
	RegistryPath string `toml:"registry_path"` // empty = built-in commodity set
	OutputPath   string `toml:"output_path"`
	MinSymbols   int    `toml:"min_symbols"`
}

type Config struct {
	Compass  CompassConfig  `toml:"compass"`
	Display  DisplayConfig  `toml:"display"`
	Log      LogConfig      `toml:"log"`
	Schedule ScheduleConfig `toml:"schedule"`
	Input    InputConfig    `toml:"input"`
}

// Default returns the production parameters.
func Default() Config {
	return Config{
		Compass: CompassConfig{
			RatioPeriod:    100,
			MomentumPeriod: 35,
			TailLength:     5,
			MinPeriods:     50,
			Workers:        runtime.GOMAXPROCS(0),
		},
		Display: DisplayConfig{
			ShowPrices:      true,
			ShowPercentages: true,
		},
		Log: LogConfig{
			Level:      "info",
			Encoding:   "json",
			MaxSizeMB:  50,
			MaxBackups: 10,
			MaxAgeDays: 30,
		},
		Schedule: ScheduleConfig{Cron: "*/15 * * * *"},
		Input: InputConfig{
			PricesPath: "data/prices.csv",
			OutputPath: "public/compass.json",
			MinSymbols: 10,
		},
	}
}

// Load reads an optional TOML file over the defaults, then applies `.env`
// and COMPASS_* environment overrides, then validates.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	// A missing .env is normal; the process environment still applies.
	_ = godotenv.Load()
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	var errs error
	intVar := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	boolVar := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	intVar("COMPASS_RATIO_PERIOD", &cfg.Compass.RatioPeriod)
	intVar("COMPASS_MOMENTUM_PERIOD", &cfg.Compass.MomentumPeriod)
	intVar("COMPASS_TAIL_LENGTH", &cfg.Compass.TailLength)
	intVar("COMPASS_MIN_PERIODS", &cfg.Compass.MinPeriods)
	intVar("COMPASS_RANK_WINDOW", &cfg.Compass.RankWindow)
	intVar("COMPASS_WORKERS", &cfg.Compass.Workers)
	boolVar("COMPASS_SHOW_PRICES", &cfg.Display.ShowPrices)
	boolVar("COMPASS_SHOW_PERCENTAGES", &cfg.Display.ShowPercentages)
	cfg.Log.Level = getEnv("COMPASS_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Encoding = getEnv("COMPASS_LOG_ENCODING", cfg.Log.Encoding)
	cfg.Log.FilePath = getEnv("COMPASS_LOG_FILE", cfg.Log.FilePath)
	cfg.Schedule.Cron = getEnv("COMPASS_CRON", cfg.Schedule.Cron)
	cfg.Input.PricesPath = getEnv("COMPASS_PRICES", cfg.Input.PricesPath)
	cfg.Input.RegistryPath = getEnv("COMPASS_REGISTRY", cfg.Input.RegistryPath)
	cfg.Input.OutputPath = getEnv("COMPASS_OUTPUT", cfg.Input.OutputPath)
	intVar("COMPASS_MIN_SYMBOLS", &cfg.Input.MinSymbols)
	return errs
}

// getEnv gets environment variable with fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Validate checks the compass parameters and reports every problem found.
func (c *CompassConfig) Validate() error {
	var errs error
	if c.RatioPeriod <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("RatioPeriod (%d) must be positive", c.RatioPeriod))
	}
	if c.MomentumPeriod <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("MomentumPeriod (%d) must be positive", c.MomentumPeriod))
	}
	if c.TailLength <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("TailLength (%d) must be positive", c.TailLength))
	}
	if c.MinPeriods <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("MinPeriods (%d) must be positive", c.MinPeriods))
	}
	if c.RankWindow < 0 {
		errs = multierr.Append(errs, fmt.Errorf("RankWindow (%d) cannot be negative", c.RankWindow))
	}
	if c.RankWindow > 0 && c.RankWindow < c.MinPeriods {
		errs = multierr.Append(errs, fmt.Errorf("RankWindow (%d) must be >= MinPeriods (%d)", c.RankWindow, c.MinPeriods))
	}
	if c.Workers < 0 {
		errs = multierr.Append(errs, errors.New("Workers cannot be negative"))
	}
	return errs
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	errs := c.Compass.Validate()
	switch strings.ToLower(c.Log.Encoding) {
	case "json", "console":
	default:
		errs = multierr.Append(errs, fmt.Errorf("log encoding %q must be json or console", c.Log.Encoding))
	}
	if c.Input.MinSymbols < 0 {
		errs = multierr.Append(errs, errors.New("MinSymbols cannot be negative"))
	}
	return errs
}
