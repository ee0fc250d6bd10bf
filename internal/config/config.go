// Package config loads optional configuration for both CLI surfaces. It
// layers additive settings (periodic snapshot frequency, tick rounding,
// log level/format) on top of the strict positional argv contracts in
// spec.md §6 — it never participates in argument count decisions. Both
// binaries exit 1 when Load or Validate returns an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level configuration, loaded from an optional YAML
// file with LIMITBOOK_* environment overrides, mirroring the shape of
// 0xtitan6-polymarket-mm/internal/config/config.go's Load/Validate split.
type Config struct {
	Feed      FeedConfig      `mapstructure:"feed"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// FeedConfig tunes the feed-handler driver.
type FeedConfig struct {
	// PrintFrequency dumps a full book snapshot every N applied messages;
	// 0 disables the periodic dump.
	PrintFrequency int `mapstructure:"print_frequency"`
	// TickDecimals rounds every parsed price to this many decimal places
	// before it reaches the core. -1 disables rounding.
	TickDecimals int `mapstructure:"tick_decimals"`
}

// GeneratorConfig tunes the synthetic event generator.
type GeneratorConfig struct {
	// PriceSpread bounds how far a freshly synthesized order's price can
	// wander from the current touch, in absolute price units.
	PriceSpread float64 `mapstructure:"price_spread"`
	// TickDecimals rounds generated prices to this many decimal places.
	TickDecimals int `mapstructure:"tick_decimals"`
	// StartingMidpoint seeds the first generated price level when the
	// book is empty.
	StartingMidpoint float64 `mapstructure:"starting_midpoint"`
}

// LoggingConfig holds the logging settings. Load reads them and Validate
// checks Level; neither binary applies them — both always log through a
// zerolog console writer on stderr.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns the configuration used when no file is present and no
// environment overrides apply.
func Default() Config {
	return Config{
		Feed: FeedConfig{
			PrintFrequency: 0,
			TickDecimals:   -1,
		},
		Generator: GeneratorConfig{
			PriceSpread:      0.05,
			TickDecimals:     2,
			StartingMidpoint: 100.0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads config from path if it exists, applying LIMITBOOK_* env
// overrides on top. A missing file is not an error — Default() is
// returned, still subject to env overrides (this lets the CLI surfaces
// run with zero setup, matching the reference's "no config file needed"
// behaviour, while still allowing operators to tune it).
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("LIMITBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("feed.print_frequency", cfg.Feed.PrintFrequency)
	v.SetDefault("feed.tick_decimals", cfg.Feed.TickDecimals)
	v.SetDefault("generator.price_spread", cfg.Generator.PriceSpread)
	v.SetDefault("generator.tick_decimals", cfg.Generator.TickDecimals)
	v.SetDefault("generator.starting_midpoint", cfg.Generator.StartingMidpoint)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)

	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Validate checks the loaded configuration for internally-consistent
// values.
func (c Config) Validate() error {
	if c.Feed.PrintFrequency < 0 {
		return fmt.Errorf("feed.print_frequency must be >= 0")
	}
	if c.Generator.PriceSpread <= 0 {
		return fmt.Errorf("generator.price_spread must be > 0")
	}
	if c.Generator.StartingMidpoint <= 0 {
		return fmt.Errorf("generator.starting_midpoint must be > 0")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug|info|warn|error")
	}
	return nil
}
