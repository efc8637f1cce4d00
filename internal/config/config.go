package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// Config is the process configuration of the engine and the simulator.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Rules   RulesConfig   `mapstructure:"rules"`
	Sim     SimConfig     `mapstructure:"sim"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CatalogConfig locates the card catalog. An empty Dir selects the built-in data.
type CatalogConfig struct {
	Dir string `mapstructure:"dir"`
}

// RulesConfig holds the rule constants shared by every game.
type RulesConfig struct {
	HandSize        int `mapstructure:"hand_size"`
	MarketSize      int `mapstructure:"market_size"`
	MaxTriggerDepth int `mapstructure:"max_trigger_depth"`
}

// SimConfig holds the defaults of the headless simulator.
type SimConfig struct {
	Year          string   `mapstructure:"year"`
	Heroes        []string `mapstructure:"heroes"`
	Proficiencies []string `mapstructure:"proficiencies"`
	Seed          int64    `mapstructure:"seed"`
	MaxTurns      int      `mapstructure:"max_turns"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Rules: RulesConfig{
			HandSize:        5,
			MarketSize:      6,
			MaxTriggerDepth: 8,
		},
		Sim: SimConfig{
			Year:     "year-1",
			Heroes:   []string{"harry-potter"},
			Seed:     1,
			MaxTurns: 200,
		},
	}
}

// Load reads path (YAML), applies HOGWARTS_* environment overrides and
// validates the result. A missing file falls back to the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix("HOGWARTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("catalog.dir", d.Catalog.Dir)
	v.SetDefault("rules.hand_size", d.Rules.HandSize)
	v.SetDefault("rules.market_size", d.Rules.MarketSize)
	v.SetDefault("rules.max_trigger_depth", d.Rules.MaxTriggerDepth)
	v.SetDefault("sim.year", d.Sim.Year)
	v.SetDefault("sim.heroes", d.Sim.Heroes)
	v.SetDefault("sim.proficiencies", d.Sim.Proficiencies)
	v.SetDefault("sim.seed", d.Sim.Seed)
	v.SetDefault("sim.max_turns", d.Sim.MaxTurns)
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config validation: unknown logging.level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config validation: unknown logging.format %q", c.Logging.Format)
	}
	if c.Rules.HandSize <= 0 {
		return fmt.Errorf("config validation: rules.hand_size must be positive")
	}
	if c.Rules.MarketSize <= 0 {
		return fmt.Errorf("config validation: rules.market_size must be positive")
	}
	if c.Rules.MaxTriggerDepth <= 0 {
		return fmt.Errorf("config validation: rules.max_trigger_depth must be positive")
	}
	if len(c.Sim.Heroes) == 0 || len(c.Sim.Heroes) > 4 {
		return fmt.Errorf("config validation: sim.heroes needs 1 to 4 heroes, got %d", len(c.Sim.Heroes))
	}
	if c.Sim.MaxTurns <= 0 {
		return fmt.Errorf("config validation: sim.max_turns must be positive")
	}
	return nil
}
