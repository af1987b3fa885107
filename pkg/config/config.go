// Package config loads settings for the formula tools from defaults, an
// optional YAML file and FORMULA_ environment variables.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all settings.
type Config struct {
	Engine EngineConfig `mapstructure:"engine"`
	Log    LogConfig    `mapstructure:"log"`
	Store  StoreConfig  `mapstructure:"store"`
	Filter FilterConfig `mapstructure:"filter"`
}

// EngineConfig holds batch evaluation settings.
type EngineConfig struct {
	Workers int           `mapstructure:"workers"`
	Steps   int           `mapstructure:"steps"` // history depth; 0 derives it from the formulas
	Format  string        `mapstructure:"format"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// StoreConfig selects the value store backing a run.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	DSN     string `mapstructure:"dsn"`
}

// FilterConfig holds median filter settings.
type FilterConfig struct {
	Boundary string `mapstructure:"boundary"`
	Window   int    `mapstructure:"window"`
}

// EnvPrefix prefixes environment overrides: FORMULA_ENGINE_WORKERS and so on.
const EnvPrefix = "FORMULA"

// Load reads configuration. With an empty path, formula.yaml in the working
// directory is used when present.
// Precedence (highest to lowest):
// 1. Environment variables (FORMULA_SECTION_KEY)
// 2. Config file
// 3. Built-in defaults
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("formula")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the loaders cannot.
func (c *Config) Validate() error {
	switch c.Engine.Format {
	case "text", "json":
	default:
		return fmt.Errorf("engine.format: unknown format %q", c.Engine.Format)
	}
	if c.Engine.Workers < 1 {
		return fmt.Errorf("engine.workers: must be at least 1, got %d", c.Engine.Workers)
	}
	if c.Engine.Steps < 0 {
		return fmt.Errorf("engine.steps: must not be negative, got %d", c.Engine.Steps)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("engine.workers", d.Engine.Workers)
	v.SetDefault("engine.steps", d.Engine.Steps)
	v.SetDefault("engine.format", d.Engine.Format)
	v.SetDefault("engine.timeout", d.Engine.Timeout.String())

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)

	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.dsn", d.Store.DSN)

	v.SetDefault("filter.boundary", d.Filter.Boundary)
	v.SetDefault("filter.window", d.Filter.Window)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Workers: runtime.NumCPU(),
			Steps:   0,
			Format:  "text",
			Timeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Store: StoreConfig{
			Backend: "memory",
		},
		Filter: FilterConfig{
			Boundary: "shrink",
			Window:   3,
		},
	}
}
