package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/decomp/pkg/model"
	"github.com/spf13/viper"
)

// Config holds the CLI settings.
// Values are populated from decomp.yaml, DECOMP_* env vars, and CLI flags.
type Config struct {
	Rules     string `mapstructure:"rules"`
	Data      string `mapstructure:"data"`
	Worker    string `mapstructure:"worker"`
	Validate  bool   `mapstructure:"validate"`
	Output    string `mapstructure:"output"`
	Color     string `mapstructure:"color"`
	Addr      string `mapstructure:"addr"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	RootType  string `mapstructure:"root_type"`
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output", "json")
	v.SetDefault("color", "auto")
	v.SetDefault("addr", ":8080")
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
	v.SetDefault("root_type", model.TypeRoot)
}

// LoadConfig reads the configuration from v, applying built-in defaults for any
// values not set by config file, environment, or flags.
func LoadConfig(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	switch cfg.Output {
	case "json", "yaml":
	default:
		return Config{}, fmt.Errorf("invalid output format %q (want json or yaml)", cfg.Output)
	}
	switch cfg.Color {
	case "auto", "always", "never":
	default:
		return Config{}, fmt.Errorf("invalid color mode %q (want auto, always or never)", cfg.Color)
	}
	return cfg, nil
}

// Level parses LogLevel, defaulting to warn.
func (c Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelWarn
	}
	return l
}
