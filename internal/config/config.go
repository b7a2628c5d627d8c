// Package config loads CLI and server settings with viper.
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	schemarpc "github.com/reoring/schemarpc"
	"github.com/reoring/schemarpc/i18n"
)

// EnvPrefix prefixes every environment variable, e.g. SCHEMARPC_LOG_LEVEL.
const EnvPrefix = "SCHEMARPC"

// Config is the resolved configuration.
type Config struct {
	LogLevel  logrus.Level
	LogFormat string
	Language  string
	Decode    schemarpc.DecodeOpt
}

// New returns a viper instance with defaults and environment binding.
// Precedence: flags bound by the caller > environment > config file >
// defaults.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("i18n.language", "en")
	v.SetDefault("decode.max_bytes", 1<<20)
	v.SetDefault("decode.max_depth", 64)
	v.SetDefault("decode.duplicate_keys", "error")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file at path and resolves the result.
func Load(path string) (*Config, error) { return Read(New(), path) }

// Read loads the optional config file at path into v and resolves the result.
func Read(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper resolves and validates the settings held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	level, err := logrus.ParseLevel(v.GetString("log.level"))
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	cfg := &Config{
		LogLevel:  level,
		LogFormat: v.GetString("log.format"),
		Language:  v.GetString("i18n.language"),
		Decode: schemarpc.DecodeOpt{
			OnDuplicateKey: schemarpc.ParseSeverity(v.GetString("decode.duplicate_keys")),
			MaxDepth:       v.GetInt("decode.max_depth"),
			MaxBytes:       v.GetInt64("decode.max_bytes"),
		},
	}
	if err := validate(cfg, v.GetString("decode.duplicate_keys")); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config, dup string) error {
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", cfg.LogFormat)
	}
	switch cfg.Language {
	case "en", "ja":
	default:
		return fmt.Errorf("i18n.language must be en or ja, got %q", cfg.Language)
	}
	switch dup {
	case "ignore", "warn", "error":
	default:
		return fmt.Errorf("decode.duplicate_keys must be ignore, warn or error, got %q", dup)
	}
	if cfg.Decode.MaxDepth < 0 {
		return fmt.Errorf("decode.max_depth must not be negative, got %d", cfg.Decode.MaxDepth)
	}
	if cfg.Decode.MaxBytes < 0 {
		return fmt.Errorf("decode.max_bytes must not be negative, got %d", cfg.Decode.MaxBytes)
	}
	return nil
}

// Apply configures the logger and the message language, and routes decode
// warnings to l.
func (c *Config) Apply(l *logrus.Logger) {
	l.SetLevel(c.LogLevel)
	if c.LogFormat == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{})
	}
	i18n.SetLanguage(c.Language)
	c.Decode.Logger = l
}
