// Package config loads beantag settings from beantag.yaml and BEANTAG_*
// environment variables, and validates them against an embedded CUE schema.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

const (
	// FileName is the config file looked up in the working directory.
	FileName = "beantag.yaml"

	// EnvPrefix prefixes environment overrides, e.g. BEANTAG_DATABASE.
	EnvPrefix = "BEANTAG"
)

// Keys.
const (
	KeyDatabase        = "database"
	KeyDriver          = "driver"
	KeyLogLevel        = "log_level"
	KeyUniqueTagTitles = "unique_tag_titles"
)

// Config holds beantag settings.
type Config struct {
	// Database is the SQLite file path, or ":memory:".
	Database string `yaml:"database" mapstructure:"database" json:"database"`
	// Driver selects the database/sql driver: "sqlite3" or "sqlite".
	Driver string `yaml:"driver" mapstructure:"driver" json:"driver"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" mapstructure:"log_level" json:"log_level"`
	// UniqueTagTitles enforces one tag per title in the database.
	UniqueTagTitles bool `yaml:"unique_tag_titles" mapstructure:"unique_tag_titles" json:"unique_tag_titles"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Database:        "beantag.db",
		Driver:          "sqlite3",
		LogLevel:        "info",
		UniqueTagTitles: true,
	}
}

// Load reads settings from path, or from ./beantag.yaml when path is empty,
// with BEANTAG_* environment variables taking precedence over the file.
// A missing ./beantag.yaml is not an error; a missing explicit path is.
func Load(path string) (Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault(KeyDatabase, def.Database)
	v.SetDefault(KeyDriver, def.Driver)
	v.SetDefault(KeyLogLevel, def.LogLevel)
	v.SetDefault(KeyUniqueTagTitles, def.UniqueTagTitles)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Level returns the slog level for LogLevel. Unknown names map to info;
// Validate rejects them first.
func (c Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
