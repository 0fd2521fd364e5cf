// Package config loads application configuration from defaults, an optional
// YAML file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultDatabaseURL is the embedded SQLite file used when DATABASE_URL is unset.
const DefaultDatabaseURL = "sqlite:///database.db"

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

// Config holds the application configuration.
type Config struct {
	App      AppConfig      `koanf:"app"`
	Logger   LoggerConfig   `koanf:"logger"`
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `koanf:"environment"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json or pretty; empty picks by environment
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port               string        `koanf:"port"`
	ReadTimeout        time.Duration `koanf:"read_timeout"`
	WriteTimeout       time.Duration `koanf:"write_timeout"`
	IdleTimeout        time.Duration `koanf:"idle_timeout"`
	RateLimitPerMinute int           `koanf:"rate_limit_per_minute"` // 0 disables limiting
	CORSOrigins        []string      `koanf:"cors_origins"`
}

// DatabaseConfig holds storage configuration.
type DatabaseConfig struct {
	URL  string `koanf:"url"`
	Seed bool   `koanf:"seed"` // insert the starter books into an empty store on start
}

// sliceConfigPaths are keys that accept comma-separated strings from the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// envMappings maps lowercased environment variable names onto config keys.
var envMappings = map[string]string{
	"env":                   "app.environment",
	"log_level":             "logger.level",
	"log_format":            "logger.format",
	"server_port":           "server.port",
	"server_read_timeout":   "server.read_timeout",
	"server_write_timeout":  "server.write_timeout",
	"server_idle_timeout":   "server.idle_timeout",
	"rate_limit_per_minute": "server.rate_limit_per_minute",
	"cors_origins":          "server.cors_origins",
	"database_url":          "database.url",
	"seed_on_start":         "database.seed",
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Environment: "development",
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Port:               "8000",
			ReadTimeout:        15 * time.Second,
			WriteTimeout:       15 * time.Second,
			IdleTimeout:        60 * time.Second,
			RateLimitPerMinute: 60,
			CORSOrigins:        []string{"*"},
		},
		Database: DatabaseConfig{
			URL:  DefaultDatabaseURL,
			Seed: true,
		},
	}
}

// LoadConfig loads configuration with precedence (highest first):
// 1. Environment variables.
// 2. Config file (CONFIG_PATH, config.yaml or config.yml).
// 3. Default values.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.Database.URL = NormalizeDatabaseURL(cfg.Database.URL)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// NormalizeDatabaseURL rewrites the legacy postgres:// scheme to postgresql://
// and falls back to the embedded SQLite file for an empty URL.
func NormalizeDatabaseURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return DefaultDatabaseURL
	}
	if strings.HasPrefix(url, "postgres://") {
		return strings.Replace(url, "postgres://", "postgresql://", 1)
	}
	return url
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Logger.Format {
	case "", "json", "pretty":
	default:
		return fmt.Errorf("invalid log format: %s (must be json or pretty)", c.Logger.Format)
	}

	if c.Server.Port == "" {
		return errors.New("server port cannot be empty")
	}
	if c.Server.RateLimitPerMinute < 0 {
		return fmt.Errorf("invalid rate limit: %d (must not be negative)", c.Server.RateLimitPerMinute)
	}

	scheme, _, found := strings.Cut(c.Database.URL, ":")
	if !found {
		return fmt.Errorf("invalid database url: %q has no scheme", c.Database.URL)
	}
	switch scheme {
	case "sqlite", "file", "postgresql":
	default:
		return fmt.Errorf("unsupported database scheme: %s (must be sqlite, file, or postgresql)", scheme)
	}

	return nil
}

// IsProduction reports whether the app runs in the production environment.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// findConfigFile returns the first config file found, or "" when there is none.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envTransformFunc maps environment variables onto config keys. Unmapped
// variables return "" and are skipped. PORT is honored when SERVER_PORT is unset.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	if key == "port" && os.Getenv("SERVER_PORT") == "" {
		return "server.port"
	}

	return envMappings[key]
}

// processSliceFields splits comma-separated environment values into slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
