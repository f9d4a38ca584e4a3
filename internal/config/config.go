// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the root configuration structure.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Store   StoreConfig   `toml:"store"`
	Listing ListingConfig `toml:"listing"`
	Views   ViewsConfig   `toml:"views"`
	Source  SourceConfig  `toml:"source"`
	Stats   StatsConfig   `toml:"stats"`
	Events  EventsConfig  `toml:"events"`
}

type ServerConfig struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type StoreConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

type ListingConfig struct {
	DefaultPageSize int `toml:"default_page_size"`
	MaxPageSize     int `toml:"max_page_size"`
	RetryAttempts   int `toml:"retry_attempts"`
}

type ViewsConfig struct {
	IdleTTL  time.Duration `toml:"idle_ttl"`
	MaxViews int           `toml:"max_views"`
}

type SourceConfig struct {
	URL           string        `toml:"url"`
	CacheTTL      time.Duration `toml:"cache_ttl"`
	RatePerSecond float64       `toml:"rate_per_second"`
}

type StatsConfig struct {
	Schedule string `toml:"schedule"`
}

type EventsConfig struct {
	Retention time.Duration `toml:"retention"`
}

// Store backends.
const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
)

// Load reads, parses and validates the configuration file.
func Load(path string) (*Config, error) {
	cfg, err := LoadWithoutValidation(path)
	if err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, &ConfigError{Path: path, Errors: errs}
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file and applies
// defaults. A .env file next to the config is loaded first; variables already
// set in the environment win.
func LoadWithoutValidation(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}

	// Substitute environment variables
	content, missing := substituteEnvVars(string(data))
	if len(missing) > 0 {
		return nil, &ConfigError{Path: path, Missing: missing}
	}

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a config with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8485
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.LogFormat == "" {
		c.Server.LogFormat = "text"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = BackendSQLite
	}
	if c.Store.Path == "" {
		switch c.Store.Backend {
		case BackendBolt:
			c.Store.Path = "./data/phimgo.bolt"
		default:
			c.Store.Path = "./data/phimgo.db"
		}
	}
	if c.Listing.DefaultPageSize == 0 {
		c.Listing.DefaultPageSize = 20
	}
	if c.Listing.MaxPageSize == 0 {
		c.Listing.MaxPageSize = 100
	}
	if c.Listing.RetryAttempts == 0 {
		c.Listing.RetryAttempts = 3
	}
	if c.Views.IdleTTL == 0 {
		c.Views.IdleTTL = 30 * time.Minute
	}
	if c.Views.MaxViews == 0 {
		c.Views.MaxViews = 1000
	}
	if c.Source.URL == "" {
		c.Source.URL = "https://ophim1.com"
	}
	if c.Source.CacheTTL == 0 {
		c.Source.CacheTTL = time.Hour
	}
	if c.Source.RatePerSecond == 0 {
		c.Source.RatePerSecond = 5
	}
	if c.Stats.Schedule == "" {
		c.Stats.Schedule = "@daily"
	}
	if c.Events.Retention == 0 {
		c.Events.Retention = 7 * 24 * time.Hour
	}
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
// Full-line comments are copied untouched. Unresolved references are left
// in place and reported in missing.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	lines := strings.SplitAfter(content, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		lines[i] = envVarPattern.ReplaceAllStringFunc(line, func(match string) string {
			m := envVarPattern.FindStringSubmatch(match)
			name, op, arg := m[1], m[2], m[3]
			value, ok := os.LookupEnv(name)

			switch op {
			case ":-":
				if !ok || value == "" {
					return arg
				}
				return value
			case ":?":
				if !ok || value == "" {
					missing = append(missing, name+": "+strings.TrimSpace(arg))
					return match
				}
				return value
			}
			if !ok {
				missing = append(missing, name)
				return match
			}
			return value
		})
	}
	return strings.Join(lines, ""), missing
}
