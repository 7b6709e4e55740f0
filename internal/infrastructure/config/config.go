// Package config loads the application configuration from defaults, an
// optional YAML file, a .env file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backends
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// Environment variables that override file values
const (
	EnvStore     = "TXMANAGER_STORE"
	EnvCacheTTL  = "TXMANAGER_CACHE_TTL"
	EnvLogLevel  = "TXMANAGER_LOG_LEVEL"
	EnvLogOutput = "TXMANAGER_LOG_OUTPUT"
)

// Config holds the application configuration
type Config struct {
	Store StoreConfig `yaml:"store"`
	Log   LogConfig   `yaml:"log"`
}

// StoreConfig selects the transaction store. Every backend lives in memory
// only; nothing survives a restart.
type StoreConfig struct {
	// Backend is one of "memory", "badger" or "sqlite"
	Backend string `yaml:"backend"`

	// CacheTTL enables a read cache in front of the backend when positive
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// LogConfig controls structured logging
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error"
	Level string `yaml:"level"`

	// Output is "stderr", "stdout" or a file path
	Output string `yaml:"output"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: BackendMemory,
		},
		Log: LogConfig{
			Level:  "info",
			Output: "stderr",
		},
	}
}

// Load builds the configuration. An empty path skips the YAML file; an empty
// envFile loads .env from the working directory if one exists.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvStore); ok && v != "" {
		c.Store.Backend = v
	}

	if v, ok := os.LookupEnv(EnvCacheTTL); ok && v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvCacheTTL, err)
		}
		c.Store.CacheTTL = ttl
	}

	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}

	if v, ok := os.LookupEnv(EnvLogOutput); ok && v != "" {
		c.Log.Output = v
	}

	return nil
}

// Validate checks that every setting has a usable value
func (c *Config) Validate() error {
	var errs []error

	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	switch c.Store.Backend {
	case BackendMemory, BackendBadger, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported store backend: %q", c.Store.Backend))
	}

	if c.Store.CacheTTL < 0 {
		errs = append(errs, errors.New("cache_ttl must not be negative"))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("unsupported log level: %q", c.Log.Level))
	}

	if strings.TrimSpace(c.Log.Output) == "" {
		errs = append(errs, errors.New("log output must not be empty"))
	}

	return errors.Join(errs...)
}
