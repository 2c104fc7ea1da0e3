// Package config loads environment-core configuration from environment
// variables with sane defaults.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all environment-core configuration.
type Config struct {
	Server  ServerConfig
	State   StateConfig
	Window  WindowConfig
	Logging LogConfig
}

// ServerConfig holds the IPC HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8700"`
	Host string `envconfig:"HOST" default:"127.0.0.1"`
}

// StateConfig holds session persistence configuration.
type StateConfig struct {
	// DatabasePath is the SQLite file backing the state store. The file
	// may be shared by several windows; only one acquires exclusivity.
	DatabasePath string `envconfig:"STATE_DB" default:"state.db"`
	// SaveDebounce is the minimum quiet interval between a user input
	// signal and the idle-triggered save it schedules.
	SaveDebounce time.Duration `envconfig:"SAVE_DEBOUNCE" default:"2s"`
}

// WindowConfig describes the running window process.
type WindowConfig struct {
	Version  string `envconfig:"VERSION" default:"1.0.0-dev"`
	DevMode  bool   `envconfig:"DEV_MODE" default:"false"`
	SafeMode bool   `envconfig:"SAFE_MODE" default:"false"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("NIGHTJAR", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8700",
			Host: "127.0.0.1",
		},
		State: StateConfig{
			DatabasePath: "state.db",
			SaveDebounce: 2 * time.Second,
		},
		Window: WindowConfig{
			Version: "1.0.0-dev",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}
