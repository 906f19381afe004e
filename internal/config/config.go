// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v9"

	"hotel-capacity/internal/errors"
	"hotel-capacity/internal/logging"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "HOTELCAP_"

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Calculator contains calculation assumptions
	Calculator CalculatorConfig `json:"calculator" envPrefix:"CALCULATOR_"`

	// Dataset describes the site planning dataset
	Dataset DatasetConfig `json:"dataset" envPrefix:"DATASET_"`

	// Server contains HTTP server configuration
	Server ServerConfig `json:"server" envPrefix:"SERVER_"`

	// Session contains last-result storage configuration
	Session SessionConfig `json:"session" envPrefix:"SESSION_"`

	// Output contains output configuration
	Output OutputConfig `json:"output" envPrefix:"OUTPUT_"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" envPrefix:"LOG_"`
}

// CalculatorConfig contains calculation assumptions
type CalculatorConfig struct {
	// StoreyHeightM is the assumed height of one building level
	StoreyHeightM float64 `json:"storey_height_m" env:"STOREY_HEIGHT_M"`
}

// DatasetConfig locates the GeoJSON dataset and names its attribute fields
type DatasetConfig struct {
	Path           string `json:"path" env:"PATH"`
	NameField      string `json:"name_field" env:"NAME_FIELD"`
	AreaField      string `json:"area_field" env:"AREA_FIELD"`
	PlotRatioField string `json:"plot_ratio_field" env:"PLOT_RATIO_FIELD"`
	HeightField    string `json:"height_field" env:"HEIGHT_FIELD"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr" env:"ADDR"`

	// ReadTimeoutSeconds bounds request reading
	ReadTimeoutSeconds int `json:"read_timeout_seconds" env:"READ_TIMEOUT_SECONDS"`
}

// SessionConfig selects where the last result of each session is kept
type SessionConfig struct {
	// Backend is "memory" or "redis"
	Backend string `json:"backend" env:"BACKEND"`

	// TTLSeconds is how long a last result survives without recalculation
	TTLSeconds int `json:"ttl_seconds" env:"TTL_SECONDS"`

	RedisAddr     string `json:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `json:"redis_password,omitempty" env:"REDIS_PASSWORD"`
	RedisDB       int    `json:"redis_db" env:"REDIS_DB"`
}

// TTL returns the session TTL as a duration
func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLSeconds) * time.Second
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format" env:"DEFAULT_FORMAT"`

	// NoColor disables terminal colors
	NoColor bool `json:"no_color" env:"NO_COLOR"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Calculator: CalculatorConfig{
			StoreyHeightM: 3.5,
		},
		Dataset: DatasetConfig{
			NameField:      "site_name",
			AreaField:      "site_area",
			PlotRatioField: "plot_ratio",
			HeightField:    "max_height",
		},
		Server: ServerConfig{
			Addr:               ":8080",
			ReadTimeoutSeconds: 15,
		},
		Session: SessionConfig{
			Backend:    "memory",
			TTLSeconds: 86400, // 24 hours
			RedisAddr:  "localhost:6379",
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file, then applies environment overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, errors.Config("invalid config file "+path, err)
			}
		case !os.IsNotExist(err):
			return nil, errors.Config("cannot read config file "+path, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, errors.Config("invalid environment override", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the calculators cannot work with
func (c *Config) Validate() error {
	if c.Calculator.StoreyHeightM <= 0 {
		return errors.Config("calculator.storey_height_m must be greater than zero", nil)
	}
	if c.Dataset.NameField == "" {
		return errors.Config("dataset.name_field must not be empty", nil)
	}
	switch c.Session.Backend {
	case "memory", "redis":
	default:
		return errors.Config("session.backend must be memory or redis, got "+c.Session.Backend, nil)
	}
	if c.Session.TTLSeconds < 0 {
		return errors.Config("session.ttl_seconds must not be negative", nil)
	}
	return nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
