package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix for all environment variables read by Load.
const EnvPrefix = "ALLOC"

// DefaultConfigFile is the YAML file Load looks for in the working directory.
const DefaultConfigFile = "config.yaml"

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Upload   UploadConfig   `yaml:"upload" envconfig:"UPLOAD"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// UploadConfig bounds the merge request payloads
type UploadConfig struct {
	MaxFiles       int   `yaml:"max_files" envconfig:"MAX_FILES" validate:"min=1"`
	MaxFileBytes   int64 `yaml:"max_file_bytes" envconfig:"MAX_FILE_BYTES" validate:"min=1"`
	MaxMemoryBytes int64 `yaml:"max_memory_bytes" envconfig:"MAX_MEMORY_BYTES" validate:"min=1"`
}

// Default returns the built-in configuration values. File and environment
// settings are layered on top of these by Load.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   10,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Upload: UploadConfig{
			MaxFiles:       25,
			MaxFileBytes:   20 << 20,
			MaxMemoryBytes: 32 << 20,
		},
	}
}

// Load builds the configuration in layers: built-in defaults, then the
// YAML config file when present, then ALLOC_* environment variables.
// Each layer only touches the settings it actually provides.
func Load() (*Config, error) {
	return load(DefaultConfigFile)
}

func load(configFile string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(configFile); err == nil {
		if err := overlayFile(&cfg, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// The struct tags carry no envconfig defaults, so Process only writes
	// fields whose environment variables are set.
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// overlayFile applies settings from a YAML file onto cfg. Keys absent from
// the file keep the values cfg already has.
func overlayFile(cfg *Config, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate checks structural constraints on the loaded configuration
func (c *Config) validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}
	if c.Upload.MaxMemoryBytes < c.Upload.MaxFileBytes {
		return fmt.Errorf("upload max_memory_bytes (%d) must be at least max_file_bytes (%d)",
			c.Upload.MaxMemoryBytes, c.Upload.MaxFileBytes)
	}
	return nil
}
