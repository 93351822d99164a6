package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	API struct {
		BaseURL string `yaml:"base_url" env:"PEARL_API_BASE_URL"`
		Timeout string `yaml:"timeout" env:"PEARL_API_TIMEOUT"`
	} `yaml:"api"`

	Storage struct {
		// Path is the session vault location, the durable slot the
		// client rehydrates from at startup
		Path string `yaml:"path" env:"PEARL_STORAGE_PATH"`
	} `yaml:"storage"`

	Logging struct {
		Level  string `yaml:"level" env:"PEARL_LOG_LEVEL"`
		Format string `yaml:"format" env:"PEARL_LOG_FORMAT"`
	} `yaml:"logging"`

	Stub struct {
		Port            string `yaml:"port" env:"PEARL_STUB_PORT"`
		JWTSecret       string `yaml:"jwt_secret" env:"PEARL_STUB_JWT_SECRET"`
		TokenExpiration string `yaml:"token_expiration" env:"PEARL_STUB_TOKEN_EXPIRATION"`
	} `yaml:"stub"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// Config file is optional; env vars alone are enough
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.API.BaseURL = "http://localhost:8080/api"
	config.API.Timeout = "15s"

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	config.Storage.Path = filepath.Join(home, ".pearldata", "session.json")

	config.Logging.Level = "info"
	config.Logging.Format = "console"

	config.Stub.Port = "8080"
	config.Stub.JWTSecret = "dev-only-secret"
	config.Stub.TokenExpiration = "12h"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.API.BaseURL == "" {
		return fmt.Errorf("api base URL is required")
	}

	if _, err := time.ParseDuration(config.API.Timeout); err != nil {
		return fmt.Errorf("invalid api timeout format: %w", err)
	}

	if config.Storage.Path == "" {
		return fmt.Errorf("storage path is required")
	}

	if _, err := time.ParseDuration(config.Stub.TokenExpiration); err != nil {
		return fmt.Errorf("invalid stub token expiration format: %w", err)
	}

	return nil
}

// APITimeout returns the parsed request timeout.
func (c *Config) APITimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// StubTokenExpiration returns the parsed stub token lifetime.
func (c *Config) StubTokenExpiration() time.Duration {
	d, err := time.ParseDuration(c.Stub.TokenExpiration)
	if err != nil {
		return 12 * time.Hour
	}
	return d
}
