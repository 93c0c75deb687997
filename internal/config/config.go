package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const configFileName = "staffrota_config.yaml"

// DatabaseConfig selects and configures the store backend.
type DatabaseConfig struct {
	// Driver is "postgres" for production or "sqlite" for local use.
	Driver string `yaml:"driver" validate:"required,oneof=postgres sqlite"`

	// ConnString is the postgres connection string. Required for postgres.
	ConnString string `yaml:"connString,omitempty" validate:"required_if=Driver postgres"`

	// Path is the sqlite database file. Required for sqlite.
	Path string `yaml:"path,omitempty" validate:"required_if=Driver sqlite"`
}

// DirectoryConfig points at the user directory service.
type DirectoryConfig struct {
	BaseURL  string `yaml:"baseURL" validate:"required,url"`
	APIToken string `yaml:"apiToken,omitempty"`

	// RedisAddr enables the lookup cache when set, e.g. "localhost:6379".
	RedisAddr       string `yaml:"redisAddr,omitempty"`
	CacheTTLMinutes int    `yaml:"cacheTTLMinutes,omitempty" validate:"omitempty,min=1"`
}

// NotifierConfig selects the notification transport.
type NotifierConfig struct {
	// Mode is "log" (default) or "gmail".
	Mode string `yaml:"mode" validate:"required,oneof=log gmail"`

	GmailSender       string `yaml:"gmailSender,omitempty" validate:"required_if=Mode gmail,omitempty,email"`
	GmailClientID     string `yaml:"gmailClientID,omitempty" validate:"required_if=Mode gmail"`
	GmailClientSecret string `yaml:"gmailClientSecret,omitempty" validate:"required_if=Mode gmail"`
	GmailRefreshToken string `yaml:"gmailRefreshToken,omitempty" validate:"required_if=Mode gmail"`
}

// Config is the application configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Directory DirectoryConfig `yaml:"directory"`
	Notifier  NotifierConfig  `yaml:"notifier"`

	// OverviewMonths is the default forward window of the coverage overview.
	OverviewMonths int `yaml:"overviewMonths,omitempty" validate:"omitempty,min=1,max=6"`

	// ListenAddr is the HTTP API bind address, e.g. ":8080".
	ListenAddr string `yaml:"listenAddr,omitempty"`
}

var validate = validator.New()

// Load finds and loads the configuration, checking the current directory
// first and then the user's home directory.
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}
	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration at a specific path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration struct.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func findConfigFile() (string, error) {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
