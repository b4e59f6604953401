/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the pegasus configuration
type Config struct {
	DataDir string  `yaml:"data_dir"`
	Segment Segment `yaml:"segment"`
	Catalog Catalog `yaml:"catalog"`
	Logging Logging `yaml:"logging"`
}

// Segment contains segment writer settings
type Segment struct {
	BufferSize int    `yaml:"buffer_size"`
	Sync       bool   `yaml:"sync"`
	Extension  string `yaml:"extension"`
}

// Catalog contains segment catalog settings
type Catalog struct {
	// Dir defaults to <data_dir>/catalog when empty
	Dir string `yaml:"dir"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Segment: Segment{
			BufferSize: 4096,
			Sync:       false,
			Extension:  ".seg",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// CatalogDir returns the catalog directory, defaulting to a subdirectory of DataDir
func (c *Config) CatalogDir() string {
	if c.Catalog.Dir != "" {
		return c.Catalog.Dir
	}
	return filepath.Join(c.DataDir, "catalog")
}

// LogLevel parses Logging.Level, falling back to info
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.Logging.Level))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Validate checks the configuration for values the writer cannot use
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.Segment.BufferSize < 0 {
		return fmt.Errorf("segment.buffer_size must not be negative: %d", c.Segment.BufferSize)
	}
	if c.Segment.Extension != "" && !strings.HasPrefix(c.Segment.Extension, ".") {
		return fmt.Errorf("segment.extension must start with a dot: %q", c.Segment.Extension)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json: %q", c.Logging.Format)
	}
	return nil
}

// LoadConfig loads configuration from the specified path. Missing keys keep
// their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// BootstrapConfig writes a default configuration to configPath
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.DataDir = dataDir
	}

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./pegasus.yaml"
	}

	// For Linux/macOS, use ~/.config/pegasus/config.yaml
	configDir := filepath.Join(homeDir, ".config", "pegasus")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
