package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rolodexdb/rolodex/pkg/core"
)

// Config is the optional YAML configuration file. Command-line flags
// override anything set here.
type Config struct {
	Dir       string `yaml:"dir"`        // data directory (default: user config dir)
	Backend   string `yaml:"backend"`    // sqlite or bolt
	BatchSize int    `yaml:"batch_size"` // identity cap per IN (...) statement
	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error, off
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Backend:   "sqlite",
		BatchSize: core.DefaultBatchSize,
		LogLevel:  "warn",
	}
}

// ConfigPath returns the config file location inside dir.
func ConfigPath(dir string) string {
	return filepath.Join(dir, "config.yaml")
}

// LoadConfig reads a YAML configuration file. Missing keys keep their
// defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML, creating the directory when needed.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
