package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultOutput is where a transformed image is written when no output
// path is given.
const DefaultOutput = "imagemAlterada.ppm"

// Config holds ppmctl defaults. Command line flags override every field.
type Config struct {
	Output  string  `yaml:"output"`
	Preview string  `yaml:"preview"`
	Logging Logging `yaml:"logging"`
}

// Logging contains logging configuration
type Logging struct {
	Level      string `yaml:"level"`
	JSON       bool   `yaml:"json"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Output: DefaultOutput,
		Logging: Logging{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks fields that have no sensible fallback.
func (c *Config) Validate() error {
	if c.Output == "" {
		return fmt.Errorf("config: output must not be empty")
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 {
		return fmt.Errorf("config: log rotation limits must not be negative")
	}
	return nil
}
