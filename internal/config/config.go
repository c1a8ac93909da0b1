package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration for a repricer run.
type Config struct {
	DataDirectory    string
	ConversionFactor float64 // 0 means "use store default" (32.35)
	LogFormat        string  // "text" or "json"
	DSN              string  // batch persistence target, optional
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	ConversionFactor float64 `yaml:"conversion_factor"`
	LogFormat        string  `yaml:"log_format"`
}

// LoadFromFile reads a YAML config file and merges its values into Config.
// A field already set on the command line takes precedence over the file.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if c.ConversionFactor == 0 && yc.ConversionFactor != 0 {
		c.ConversionFactor = yc.ConversionFactor
	}
	if c.LogFormat == "" && yc.LogFormat != "" {
		c.LogFormat = yc.LogFormat
	}
	return nil
}

// Validate checks required fields and returns an error if the config is invalid.
func (c *Config) Validate() error {
	if c.DataDirectory == "" {
		return fmt.Errorf("--data-dir is required")
	}
	info, err := os.Stat(c.DataDirectory)
	if err != nil {
		return fmt.Errorf("data directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data directory %q is not a directory", c.DataDirectory)
	}
	if c.ConversionFactor < 0 {
		return fmt.Errorf("conversion_factor must not be negative")
	}
	return nil
}

// ValidateWithDSN checks both the data directory and DSN fields, for
// subcommands that persist batch results to Postgres.
func (c *Config) ValidateWithDSN() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or DATABASE_URL is required")
	}
	return nil
}
