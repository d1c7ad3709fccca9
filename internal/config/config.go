package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the application configuration
type Config struct {
	Library  LibraryConfig  `toml:"library"`
	Practice PracticeConfig `toml:"practice"`
	History  HistoryConfig  `toml:"history"`
	Logging  LoggingConfig  `toml:"logging"`
}

// LibraryConfig contains score-library configuration
type LibraryConfig struct {
	RootPath        string   `toml:"root_path"`
	ManagerPath     string   `toml:"manager_path"`
	DownloadsDir    string   `toml:"downloads_dir"`
	Instruments     []string `toml:"instruments"`
	WatchForChanges bool     `toml:"watch_for_changes"`
}

// PracticeConfig contains practice-session configuration
type PracticeConfig struct {
	DefaultInstrument string  `toml:"default_instrument"`
	DefaultDecayRate  float64 `toml:"default_decay_rate_percent_per_day"`
}

// HistoryConfig contains the practice-history database configuration
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Library: LibraryConfig{
			RootPath:        "",
			ManagerPath:     "",
			DownloadsDir:    "",
			Instruments:     []string{"bagpipes", "seconds", "bass", "snare", "tenor"},
			WatchForChanges: false,
		},
		Practice: PracticeConfig{
			DefaultInstrument: "bass",
			DefaultDecayRate:  1.0,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "./reprise-history.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "",
		},
	}
}

// LoadConfig loads configuration from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Config file doesn't exist, create it with defaults
		if err := cfg.SaveToFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config file: %w", err)
		}
		fmt.Printf("Created default configuration file at: %s\n", configPath)
		return cfg, nil
	}

	// Load from file
	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves the configuration to a TOML file
func (c *Config) SaveToFile(configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create or open file
	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// Write header comment
	header := `# Reprise Practice Tracker Configuration
# This file contains all configuration options for the Reprise practice tracker.
# Leave library.root_path empty to discover the library through the companion
# manager's configuration (library.manager_path).

`
	if _, err := file.WriteString(header); err != nil {
		return fmt.Errorf("failed to write config header: %w", err)
	}

	// Encode configuration to TOML
	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config to TOML: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate library config
	if len(c.Library.Instruments) == 0 {
		return fmt.Errorf("at least one instrument must be specified")
	}

	// Validate practice config
	if c.Practice.DefaultInstrument == "" {
		return fmt.Errorf("default instrument cannot be empty")
	}
	if c.Practice.DefaultDecayRate < 0 {
		return fmt.Errorf("decay rate cannot be negative")
	}

	// Validate history config
	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history database path cannot be empty when history is enabled")
	}

	// Validate logging config
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format)
	}

	return nil
}

// IsKnownInstrument checks if an instrument name is configured
func (c *Config) IsKnownInstrument(name string) bool {
	for _, inst := range c.Library.Instruments {
		if inst == name {
			return true
		}
	}
	return false
}
