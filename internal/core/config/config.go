// Package config handles configuration loading and validation for wcap.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Import  ImportConfig  `yaml:"import"`
	Sync    SyncConfig    `yaml:"sync"`
	TUI     TUIConfig     `yaml:"tui"`
	DataDir string        `yaml:"-"` // set by caller, not from config file
}

// StorageConfig controls local item persistence.
type StorageConfig struct {
	// File is the item blob filename inside the data directory.
	File string `yaml:"file"`
}

// ImportConfig controls JSON import behavior.
type ImportConfig struct {
	// BatchSize is how many records are written per import batch.
	BatchSize int `yaml:"batch_size"`
}

// SyncConfig controls the optional cloud-sync bridge.
type SyncConfig struct {
	// Endpoint is the remote sync server base URL used by the client.
	Endpoint string `yaml:"endpoint"`
	// ListenAddr is the bind address for `wcap serve`.
	ListenAddr string `yaml:"listen_addr"`
	// TokenSecret signs bearer tokens. Required to run the server.
	TokenSecret string `yaml:"token_secret"`
	// CodeTTL is how long an issued sync code stays valid.
	CodeTTL time.Duration `yaml:"code_ttl"`
	// TokenTTL is how long an exchanged bearer token stays valid.
	TokenTTL time.Duration `yaml:"token_ttl"`
}

// TUIConfig holds presentation settings.
type TUIConfig struct {
	Theme string `yaml:"theme"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			File: "workflow-items.json",
		},
		Import: ImportConfig{
			BatchSize: 20,
		},
		Sync: SyncConfig{
			ListenAddr: "localhost:8787",
			CodeTTL:    15 * time.Minute,
			TokenTTL:   30 * 24 * time.Hour,
		},
		TUI: TUIConfig{
			Theme: "tokyo-night",
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Storage.File == "" {
		c.Storage.File = defaults.Storage.File
	}
	if c.Import.BatchSize == 0 {
		c.Import.BatchSize = defaults.Import.BatchSize
	}
	if c.Sync.ListenAddr == "" {
		c.Sync.ListenAddr = defaults.Sync.ListenAddr
	}
	if c.Sync.CodeTTL == 0 {
		c.Sync.CodeTTL = defaults.Sync.CodeTTL
	}
	if c.Sync.TokenTTL == 0 {
		c.Sync.TokenTTL = defaults.Sync.TokenTTL
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Storage.File == "" {
		return fmt.Errorf("storage.file cannot be empty")
	}

	if c.Import.BatchSize < 1 {
		return fmt.Errorf("import.batch_size must be at least 1")
	}

	if c.Sync.CodeTTL < time.Minute {
		return fmt.Errorf("sync.code_ttl must be at least 1m")
	}

	if c.Sync.TokenTTL < time.Hour {
		return fmt.Errorf("sync.token_ttl must be at least 1h")
	}

	return nil
}
