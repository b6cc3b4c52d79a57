package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_missing_file_returns_defaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load(filepath.Join(dataDir, "nope.yaml"), dataDir)
	require.NoError(t, err)

	assert.Equal(t, "workflow-items.json", cfg.Storage.File)
	assert.Equal(t, 20, cfg.Import.BatchSize)
	assert.Equal(t, 15*time.Minute, cfg.Sync.CodeTTL)
	assert.Equal(t, dataDir, cfg.DataDir)
}

func TestLoad_reads_yaml_and_fills_defaults(t *testing.T) {
	dataDir := t.TempDir()
	configPath := filepath.Join(dataDir, "config.yaml")
	content := `
storage:
  file: captured.json
sync:
  endpoint: https://sync.example.com
  token_secret: super-secret-signing-key
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	cfg, err := Load(configPath, dataDir)
	require.NoError(t, err)

	assert.Equal(t, "captured.json", cfg.Storage.File)
	assert.Equal(t, "https://sync.example.com", cfg.Sync.Endpoint)
	// Unset fields keep defaults.
	assert.Equal(t, 20, cfg.Import.BatchSize)
	assert.Equal(t, "localhost:8787", cfg.Sync.ListenAddr)
}

func TestLoad_invalid_yaml(t *testing.T) {
	dataDir := t.TempDir()
	configPath := filepath.Join(dataDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("storage: [nope"), 0o644))

	_, err := Load(configPath, dataDir)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(c *Config) {}, ""},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, "data directory"},
		{"zero batch size", func(c *Config) { c.Import.BatchSize = 0 }, "batch_size"},
		{"tiny code ttl", func(c *Config) { c.Sync.CodeTTL = time.Second }, "code_ttl"},
		{"tiny token ttl", func(c *Config) { c.Sync.TokenTTL = time.Minute }, "token_ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DataDir = t.TempDir()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateDeep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()

	assert.NoError(t, cfg.ValidateDeep(""))

	cfg.Sync.Endpoint = "ftp://files.example.com"
	assert.Error(t, cfg.ValidateDeep(""))

	cfg.Sync.Endpoint = "https://sync.example.com"
	cfg.TUI.Theme = "no-such-theme"
	assert.Error(t, cfg.ValidateDeep(""))
}
