// Package config handles application configuration
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed config.sample.yaml
var sampleConfig string

// GetSampleConfig returns the embedded sample configuration content
func GetSampleConfig() string {
	return sampleConfig
}

// SoundConfig holds audio feedback settings
type SoundConfig struct {
	Enabled bool `yaml:"enabled"`
}

// FileStorageConfig holds file backend configuration
type FileStorageConfig struct {
	Dir string `yaml:"dir"`
}

// SQLiteStorageConfig holds sqlite backend configuration
type SQLiteStorageConfig struct {
	Path string `yaml:"path"`
}

// KeyringStorageConfig holds keyring backend configuration
type KeyringStorageConfig struct {
	Service string `yaml:"service"`
}

// StorageConfig holds persistence settings
type StorageConfig struct {
	Backend string               `yaml:"backend"` // memory, file, sqlite, keyring
	Key     string               `yaml:"key"`     // persistence key for the task list
	File    FileStorageConfig    `yaml:"file"`
	SQLite  SQLiteStorageConfig  `yaml:"sqlite"`
	Keyring KeyringStorageConfig `yaml:"keyring"`
}

// Config represents the application configuration
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Sound   SoundConfig   `yaml:"sound"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	dataDir := defaultDataDir()
	return &Config{
		Storage: StorageConfig{
			Backend: "file",
			Key:     "sparkdo-tasks",
			File: FileStorageConfig{
				Dir: dataDir,
			},
			SQLite: SQLiteStorageConfig{
				Path: filepath.Join(dataDir, "sparkdo.db"),
			},
			Keyring: KeyringStorageConfig{
				Service: "sparkdo",
			},
		},
		Sound: SoundConfig{
			Enabled: true,
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "sparkdo", "config.yaml")
	}
	return "config.yaml"
}

// Load reads the config at path, layered over defaults. A missing file is
// not an error; the defaults apply unchanged.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "memory", "file", "sqlite", "keyring":
		return nil
	default:
		return fmt.Errorf("unknown storage backend: %s", c.Storage.Backend)
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "sparkdo")
	}
	return "sparkdo-data"
}
