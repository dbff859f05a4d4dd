// Package file implements a storage.KV backend that stores each value in a
// plain file under a data directory.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sparkdo/storage"
)

// Config holds file backend configuration
type Config struct {
	Dir string // Directory holding one file per key
}

// Backend implements storage.KV for file-based storage
type Backend struct {
	dir string // Resolved absolute path
}

// New creates a new file backend
func New(cfg Config) (*Backend, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "sparkdo-data"
	}

	// Resolve relative paths
	if !filepath.IsAbs(dir) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = filepath.Join(wd, dir)
	}

	return &Backend{dir: dir}, nil
}

// ReadString returns the contents of the file named after key.
func (b *Backend) ReadString(key string) (string, bool, error) {
	data, err := os.ReadFile(b.path(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(data), true, nil
}

// WriteString writes value to the file named after key, creating the data
// directory on first use.
func (b *Backend) WriteString(key, value string) error {
	if err := os.MkdirAll(b.dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp := b.path(key) + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return os.Rename(tmp, b.path(key))
}

// Close closes the backend
func (b *Backend) Close() error {
	return nil
}

// path maps a key to its backing file. Path separators in keys are
// flattened so a key can never escape the data directory.
func (b *Backend) path(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_").Replace(key)
	return filepath.Join(b.dir, safe+".json")
}

// Verify interface compliance at compile time
var _ storage.KV = (*Backend)(nil)
