// Package storage defines the key-value string port used for task persistence.
package storage

import "sync"

// KV is the persistence contract: read and write a single string value by key.
// Implementations live in the subpackages (file, sqlite, keyring).
type KV interface {
	// ReadString returns the value stored at key. The boolean reports whether
	// the key was present; absence is not an error.
	ReadString(key string) (string, bool, error)

	// WriteString stores value at key, replacing any previous value.
	WriteString(key, value string) error

	// Close releases any underlying resources.
	Close() error
}

// Memory is an in-process KV used by tests and as a fallback when no
// persistent backend is configured.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// ReadString implements KV.
func (m *Memory) ReadString(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// WriteString implements KV.
func (m *Memory) WriteString(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Close implements KV.
func (m *Memory) Close() error {
	return nil
}

// Verify interface compliance at compile time
var _ KV = (*Memory)(nil)
