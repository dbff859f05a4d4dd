// Package keyring implements a storage.KV backend on the OS keyring.
// The persisted task list is a single small string at a fixed key, which is
// exactly the shape of a keyring secret.
package keyring

import (
	"errors"
	"fmt"
	"sync"

	zkeyring "github.com/zalando/go-keyring"

	"sparkdo/storage"
)

// Keyring is the interface to an OS keyring
type Keyring interface {
	Set(service, account, value string) error
	Get(service, account string) (string, error)
	Delete(service, account string) error
}

// Backend implements storage.KV on top of a Keyring
type Backend struct {
	service string
	ring    Keyring
}

// New creates a keyring backend using the system keyring. The service name
// scopes all keys written by this backend.
func New(service string) *Backend {
	if service == "" {
		service = "sparkdo"
	}
	return &Backend{service: service, ring: &systemKeyring{}}
}

// NewWithKeyring creates a keyring backend with an injected Keyring,
// used by tests to avoid touching the real OS keyring.
func NewWithKeyring(service string, ring Keyring) *Backend {
	return &Backend{service: service, ring: ring}
}

// ReadString implements storage.KV.
func (b *Backend) ReadString(key string) (string, bool, error) {
	value, err := b.ring.Get(b.service, key)
	if err != nil {
		if errors.Is(err, zkeyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("keyring read %s: %w", key, err)
	}
	return value, true, nil
}

// WriteString implements storage.KV.
func (b *Backend) WriteString(key, value string) error {
	if err := b.ring.Set(b.service, key, value); err != nil {
		return fmt.Errorf("keyring write %s: %w", key, err)
	}
	return nil
}

// Close implements storage.KV.
func (b *Backend) Close() error {
	return nil
}

// systemKeyring is the real keyring implementation using the OS keyring
type systemKeyring struct{}

func (s *systemKeyring) Set(service, account, value string) error {
	return zkeyring.Set(service, account, value)
}

func (s *systemKeyring) Get(service, account string) (string, error) {
	return zkeyring.Get(service, account)
}

func (s *systemKeyring) Delete(service, account string) error {
	return zkeyring.Delete(service, account)
}

// MockKeyring is a test implementation of the Keyring interface
type MockKeyring struct {
	mu    sync.RWMutex
	store map[string]map[string]string // service -> account -> value
}

// NewMockKeyring creates a new mock keyring for testing
func NewMockKeyring() *MockKeyring {
	return &MockKeyring{store: make(map[string]map[string]string)}
}

// Set stores a value in the mock keyring
func (m *MockKeyring) Set(service, account, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store[service] == nil {
		m.store[service] = make(map[string]string)
	}
	m.store[service][account] = value
	return nil
}

// Get retrieves a value from the mock keyring
func (m *MockKeyring) Get(service, account string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if accounts, ok := m.store[service]; ok {
		if value, ok := accounts[account]; ok {
			return value, nil
		}
	}
	return "", zkeyring.ErrNotFound
}

// Delete removes a value from the mock keyring
func (m *MockKeyring) Delete(service, account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if accounts, ok := m.store[service]; ok {
		if _, ok := accounts[account]; ok {
			delete(accounts, account)
			return nil
		}
	}
	return zkeyring.ErrNotFound
}

// Verify interface compliance at compile time
var _ storage.KV = (*Backend)(nil)
