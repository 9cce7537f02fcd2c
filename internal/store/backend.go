package store

import (
	"fmt"
	"sync"

	"restui/internal/config"
	"restui/internal/logger"
)

// Backend stores whole documents under a key.
// Load returns (nil, nil) when nothing is stored under key.
type Backend interface {
	Load(key string) ([]byte, error)
	Save(key string, doc []byte) error
	Close() error
}

// Open creates the backend named by driver (sqlite|bolt|memory)
func Open(driver, path string) (Backend, error) {
	switch driver {
	case "sqlite":
		return NewSQLiteBackend(path)
	case "bolt":
		return NewBoltBackend(path)
	case "memory":
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}

// MemoryBackend keeps documents in process memory
type MemoryBackend struct {
	mu     sync.RWMutex
	docs   map[string][]byte
	closed bool
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string][]byte)}
}

// Load returns a copy of the document stored under key
func (m *MemoryBackend) Load(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, errBackendUnavailable
	}
	doc, ok := m.docs[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), doc...), nil
}

// Save replaces the document stored under key
func (m *MemoryBackend) Save(key string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errBackendUnavailable
	}
	m.docs[key] = append([]byte(nil), doc...)
	return nil
}

// Close marks the backend unusable
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// FromConfig opens the configured backend and wraps it in a Store
func FromConfig(c config.StoreConfig, log logger.Logger) (*Store, error) {
	backend, err := Open(c.Driver, c.Path)
	if err != nil {
		return nil, err
	}
	return New(backend, WithCollectionKey(c.CollectionKey), WithLogger(log)), nil
}
