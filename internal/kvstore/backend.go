// Package kvstore implements a small persistent key/value store holding
// JSON encoded values under string keys.
package kvstore

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrInvalidKey = errors.New("invalid key; must be non-empty")
	ErrClosed     = errors.New("store is closed")

	_ Backend = (*MemoryBackend)(nil)
)

// Backend stores raw bytes under string keys.
type Backend interface {
	// Get retrieves a previously stored value; found is false if the key is absent.
	Get(key string) (value []byte, found bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// Close releases the backend.
	Close() error
}

// Kind names a backend implementation.
type Kind string

const (
	KindMemory Kind = "memory"
	KindBadger Kind = "badger"
	KindSQLite Kind = "sqlite"
)

// MemoryBackend keeps values in a map; nothing survives Close.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string][]byte)}
}

func (m *MemoryBackend) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.values == nil {
		return nil, false, ErrClosed
	}
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryBackend) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		return ErrClosed
	}
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryBackend) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		return ErrClosed
	}
	delete(m.values, key)
	return nil
}

func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	m.values = nil
	m.mu.Unlock()
	return nil
}

// Open builds the backend named by kind. path is ignored for memory.
func Open(kind Kind, path string, opts ...Option) (Backend, error) {
	switch kind {
	case KindMemory, "":
		return NewMemoryBackend(), nil
	case KindBadger:
		return OpenBadger(path, opts...)
	case KindSQLite:
		return OpenSQLite(path, opts...)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}
