package kvstore

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/xtding233/fscoin/internal/logging"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SerializationError wraps a failure to encode or decode a stored value.
type SerializationError struct {
	Key string
	Op  string // "encode" or "decode"
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("kvstore: %s value for key %q: %v", e.Op, e.Key, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// Option configures a backend or store.
type Option func(*settings)

type settings struct {
	logger *logging.Logger
}

// WithLogger sets the logger used for backend failures.
func WithLogger(l *logging.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

func applyOptions(opts []Option) settings {
	s := settings{logger: logging.NewNop()}
	for _, o := range opts {
		o(&s)
	}
	return s
}

// Store is the typed view over a Backend.
type Store struct {
	backend Backend
}

// New wraps backend.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Get decodes the value under key into dst. found is false, and dst left
// untouched, when the key is absent.
func (s *Store) Get(key string, dst any) (found bool, err error) {
	if key == "" {
		return false, ErrInvalidKey
	}
	raw, found, err := s.backend.Get(key)
	if err != nil {
		return false, fmt.Errorf("kvstore: get %q: %w", key, err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, &SerializationError{Key: key, Op: "decode", Err: err}
	}
	return true, nil
}

// GetRaw returns the encoded value under key.
func (s *Store) GetRaw(key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrInvalidKey
	}
	return s.backend.Get(key)
}

// Set encodes value and stores it under key.
func (s *Store) Set(key string, value any) error {
	if key == "" {
		return ErrInvalidKey
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return &SerializationError{Key: key, Op: "encode", Err: err}
	}
	if err := s.backend.Set(key, raw); err != nil {
		return fmt.Errorf("kvstore: set %q: %w", key, err)
	}
	return nil
}

// SetRaw stores already encoded JSON under key after checking it parses.
func (s *Store) SetRaw(key string, raw []byte) error {
	if key == "" {
		return ErrInvalidKey
	}
	if !json.Valid(raw) {
		return &SerializationError{Key: key, Op: "encode", Err: fmt.Errorf("not valid JSON")}
	}
	if err := s.backend.Set(key, raw); err != nil {
		return fmt.Errorf("kvstore: set %q: %w", key, err)
	}
	return nil
}

// Remove deletes key.
func (s *Store) Remove(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if err := s.backend.Delete(key); err != nil {
		return fmt.Errorf("kvstore: remove %q: %w", key, err)
	}
	return nil
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// GetOr returns the value under key, or def if the key is absent. Presence
// decides, so a zero def is returned as-is.
func GetOr[T any](s *Store, key string, def T) (T, error) {
	var v T
	found, err := s.Get(key, &v)
	if err != nil {
		return def, err
	}
	if !found {
		return def, nil
	}
	return v, nil
}
