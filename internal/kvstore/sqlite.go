package kvstore

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/xtding233/fscoin/internal/logging"
)

var _ Backend = (*SQLiteBackend)(nil)

// SQLiteBackend keeps values in a single "kv" table.
type SQLiteBackend struct {
	logger *logging.Logger
	conn   *sql.DB
}

// OpenSQLite opens (or creates) the database file at path.
func OpenSQLite(path string, opts ...Option) (*SQLiteBackend, error) {
	o := applyOptions(opts)
	if path == "" {
		path = ":memory:"
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	// ":memory:" databases are per connection
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value BLOB NOT NULL)"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	return &SQLiteBackend{logger: o.logger.With("backend", KindSQLite), conn: conn}, nil
}

func (s *SQLiteBackend) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.conn.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	switch {
	case err == nil:
		return value, true, nil
	case errors.Is(err, sql.ErrNoRows):
		return nil, false, nil
	default:
		s.logger.Error("failed get", "err", err, "key", key)
		return nil, false, err
	}
}

func (s *SQLiteBackend) Set(key string, value []byte) error {
	_, err := s.conn.Exec(
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		s.logger.Error("failed put", "err", err, "key", key)
	}
	return err
}

func (s *SQLiteBackend) Delete(key string) error {
	_, err := s.conn.Exec("DELETE FROM kv WHERE key = ?", key)
	if err != nil {
		s.logger.Error("failed delete", "err", err, "key", key)
	}
	return err
}

func (s *SQLiteBackend) Close() error {
	return s.conn.Close()
}
