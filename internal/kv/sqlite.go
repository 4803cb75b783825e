package kv

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/apogee-blog/apogee/internal/db"
)

// DBStore is a durable Store backed by the application's kv table. It holds
// state that must survive restarts: visitor identities and draft snapshots.
type DBStore struct {
	db db.DB
}

func NewDBStore(db db.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Get(key string) (string, bool) {
	var value string
	row := s.db.Get().QueryRow(`SELECT value FROM kv WHERE key = ?`, key)
	if err := row.Scan(&value); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			kvLogger.Error().Err(err).Str("key", key).Msg("Error reading kv entry")
		}
		return "", false
	}
	return value, true
}

func (s *DBStore) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("error writing kv entry: %w", err)
	}
	return nil
}

func (s *DBStore) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("error deleting kv entry: %w", err)
	}
	return nil
}
