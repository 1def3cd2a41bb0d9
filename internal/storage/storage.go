// Package storage keeps opaque state blobs in a SQLite database.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Load when no blob is stored under the key.
var ErrNotFound = errors.New("blob not found")

// DB is a key-value blob store backed by SQLite.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the database at path and migrates it to the
// latest schema. Use ":memory:" for a throwaway database.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// a single connection keeps ":memory:" databases alive and serialises writers
	conn.SetMaxOpenConns(1)

	db := &DB{conn}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("configure %s: %w", path, err)
	}
	if err := db.MigrateUp(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	version, dirty, err := db.MigrateVersion()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if dirty {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: schema version %d is dirty", path, version)
	}

	log.Debug().Str("path", path).Uint("schema_version", version).Msg("Storage opened")
	return db, nil
}

// Load returns the blob stored under key.
func (db *DB) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := db.QueryRowContext(ctx, `SELECT value FROM blobs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", key, err)
	}
	return value, nil
}

// Save stores data under key, replacing any previous blob.
func (db *DB) Save(ctx context.Context, key string, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, data)
	if err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}
	return nil
}

// Delete removes the blob under key. Missing keys are not an error.
func (db *DB) Delete(ctx context.Context, key string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM blobs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
