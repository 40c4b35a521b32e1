// internal/store/sqlite.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"sttbackend/internal/logger"
)

// Connection configuration
const (
	maxOpenConns    = 1 // single writer, local file
	maxIdleConns    = 1
	connMaxLifetime = time.Hour
	queryTimeout    = time.Second * 30
)

const kvTableSchema = `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`

// SQLiteStore persists JSON values in a local sqlite file. Durable across
// restarts, scoped to one device, no network I/O.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the store at path with retry logic.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := openWithRetry(path, 3)
	if err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.createTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	return s, nil
}

func openWithRetry(path string, maxRetries int) (*sql.DB, error) {
	var db *sql.DB
	var err error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		db, err = sql.Open("sqlite", path)
		if err != nil {
			logger.LogWarn("Store open attempt %d failed: %v", attempt, err)
			if attempt < maxRetries {
				time.Sleep(time.Duration(attempt) * time.Second)
				continue
			}
			return nil, fmt.Errorf("failed to open store after %d attempts: %w", maxRetries, err)
		}

		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxIdleConns)
		db.SetConnMaxLifetime(connMaxLifetime)

		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		err = db.PingContext(ctx)
		cancel()

		if err != nil {
			logger.LogWarn("Store ping attempt %d failed: %v", attempt, err)
			db.Close()
			if attempt < maxRetries {
				time.Sleep(time.Duration(attempt) * time.Second)
				continue
			}
			return nil, fmt.Errorf("failed to ping store after %d attempts: %w", maxRetries, err)
		}

		if err := enablePragmas(db); err != nil {
			logger.LogWarn("Failed to enable some store optimizations: %v", err)
			// Don't fail initialization for pragma errors
		}

		return db, nil
	}

	return nil, fmt.Errorf("failed to initialize store after %d attempts", maxRetries)
}

func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}

	var lastErr error
	for _, pragma := range pragmas {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		_, err := db.ExecContext(ctx, pragma)
		cancel()

		if err != nil {
			logger.LogWarn("Failed to execute %s: %v", pragma, err)
			lastErr = err
		}
	}
	return lastErr
}

func (s *SQLiteStore) createTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, kvTableSchema)
	return err
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(key string, out interface{}) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load key %q: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		// Corrupt data fails safe to absent rather than erroring out.
		logger.LogWarn("Discarding corrupt value for key %q: %v", key, err)
		return false, nil
	}

	return true, nil
}

func (s *SQLiteStore) Save(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return &PersistenceError{Op: "save", Key: key, Err: err}
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	const stmt = `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, stmt, key, string(raw), time.Now().Format(time.RFC3339))
	if err != nil {
		logger.LogError("Store save failed: key=%s, error=%v", key, err)
		return &PersistenceError{Op: "save", Key: key, Err: err}
	}

	return nil
}

func (s *SQLiteStore) Remove(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		logger.LogError("Store remove failed: key=%s, error=%v", key, err)
		return &PersistenceError{Op: "remove", Key: key, Err: err}
	}

	return nil
}
