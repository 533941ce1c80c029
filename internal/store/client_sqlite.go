package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	// Registers the "sqlite3" driver for the agent's local database.
	_ "github.com/mattn/go-sqlite3"

	"github.com/linkdeck/linkdeck/models"
)

// Well-known keys of the agent's local key-value table.
const (
	kvKeySnapshot   = "snapshot"
	kvKeyCheckpoint = "checkpoint"
	kvKeyDeviceID   = "device_id"
	kvKeySession    = "session_token"
)

const createLocalSchema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

const (
	getLocalValue = `SELECT value FROM kv WHERE key = ?;`

	upsertLocalValue = `INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;`

	deleteLocalValue = `DELETE FROM kv WHERE key = ?;`
)

// localSQLiteStore is the sqlite-backed implementation of [LocalStore].
// One database file per installation, created next to the configured path.
type localSQLiteStore struct {
	db *sql.DB
}

// NewLocalStore opens (creating if needed) the agent's sqlite database at
// dbPath and ensures the schema exists. An empty dbPath selects an in-memory
// database, useful for tests and throwaway runs.
func NewLocalStore(dbPath string) (LocalStore, error) {
	if dbPath == "" {
		dbPath = ":memory:"
	}

	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("%w: create local storage dir: %w", ErrStorageUnavailable, err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open local database: %w", ErrStorageUnavailable, err)
	}

	// One writer at a time keeps sqlite happy under the agent's
	// single-flight usage pattern.
	db.SetMaxOpenConns(1)

	if _, err = db.Exec(createLocalSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: create local schema: %w", ErrStorageUnavailable, err)
	}

	return &localSQLiteStore{db: db}, nil
}

// GetSnapshot implements [LocalStore].
func (s *localSQLiteStore) GetSnapshot(ctx context.Context) (*models.Snapshot, error) {
	raw, err := s.getValue(ctx, kvKeySnapshot)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, ErrSnapshotNotFound
	}

	snapshot := new(models.Snapshot)
	if err = json.Unmarshal([]byte(raw), snapshot); err != nil {
		return nil, fmt.Errorf("%w: decode stored snapshot: %w", ErrStorageUnavailable, err)
	}
	return snapshot, nil
}

// SaveSnapshot implements [LocalStore].
func (s *localSQLiteStore) SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("%w: encode snapshot: %w", ErrStorageUnavailable, err)
	}
	return s.setValue(ctx, kvKeySnapshot, string(raw))
}

// GetCheckpoint implements [LocalStore].
func (s *localSQLiteStore) GetCheckpoint(ctx context.Context) (models.Checkpoint, error) {
	raw, err := s.getValue(ctx, kvKeyCheckpoint)
	if err != nil || raw == "" {
		return models.Checkpoint{}, err
	}

	var cp models.Checkpoint
	if err = json.Unmarshal([]byte(raw), &cp); err != nil {
		return models.Checkpoint{}, fmt.Errorf("%w: decode stored checkpoint: %w", ErrStorageUnavailable, err)
	}
	return cp, nil
}

// SaveCheckpoint implements [LocalStore].
func (s *localSQLiteStore) SaveCheckpoint(ctx context.Context, cp models.Checkpoint) error {
	raw, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("%w: encode checkpoint: %w", ErrStorageUnavailable, err)
	}
	return s.setValue(ctx, kvKeyCheckpoint, string(raw))
}

// GetDeviceID implements [LocalStore].
func (s *localSQLiteStore) GetDeviceID(ctx context.Context) (string, error) {
	return s.getValue(ctx, kvKeyDeviceID)
}

// SaveDeviceID implements [LocalStore].
func (s *localSQLiteStore) SaveDeviceID(ctx context.Context, id string) error {
	return s.setValue(ctx, kvKeyDeviceID, id)
}

// GetSession implements [LocalStore].
func (s *localSQLiteStore) GetSession(ctx context.Context) (string, error) {
	return s.getValue(ctx, kvKeySession)
}

// SaveSession implements [LocalStore].
func (s *localSQLiteStore) SaveSession(ctx context.Context, token string) error {
	if token == "" {
		if _, err := s.db.ExecContext(ctx, deleteLocalValue, kvKeySession); err != nil {
			return fmt.Errorf("%w: clear session: %w", ErrStorageUnavailable, err)
		}
		return nil
	}
	return s.setValue(ctx, kvKeySession, token)
}

// Close implements [LocalStore].
func (s *localSQLiteStore) Close() error {
	return s.db.Close()
}

func (s *localSQLiteStore) getValue(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, getLocalValue, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: read %q: %w", ErrStorageUnavailable, key, err)
	}
	return value, nil
}

func (s *localSQLiteStore) setValue(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, upsertLocalValue, key, value); err != nil {
		return fmt.Errorf("%w: write %q: %w", ErrStorageUnavailable, key, err)
	}
	return nil
}
