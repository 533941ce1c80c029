package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/models"
)

// snapshotRepository is the PostgreSQL-backed implementation of
// [SnapshotRepository]. One row per account in the "snapshots" table holds
// the whole serialized blob; the meta columns are denormalized copies kept
// for observability queries only.
type snapshotRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewSnapshotRepository constructs a [SnapshotRepository] backed by the
// provided database connection and logger.
func NewSnapshotRepository(db *DB, logger *logger.Logger) SnapshotRepository {
	logger.Debug().Msg("creating snapshot repository")
	return &snapshotRepository{
		db:     db,
		logger: logger,
	}
}

// GetSnapshot loads and decodes the live snapshot blob of accountID.
func (r *snapshotRepository) GetSnapshot(ctx context.Context, accountID int64) (*models.Snapshot, error) {
	log := logger.FromContext(ctx)

	var body []byte
	err := r.db.QueryRowContext(ctx, getSnapshot, accountID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "*snapshotRepository.GetSnapshot").Msg("error reading snapshot")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}

	snapshot := new(models.Snapshot)
	if err = json.Unmarshal(body, snapshot); err != nil {
		log.Err(err).Str("func", "*snapshotRepository.GetSnapshot").Msg("error decoding snapshot body")
		return nil, fmt.Errorf("decode snapshot body: %w", err)
	}

	return snapshot, nil
}

// PutSnapshot serializes snapshot and atomically replaces the live blob of
// accountID via an upsert.
func (r *snapshotRepository) PutSnapshot(ctx context.Context, accountID int64, snapshot *models.Snapshot) error {
	log := logger.FromContext(ctx)

	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot body: %w", err)
	}

	_, err = r.db.ExecContext(ctx, putSnapshot, accountID, body, snapshot.Meta.UpdatedAt, snapshot.Meta.DeviceID)
	if err != nil {
		log.Err(err).Str("func", "*snapshotRepository.PutSnapshot").Msg("error writing snapshot")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}
