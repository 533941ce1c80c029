package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/models"
)

// backupRepository is the PostgreSQL-backed implementation of
// [BackupRepository]. Backups live in their own table keyed by
// (account_id, backup_id), fully separate from the live snapshot row.
//
// Statements with a variable shape (listing, upsert) are built with
// squirrel; the fixed lookups reuse the prepared texts in sql_queries.go.
type backupRepository struct {
	logger  *logger.Logger
	db      *DB
	builder sq.StatementBuilderType
}

// NewBackupRepository constructs a [BackupRepository] backed by the provided
// database connection and logger.
func NewBackupRepository(db *DB, logger *logger.Logger) BackupRepository {
	logger.Debug().Msg("creating backup repository")
	return &backupRepository{
		db:      db,
		logger:  logger,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// ListBackups returns descriptors of all backups of accountID, newest first.
func (r *backupRepository) ListBackups(ctx context.Context, accountID int64) ([]models.BackupInfo, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.builder.
		Select("backup_id", "name", "created_at", "updated_at", "device_id").
		From("backups").
		Where(sq.Eq{"account_id": accountID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list backups query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*backupRepository.ListBackups").Msg("error listing backups")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer func() { _ = rows.Close() }()

	backups := make([]models.BackupInfo, 0)
	for rows.Next() {
		var info models.BackupInfo
		if err = rows.Scan(&info.ID, &info.Name, &info.CreatedAt, &info.Meta.UpdatedAt, &info.Meta.DeviceID); err != nil {
			return nil, fmt.Errorf("scan backup row: %w", err)
		}
		backups = append(backups, info)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate backup rows: %w", err)
	}

	return backups, nil
}

// GetBackup loads and decodes one backup blob.
func (r *backupRepository) GetBackup(ctx context.Context, accountID int64, backupID string) (*models.Snapshot, error) {
	log := logger.FromContext(ctx)

	var body []byte
	err := r.db.QueryRowContext(ctx, getBackup, accountID, backupID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBackupNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "*backupRepository.GetBackup").Msg("error reading backup")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}

	snapshot := new(models.Snapshot)
	if err = json.Unmarshal(body, snapshot); err != nil {
		return nil, fmt.Errorf("decode backup body: %w", err)
	}

	return snapshot, nil
}

// PutBackup writes or replaces a backup blob under (accountID, backupID).
func (r *backupRepository) PutBackup(ctx context.Context, accountID int64, backupID, name string, snapshot *models.Snapshot) error {
	log := logger.FromContext(ctx)

	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode backup body: %w", err)
	}

	query, args, err := r.builder.
		Insert("backups").
		Columns("account_id", "backup_id", "name", "body", "updated_at", "device_id").
		Values(accountID, backupID, name, body, snapshot.Meta.UpdatedAt, snapshot.Meta.DeviceID).
		Suffix(`ON CONFLICT (account_id, backup_id)
			DO UPDATE SET name = EXCLUDED.name,
				body = EXCLUDED.body,
				updated_at = EXCLUDED.updated_at,
				device_id = EXCLUDED.device_id`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build put backup query: %w", err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*backupRepository.PutBackup").Msg("error writing backup")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}

// DeleteBackup removes a backup blob, reporting ErrBackupNotFound when the
// id was absent.
func (r *backupRepository) DeleteBackup(ctx context.Context, accountID int64, backupID string) error {
	log := logger.FromContext(ctx)

	res, err := r.db.ExecContext(ctx, deleteBackup, accountID, backupID)
	if err != nil {
		log.Err(err).Str("func", "*backupRepository.DeleteBackup").Msg("error deleting backup")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrBackupNotFound
	}

	return nil
}
