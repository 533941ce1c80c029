// Package store contains all persistence implementations: the PostgreSQL
// repositories backing the snapshot blob server and the sqlite key-value
// store backing the sync agent.
package store

import (
	"context"

	"github.com/linkdeck/linkdeck/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// AccountRepository manages registered accounts on the server.
type AccountRepository interface {
	// CreateAccount persists a new account record and returns it with
	// server-assigned fields (AccountID, CreatedAt) populated.
	// Returns ErrLoginAlreadyExists on a duplicate login.
	CreateAccount(ctx context.Context, account models.Account) (models.Account, error)

	// FindAccountByLogin retrieves the account matching login.
	// Returns ErrNoAccountWasFound on an empty result.
	FindAccountByLogin(ctx context.Context, login string) (models.Account, error)

	// FindAccountByID retrieves the account with the given identifier.
	// Returns ErrNoAccountWasFound on an empty result.
	FindAccountByID(ctx context.Context, accountID int64) (models.Account, error)

	// UpdatePassword replaces the stored password hash of accountID.
	// Returns ErrNoAccountWasFound if the account does not exist.
	UpdatePassword(ctx context.Context, accountID int64, passwordHash string) error
}

// SnapshotRepository stores the single live snapshot blob per account.
// Whole-object semantics: a put replaces the previous blob atomically,
// there are no partial writes.
type SnapshotRepository interface {
	// GetSnapshot loads the live snapshot of accountID.
	// Returns ErrSnapshotNotFound if the account has never pushed.
	GetSnapshot(ctx context.Context, accountID int64) (*models.Snapshot, error)

	// PutSnapshot atomically replaces the live snapshot of accountID.
	PutSnapshot(ctx context.Context, accountID int64, snapshot *models.Snapshot) error
}

// BackupRepository stores named historical snapshots, addressed separately
// from the live blob.
type BackupRepository interface {
	// ListBackups returns backup descriptors for accountID, newest first.
	ListBackups(ctx context.Context, accountID int64) ([]models.BackupInfo, error)

	// GetBackup loads one backup blob. Returns ErrBackupNotFound if the id
	// does not exist for accountID.
	GetBackup(ctx context.Context, accountID int64, backupID string) (*models.Snapshot, error)

	// PutBackup writes a backup blob under the given id and name,
	// replacing any existing blob with the same id.
	PutBackup(ctx context.Context, accountID int64, backupID, name string, snapshot *models.Snapshot) error

	// DeleteBackup removes a backup blob. Returns ErrBackupNotFound if the
	// id does not exist for accountID.
	DeleteBackup(ctx context.Context, accountID int64, backupID string) error
}
