// Package adapter implements the agent's client for the remote snapshot
// blob service. The service is treated as an atomic whole-object store:
// one live snapshot per account plus named backup objects, no partial
// writes.
package adapter

import (
	"context"

	"github.com/linkdeck/linkdeck/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_store_mock.go -package=mock

// RemoteStore is the agent-side contract for the snapshot blob service.
type RemoteStore interface {
	// Register creates a new account and stores the returned bearer token
	// on the adapter.
	Register(ctx context.Context, account models.Account) (models.Account, error)

	// Login authenticates and stores the returned bearer token on the
	// adapter.
	Login(ctx context.Context, account models.Account) (models.Account, error)

	// SetToken installs a previously persisted bearer token, e.g. across
	// agent restarts.
	SetToken(token string)

	// Token returns the bearer token currently held by the adapter.
	Token() string

	// VerifyPassword checks the account password without side effects.
	// Returns ErrUnauthorized if the password is wrong.
	VerifyPassword(ctx context.Context, password string) error

	// ChangePassword rotates the account password. The stored bearer token
	// is replaced with the one issued for the new credentials.
	ChangePassword(ctx context.Context, current, next string) error

	// GetSnapshot fetches the account's live snapshot.
	// Returns ErrNotFound if the account has never pushed.
	GetSnapshot(ctx context.Context) (*models.Snapshot, error)

	// PutSnapshot atomically replaces the account's live snapshot.
	PutSnapshot(ctx context.Context, snapshot *models.Snapshot) error

	// ListBackups returns the account's backup descriptors, newest first.
	ListBackups(ctx context.Context) ([]models.BackupInfo, error)

	// GetBackup fetches one named backup blob.
	GetBackup(ctx context.Context, backupID string) (*models.Snapshot, error)

	// PutBackup writes a named backup blob.
	PutBackup(ctx context.Context, backupID, name string, snapshot *models.Snapshot) error

	// DeleteBackup removes a named backup blob.
	DeleteBackup(ctx context.Context, backupID string) error
}
