package service

import (
	"context"

	"github.com/linkdeck/linkdeck/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// AuthService handles account registration, credential verification, and
// the JWT token lifecycle.
type AuthService interface {
	Register(ctx context.Context, account models.Account) (models.Account, error)
	Login(ctx context.Context, account models.Account) (models.Account, error)

	// ChangePassword verifies currentPassword for accountID and, when
	// newPassword is non-empty, replaces the stored hash. An empty
	// newPassword makes the call a pure verification.
	ChangePassword(ctx context.Context, accountID int64, currentPassword, newPassword string) (models.Account, error)

	// GetAccount loads the account record behind a validated token, giving
	// the request pipeline the role attached to the identity.
	GetAccount(ctx context.Context, accountID int64) (models.Account, error)

	CreateToken(ctx context.Context, account models.Account) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// SnapshotService owns the live snapshot blob of each account.
type SnapshotService interface {
	// GetSnapshot loads the account's live snapshot.
	GetSnapshot(ctx context.Context, accountID int64) (*models.Snapshot, error)

	// PutSnapshot replaces the account's live snapshot. Write access is
	// gated on the account role.
	PutSnapshot(ctx context.Context, accountID int64, role models.Role, snapshot *models.Snapshot) error
}

// BackupService owns the named backup blobs of each account.
type BackupService interface {
	ListBackups(ctx context.Context, accountID int64) ([]models.BackupInfo, error)
	GetBackup(ctx context.Context, accountID int64, backupID string) (*models.Snapshot, error)
	PutBackup(ctx context.Context, accountID int64, role models.Role, backupID, name string, snapshot *models.Snapshot) error
	DeleteBackup(ctx context.Context, accountID int64, role models.Role, backupID string) error
}
