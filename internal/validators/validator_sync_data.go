package validators

import (
	"context"
	"fmt"
	"strings"

	"github.com/linkdeck/linkdeck/models"
)

// Field names accepted by [SyncDataValidator.Validate] for scoped checks.
const (
	FieldLogin    = "login"
	FieldPassword = "password"
	FieldMeta     = "meta"
	FieldBackupID = "backup_id"
	FieldName     = "name"
)

// SyncDataValidator validates the payloads exchanged between agents and the
// snapshot server: account credentials, snapshot blobs, and backup
// descriptors.
type SyncDataValidator struct {
}

// NewSyncDataValidator constructs a stateless [SyncDataValidator].
func NewSyncDataValidator() Validator {
	return &SyncDataValidator{}
}

// Validate dispatches on the dynamic type of obj. Without field names every
// rule for the type is applied; with field names only the named rules run.
func (v *SyncDataValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.Account:
		return v.validateAccount(ctx, value, fields...)
	case *models.Account:
		return v.validateAccount(ctx, *value, fields...)

	case *models.Snapshot:
		return v.validateSnapshot(ctx, value, fields...)

	case models.BackupInfo:
		return v.validateBackupInfo(ctx, value, fields...)
	case *models.BackupInfo:
		return v.validateBackupInfo(ctx, *value, fields...)
	}

	return fmt.Errorf("%w: %T", ErrUnsupportedType, obj)
}

func (v *SyncDataValidator) validateAccount(_ context.Context, account models.Account, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldLogin, FieldPassword}
	}

	for _, field := range fields {
		switch field {
		case FieldLogin:
			if account.Login == "" {
				return ErrEmptyLogin
			}
		case FieldPassword:
			if account.Password == "" {
				return ErrEmptyPassword
			}
		default:
			return fmt.Errorf("%w: %q", ErrUnknownField, field)
		}
	}

	return nil
}

func (v *SyncDataValidator) validateSnapshot(_ context.Context, snapshot *models.Snapshot, fields ...string) error {
	if snapshot == nil {
		return ErrNilSnapshot
	}

	if len(fields) == 0 {
		fields = []string{FieldMeta}
	}

	for _, field := range fields {
		switch field {
		case FieldMeta:
			if snapshot.Meta.IsZero() {
				return ErrMissingSnapshotMeta
			}
		default:
			return fmt.Errorf("%w: %q", ErrUnknownField, field)
		}
	}

	return nil
}

func (v *SyncDataValidator) validateBackupInfo(_ context.Context, info models.BackupInfo, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldBackupID, FieldName}
	}

	for _, field := range fields {
		switch field {
		case FieldBackupID:
			if info.ID == "" {
				return ErrEmptyBackupID
			}
		case FieldName:
			if strings.TrimSpace(info.Name) == "" {
				return ErrEmptyBackupName
			}
		default:
			return fmt.Errorf("%w: %q", ErrUnknownField, field)
		}
	}

	return nil
}
