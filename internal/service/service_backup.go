package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/store"
	"github.com/linkdeck/linkdeck/internal/validators"
	"github.com/linkdeck/linkdeck/models"
)

// backupService is the concrete implementation of BackupService. Like the
// live snapshot, backup blobs are opaque to the server; only the listing
// metadata (name, timestamps, origin meta) is interpreted.
type backupService struct {
	backupRepository store.BackupRepository
	validator        validators.Validator
	logger           *logger.Logger
}

// NewBackupService constructs a BackupService over the given repository.
func NewBackupService(backupRepository store.BackupRepository, validator validators.Validator, logger *logger.Logger) BackupService {
	return &backupService{
		backupRepository: backupRepository,
		validator:        validator,
		logger:           logger,
	}
}

// ListBackups returns backup descriptors for accountID, newest first.
func (b *backupService) ListBackups(ctx context.Context, accountID int64) ([]models.BackupInfo, error) {
	backups, err := b.backupRepository.ListBackups(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("backup listing failed: %w", err)
	}

	return backups, nil
}

// GetBackup loads one backup blob. Propagates store.ErrBackupNotFound.
func (b *backupService) GetBackup(ctx context.Context, accountID int64, backupID string) (*models.Snapshot, error) {
	if err := b.validator.Validate(ctx, models.BackupInfo{ID: backupID}, validators.FieldBackupID); err != nil {
		return nil, ErrInvalidDataProvided
	}

	snapshot, err := b.backupRepository.GetBackup(ctx, accountID, backupID)
	if err != nil {
		return nil, fmt.Errorf("backup load failed: %w", err)
	}

	return snapshot, nil
}

// PutBackup stores a backup blob under backupID. Viewer roles are rejected
// with ErrPushForbidden.
func (b *backupService) PutBackup(ctx context.Context, accountID int64, role models.Role, backupID, name string, snapshot *models.Snapshot) error {
	log := logger.FromContext(ctx)

	if !role.CanPush() {
		log.Error().Int64("account_id", accountID).Str("role", string(role)).Msg("backup write rejected for role")
		return ErrPushForbidden
	}
	if err := b.validator.Validate(ctx, models.BackupInfo{ID: backupID, Name: name}); err != nil {
		log.Err(err).Int64("account_id", accountID).Msg("invalid backup descriptor provided")
		return ErrInvalidDataProvided
	}
	if snapshot == nil {
		return ErrInvalidDataProvided
	}

	if err := b.backupRepository.PutBackup(ctx, accountID, backupID, strings.TrimSpace(name), snapshot); err != nil {
		log.Err(err).Int64("account_id", accountID).Str("backup_id", backupID).Msg("backup store failed")
		return fmt.Errorf("backup store failed: %w", err)
	}

	return nil
}

// DeleteBackup removes a backup blob. Viewer roles are rejected with
// ErrPushForbidden; a missing id propagates store.ErrBackupNotFound.
func (b *backupService) DeleteBackup(ctx context.Context, accountID int64, role models.Role, backupID string) error {
	log := logger.FromContext(ctx)

	if !role.CanPush() {
		return ErrPushForbidden
	}
	if err := b.validator.Validate(ctx, models.BackupInfo{ID: backupID}, validators.FieldBackupID); err != nil {
		return ErrInvalidDataProvided
	}

	if err := b.backupRepository.DeleteBackup(ctx, accountID, backupID); err != nil {
		log.Err(err).Int64("account_id", accountID).Str("backup_id", backupID).Msg("backup delete failed")
		return fmt.Errorf("backup delete failed: %w", err)
	}

	return nil
}
