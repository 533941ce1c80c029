// Package backup manages named snapshot backups kept on the remote blob
// service next to the live snapshot. A backup is a frozen whole snapshot;
// restoring one goes through the sync coordinator so unpushed local edits
// surface as a conflict instead of being overwritten.
package backup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/linkdeck/linkdeck/internal/adapter"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/store"
	"github.com/linkdeck/linkdeck/internal/syncer"
	"github.com/linkdeck/linkdeck/internal/utils"
	"github.com/linkdeck/linkdeck/models"
)

// ErrNothingToBackup is returned by Create when the device holds no
// snapshot yet.
var ErrNothingToBackup = errors.New("no local snapshot to back up")

// Restorer is the slice of the sync coordinator the backup store needs.
type Restorer interface {
	OfferRestore(ctx context.Context, candidate *models.Snapshot) error
}

// Store exposes backup operations to the presentation layer.
type Store struct {
	remote   adapter.RemoteStore
	local    store.LocalStore
	restorer Restorer
	uuid     *utils.UUIDGenerator
	log      *logger.Logger

	now func() time.Time
}

// NewStore wires a backup store over the remote adapter and the local
// snapshot store, routing restores through restorer.
func NewStore(remote adapter.RemoteStore, local store.LocalStore, restorer Restorer, log *logger.Logger) *Store {
	return &Store{
		remote:   remote,
		local:    local,
		restorer: restorer,
		uuid:     utils.NewUUIDGenerator(),
		log:      log,
		now:      time.Now,
	}
}

// List returns the account's backups, newest first.
func (s *Store) List(ctx context.Context) ([]models.BackupInfo, error) {
	backups, err := s.remote.ListBackups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	return backups, nil
}

// Create freezes the current local snapshot under a new backup id. The
// name is a user-chosen label; a blank name gets a timestamp label.
func (s *Store) Create(ctx context.Context, name string) (models.BackupInfo, error) {
	snap, err := s.local.GetSnapshot(ctx)
	if errors.Is(err, store.ErrSnapshotNotFound) {
		return models.BackupInfo{}, ErrNothingToBackup
	}
	if err != nil {
		return models.BackupInfo{}, fmt.Errorf("load snapshot: %w", err)
	}

	createdAt := s.now()
	name = strings.TrimSpace(name)
	if name == "" {
		name = createdAt.Format("backup 2006-01-02 15:04")
	}

	info := models.BackupInfo{
		ID:        s.uuid.Generate(),
		Name:      name,
		CreatedAt: createdAt,
		Meta:      snap.Meta,
	}

	if err = s.remote.PutBackup(ctx, info.ID, info.Name, snap); err != nil {
		return models.BackupInfo{}, fmt.Errorf("store backup: %w", err)
	}

	s.log.Info().Str("backup_id", info.ID).Str("name", info.Name).Msg("backup created")
	return info, nil
}

// Restore fetches the backup blob and offers it to the sync coordinator.
// Returns the coordinator's ErrConflictPending when local edits diverge
// from the backup and the user must arbitrate.
func (s *Store) Restore(ctx context.Context, backupID string) error {
	snap, err := s.remote.GetBackup(ctx, backupID)
	if err != nil {
		return fmt.Errorf("fetch backup: %w", err)
	}

	if err = s.restorer.OfferRestore(ctx, snap); err != nil {
		if errors.Is(err, syncer.ErrConflictPending) {
			s.log.Info().Str("backup_id", backupID).Msg("restore raised a conflict")
		}
		return err
	}

	s.log.Info().Str("backup_id", backupID).Msg("backup restored")
	return nil
}

// Delete removes one backup object from the remote service.
func (s *Store) Delete(ctx context.Context, backupID string) error {
	if err := s.remote.DeleteBackup(ctx, backupID); err != nil {
		return fmt.Errorf("delete backup: %w", err)
	}
	return nil
}
