package service

import (
	"context"
	"fmt"

	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/store"
	"github.com/linkdeck/linkdeck/internal/validators"
	"github.com/linkdeck/linkdeck/models"
)

// snapshotService is the concrete implementation of SnapshotService. The
// snapshot is an opaque blob to the server: it is stored and returned
// whole, never inspected or merged. Conflict detection happens on the
// agents, which is why a put unconditionally replaces the previous blob.
type snapshotService struct {
	snapshotRepository store.SnapshotRepository
	validator          validators.Validator
	logger             *logger.Logger
}

// NewSnapshotService constructs a SnapshotService over the given repository.
func NewSnapshotService(snapshotRepository store.SnapshotRepository, validator validators.Validator, logger *logger.Logger) SnapshotService {
	return &snapshotService{
		snapshotRepository: snapshotRepository,
		validator:          validator,
		logger:             logger,
	}
}

// GetSnapshot loads the live snapshot of accountID. Propagates
// store.ErrSnapshotNotFound for accounts that have never pushed.
func (s *snapshotService) GetSnapshot(ctx context.Context, accountID int64) (*models.Snapshot, error) {
	snapshot, err := s.snapshotRepository.GetSnapshot(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("snapshot load failed: %w", err)
	}

	return snapshot, nil
}

// PutSnapshot replaces the live snapshot of accountID. Viewer roles are
// rejected with ErrPushForbidden; a snapshot without commit meta is
// rejected with ErrInvalidDataProvided because an agent always stamps
// before pushing.
func (s *snapshotService) PutSnapshot(ctx context.Context, accountID int64, role models.Role, snapshot *models.Snapshot) error {
	log := logger.FromContext(ctx)

	if !role.CanPush() {
		log.Error().Int64("account_id", accountID).Str("role", string(role)).Msg("push rejected for role")
		return ErrPushForbidden
	}
	if err := s.validator.Validate(ctx, snapshot); err != nil {
		log.Err(err).Int64("account_id", accountID).Msg("invalid snapshot provided")
		return ErrInvalidDataProvided
	}

	if err := s.snapshotRepository.PutSnapshot(ctx, accountID, snapshot); err != nil {
		log.Err(err).Int64("account_id", accountID).Msg("snapshot store failed")
		return fmt.Errorf("snapshot store failed: %w", err)
	}

	return nil
}
