package workers

import (
	"context"
	"errors"
	"time"

	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/syncer"
	"github.com/linkdeck/linkdeck/models"
)

// SyncTrigger is the slice of the sync coordinator the pull worker drives.
type SyncTrigger interface {
	ManualSync(ctx context.Context) error
	ManualPull(ctx context.Context) error
}

// PullWorker periodically refreshes local state from the remote service,
// so edits made on other devices show up without any local mutation
// happening first. Admin accounts run a full sync cycle; viewer accounts
// only pull.
type PullWorker struct {
	trigger  SyncTrigger
	interval time.Duration
	role     models.Role
	logger   *logger.Logger
}

// NewPullWorker builds a worker ticking every interval. A zero interval
// disables the worker; its Run returns immediately.
func NewPullWorker(trigger SyncTrigger, interval time.Duration, role models.Role, logger *logger.Logger) *PullWorker {
	return &PullWorker{
		trigger:  trigger,
		interval: interval,
		role:     role,
		logger:   logger,
	}
}

// Run implements [Worker]. It blocks until ctx is cancelled.
func (w *PullWorker) Run(ctx context.Context) {
	if w.interval <= 0 {
		w.logger.Info().Msg("periodic pull disabled")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info().Dur("interval", w.interval).Msg("periodic pull started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("periodic pull stopped")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *PullWorker) tick(ctx context.Context) {
	var err error
	if w.role.CanPush() {
		err = w.trigger.ManualSync(ctx)
	} else {
		err = w.trigger.ManualPull(ctx)
	}

	switch {
	case err == nil:
	case errors.Is(err, syncer.ErrSyncInFlight), errors.Is(err, syncer.ErrConflictPending):
		// Expected overlap with user activity; the next tick retries.
		w.logger.Debug().Err(err).Msg("periodic pull skipped")
	default:
		w.logger.Warn().Err(err).Msg("periodic pull failed")
	}
}
