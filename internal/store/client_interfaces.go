package store

import (
	"context"

	"github.com/linkdeck/linkdeck/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_store_mock.go -package=mock

// LocalStore is the agent-side persistence contract. It holds the single
// source of truth for local state: the current snapshot, the sync
// checkpoint, the device identity, and the session token.
//
// Absent values are reported with [ErrSnapshotNotFound]-family sentinels;
// infrastructure failures wrap [ErrStorageUnavailable].
type LocalStore interface {
	// GetSnapshot loads the current local snapshot.
	// Returns ErrSnapshotNotFound if the device has no state yet.
	GetSnapshot(ctx context.Context) (*models.Snapshot, error)

	// SaveSnapshot atomically replaces the current local snapshot.
	SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) error

	// GetCheckpoint loads the last mutually agreed sync baseline.
	// A zero checkpoint with nil error means the device has never synced.
	GetCheckpoint(ctx context.Context) (models.Checkpoint, error)

	// SaveCheckpoint replaces the sync baseline. Only the sync coordinator
	// may call this.
	SaveCheckpoint(ctx context.Context, cp models.Checkpoint) error

	// GetDeviceID returns the persisted device identifier, or an empty
	// string with nil error if none has been created yet.
	GetDeviceID(ctx context.Context) (string, error)

	// SaveDeviceID persists the device identifier. Written once per
	// installation.
	SaveDeviceID(ctx context.Context, id string) error

	// GetSession returns the stored bearer token, empty if logged out.
	GetSession(ctx context.Context) (string, error)

	// SaveSession stores the bearer token. An empty token clears it.
	SaveSession(ctx context.Context, token string) error

	// Close releases the underlying database handle.
	Close() error
}
