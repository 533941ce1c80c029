package syncer

import (
	"time"

	"github.com/linkdeck/linkdeck/models"
)

// SyncStatus is the coordinator's externally visible state.
type SyncStatus string

const (
	// StatusIdle means no known local changes since the last successful
	// sync. A device that has never synced is also idle.
	StatusIdle SyncStatus = "idle"

	// StatusPending means a local mutation occurred and the debounce timer
	// is running before an automatic push is attempted.
	StatusPending SyncStatus = "pending"

	// StatusSyncing means a pull/push request is in flight. Concurrent
	// triggering is suppressed while in this state.
	StatusSyncing SyncStatus = "syncing"

	// StatusSynced means the last operation succeeded.
	StatusSynced SyncStatus = "synced"

	// StatusError means the last operation failed; ErrorKind carries the
	// classification.
	StatusError SyncStatus = "error"

	// StatusConflict means diverged snapshots await an explicit user
	// resolution. Automatic pushes are blocked until Resolve is called.
	StatusConflict SyncStatus = "conflict"
)

// ErrorKind classifies a failed sync operation for the presentation layer.
type ErrorKind string

const (
	ErrorKindNone ErrorKind = ""

	// ErrorKindNetwork marks transient transport failures, retried only on
	// manual trigger or the next debounce window.
	ErrorKindNetwork ErrorKind = "network"

	// ErrorKindStorage marks local persistence failures. Reported
	// distinctly because local edits may be lost across a reload; requires
	// the user's attention, not just a retry.
	ErrorKindStorage ErrorKind = "storage"

	ErrorKindUnknown ErrorKind = "unknown"
)

// StatusEvent is one observed coordinator state change. The presentation
// layer subscribes and renders; it holds no sync logic itself.
type StatusEvent struct {
	Status       SyncStatus
	LastSyncTime time.Time
	ErrorKind    ErrorKind
	ErrorMessage string

	// Conflict is non-nil only while a user decision is required.
	Conflict *models.SyncConflict
}
