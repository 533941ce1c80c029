package syncer

import "errors"

var (
	// ErrConflictPending is returned when a sync-affecting operation is
	// attempted while a conflict awaits explicit resolution.
	ErrConflictPending = errors.New("a sync conflict is awaiting resolution")

	// ErrNoConflict is returned by Resolve when no conflict is active.
	ErrNoConflict = errors.New("no sync conflict to resolve")

	// ErrPushNotAllowed is returned when a read-only account attempts an
	// operation that would write to the remote snapshot.
	ErrPushNotAllowed = errors.New("account role does not permit pushing changes")

	// ErrSyncInFlight is returned by manual triggers while another sync
	// request is already running.
	ErrSyncInFlight = errors.New("sync already in progress")

	// ErrCoordinatorClosed is returned after Close.
	ErrCoordinatorClosed = errors.New("sync coordinator is closed")

	// ErrVaultEmpty is returned by vault operations when the snapshot has
	// no private partition yet.
	ErrVaultEmpty = errors.New("snapshot has no vault envelope")
)
