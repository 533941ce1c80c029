package store

import "errors"

// Sentinel errors returned by repository and local-store methods to signal
// well-known failure conditions. Callers should use [errors.Is] to match
// against these values.
var (
	// ErrLoginAlreadyExists is returned when an attempt to register a new
	// account fails because an account with the same login already exists.
	ErrLoginAlreadyExists = errors.New("login already exists")

	// ErrNoAccountWasFound is returned when a query expected to match at
	// least one account record produces an empty result set.
	ErrNoAccountWasFound = errors.New("no account was found")

	// ErrSnapshotNotFound is returned when an account has no stored snapshot
	// yet. For the sync protocol this is a normal first-run condition, not a
	// failure.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrBackupNotFound is returned when a backup id does not exist for the
	// addressed account.
	ErrBackupNotFound = errors.New("backup not found")

	// ErrStorageUnavailable is returned (or wrapped) by the agent's local
	// store when the underlying database cannot be reached. It maps to the
	// user-visible storage error kind: local edits may be lost across a
	// reload, so it is never silently retried.
	ErrStorageUnavailable = errors.New("local storage unavailable")
)
