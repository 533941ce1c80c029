// Package app contains shared application-layer constants used across the
// linkdeck server handlers and middleware.
//
// All Msg* constants are human-readable message strings that are written into
// HTTP response bodies or log entries to describe the outcome of an operation.
// Keeping them in one place ensures consistent wording throughout the API.
package app

const (
	// MsgInvalidJSONProvided is returned when the request body is not
	// well-formed JSON.
	MsgInvalidJSONProvided = "Invalid JSON was passed"

	// MsgInvalidDataProvided is returned when the request body decodes but
	// fails basic validation (e.g. missing required fields).
	MsgInvalidDataProvided = "invalid data provided"

	// MsgInvalidLoginPassword is returned when the supplied login/password
	// combination does not match any existing account record.
	MsgInvalidLoginPassword = "invalid login/password"

	// MsgLoginAlreadyExists is returned when registration is attempted with
	// a login that is already taken.
	MsgLoginAlreadyExists = "login already exists"

	// MsgNoSnapshotStored is returned when an account requests its live
	// snapshot before the first push.
	MsgNoSnapshotStored = "no snapshot stored"

	// MsgBackupNotFound is returned when the requested backup id does not
	// exist for the calling account.
	MsgBackupNotFound = "backup not found"

	// MsgInvalidGzipData is returned when a request declares gzip content
	// encoding but the body cannot be decompressed.
	MsgInvalidGzipData = "Invalid gzip data"
)
