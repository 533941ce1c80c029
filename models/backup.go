package models

import "time"

// BackupInfo describes one named historical snapshot held by the remote
// blob service alongside the live snapshot.
type BackupInfo struct {
	// ID is the server-side identifier of the backup object.
	ID string `json:"id"`

	// Name is the user-chosen label, e.g. "before import".
	Name string `json:"name"`

	// CreatedAt is when the backup object was written.
	CreatedAt time.Time `json:"created_at"`

	// Meta echoes the snapshot meta captured inside the backup, so the
	// UI can show which device produced it without fetching the blob.
	Meta SnapshotMeta `json:"meta"`
}

// BackupListResponse is the wire shape of GET /api/backups.
type BackupListResponse struct {
	Backups []BackupInfo `json:"backups"`
	Length  int          `json:"length"`
}
