package models

// PasswordChangeRequest is the wire shape of POST /api/auth/password.
type PasswordChangeRequest struct {
	// CurrentPassword must match the stored credential.
	CurrentPassword string `json:"current_password"`

	// NewPassword replaces it. An empty value means verify-only.
	NewPassword string `json:"new_password,omitempty"`
}

// BackupPutRequest is the wire shape of PUT /api/backups/{id}.
type BackupPutRequest struct {
	// Name is the user-chosen backup label.
	Name string `json:"name"`

	// Snapshot is the full blob to store under the backup id.
	Snapshot *Snapshot `json:"snapshot"`
}
