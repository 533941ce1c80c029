package models

import "time"

// Account represents a registered owner of one remote snapshot slot.
// Sensitive fields must never be exposed outside trusted boundaries.
type Account struct {
	// AccountID is the internal unique identifier of the account.
	// It is not exposed via JSON and is used only at the persistence layer.
	AccountID int64 `json:"-"`

	// Login is the unique account login identifier.
	Login string `json:"login"`

	// Password carries the client-supplied credential during register and
	// login requests. The server stores only a keyed hash of it.
	Password string `json:"password,omitempty"`

	// PasswordHash is the server-side HMAC-SHA256 of the password.
	// Never serialized.
	PasswordHash string `json:"-"`

	// Role gates sync operations: a viewer may pull but never push.
	Role Role `json:"role,omitempty"`

	// CreatedAt is when the account was registered.
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// TableName returns the name of the database table
// associated with the Account model.
func (a Account) TableName() string {
	return "accounts"
}

// Role is an application-level permission, not a cryptographic guarantee.
type Role string

const (
	// RoleAdmin may both pull and push snapshots.
	RoleAdmin Role = "admin"

	// RoleViewer may pull snapshots but never push.
	RoleViewer Role = "viewer"
)

// CanPush reports whether the role permits writing the remote snapshot.
func (r Role) CanPush() bool {
	return r == RoleAdmin
}
