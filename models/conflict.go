package models

// ConflictSide names one of the two snapshots involved in a sync conflict.
type ConflictSide string

const (
	ConflictSideLocal  ConflictSide = "local"
	ConflictSideRemote ConflictSide = "remote"
)

// SyncConflict carries both diverged snapshots verbatim for user arbitration.
// It is constructed once, from deep copies taken at detection time, and is
// never re-derived from live state while the user is deciding.
type SyncConflict struct {
	LocalData  *Snapshot `json:"local_data"`
	RemoteData *Snapshot `json:"remote_data"`
}

// NewSyncConflict captures deep copies of both sides.
func NewSyncConflict(local, remote *Snapshot) *SyncConflict {
	return &SyncConflict{
		LocalData:  local.Clone(),
		RemoteData: remote.Clone(),
	}
}

// NewerSide labels the side with the greater UpdatedAt for display purposes
// only. A conflict is always resolved by explicit user choice, never by this
// tie-break.
func (c *SyncConflict) NewerSide() ConflictSide {
	if c.LocalData.Meta.UpdatedAt > c.RemoteData.Meta.UpdatedAt {
		return ConflictSideLocal
	}
	return ConflictSideRemote
}

// Chosen returns the snapshot matching the user's resolution choice.
func (c *SyncConflict) Chosen(side ConflictSide) *Snapshot {
	if side == ConflictSideLocal {
		return c.LocalData
	}
	return c.RemoteData
}
