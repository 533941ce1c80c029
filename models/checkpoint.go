package models

// Checkpoint records the last snapshot a device knows to be mutually agreed
// with the remote store. It is the baseline the conflict resolver compares
// both sides against; only the sync coordinator writes it.
type Checkpoint struct {
	// Meta is the meta of the last snapshot confirmed by a successful
	// push or adopted pull.
	Meta SnapshotMeta `json:"meta"`

	// Fingerprint is the content digest of that snapshot, used to decide
	// whether the local copy has been edited since.
	Fingerprint string `json:"fingerprint"`
}

// IsZero reports whether the device has never completed a sync.
func (c Checkpoint) IsZero() bool {
	return c.Meta.IsZero() && c.Fingerprint == ""
}
