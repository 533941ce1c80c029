package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// SnapshotMeta attributes a committed snapshot write to a device and a
// moment in time.
type SnapshotMeta struct {
	// UpdatedAt is the writer's local clock at commit time, in Unix
	// milliseconds. Set exactly once per committed write, never decremented.
	UpdatedAt int64 `json:"updated_at"`

	// DeviceID identifies the installation that produced the write.
	// Advisory metadata only, never an authorization token.
	DeviceID string `json:"device_id"`
}

// Equal reports whether two metas describe the same committed write.
func (m SnapshotMeta) Equal(other SnapshotMeta) bool {
	return m.UpdatedAt == other.UpdatedAt && m.DeviceID == other.DeviceID
}

// IsZero reports whether the meta has never been set.
func (m SnapshotMeta) IsZero() bool {
	return m.UpdatedAt == 0 && m.DeviceID == ""
}

// Snapshot is one account's whole synchronizable state. It is read,
// compared, and written atomically as a unit; there is no field-level merge.
type Snapshot struct {
	Links      []LinkItem `json:"links"`
	Categories []Category `json:"categories"`

	SearchConfig SearchConfig `json:"search_config"`
	AIConfig     AIConfig     `json:"ai_config"`
	SiteSettings SiteSettings `json:"site_settings"`
	ThemeMode    ThemeMode    `json:"theme_mode"`

	// VaultEnvelope is the encrypted private partition in its versioned
	// wire form. Opaque to the sync layer and to the remote store.
	VaultEnvelope string `json:"vault_envelope,omitempty"`

	Meta SnapshotMeta `json:"meta"`
}

// Fingerprint returns a stable hex digest of the snapshot content,
// excluding Meta. Two snapshots with equal fingerprints carry the same
// user-visible data regardless of when or where they were committed.
func (s *Snapshot) Fingerprint() string {
	shadow := *s
	shadow.Meta = SnapshotMeta{}

	// Struct field order is fixed, so Marshal output is canonical here.
	raw, err := json.Marshal(&shadow)
	if err != nil {
		// Snapshot contains only marshalable types; treat failure as an
		// empty-content digest rather than panicking in the sync path.
		raw = nil
	}

	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// SameMeta reports whether both snapshots carry the same committed-write meta.
func (s *Snapshot) SameMeta(other *Snapshot) bool {
	if other == nil {
		return false
	}
	return s.Meta.Equal(other.Meta)
}

// Clone returns a deep copy of the snapshot. Conflicts hold clones so that
// later local edits cannot mutate a conflict already presented to the user.
func (s *Snapshot) Clone() *Snapshot {
	raw, err := json.Marshal(s)
	if err != nil {
		return &Snapshot{Meta: s.Meta}
	}

	out := new(Snapshot)
	if err = json.Unmarshal(raw, out); err != nil {
		return &Snapshot{Meta: s.Meta}
	}
	return out
}
