package syncer

import (
	"github.com/linkdeck/linkdeck/models"
)

// Decision is the outcome of comparing local and remote snapshots against
// the last agreed checkpoint.
type Decision int

const (
	// DecisionIdentical means both sides carry the same snapshot version.
	// Nothing needs to move, only the checkpoint is refreshed.
	DecisionIdentical Decision = iota

	// DecisionUseLocal means only this device changed since the checkpoint
	// and the local snapshot can safely overwrite the remote one.
	DecisionUseLocal

	// DecisionUseRemote means this device is clean since the checkpoint
	// while the remote side moved on; the remote snapshot is adopted.
	DecisionUseRemote

	// DecisionConflict means both sides changed, or ancestry cannot be
	// established. Conflicts are never auto-merged.
	DecisionConflict
)

func (d Decision) String() string {
	switch d {
	case DecisionIdentical:
		return "identical"
	case DecisionUseLocal:
		return "use-local"
	case DecisionUseRemote:
		return "use-remote"
	case DecisionConflict:
		return "conflict"
	}
	return "unknown"
}

// Resolver classifies snapshot divergence. It never merges: any ambiguous
// situation is reported as a conflict for the user to arbitrate.
//
// Metadata fields like UpdatedAt are wall-clock values from independent
// devices and are never compared to decide a winner. Only equality against
// the checkpoint establishes whether a side has moved.
type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Classify decides what to do with a local/remote snapshot pair given the
// last checkpoint recorded after a successful sync. Either snapshot may be
// nil when the corresponding side has no data yet.
func (r *Resolver) Classify(local, remote *models.Snapshot, cp models.Checkpoint) Decision {
	switch {
	case local == nil && remote == nil:
		return DecisionIdentical
	case remote == nil:
		return DecisionUseLocal
	case local == nil:
		return DecisionUseRemote
	}

	if local.SameMeta(remote) {
		// Remote carries this device's last committed write. Local edits
		// do not restamp Meta until they are pushed, so equal metas say
		// nothing about local dirtiness; only the content does.
		if local.Fingerprint() == remote.Fingerprint() {
			return DecisionIdentical
		}
		return DecisionUseLocal
	}

	if cp.IsZero() {
		// No recorded common ancestor and the versions differ. Guessing a
		// winner here could silently drop another device's edits.
		return DecisionConflict
	}

	localClean := local.Fingerprint() == cp.Fingerprint
	remoteUnchanged := remote.Meta.Equal(cp.Meta)

	switch {
	case localClean && remoteUnchanged:
		// Content unchanged on both sides but metadata differs, e.g. a
		// republish of identical data. Treat as identical payloads.
		return DecisionIdentical
	case localClean:
		return DecisionUseRemote
	case remoteUnchanged:
		return DecisionUseLocal
	}

	return DecisionConflict
}
