package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSyncConflictCapturesCopies(t *testing.T) {
	local := sampleSnapshot()
	remote := sampleSnapshot()
	remote.Meta.DeviceID = "device_b"

	conflict := NewSyncConflict(local, remote)

	// Later edits to the live snapshots must not leak into the conflict.
	local.Links[0].Title = "edited after detection"

	assert.Equal(t, "Go", conflict.LocalData.Links[0].Title)
	assert.Equal(t, "device_b", conflict.RemoteData.Meta.DeviceID)
}

func TestNewerSide(t *testing.T) {
	local := sampleSnapshot()
	remote := sampleSnapshot()

	local.Meta.UpdatedAt = 2000
	remote.Meta.UpdatedAt = 1000
	assert.Equal(t, ConflictSideLocal, NewSyncConflict(local, remote).NewerSide())

	remote.Meta.UpdatedAt = 3000
	assert.Equal(t, ConflictSideRemote, NewSyncConflict(local, remote).NewerSide())

	// Ties go to remote; the label is display-only either way.
	remote.Meta.UpdatedAt = 2000
	assert.Equal(t, ConflictSideRemote, NewSyncConflict(local, remote).NewerSide())
}

func TestChosen(t *testing.T) {
	local := sampleSnapshot()
	remote := sampleSnapshot()
	remote.Meta.DeviceID = "device_b"

	conflict := NewSyncConflict(local, remote)

	require.Equal(t, "device_a", conflict.Chosen(ConflictSideLocal).Meta.DeviceID)
	require.Equal(t, "device_b", conflict.Chosen(ConflictSideRemote).Meta.DeviceID)
}
