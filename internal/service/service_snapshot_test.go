package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/store"
	"github.com/linkdeck/linkdeck/internal/validators"
	"github.com/linkdeck/linkdeck/models"
)

type fakeSnapshotRepository struct {
	blobs map[int64]*models.Snapshot
}

func (f *fakeSnapshotRepository) GetSnapshot(_ context.Context, accountID int64) (*models.Snapshot, error) {
	snapshot, ok := f.blobs[accountID]
	if !ok {
		return nil, store.ErrSnapshotNotFound
	}
	return snapshot, nil
}

func (f *fakeSnapshotRepository) PutSnapshot(_ context.Context, accountID int64, snapshot *models.Snapshot) error {
	if f.blobs == nil {
		f.blobs = map[int64]*models.Snapshot{}
	}
	f.blobs[accountID] = snapshot
	return nil
}

func TestSnapshotServiceRoundTrip(t *testing.T) {
	repo := &fakeSnapshotRepository{}
	svc := NewSnapshotService(repo, validators.NewSyncDataValidator(), logger.Nop())
	ctx := context.Background()

	_, err := svc.GetSnapshot(ctx, 1)
	assert.ErrorIs(t, err, store.ErrSnapshotNotFound)

	pushed := &models.Snapshot{
		Links: []models.LinkItem{{ID: "l1", Title: "news", URL: "https://example.com"}},
		Meta:  models.SnapshotMeta{UpdatedAt: 1000, DeviceID: "device_a"},
	}
	require.NoError(t, svc.PutSnapshot(ctx, 1, models.RoleAdmin, pushed))

	got, err := svc.GetSnapshot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, pushed.Fingerprint(), got.Fingerprint())

	// Each account gets its own slot.
	_, err = svc.GetSnapshot(ctx, 2)
	assert.ErrorIs(t, err, store.ErrSnapshotNotFound)
}

func TestSnapshotServiceRejectsViewer(t *testing.T) {
	svc := NewSnapshotService(&fakeSnapshotRepository{}, validators.NewSyncDataValidator(), logger.Nop())

	err := svc.PutSnapshot(context.Background(), 1, models.RoleViewer, &models.Snapshot{
		Meta: models.SnapshotMeta{UpdatedAt: 1000, DeviceID: "device_a"},
	})
	assert.ErrorIs(t, err, ErrPushForbidden)
}

func TestSnapshotServiceRejectsUnstampedSnapshot(t *testing.T) {
	svc := NewSnapshotService(&fakeSnapshotRepository{}, validators.NewSyncDataValidator(), logger.Nop())
	ctx := context.Background()

	assert.ErrorIs(t, svc.PutSnapshot(ctx, 1, models.RoleAdmin, nil), ErrInvalidDataProvided)
	assert.ErrorIs(t, svc.PutSnapshot(ctx, 1, models.RoleAdmin, &models.Snapshot{}), ErrInvalidDataProvided)
}
