package syncer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkdeck/linkdeck/internal/adapter"
	"github.com/linkdeck/linkdeck/internal/device"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/store"
	"github.com/linkdeck/linkdeck/internal/vault"
	"github.com/linkdeck/linkdeck/models"
)

type fakeLocalStore struct {
	mu         sync.Mutex
	snapshot   *models.Snapshot
	checkpoint models.Checkpoint
	deviceID   string
	session    string

	snapshotErr   error
	checkpointErr error
}

func (f *fakeLocalStore) GetSnapshot(context.Context) (*models.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snapshotErr != nil {
		return nil, f.snapshotErr
	}
	if f.snapshot == nil {
		return nil, store.ErrSnapshotNotFound
	}
	return f.snapshot.Clone(), nil
}

func (f *fakeLocalStore) SaveSnapshot(_ context.Context, s *models.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snapshotErr != nil {
		return f.snapshotErr
	}
	f.snapshot = s.Clone()
	return nil
}

func (f *fakeLocalStore) GetCheckpoint(context.Context) (models.Checkpoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checkpoint, f.checkpointErr
}

func (f *fakeLocalStore) SaveCheckpoint(_ context.Context, cp models.Checkpoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.checkpointErr != nil {
		return f.checkpointErr
	}
	f.checkpoint = cp
	return nil
}

func (f *fakeLocalStore) GetDeviceID(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deviceID, nil
}

func (f *fakeLocalStore) SaveDeviceID(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deviceID = id
	return nil
}

func (f *fakeLocalStore) GetSession(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, nil
}

func (f *fakeLocalStore) SaveSession(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = token
	return nil
}

func (f *fakeLocalStore) Close() error { return nil }

func (f *fakeLocalStore) current() *models.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snapshot == nil {
		return nil
	}
	return f.snapshot.Clone()
}

func (f *fakeLocalStore) currentCheckpoint() models.Checkpoint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checkpoint
}

type fakeRemoteStore struct {
	mu       sync.Mutex
	snapshot *models.Snapshot
	getErr   error
	putErr   error
	puts     int
	gets     int
}

func (f *fakeRemoteStore) Register(_ context.Context, a models.Account) (models.Account, error) {
	return a, nil
}

func (f *fakeRemoteStore) Login(_ context.Context, a models.Account) (models.Account, error) {
	return a, nil
}

func (f *fakeRemoteStore) SetToken(string) {}

func (f *fakeRemoteStore) Token() string { return "" }

func (f *fakeRemoteStore) VerifyPassword(context.Context, string) error { return nil }

func (f *fakeRemoteStore) ChangePassword(context.Context, string, string) error { return nil }

func (f *fakeRemoteStore) GetSnapshot(context.Context) (*models.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.snapshot == nil {
		return nil, adapter.ErrNotFound
	}
	return f.snapshot.Clone(), nil
}

func (f *fakeRemoteStore) PutSnapshot(_ context.Context, s *models.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.putErr != nil {
		return f.putErr
	}
	f.snapshot = s.Clone()
	return nil
}

func (f *fakeRemoteStore) ListBackups(context.Context) ([]models.BackupInfo, error) {
	return nil, nil
}

func (f *fakeRemoteStore) GetBackup(context.Context, string) (*models.Snapshot, error) {
	return nil, adapter.ErrNotFound
}

func (f *fakeRemoteStore) PutBackup(context.Context, string, string, *models.Snapshot) error {
	return nil
}

func (f *fakeRemoteStore) DeleteBackup(context.Context, string) error { return nil }

func (f *fakeRemoteStore) putCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts
}

func (f *fakeRemoteStore) stored() *models.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snapshot == nil {
		return nil
	}
	return f.snapshot.Clone()
}

// fakeVault seals payloads with reversible encoding so coordinator tests
// stay fast; real cryptography is covered in the vault package.
type fakeVault struct{}

func (fakeVault) Encrypt(password string, payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return password + ":" + base64.StdEncoding.EncodeToString(raw), nil
}

func (fakeVault) Decrypt(password, envelope string, target any) error {
	prefix := password + ":"
	if !strings.HasPrefix(envelope, prefix) {
		return vault.ErrWrongPassword
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(envelope, prefix))
	if err != nil {
		return vault.ErrInvalidEnvelope
	}
	return json.Unmarshal(raw, target)
}

func (v fakeVault) DecryptWithFallback(passwords []string, envelope string, target any) error {
	for _, p := range passwords {
		if err := v.Decrypt(p, envelope, target); err == nil {
			return nil
		}
	}
	return vault.ErrWrongPassword
}

type coordinatorFixture struct {
	c      *Coordinator
	local  *fakeLocalStore
	remote *fakeRemoteStore
	events <-chan StatusEvent
	nowMs  int64
}

func newFixture(t *testing.T, cfg Config) *coordinatorFixture {
	t.Helper()

	if cfg.DebounceDelay == 0 {
		cfg.DebounceDelay = 25 * time.Millisecond
	}
	if cfg.Role == "" {
		cfg.Role = models.RoleAdmin
	}

	local := &fakeLocalStore{deviceID: "device_1_test"}
	remote := &fakeRemoteStore{}
	log := logger.Nop()
	identity := device.NewIdentity(local, log)

	c := NewCoordinator(local, remote, identity, fakeVault{}, cfg, log)
	t.Cleanup(c.Close)

	fx := &coordinatorFixture{c: c, local: local, remote: remote, nowMs: 1_700_000_000_000}
	c.now = func() time.Time { return time.UnixMilli(fx.nowMs) }
	fx.events = c.Subscribe()
	return fx
}

func (fx *coordinatorFixture) waitStatus(t *testing.T, want SyncStatus) StatusEvent {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-fx.events:
			if !ok {
				t.Fatalf("event channel closed while waiting for %q", want)
			}
			if ev.Status == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for status %q, current %q", want, fx.c.Status().Status)
		}
	}
}

func editLinks(title string) func(*models.Snapshot) error {
	return func(s *models.Snapshot) error {
		s.Links = []models.LinkItem{{ID: "l1", Title: title, URL: "https://example.com"}}
		return nil
	}
}

func TestCoordinatorFirstPush(t *testing.T) {
	fx := newFixture(t, Config{})
	ctx := context.Background()

	require.NoError(t, fx.c.ApplyLocalChange(ctx, editLinks("news")))
	require.NoError(t, fx.c.ManualSync(ctx))

	pushed := fx.remote.stored()
	require.NotNil(t, pushed)
	assert.Equal(t, "news", pushed.Links[0].Title)
	assert.Equal(t, fx.nowMs, pushed.Meta.UpdatedAt)
	assert.Equal(t, "device_1_test", pushed.Meta.DeviceID)

	cp := fx.local.currentCheckpoint()
	assert.True(t, cp.Meta.Equal(pushed.Meta))
	assert.Equal(t, pushed.Fingerprint(), cp.Fingerprint)
	assert.Equal(t, StatusSynced, fx.c.Status().Status)
}

func TestCoordinatorDebounceCoalesces(t *testing.T) {
	fx := newFixture(t, Config{DebounceDelay: 40 * time.Millisecond})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, fx.c.ApplyLocalChange(ctx, editLinks(fmt.Sprintf("edit %d", i))))
		time.Sleep(5 * time.Millisecond)
	}

	fx.waitStatus(t, StatusSynced)
	assert.Equal(t, 1, fx.remote.putCount())

	pushed := fx.remote.stored()
	require.NotNil(t, pushed)
	assert.Equal(t, "edit 4", pushed.Links[0].Title)
}

func TestCoordinatorAdoptsRemote(t *testing.T) {
	fx := newFixture(t, Config{})
	ctx := context.Background()

	remoteSnap := snapshotWith("from other device", 1000, "device_a")
	fx.remote.snapshot = remoteSnap

	require.NoError(t, fx.c.ManualSync(ctx))

	got := fx.local.current()
	require.NotNil(t, got)
	assert.Equal(t, "from other device", got.Links[0].Title)
	assert.True(t, got.Meta.Equal(remoteSnap.Meta))
	assert.True(t, fx.local.currentCheckpoint().Meta.Equal(remoteSnap.Meta))
	assert.Equal(t, 0, fx.remote.putCount())
}

func TestCoordinatorNoopWhenConverged(t *testing.T) {
	fx := newFixture(t, Config{})
	ctx := context.Background()

	require.NoError(t, fx.c.ApplyLocalChange(ctx, editLinks("news")))
	require.NoError(t, fx.c.ManualSync(ctx))
	require.Equal(t, 1, fx.remote.putCount())

	// Repeated syncs without new edits move nothing.
	require.NoError(t, fx.c.ManualSync(ctx))
	require.NoError(t, fx.c.ManualSync(ctx))
	assert.Equal(t, 1, fx.remote.putCount())
	assert.Equal(t, StatusSynced, fx.c.Status().Status)
}

func TestCoordinatorPushesEditAfterConvergence(t *testing.T) {
	fx := newFixture(t, Config{})
	ctx := context.Background()

	require.NoError(t, fx.c.ApplyLocalChange(ctx, editLinks("news")))
	require.NoError(t, fx.c.ManualSync(ctx))
	require.Equal(t, 1, fx.remote.putCount())

	// Local and remote now carry the same stamped meta. A fresh edit keeps
	// that meta until the push, which must still go out.
	fx.nowMs = 1_700_000_000_500
	require.NoError(t, fx.c.ApplyLocalChange(ctx, editLinks("news and mail")))
	require.NoError(t, fx.c.ManualSync(ctx))

	assert.Equal(t, 2, fx.remote.putCount())
	pushed := fx.remote.stored()
	require.NotNil(t, pushed)
	assert.Equal(t, "news and mail", pushed.Links[0].Title)
	assert.Equal(t, fx.nowMs, pushed.Meta.UpdatedAt)
	assert.Equal(t, StatusSynced, fx.c.Status().Status)
}

func TestCoordinatorTwoDeviceConflict(t *testing.T) {
	fx := newFixture(t, Config{})
	ctx := context.Background()

	// Both devices synced at version 900 from device_b, then device_a
	// pushed version 1000 while this device edited locally.
	agreed := snapshotWith("news", 900, "device_b")
	fx.local.snapshot = agreed.Clone()
	fx.local.checkpoint = checkpointFor(agreed)

	require.NoError(t, fx.c.ApplyLocalChange(ctx, editLinks("news and mail")))
	fx.remote.snapshot = snapshotWith("news from A", 1000, "device_a")

	require.NoError(t, fx.c.ManualSync(ctx))

	ev := fx.waitStatus(t, StatusConflict)
	require.NotNil(t, ev.Conflict)
	assert.Equal(t, "news and mail", ev.Conflict.LocalData.Links[0].Title)
	assert.Equal(t, "news from A", ev.Conflict.RemoteData.Links[0].Title)
	assert.Equal(t, models.ConflictSideRemote, ev.Conflict.NewerSide())

	// Automatic pushes stay blocked while the conflict is open.
	fx.c.RecordLocalMutation()
	assert.ErrorIs(t, fx.c.ManualSync(ctx), ErrConflictPending)
	assert.Equal(t, 0, fx.remote.putCount())

	require.NoError(t, fx.c.Resolve(ctx, models.ConflictSideRemote))

	got := fx.local.current()
	require.NotNil(t, got)
	assert.Equal(t, "news from A", got.Links[0].Title)
	assert.Equal(t, StatusSynced, fx.c.Status().Status)
	assert.Nil(t, fx.c.Status().Conflict)
	assert.Equal(t, 0, fx.remote.putCount())
}

func TestCoordinatorResolveWithLocal(t *testing.T) {
	fx := newFixture(t, Config{})
	ctx := context.Background()

	agreed := snapshotWith("news", 900, "device_b")
	fx.local.snapshot = agreed.Clone()
	fx.local.checkpoint = checkpointFor(agreed)
	fx.remote.snapshot = snapshotWith("news from A", 1000, "device_a")

	require.NoError(t, fx.c.ApplyLocalChange(ctx, editLinks("news and mail")))
	require.NoError(t, fx.c.ManualSync(ctx))
	fx.waitStatus(t, StatusConflict)

	fx.nowMs = 1_700_000_000_500
	require.NoError(t, fx.c.Resolve(ctx, models.ConflictSideLocal))

	pushed := fx.remote.stored()
	require.NotNil(t, pushed)
	assert.Equal(t, "news and mail", pushed.Links[0].Title)
	assert.Equal(t, fx.nowMs, pushed.Meta.UpdatedAt)
	assert.Equal(t, 1, fx.remote.putCount())
}

func TestCoordinatorResolveWithoutConflict(t *testing.T) {
	fx := newFixture(t, Config{})
	assert.ErrorIs(t, fx.c.Resolve(context.Background(), models.ConflictSideLocal), ErrNoConflict)
}

func TestCoordinatorNetworkErrorClassified(t *testing.T) {
	fx := newFixture(t, Config{})
	ctx := context.Background()

	require.NoError(t, fx.c.ApplyLocalChange(ctx, editLinks("news")))
	fx.remote.getErr = fmt.Errorf("pull: %w", adapter.ErrNetwork)

	err := fx.c.ManualSync(ctx)
	require.Error(t, err)

	ev := fx.waitStatus(t, StatusError)
	assert.Equal(t, ErrorKindNetwork, ev.ErrorKind)

	// The local edit survives the failed push and syncs once the network
	// recovers.
	fx.remote.getErr = nil
	require.NoError(t, fx.c.ManualSync(ctx))
	assert.Equal(t, 1, fx.remote.putCount())
}

func TestCoordinatorStorageErrorClassified(t *testing.T) {
	fx := newFixture(t, Config{})
	ctx := context.Background()

	fx.local.snapshotErr = fmt.Errorf("db: %w", store.ErrStorageUnavailable)

	err := fx.c.ManualSync(ctx)
	require.Error(t, err)
	assert.Equal(t, ErrorKindStorage, fx.c.Status().ErrorKind)
}

func TestCoordinatorViewerCannotPush(t *testing.T) {
	fx := newFixture(t, Config{Role: models.RoleViewer})
	ctx := context.Background()

	require.NoError(t, fx.local.SaveSnapshot(ctx, snapshotWith("local edits", 0, "")))

	// Debounce never arms for a read-only account.
	fx.c.RecordLocalMutation()
	assert.Equal(t, StatusIdle, fx.c.Status().Status)

	assert.ErrorIs(t, fx.c.ManualSync(ctx), ErrPushNotAllowed)

	// Pulling still works.
	fx.remote.snapshot = snapshotWith("published", 1000, "device_a")
	require.NoError(t, fx.c.ManualPull(ctx))
	assert.Equal(t, "published", fx.local.current().Links[0].Title)
}

func TestCoordinatorManualPullDiscardsLocalEdits(t *testing.T) {
	fx := newFixture(t, Config{})
	ctx := context.Background()

	agreed := snapshotWith("news", 900, "device_b")
	fx.local.snapshot = agreed.Clone()
	fx.local.checkpoint = checkpointFor(agreed)
	require.NoError(t, fx.c.ApplyLocalChange(ctx, editLinks("unpushed edit")))

	remoteSnap := snapshotWith("remote truth", 1000, "device_a")
	fx.remote.snapshot = remoteSnap

	require.NoError(t, fx.c.ManualPull(ctx))
	assert.Equal(t, "remote truth", fx.local.current().Links[0].Title)
	assert.True(t, fx.local.currentCheckpoint().Meta.Equal(remoteSnap.Meta))
}

func TestCoordinatorMonotonicUpdatedAt(t *testing.T) {
	fx := newFixture(t, Config{})
	ctx := context.Background()

	// The local clock sits behind the last agreed version, e.g. after a
	// clock reset. The pushed meta must still move forward.
	agreed := snapshotWith("news", 2_000_000_000_000, "device_b")
	fx.local.snapshot = agreed.Clone()
	fx.local.checkpoint = checkpointFor(agreed)
	fx.nowMs = 1_700_000_000_000

	require.NoError(t, fx.c.ApplyLocalChange(ctx, editLinks("late edit")))
	require.NoError(t, fx.c.ManualSync(ctx))

	pushed := fx.remote.stored()
	require.NotNil(t, pushed)
	assert.Equal(t, int64(2_000_000_000_001), pushed.Meta.UpdatedAt)
}

func TestCoordinatorOfferRestore(t *testing.T) {
	fx := newFixture(t, Config{})
	ctx := context.Background()

	agreed := snapshotWith("news", 900, "device_b")
	fx.local.snapshot = agreed.Clone()
	fx.local.checkpoint = checkpointFor(agreed)

	// Clean local state adopts the backup outright.
	backup := snapshotWith("restored layout", 500, "device_old")
	require.NoError(t, fx.c.OfferRestore(ctx, backup))
	assert.Equal(t, "restored layout", fx.local.current().Links[0].Title)

	// With unpushed edits the offer surfaces as a conflict instead.
	require.NoError(t, fx.c.ApplyLocalChange(ctx, editLinks("fresh edit")))
	err := fx.c.OfferRestore(ctx, snapshotWith("older backup", 400, "device_old"))
	assert.ErrorIs(t, err, ErrConflictPending)

	ev := fx.waitStatus(t, StatusConflict)
	require.NotNil(t, ev.Conflict)
	assert.Equal(t, "fresh edit", ev.Conflict.LocalData.Links[0].Title)
	assert.Equal(t, "older backup", ev.Conflict.RemoteData.Links[0].Title)
}

func TestCoordinatorVaultRoundTrip(t *testing.T) {
	fx := newFixture(t, Config{})
	ctx := context.Background()

	secret := map[string]string{"token": "abc"}
	require.NoError(t, fx.c.SealVault(ctx, "master", secret))
	assert.NotEmpty(t, fx.local.current().VaultEnvelope)

	var out map[string]string
	require.NoError(t, fx.c.OpenVault(ctx, []string{"wrong", "master"}, &out))
	assert.Equal(t, "abc", out["token"])

	require.NoError(t, fx.c.ChangeVaultPassword(ctx, []string{"master"}, "rotated"))
	out = nil
	require.NoError(t, fx.c.OpenVault(ctx, []string{"rotated"}, &out))
	assert.Equal(t, "abc", out["token"])
}

func TestCoordinatorOpenVaultEmpty(t *testing.T) {
	fx := newFixture(t, Config{})
	ctx := context.Background()

	require.NoError(t, fx.c.ApplyLocalChange(ctx, editLinks("news")))

	var out map[string]string
	assert.ErrorIs(t, fx.c.OpenVault(ctx, []string{"master"}, &out), ErrVaultEmpty)
}

func TestCoordinatorClose(t *testing.T) {
	fx := newFixture(t, Config{})

	fx.c.Close()
	assert.ErrorIs(t, fx.c.ManualSync(context.Background()), ErrCoordinatorClosed)

	_, open := <-fx.events
	assert.False(t, open)
}
