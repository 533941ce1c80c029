// Package syncer implements the agent's synchronization core: divergence
// classification against the last agreed checkpoint and a debounced,
// single-flight coordinator that moves whole snapshots between the local
// store and the remote blob service.
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/linkdeck/linkdeck/internal/adapter"
	"github.com/linkdeck/linkdeck/internal/device"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/store"
	"github.com/linkdeck/linkdeck/internal/vault"
	"github.com/linkdeck/linkdeck/models"
)

const subscriberBuffer = 16

// Config carries the coordinator's tunables.
type Config struct {
	// DebounceDelay is how long the coordinator waits after the last local
	// mutation before pushing. Mutations within the window coalesce into a
	// single request.
	DebounceDelay time.Duration

	// Role gates push operations; read-only accounts can only pull.
	Role models.Role
}

// Coordinator owns the synchronization lifecycle for one account on one
// device. All snapshot movement between the local store and the remote
// service goes through it; it is the only writer of the sync checkpoint.
type Coordinator struct {
	local    store.LocalStore
	remote   adapter.RemoteStore
	resolver *Resolver
	identity *device.Identity
	vault    vault.Service
	log      *logger.Logger

	debounce time.Duration
	role     models.Role

	mu         sync.Mutex
	status     SyncStatus
	errKind    ErrorKind
	errMsg     string
	lastSync   time.Time
	conflict   *models.SyncConflict
	timer      *time.Timer
	generation uint64
	inFlight   bool
	dirty      bool
	subs       []chan StatusEvent
	closed     bool

	// now is swapped in tests to control timestamps.
	now func() time.Time
}

// NewCoordinator wires a coordinator over the agent's local store, the
// remote adapter, and the vault service. The caller owns the adapter's
// session; the coordinator assumes requests are already authenticated.
func NewCoordinator(
	local store.LocalStore,
	remote adapter.RemoteStore,
	identity *device.Identity,
	vaultService vault.Service,
	cfg Config,
	log *logger.Logger,
) *Coordinator {
	return &Coordinator{
		local:    local,
		remote:   remote,
		resolver: NewResolver(),
		identity: identity,
		vault:    vaultService,
		log:      log,
		debounce: cfg.DebounceDelay,
		role:     cfg.Role,
		status:   StatusIdle,
		now:      time.Now,
	}
}

// Subscribe registers a status listener. Events are delivered best-effort:
// a slow listener loses intermediate events, never blocks the coordinator.
func (c *Coordinator) Subscribe() <-chan StatusEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan StatusEvent, subscriberBuffer)
	c.subs = append(c.subs, ch)
	return ch
}

// Status returns the current state snapshot for pull-style consumers.
func (c *Coordinator) Status() StatusEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eventLocked()
}

func (c *Coordinator) eventLocked() StatusEvent {
	return StatusEvent{
		Status:       c.status,
		LastSyncTime: c.lastSync,
		ErrorKind:    c.errKind,
		ErrorMessage: c.errMsg,
		Conflict:     c.conflict,
	}
}

func (c *Coordinator) notifyLocked() {
	ev := c.eventLocked()
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
			// Drop the oldest event to make room for the freshest state.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

func (c *Coordinator) setStatusLocked(s SyncStatus, kind ErrorKind, msg string) {
	c.status = s
	c.errKind = kind
	c.errMsg = msg
	c.notifyLocked()
}

// RecordLocalMutation signals that local state changed and arms the
// debounce timer. Safe to call from any goroutine; never blocks.
func (c *Coordinator) RecordLocalMutation() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || !c.role.CanPush() {
		return
	}
	if c.conflict != nil {
		// Automatic pushes stay blocked until the user resolves.
		return
	}
	if c.inFlight {
		c.dirty = true
		return
	}

	c.armDebounceLocked()
	if c.status != StatusPending {
		c.setStatusLocked(StatusPending, ErrorKindNone, "")
	}
}

func (c *Coordinator) armDebounceLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, c.onDebounceFire)
}

func (c *Coordinator) onDebounceFire() {
	c.mu.Lock()
	if c.closed || c.conflict != nil {
		c.mu.Unlock()
		return
	}
	if c.inFlight {
		c.dirty = true
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if err := c.runSync(context.Background()); err != nil {
		c.log.Debug().Err(err).Msg("debounced sync did not run")
	}
}

// ApplyLocalChange loads the current snapshot, applies mutate to it, saves
// it back, and arms the debounce timer. A missing snapshot starts from the
// zero value, so the first edit on a fresh install works the same way.
func (c *Coordinator) ApplyLocalChange(ctx context.Context, mutate func(*models.Snapshot) error) error {
	snap, err := c.local.GetSnapshot(ctx)
	if errors.Is(err, store.ErrSnapshotNotFound) {
		snap = &models.Snapshot{}
	} else if err != nil {
		c.reportStorageError(err)
		return fmt.Errorf("load snapshot: %w", err)
	}

	if err = mutate(snap); err != nil {
		return err
	}

	if err = c.local.SaveSnapshot(ctx, snap); err != nil {
		c.reportStorageError(err)
		return fmt.Errorf("save snapshot: %w", err)
	}

	c.RecordLocalMutation()
	return nil
}

func (c *Coordinator) reportStorageError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setStatusLocked(StatusError, ErrorKindStorage, err.Error())
}

// ManualSync bypasses the debounce window and runs a full sync cycle now.
func (c *Coordinator) ManualSync(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return ErrCoordinatorClosed
	case c.conflict != nil:
		c.mu.Unlock()
		return ErrConflictPending
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()

	return c.runSync(ctx)
}

// ManualPull fetches the remote snapshot and adopts it unconditionally,
// discarding unpushed local edits. It is the refresh path for read-only
// accounts and the explicit "take theirs" escape hatch for everyone else.
func (c *Coordinator) ManualPull(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}

	err := c.pullAndAdopt(ctx)
	c.finish(err, nil)
	return err
}

func (c *Coordinator) pullAndAdopt(ctx context.Context) error {
	remote, err := c.remote.GetSnapshot(ctx)
	if errors.Is(err, adapter.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch remote snapshot: %w", err)
	}

	return c.adopt(ctx, remote)
}

func (c *Coordinator) adopt(ctx context.Context, snap *models.Snapshot) error {
	if err := c.local.SaveSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("adopt remote snapshot: %w", err)
	}
	cp := models.Checkpoint{Meta: snap.Meta, Fingerprint: snap.Fingerprint()}
	if err := c.local.SaveCheckpoint(ctx, cp); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// begin claims the single-flight slot for a manual operation.
func (c *Coordinator) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.closed:
		return ErrCoordinatorClosed
	case c.conflict != nil:
		return ErrConflictPending
	case c.inFlight:
		return ErrSyncInFlight
	}

	c.inFlight = true
	c.generation++
	c.setStatusLocked(StatusSyncing, ErrorKindNone, "")
	return nil
}

// finish releases the single-flight slot and publishes the outcome.
func (c *Coordinator) finish(err error, conflict *models.SyncConflict) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inFlight = false
	switch {
	case conflict != nil:
		c.conflict = conflict
		c.setStatusLocked(StatusConflict, ErrorKindNone, "")
	case err != nil:
		c.setStatusLocked(StatusError, classifyError(err), err.Error())
	default:
		c.lastSync = c.now()
		c.setStatusLocked(StatusSynced, ErrorKindNone, "")
	}

	if c.dirty && c.conflict == nil && !c.closed {
		c.dirty = false
		c.armDebounceLocked()
		c.setStatusLocked(StatusPending, ErrorKindNone, "")
	}
}

// runSync executes one classify-then-act cycle under the single-flight slot.
func (c *Coordinator) runSync(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}

	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()

	conflict, err := c.doSync(ctx)

	c.mu.Lock()
	if c.generation != gen {
		// A later operation superseded this cycle; its outcome already
		// reflects fresher state than ours.
		c.inFlight = false
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	c.finish(err, conflict)
	return err
}

func (c *Coordinator) doSync(ctx context.Context) (*models.SyncConflict, error) {
	local, err := c.local.GetSnapshot(ctx)
	if errors.Is(err, store.ErrSnapshotNotFound) {
		local = nil
	} else if err != nil {
		return nil, fmt.Errorf("load local snapshot: %w", err)
	}

	cp, err := c.local.GetCheckpoint(ctx)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	remote, err := c.remote.GetSnapshot(ctx)
	if errors.Is(err, adapter.ErrNotFound) {
		remote = nil
	} else if err != nil {
		return nil, fmt.Errorf("fetch remote snapshot: %w", err)
	}

	decision := c.resolver.Classify(local, remote, cp)
	c.log.Debug().Str("decision", decision.String()).Msg("snapshots classified")

	switch decision {
	case DecisionIdentical:
		if remote == nil {
			return nil, nil
		}
		if !local.SameMeta(remote) {
			// Same content republished under different meta; align with the
			// remote version so both sides agree on the baseline.
			local.Meta = remote.Meta
			if err = c.local.SaveSnapshot(ctx, local); err != nil {
				return nil, fmt.Errorf("align snapshot meta: %w", err)
			}
		}
		cp = models.Checkpoint{Meta: remote.Meta, Fingerprint: remote.Fingerprint()}
		if err = c.local.SaveCheckpoint(ctx, cp); err != nil {
			return nil, fmt.Errorf("save checkpoint: %w", err)
		}
		return nil, nil

	case DecisionUseRemote:
		return nil, c.adopt(ctx, remote)

	case DecisionUseLocal:
		if !c.role.CanPush() {
			return nil, ErrPushNotAllowed
		}
		return nil, c.push(ctx, local, cp)

	default:
		return models.NewSyncConflict(local, remote), nil
	}
}

// push stamps the local snapshot with fresh commit meta, persists it, and
// uploads it as the new remote state.
func (c *Coordinator) push(ctx context.Context, local *models.Snapshot, cp models.Checkpoint) error {
	stamped := local.Clone()
	stamped.Meta = c.nextMeta(ctx, local.Meta, cp.Meta)

	if err := c.local.SaveSnapshot(ctx, stamped); err != nil {
		return fmt.Errorf("stamp snapshot: %w", err)
	}
	if err := c.remote.PutSnapshot(ctx, stamped); err != nil {
		return fmt.Errorf("push snapshot: %w", err)
	}

	next := models.Checkpoint{Meta: stamped.Meta, Fingerprint: stamped.Fingerprint()}
	if err := c.local.SaveCheckpoint(ctx, next); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// nextMeta produces commit meta for a push. UpdatedAt is the local clock
// but never goes backwards relative to metas this device has already seen,
// so a skewed clock cannot reorder this device's own history.
func (c *Coordinator) nextMeta(ctx context.Context, prev, baseline models.SnapshotMeta) models.SnapshotMeta {
	ms := c.now().UnixMilli()
	floor := prev.UpdatedAt
	if baseline.UpdatedAt > floor {
		floor = baseline.UpdatedAt
	}
	if ms <= floor {
		ms = floor + 1
	}
	return models.SnapshotMeta{
		UpdatedAt: ms,
		DeviceID:  c.identity.GetOrCreate(ctx),
	}
}

// Resolve applies the user's conflict decision and completes the sync that
// the conflict interrupted.
func (c *Coordinator) Resolve(ctx context.Context, side models.ConflictSide) error {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return ErrCoordinatorClosed
	case c.conflict == nil:
		c.mu.Unlock()
		return ErrNoConflict
	case c.inFlight:
		c.mu.Unlock()
		return ErrSyncInFlight
	case side == models.ConflictSideLocal && !c.role.CanPush():
		c.mu.Unlock()
		return ErrPushNotAllowed
	}

	conflict := c.conflict
	c.inFlight = true
	c.generation++
	c.setStatusLocked(StatusSyncing, ErrorKindNone, "")
	c.mu.Unlock()

	chosen := conflict.Chosen(side)

	var err error
	if side == models.ConflictSideLocal {
		// The losing remote version is read from the conflict, not re-fetched;
		// pushing over it is exactly what the user chose.
		err = c.push(ctx, chosen, models.Checkpoint{Meta: conflict.RemoteData.Meta})
	} else {
		err = c.adopt(ctx, chosen)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if err != nil {
		// The conflict stays active so the user can retry the resolution.
		c.setStatusLocked(StatusError, classifyError(err), err.Error())
		return err
	}
	c.conflict = nil
	c.lastSync = c.now()
	c.setStatusLocked(StatusSynced, ErrorKindNone, "")
	return nil
}

// OfferRestore runs a candidate snapshot, typically a fetched backup,
// through the same divergence rules as a pulled remote snapshot. If the
// local side has unpushed edits the offer becomes a conflict instead of
// silently overwriting them, and ErrConflictPending is returned.
func (c *Coordinator) OfferRestore(ctx context.Context, candidate *models.Snapshot) error {
	if err := c.begin(); err != nil {
		return err
	}

	local, err := c.local.GetSnapshot(ctx)
	if errors.Is(err, store.ErrSnapshotNotFound) {
		local = nil
	} else if err != nil {
		err = fmt.Errorf("load local snapshot: %w", err)
		c.finish(err, nil)
		return err
	}

	cp, err := c.local.GetCheckpoint(ctx)
	if err != nil {
		err = fmt.Errorf("load checkpoint: %w", err)
		c.finish(err, nil)
		return err
	}

	switch c.resolver.Classify(local, candidate, cp) {
	case DecisionIdentical, DecisionUseRemote:
		err = c.adopt(ctx, candidate)
		c.finish(err, nil)
		return err
	default:
		c.finish(nil, models.NewSyncConflict(local, candidate))
		return ErrConflictPending
	}
}

// VerifySyncPassword checks the account password against the remote
// service without altering any state.
func (c *Coordinator) VerifySyncPassword(ctx context.Context, password string) error {
	return c.remote.VerifyPassword(ctx, password)
}

// ChangeSyncPassword rotates the account password on the remote service.
func (c *Coordinator) ChangeSyncPassword(ctx context.Context, current, next string) error {
	if !c.role.CanPush() {
		return ErrPushNotAllowed
	}
	return c.remote.ChangePassword(ctx, current, next)
}

// SealVault encrypts payload under password and stores the envelope in the
// snapshot's private partition, arming a sync like any other local edit.
func (c *Coordinator) SealVault(ctx context.Context, password string, payload any) error {
	envelope, err := c.vault.Encrypt(password, payload)
	if err != nil {
		return err
	}
	return c.ApplyLocalChange(ctx, func(s *models.Snapshot) error {
		s.VaultEnvelope = envelope
		return nil
	})
}

// OpenVault decrypts the snapshot's private partition into target, trying
// each password candidate in order.
func (c *Coordinator) OpenVault(ctx context.Context, passwords []string, target any) error {
	snap, err := c.local.GetSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if snap.VaultEnvelope == "" {
		return ErrVaultEmpty
	}
	return c.vault.DecryptWithFallback(passwords, snap.VaultEnvelope, target)
}

// ChangeVaultPassword re-encrypts the private partition under a new
// password. Any of the current candidates may open the old envelope.
func (c *Coordinator) ChangeVaultPassword(ctx context.Context, current []string, next string) error {
	snap, err := c.local.GetSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if snap.VaultEnvelope == "" {
		return ErrVaultEmpty
	}

	var payload json.RawMessage
	if err = c.vault.DecryptWithFallback(current, snap.VaultEnvelope, &payload); err != nil {
		return err
	}

	envelope, err := c.vault.Encrypt(next, payload)
	if err != nil {
		return err
	}
	return c.ApplyLocalChange(ctx, func(s *models.Snapshot) error {
		s.VaultEnvelope = envelope
		return nil
	})
}

// Close stops the debounce timer and detaches subscribers. In-flight
// requests finish but their results are discarded.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.generation++
	if c.timer != nil {
		c.timer.Stop()
	}
	for _, ch := range c.subs {
		close(ch)
	}
	c.subs = nil
}

func classifyError(err error) ErrorKind {
	switch {
	case errors.Is(err, adapter.ErrNetwork):
		return ErrorKindNetwork
	case errors.Is(err, store.ErrStorageUnavailable):
		return ErrorKindStorage
	default:
		return ErrorKindUnknown
	}
}
