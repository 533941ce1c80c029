// Package device manages the stable per-install identifier used to
// attribute snapshot writes. The identifier is advisory metadata for
// conflict display, never an authorization token.
package device

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/store"
	"github.com/linkdeck/linkdeck/internal/utils"
)

// Identity hands out the device identifier, creating and persisting one on
// first use.
type Identity struct {
	store store.LocalStore
	uuid  *utils.UUIDGenerator
	log   *logger.Logger

	mu     sync.Mutex
	cached string
}

// NewIdentity constructs an [Identity] backed by the agent's local store.
func NewIdentity(localStore store.LocalStore, log *logger.Logger) *Identity {
	return &Identity{
		store: localStore,
		uuid:  utils.NewUUIDGenerator(),
		log:   log,
	}
}

// GetOrCreate returns the persisted device id, generating and persisting a
// new one on first call. Persistence failures degrade to an ephemeral
// in-memory id: identity must never block sync, and a collision is not
// safety-critical because the id is display metadata only.
func (i *Identity) GetOrCreate(ctx context.Context) string {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.cached != "" {
		return i.cached
	}

	id, err := i.store.GetDeviceID(ctx)
	if err != nil {
		i.log.Warn().Err(err).Msg("device id read failed, using ephemeral id")
		i.cached = i.newID()
		return i.cached
	}
	if id != "" {
		i.cached = id
		return id
	}

	id = i.newID()
	if err = i.store.SaveDeviceID(ctx, id); err != nil {
		i.log.Warn().Err(err).Msg("device id write failed, id will not survive restart")
	}
	i.cached = id
	return id
}

// newID builds an id of the form device_<creationMs>_<random>. The random
// component is the tail of a UUID, short enough to keep conflict dialogs
// readable.
func (i *Identity) newID() string {
	random := i.uuid.Generate()
	if idx := strings.LastIndex(random, "-"); idx >= 0 {
		random = random[idx+1:]
	}
	return fmt.Sprintf("device_%d_%s", time.Now().UnixMilli(), random)
}
