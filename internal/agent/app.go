package agent

import (
	"context"
	"fmt"

	"github.com/linkdeck/linkdeck/internal/adapter"
	"github.com/linkdeck/linkdeck/internal/backup"
	"github.com/linkdeck/linkdeck/internal/config"
	"github.com/linkdeck/linkdeck/internal/device"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/store"
	"github.com/linkdeck/linkdeck/internal/syncer"
	"github.com/linkdeck/linkdeck/internal/vault"
	"github.com/linkdeck/linkdeck/internal/workers"
	"github.com/linkdeck/linkdeck/models"
)

// App owns the agent process: the local store, the remote adapter, the sync
// coordinator, the backup store, and the background workers.
type App struct {
	local       store.LocalStore
	remote      adapter.RemoteStore
	coordinator *syncer.Coordinator
	backups     *backup.Store
	workers     *workers.Workers
	log         *logger.Logger
}

// NewApp wires the full agent object graph from cfg. The returned App is
// inert until Run is called.
func NewApp(cfg *config.AgentConfig, log *logger.Logger) (*App, error) {
	localStore, err := store.NewLocalStore(cfg.Local.Path)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	remote, err := adapter.NewHTTPRemoteStore(cfg.Adapter, log)
	if err != nil {
		_ = localStore.Close()
		return nil, fmt.Errorf("create remote adapter: %w", err)
	}

	role := models.Role(cfg.Sync.Role)
	identity := device.NewIdentity(localStore, log)
	coordinator := syncer.NewCoordinator(localStore, remote, identity, vault.NewService(), syncer.Config{
		DebounceDelay: cfg.Sync.DebounceDelay,
		Role:          role,
	}, log)

	return &App{
		local:       localStore,
		remote:      remote,
		coordinator: coordinator,
		backups:     backup.NewStore(remote, localStore, coordinator, log),
		workers:     workers.NewWorkers(workers.NewPullWorker(coordinator, cfg.Sync.PullInterval, role, log)),
		log:         log,
	}, nil
}

// Coordinator exposes the sync coordinator for embedding surfaces.
func (a *App) Coordinator() *syncer.Coordinator { return a.coordinator }

// Backups exposes the backup store for embedding surfaces.
func (a *App) Backups() *backup.Store { return a.backups }

// Register creates a remote account and persists the issued session token.
func (a *App) Register(ctx context.Context, login, password string) error {
	account, err := a.remote.Register(ctx, models.Account{Login: login, Password: password})
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	a.log.Info().Str("func", "Register").Str("login", account.Login).Msg("account registered")

	return a.saveSession(ctx)
}

// Login authenticates against the remote service and persists the issued
// session token so later runs skip the password prompt.
func (a *App) Login(ctx context.Context, login, password string) error {
	account, err := a.remote.Login(ctx, models.Account{Login: login, Password: password})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	a.log.Info().Str("func", "Login").Str("login", account.Login).Msg("logged in")

	return a.saveSession(ctx)
}

// Logout clears the persisted session token.
func (a *App) Logout(ctx context.Context) error {
	a.remote.SetToken("")

	if err := a.local.SaveSession(ctx, ""); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	return nil
}

// Run restores a persisted session if one exists, starts the background
// workers, and blocks until ctx is cancelled. Resources are released on the
// way out.
func (a *App) Run(ctx context.Context) error {
	if err := a.restoreSession(ctx); err != nil {
		return err
	}

	a.workers.Run(ctx)

	<-ctx.Done()

	a.workers.Wait()
	a.coordinator.Close()

	if err := a.local.Close(); err != nil {
		return fmt.Errorf("close local storage: %w", err)
	}

	return nil
}

func (a *App) restoreSession(ctx context.Context) error {
	token, err := a.local.GetSession(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	if token == "" {
		a.log.Info().Str("func", "restoreSession").Msg("no stored session, login required")
		return nil
	}

	a.remote.SetToken(token)
	a.log.Debug().Str("func", "restoreSession").Msg("session restored")

	return nil
}

func (a *App) saveSession(ctx context.Context) error {
	if err := a.local.SaveSession(ctx, a.remote.Token()); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	return nil
}
