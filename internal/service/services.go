package service

import (
	"github.com/linkdeck/linkdeck/internal/config"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/store"
	"github.com/linkdeck/linkdeck/internal/validators"
)

type Services struct {
	AuthService     AuthService
	SnapshotService SnapshotService
	BackupService   BackupService
}

func NewServices(storages *store.Storages, cfg config.StructuredConfig, logger *logger.Logger) *Services {
	validator := validators.NewSyncDataValidator()

	return &Services{
		AuthService:     NewAuthService(storages.AccountRepository, validator, cfg.Auth, logger),
		SnapshotService: NewSnapshotService(storages.SnapshotRepository, validator, logger),
		BackupService:   NewBackupService(storages.BackupRepository, validator, logger),
	}
}
