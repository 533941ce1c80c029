package store

import "github.com/linkdeck/linkdeck/internal/logger"

// Storages aggregates every server-side repository behind one wiring point.
type Storages struct {
	AccountRepository  AccountRepository
	SnapshotRepository SnapshotRepository
	BackupRepository   BackupRepository
}

// NewStorages builds all repositories on top of the shared database handle.
func NewStorages(db *DB, log *logger.Logger) *Storages {
	return &Storages{
		AccountRepository:  NewAccountRepository(db, log),
		SnapshotRepository: NewSnapshotRepository(db, log),
		BackupRepository:   NewBackupRepository(db, log),
	}
}
