package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"

	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/models"
)

// accountRepository is the PostgreSQL-backed implementation of
// [AccountRepository]. It handles account creation and lookup against the
// "accounts" table.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type accountRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewAccountRepository constructs an [AccountRepository] backed by the
// provided database connection and logger.
func NewAccountRepository(db *DB, logger *logger.Logger) AccountRepository {
	logger.Debug().Msg("creating account repository")
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

// CreateAccount persists a new account record and returns the fully
// populated [models.Account] with server-assigned fields (AccountID,
// CreatedAt).
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrLoginAlreadyExists].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *accountRepository) CreateAccount(ctx context.Context, account models.Account) (models.Account, error) {
	log := logger.FromContext(ctx)

	if account.Role == "" {
		account.Role = models.RoleAdmin
	}

	row := r.db.QueryRowContext(ctx, createAccount, account.Login, account.PasswordHash, account.Role)
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*accountRepository.CreateAccount").Msg("error inserting account")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.Account{}, ErrLoginAlreadyExists
		default:
			return models.Account{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	if err := row.Scan(&account.AccountID, &account.Login, &account.PasswordHash, &account.Role, &account.CreatedAt); err != nil {
		log.Err(err).Str("func", "*accountRepository.CreateAccount").Msg("error scanning created account")

		if postgresError(err) == pgerrcode.UniqueViolation {
			return models.Account{}, ErrLoginAlreadyExists
		}
		return models.Account{}, err
	}

	account.Password = ""
	return account, nil
}

// FindAccountByLogin retrieves the account record whose login matches the
// given value.
//
// Error handling:
//   - sql.ErrNoRows → [ErrNoAccountWasFound].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *accountRepository) FindAccountByLogin(ctx context.Context, login string) (models.Account, error) {
	log := logger.FromContext(ctx)

	var account models.Account
	row := r.db.QueryRowContext(ctx, findAccountByLogin, login)
	err := row.Scan(&account.AccountID, &account.Login, &account.PasswordHash, &account.Role, &account.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, ErrNoAccountWasFound
	}
	if err != nil {
		log.Err(err).Str("func", "*accountRepository.FindAccountByLogin").Msg("error finding account")
		return models.Account{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return account, nil
}

// FindAccountByID retrieves the account record with the given identifier.
//
// Error handling mirrors FindAccountByLogin.
func (r *accountRepository) FindAccountByID(ctx context.Context, accountID int64) (models.Account, error) {
	log := logger.FromContext(ctx)

	var account models.Account
	row := r.db.QueryRowContext(ctx, findAccountByID, accountID)
	err := row.Scan(&account.AccountID, &account.Login, &account.PasswordHash, &account.Role, &account.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, ErrNoAccountWasFound
	}
	if err != nil {
		log.Err(err).Str("func", "*accountRepository.FindAccountByID").Msg("error finding account")
		return models.Account{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return account, nil
}

// UpdatePassword replaces the stored password hash of accountID.
//
// Error handling:
//   - Zero rows affected → [ErrNoAccountWasFound].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *accountRepository) UpdatePassword(ctx context.Context, accountID int64, passwordHash string) error {
	log := logger.FromContext(ctx)

	res, err := r.db.ExecContext(ctx, updateAccountPassword, accountID, passwordHash)
	if err != nil {
		log.Err(err).Str("func", "*accountRepository.UpdatePassword").Msg("error updating password")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if affected == 0 {
		return ErrNoAccountWasFound
	}

	return nil
}
