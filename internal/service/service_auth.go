package service

import (
	"context"
	"fmt"
	"time"

	"github.com/linkdeck/linkdeck/internal/config"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/store"
	"github.com/linkdeck/linkdeck/internal/utils"
	"github.com/linkdeck/linkdeck/internal/validators"
	"github.com/linkdeck/linkdeck/models"
)

// authService is the concrete implementation of AuthService.
// It handles account registration, credential verification, and JWT token
// lifecycle using an AccountRepository for persistence and HMAC-SHA256 for
// password hashing.
type authService struct {
	// accountRepository is the data-access layer used to create and look
	// up accounts.
	accountRepository store.AccountRepository

	// validator checks inbound account payloads before any hashing or
	// repository work happens.
	validator validators.Validator

	// hashKey is the HMAC secret used when hashing account passwords
	// before storage or comparison. Must match the value used at
	// registration time.
	hashKey string

	// tokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	// Tokens whose issuer does not match this value are rejected during
	// parsing.
	tokenIssuer string

	// tokenDuration controls how long a newly issued JWT remains valid.
	tokenDuration time.Duration

	// logger is the structured logger used for diagnostic and error output.
	logger *logger.Logger
}

// NewAuthService constructs a new AuthService wired to the given
// AccountRepository and populated with security parameters from cfg.
//
// The returned service is safe for concurrent use; all state is read-only
// after construction.
func NewAuthService(accountRepository store.AccountRepository, validator validators.Validator, cfg config.Auth, logger *logger.Logger) AuthService {
	return &authService{
		accountRepository: accountRepository,
		validator:         validator,
		hashKey:           cfg.PasswordHashKey,
		tokenSignKey:      cfg.TokenSignKey,
		tokenIssuer:       cfg.TokenIssuer,
		tokenDuration:     cfg.TokenDuration,
		logger:            logger,
	}
}

// Register creates a new account.
//
// It validates that both Login and Password are non-empty, hashes the
// password with the configured HMAC key, and delegates persistence to the
// AccountRepository.
//
// Returns the persisted account (with a server-assigned AccountID) or:
//   - ErrInvalidDataProvided if Login or Password is empty.
//   - A wrapped storage error if the repository call fails (e.g. login
//     already taken, see store.ErrLoginAlreadyExists).
func (a *authService) Register(ctx context.Context, account models.Account) (models.Account, error) {
	log := logger.FromContext(ctx)

	if err := a.validator.Validate(ctx, account); err != nil {
		log.Err(err).Str("login", account.Login).Msg("invalid account data provided")
		return models.Account{}, ErrInvalidDataProvided
	}

	account.PasswordHash = utils.HashString(account.Password, a.hashKey)
	account.Password = ""

	registered, err := a.accountRepository.CreateAccount(ctx, account)
	if err != nil {
		log.Err(err).Str("login", account.Login).Msg("account creation ended with error")
		return models.Account{}, fmt.Errorf("account creation ended with error: %w", err)
	}

	return registered, nil
}

// Login authenticates an existing account.
//
// It validates that both Login and Password are non-empty, looks up the
// account by login, and compares the stored hash against the hash of the
// supplied password in constant time.
//
// Returns the authenticated account record or:
//   - ErrInvalidDataProvided if Login or Password is empty.
//   - A wrapped storage error if the repository lookup fails (e.g. account
//     not found, see store.ErrNoAccountWasFound).
//   - ErrWrongPassword if the hashes do not match.
func (a *authService) Login(ctx context.Context, account models.Account) (models.Account, error) {
	log := logger.FromContext(ctx)

	if err := a.validator.Validate(ctx, account); err != nil {
		log.Err(err).Str("login", account.Login).Msg("invalid account data provided")
		return models.Account{}, ErrInvalidDataProvided
	}

	found, err := a.accountRepository.FindAccountByLogin(ctx, account.Login)
	if err != nil {
		log.Err(err).Str("login", account.Login).Msg("account search by login failed")
		return models.Account{}, fmt.Errorf("account search by login failed: %w", err)
	}

	if !utils.HashEquals(found.PasswordHash, utils.HashString(account.Password, a.hashKey)) {
		log.Error().
			Int64("id", found.AccountID).
			Str("login", found.Login).
			Msg("wrong password")
		return models.Account{}, ErrWrongPassword
	}

	found.Password = ""
	return found, nil
}

// ChangePassword verifies the current password of accountID and, when
// newPassword is non-empty, stores the hash of the new one. With an empty
// newPassword the call verifies and changes nothing, which is how the
// agent implements its password check.
func (a *authService) ChangePassword(ctx context.Context, accountID int64, currentPassword, newPassword string) (models.Account, error) {
	log := logger.FromContext(ctx)

	if err := a.validator.Validate(ctx, models.Account{Password: currentPassword}, validators.FieldPassword); err != nil {
		return models.Account{}, ErrInvalidDataProvided
	}

	found, err := a.accountRepository.FindAccountByID(ctx, accountID)
	if err != nil {
		log.Err(err).Int64("id", accountID).Msg("account lookup failed")
		return models.Account{}, fmt.Errorf("account lookup failed: %w", err)
	}

	if !utils.HashEquals(found.PasswordHash, utils.HashString(currentPassword, a.hashKey)) {
		log.Error().Int64("id", accountID).Msg("wrong current password")
		return models.Account{}, ErrWrongPassword
	}

	if newPassword == "" {
		found.Password = ""
		return found, nil
	}

	newHash := utils.HashString(newPassword, a.hashKey)
	if err = a.accountRepository.UpdatePassword(ctx, accountID, newHash); err != nil {
		log.Err(err).Int64("id", accountID).Msg("password update failed")
		return models.Account{}, fmt.Errorf("password update failed: %w", err)
	}

	found.PasswordHash = newHash
	found.Password = ""
	return found, nil
}

// GetAccount loads the account record with the given identifier.
func (a *authService) GetAccount(ctx context.Context, accountID int64) (models.Account, error) {
	found, err := a.accountRepository.FindAccountByID(ctx, accountID)
	if err != nil {
		return models.Account{}, fmt.Errorf("account lookup failed: %w", err)
	}

	found.Password = ""
	return found, nil
}

// CreateToken issues a signed JWT for the given account.
//
// The token is signed with the configured tokenSignKey, carries the
// configured tokenIssuer as the "iss" claim, and expires after
// tokenDuration.
func (a *authService) CreateToken(ctx context.Context, account models.Account) (models.Token, error) {
	token, err := utils.GenerateJWTToken(a.tokenIssuer, account.AccountID, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return token, nil
}

// ParseToken validates and parses a raw JWT string.
//
// It delegates to utils.ValidateAndParseJWTToken, verifying the signature
// and the issuer claim. Any validation failure (expired, wrong issuer,
// malformed) is normalised to ErrTokenIsExpiredOrInvalid so that callers
// do not need to inspect low-level JWT errors.
func (a *authService) ParseToken(_ context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}
