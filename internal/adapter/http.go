package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"

	"github.com/linkdeck/linkdeck/internal/config"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/utils"
	"github.com/linkdeck/linkdeck/models"
)

type httpRemoteStore struct {
	client *utils.HTTPClient

	// tokenMu guards token. Login and password changes update it while
	// the pull worker issues requests from its own goroutine.
	tokenMu sync.RWMutex
	token   string

	logger *logger.Logger
}

// NewHTTPRemoteStore constructs an HTTP/REST implementation of [RemoteStore].
// It normalises and validates the base URL from adapterCfg.HTTPAddress and
// configures the underlying HTTP client with the resolved base URL and
// request timeout.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as
// a valid URL.
func NewHTTPRemoteStore(adapterCfg config.Adapter, logger *logger.Logger) (RemoteStore, error) {
	client := utils.NewHTTPClient()
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client.
		SetBaseURL(baseURL).
		SetTimeout(adapterCfg.RequestTimeout)

	return &httpRemoteStore{client: client, logger: logger}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [RemoteStore]. It stores token (whitespace-trimmed)
// for use in the Authorization header of all subsequent requests.
func (h *httpRemoteStore) SetToken(token string) {
	h.tokenMu.Lock()
	defer h.tokenMu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token implements [RemoteStore].
func (h *httpRemoteStore) Token() string {
	h.tokenMu.RLock()
	defer h.tokenMu.RUnlock()
	return h.token
}

// Register implements [RemoteStore]. It POSTs the account credentials to
// POST /api/auth/register. On success the bearer token is extracted from the
// Authorization response header and stored via SetToken.
func (h *httpRemoteStore) Register(ctx context.Context, account models.Account) (models.Account, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(account).
		Post("/api/auth/register")
	if err != nil {
		return models.Account{}, wrapTransportError("register", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Account{}, err
	}

	token, err := utils.ParseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return models.Account{}, fmt.Errorf("register parse bearer token: %w", err)
	}

	h.SetToken(token)
	account.Password = ""
	return account, nil
}

// Login implements [RemoteStore]. It POSTs the credentials to
// POST /api/auth/login, stores the returned bearer token, and returns the
// server-side account record (login, role).
func (h *httpRemoteStore) Login(ctx context.Context, account models.Account) (models.Account, error) {
	var found models.Account

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(account).
		SetResult(&found).
		Post("/api/auth/login")
	if err != nil {
		return models.Account{}, wrapTransportError("login", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Account{}, err
	}

	token, err := utils.ParseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return models.Account{}, fmt.Errorf("login parse bearer token: %w", err)
	}

	h.SetToken(token)
	found.Password = ""
	return found, nil
}

// VerifyPassword implements [RemoteStore]. A verify is a password change
// request with an empty new password; the server checks and changes nothing.
func (h *httpRemoteStore) VerifyPassword(ctx context.Context, password string) error {
	resp, err := h.authorized(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.PasswordChangeRequest{CurrentPassword: password}).
		Post("/api/auth/password")
	if err != nil {
		return wrapTransportError("verify password", err)
	}
	return mapHTTPError(resp)
}

// ChangePassword implements [RemoteStore] via POST /api/auth/password. The
// bearer token from the response replaces the stored one, since tokens
// issued for the old credentials are revoked server-side.
func (h *httpRemoteStore) ChangePassword(ctx context.Context, current, next string) error {
	resp, err := h.authorized(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.PasswordChangeRequest{CurrentPassword: current, NewPassword: next}).
		Post("/api/auth/password")
	if err != nil {
		return wrapTransportError("change password", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return err
	}

	if token, err := utils.ParseBearerToken(resp.Header().Get("Authorization")); err == nil {
		h.SetToken(token)
	}
	return nil
}

// GetSnapshot implements [RemoteStore] via GET /api/snapshot.
func (h *httpRemoteStore) GetSnapshot(ctx context.Context) (*models.Snapshot, error) {
	snapshot := new(models.Snapshot)

	resp, err := h.authorized(ctx).
		SetResult(snapshot).
		Get("/api/snapshot")
	if err != nil {
		return nil, wrapTransportError("get snapshot", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// PutSnapshot implements [RemoteStore] via PUT /api/snapshot.
func (h *httpRemoteStore) PutSnapshot(ctx context.Context, snapshot *models.Snapshot) error {
	resp, err := h.authorized(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(snapshot).
		Put("/api/snapshot")
	if err != nil {
		return wrapTransportError("put snapshot", err)
	}
	return mapHTTPError(resp)
}

// ListBackups implements [RemoteStore] via GET /api/backups.
func (h *httpRemoteStore) ListBackups(ctx context.Context) ([]models.BackupInfo, error) {
	var list models.BackupListResponse

	resp, err := h.authorized(ctx).
		SetResult(&list).
		Get("/api/backups")
	if err != nil {
		return nil, wrapTransportError("list backups", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return list.Backups, nil
}

// GetBackup implements [RemoteStore] via GET /api/backups/{id}.
func (h *httpRemoteStore) GetBackup(ctx context.Context, backupID string) (*models.Snapshot, error) {
	snapshot := new(models.Snapshot)

	resp, err := h.authorized(ctx).
		SetResult(snapshot).
		Get("/api/backups/" + url.PathEscape(backupID))
	if err != nil {
		return nil, wrapTransportError("get backup", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// PutBackup implements [RemoteStore] via PUT /api/backups/{id}.
func (h *httpRemoteStore) PutBackup(ctx context.Context, backupID, name string, snapshot *models.Snapshot) error {
	resp, err := h.authorized(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.BackupPutRequest{Name: name, Snapshot: snapshot}).
		Put("/api/backups/" + url.PathEscape(backupID))
	if err != nil {
		return wrapTransportError("put backup", err)
	}
	return mapHTTPError(resp)
}

// DeleteBackup implements [RemoteStore] via DELETE /api/backups/{id}.
func (h *httpRemoteStore) DeleteBackup(ctx context.Context, backupID string) error {
	resp, err := h.authorized(ctx).
		Delete("/api/backups/" + url.PathEscape(backupID))
	if err != nil {
		return wrapTransportError("delete backup", err)
	}
	return mapHTTPError(resp)
}

// authorized returns a request pre-configured with the context and the
// bearer token held by the adapter.
func (h *httpRemoteStore) authorized(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

// wrapTransportError tags request-level failures (DNS, refused connection,
// timeout) with [ErrNetwork] so the coordinator can classify them, while a
// cancelled context keeps its own identity.
func wrapTransportError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrNetwork, err)
}
