package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkdeck/linkdeck/internal/config"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/service"
	"github.com/linkdeck/linkdeck/internal/store"
	"github.com/linkdeck/linkdeck/models"
)

type memAccountRepository struct {
	byLogin map[string]models.Account
	byID    map[int64]models.Account
	nextID  int64
}

func newMemAccountRepository() *memAccountRepository {
	return &memAccountRepository{
		byLogin: map[string]models.Account{},
		byID:    map[int64]models.Account{},
		nextID:  1,
	}
}

func (m *memAccountRepository) CreateAccount(_ context.Context, account models.Account) (models.Account, error) {
	if _, exists := m.byLogin[account.Login]; exists {
		return models.Account{}, store.ErrLoginAlreadyExists
	}
	account.AccountID = m.nextID
	m.nextID++
	if account.Role == "" {
		account.Role = models.RoleAdmin
	}
	account.CreatedAt = time.Now()
	m.byLogin[account.Login] = account
	m.byID[account.AccountID] = account
	return account, nil
}

func (m *memAccountRepository) FindAccountByLogin(_ context.Context, login string) (models.Account, error) {
	account, ok := m.byLogin[login]
	if !ok {
		return models.Account{}, store.ErrNoAccountWasFound
	}
	return account, nil
}

func (m *memAccountRepository) FindAccountByID(_ context.Context, accountID int64) (models.Account, error) {
	account, ok := m.byID[accountID]
	if !ok {
		return models.Account{}, store.ErrNoAccountWasFound
	}
	return account, nil
}

func (m *memAccountRepository) UpdatePassword(_ context.Context, accountID int64, passwordHash string) error {
	account, ok := m.byID[accountID]
	if !ok {
		return store.ErrNoAccountWasFound
	}
	account.PasswordHash = passwordHash
	m.byID[accountID] = account
	m.byLogin[account.Login] = account
	return nil
}

type memSnapshotRepository struct {
	blobs map[int64]*models.Snapshot
}

func (m *memSnapshotRepository) GetSnapshot(_ context.Context, accountID int64) (*models.Snapshot, error) {
	snapshot, ok := m.blobs[accountID]
	if !ok {
		return nil, store.ErrSnapshotNotFound
	}
	return snapshot, nil
}

func (m *memSnapshotRepository) PutSnapshot(_ context.Context, accountID int64, snapshot *models.Snapshot) error {
	if m.blobs == nil {
		m.blobs = map[int64]*models.Snapshot{}
	}
	m.blobs[accountID] = snapshot
	return nil
}

type memBackupKey struct {
	accountID int64
	backupID  string
}

type memBackupRepository struct {
	infos map[memBackupKey]models.BackupInfo
	blobs map[memBackupKey]*models.Snapshot
}

func newMemBackupRepository() *memBackupRepository {
	return &memBackupRepository{
		infos: map[memBackupKey]models.BackupInfo{},
		blobs: map[memBackupKey]*models.Snapshot{},
	}
}

func (m *memBackupRepository) ListBackups(_ context.Context, accountID int64) ([]models.BackupInfo, error) {
	out := []models.BackupInfo{}
	for key, info := range m.infos {
		if key.accountID == accountID {
			out = append(out, info)
		}
	}
	return out, nil
}

func (m *memBackupRepository) GetBackup(_ context.Context, accountID int64, backupID string) (*models.Snapshot, error) {
	snapshot, ok := m.blobs[memBackupKey{accountID, backupID}]
	if !ok {
		return nil, store.ErrBackupNotFound
	}
	return snapshot, nil
}

func (m *memBackupRepository) PutBackup(_ context.Context, accountID int64, backupID, name string, snapshot *models.Snapshot) error {
	key := memBackupKey{accountID, backupID}
	m.infos[key] = models.BackupInfo{ID: backupID, Name: name, CreatedAt: time.Now(), Meta: snapshot.Meta}
	m.blobs[key] = snapshot
	return nil
}

func (m *memBackupRepository) DeleteBackup(_ context.Context, accountID int64, backupID string) error {
	key := memBackupKey{accountID, backupID}
	if _, ok := m.blobs[key]; !ok {
		return store.ErrBackupNotFound
	}
	delete(m.infos, key)
	delete(m.blobs, key)
	return nil
}

type apiFixture struct {
	srv      *httptest.Server
	accounts *memAccountRepository
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	accounts := newMemAccountRepository()
	storages := &store.Storages{
		AccountRepository:  accounts,
		SnapshotRepository: &memSnapshotRepository{},
		BackupRepository:   newMemBackupRepository(),
	}

	cfg := config.StructuredConfig{Auth: config.Auth{
		PasswordHashKey: "hash-key",
		TokenSignKey:    "sign-key",
		TokenIssuer:     "linkdeck-test",
		TokenDuration:   time.Hour,
	}}

	services := service.NewServices(storages, cfg, logger.Nop())
	handler := NewHandler(services, logger.Nop())

	srv := httptest.NewServer(handler.Init())
	t.Cleanup(srv.Close)

	return &apiFixture{srv: srv, accounts: accounts}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, f.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// registerAccount registers a login and returns the issued bearer token.
func (f *apiFixture) registerAccount(t *testing.T, login, password string) string {
	t.Helper()

	resp := f.do(t, http.MethodPost, "/api/auth/register", "", models.Account{Login: login, Password: password})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	token := resp.Header.Get("Authorization")
	require.NotEmpty(t, token)
	return token[len("Bearer "):]
}

func TestRegisterAndLogin(t *testing.T) {
	f := newAPIFixture(t)

	token := f.registerAccount(t, "grace", "s3cret")
	assert.NotEmpty(t, token)

	// Duplicate login is rejected.
	resp := f.do(t, http.MethodPost, "/api/auth/register", "", models.Account{Login: "grace", Password: "x"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/auth/login", "", models.Account{Login: "grace", Password: "s3cret"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Authorization"))

	var account models.Account
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&account))
	assert.Equal(t, "grace", account.Login)
	assert.Equal(t, models.RoleAdmin, account.Role)

	resp = f.do(t, http.MethodPost, "/api/auth/login", "", models.Account{Login: "grace", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/auth/login", "", models.Account{Login: "nobody", Password: "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSnapshotEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	token := f.registerAccount(t, "grace", "s3cret")

	// No token, no snapshot.
	resp := f.do(t, http.MethodGet, "/api/snapshot", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/snapshot", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Nothing pushed yet.
	resp = f.do(t, http.MethodGet, "/api/snapshot", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	pushed := models.Snapshot{
		Links: []models.LinkItem{{ID: "l1", Title: "news", URL: "https://example.com"}},
		Meta:  models.SnapshotMeta{UpdatedAt: 1000, DeviceID: "device_a"},
	}
	resp = f.do(t, http.MethodPut, "/api/snapshot", token, pushed)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/snapshot", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got models.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, pushed.Fingerprint(), got.Fingerprint())
	assert.True(t, got.Meta.Equal(pushed.Meta))

	// A snapshot with no commit meta never comes from a healthy agent.
	resp = f.do(t, http.MethodPut, "/api/snapshot", token, models.Snapshot{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSnapshotIsolationBetweenAccounts(t *testing.T) {
	f := newAPIFixture(t)
	tokenA := f.registerAccount(t, "grace", "s3cret")
	tokenB := f.registerAccount(t, "heidi", "hunter2")

	pushed := models.Snapshot{Meta: models.SnapshotMeta{UpdatedAt: 1000, DeviceID: "device_a"}}
	resp := f.do(t, http.MethodPut, "/api/snapshot", tokenA, pushed)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/snapshot", tokenB, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestViewerCannotPush(t *testing.T) {
	f := newAPIFixture(t)

	// Viewer accounts are provisioned by downgrading a registered one;
	// register never hands out the viewer role itself.
	token := f.registerAccount(t, "grace", "s3cret")
	account := f.accounts.byLogin["grace"]
	account.Role = models.RoleViewer
	f.accounts.byLogin["grace"] = account
	f.accounts.byID[account.AccountID] = account

	pushed := models.Snapshot{Meta: models.SnapshotMeta{UpdatedAt: 1000, DeviceID: "device_a"}}
	resp := f.do(t, http.MethodPut, "/api/snapshot", token, pushed)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/snapshot", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBackupEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	token := f.registerAccount(t, "grace", "s3cret")

	resp := f.do(t, http.MethodGet, "/api/backups", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list models.BackupListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Zero(t, list.Length)

	snap := &models.Snapshot{Meta: models.SnapshotMeta{UpdatedAt: 1000, DeviceID: "device_a"}}
	resp = f.do(t, http.MethodPut, "/api/backups/b1", token, models.BackupPutRequest{Name: "before import", Snapshot: snap})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/backups", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Equal(t, 1, list.Length)
	assert.Equal(t, "before import", list.Backups[0].Name)

	resp = f.do(t, http.MethodGet, "/api/backups/b1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got models.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.True(t, got.Meta.Equal(snap.Meta))

	resp = f.do(t, http.MethodDelete, "/api/backups/b1", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/backups/b1", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestChangePasswordEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	token := f.registerAccount(t, "grace", "old")

	// Verify only.
	resp := f.do(t, http.MethodPost, "/api/auth/password", token, models.PasswordChangeRequest{CurrentPassword: "old"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Authorization"))

	resp = f.do(t, http.MethodPost, "/api/auth/password", token, models.PasswordChangeRequest{CurrentPassword: "bad"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Rotate.
	resp = f.do(t, http.MethodPost, "/api/auth/password", token, models.PasswordChangeRequest{CurrentPassword: "old", NewPassword: "new"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Authorization"))

	resp = f.do(t, http.MethodPost, "/api/auth/login", "", models.Account{Login: "grace", Password: "old"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp = f.do(t, http.MethodPost, "/api/auth/login", "", models.Account{Login: "grace", Password: "new"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnsupportedMethodHidden(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodDelete, "/api/auth/register", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTraceIDPropagated(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodPost, "/api/auth/login", "", models.Account{Login: "x", Password: "y"})
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))

	req, err := http.NewRequest(http.MethodPost, f.srv.URL+"/api/auth/login", bytes.NewBufferString(`{"login":"x","password":"y"}`))
	require.NoError(t, err)
	req.Header.Set("X-Trace-ID", "trace-123")
	resp2, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, "trace-123", resp2.Header.Get("X-Trace-ID"))
}

func TestAuthHeaderParsing(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{name: "bearer token", header: "Bearer abc"},
		{name: "scheme only", header: "Bearer", wantErr: ErrInvalidAuthorizationHeader},
		{name: "bare token", header: "abc", wantErr: ErrInvalidAuthorizationHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := getTokenFromAuthHeader(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "abc", token)
		})
	}
}

func TestGetSnapshotGzipResponse(t *testing.T) {
	f := newAPIFixture(t)
	token := f.registerAccount(t, "grace", "s3cret")

	pushed := models.Snapshot{Meta: models.SnapshotMeta{UpdatedAt: 1000, DeviceID: "device_a"}}
	resp := f.do(t, http.MethodPut, "/api/snapshot", token, pushed)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Transport-level DisableCompression keeps the raw gzip body visible.
	req, err := http.NewRequest(http.MethodGet, f.srv.URL+"/api/snapshot", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	req.Header.Set("Accept-Encoding", "gzip")

	client := &http.Client{Transport: &http.Transport{DisableCompression: true}}
	raw, err := client.Do(req)
	require.NoError(t, err)
	defer raw.Body.Close()
	assert.Equal(t, "gzip", raw.Header.Get("Content-Encoding"))
}
