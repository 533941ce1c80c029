package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkdeck/linkdeck/internal/config"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/models"
)

func newTestApp(t *testing.T, handler http.Handler) *App {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	app, err := NewApp(&config.AgentConfig{
		Adapter: config.Adapter{HTTPAddress: srv.URL, RequestTimeout: 2 * time.Second},
		Local:   config.Local{Path: filepath.Join(t.TempDir(), "agent.db")},
		Sync: config.Sync{
			DebounceDelay: 10 * time.Millisecond,
			Role:          "admin",
		},
	}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.local.Close() })

	return app
}

func loginHandler(t *testing.T, token string) http.Handler {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in models.Account
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))

		w.Header().Set("Authorization", "Bearer "+token)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.Account{Login: in.Login, Role: models.RoleAdmin})
	})

	return mux
}

func TestLoginPersistsSession(t *testing.T) {
	app := newTestApp(t, loginHandler(t, "issued-token"))
	ctx := context.Background()

	require.NoError(t, app.Login(ctx, "grace", "s3cret"))

	token, err := app.local.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "issued-token", token)
}

func TestRunRestoresSessionAndStopsOnCancel(t *testing.T) {
	app := newTestApp(t, http.NewServeMux())

	require.NoError(t, app.local.SaveSession(context.Background(), "stored-token"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	assert.Equal(t, "stored-token", app.remote.Token())
}

func TestLogoutClearsSession(t *testing.T) {
	app := newTestApp(t, loginHandler(t, "issued-token"))
	ctx := context.Background()

	require.NoError(t, app.Login(ctx, "grace", "s3cret"))
	require.NoError(t, app.Logout(ctx))

	token, err := app.local.GetSession(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Empty(t, app.remote.Token())
}
