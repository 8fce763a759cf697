package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/glyphkit/glyphkit-server/internal/auth"
	"github.com/glyphkit/glyphkit-server/internal/config"
	"github.com/glyphkit/glyphkit-server/internal/domain"
	"github.com/glyphkit/glyphkit-server/internal/service"
	"github.com/glyphkit/glyphkit-server/internal/store/sqlite"
)

const (
	testPassword    = "Sup3rS3cretPass!"
	testPluginToken = "test-plugin-token"
)

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api          humatest.TestAPI
	tokenService *auth.TokenService
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	st, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(authKey, 15*time.Minute)
	require.NoError(t, err)

	services := &Services{
		Auth:     service.NewAuthService(st, tokenService, logger),
		Icon:     service.NewIconService(st, logger),
		Category: service.NewCategoryService(st, logger),
	}

	cfg := &config.Config{}
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.Auth.PluginAPIToken = testPluginToken

	s := NewServer(st, services, cfg, logger)

	return &testServer{
		Server:       s,
		api:          humatest.Wrap(t, s.api),
		tokenService: tokenService,
	}
}

// createTestUser seeds an active user and logs in through the API,
// returning the access token and user ID.
func (ts *testServer) createTestUser(t *testing.T, username string) (token string, userID string) {
	t.Helper()

	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)

	now := time.Now()
	user := &domain.User{
		ID:           "usr-" + username,
		Username:     username,
		Email:        username + "@glyphkit.dev",
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, ts.store.CreateUser(context.Background(), user))

	resp := ts.api.Post("/api/auth/login", map[string]any{
		"username": username,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, resp.Code, "login failed: %s", resp.Body.String())

	var body LoginResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))

	return body.Token, user.ID
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, "healthy", body.Status)
	require.Equal(t, "healthy", body.Components["database"].Status)
}
