package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/glyphkit/glyphkit-server/internal/auth"
	"github.com/glyphkit/glyphkit-server/internal/domain"
	"github.com/glyphkit/glyphkit-server/internal/store"
	"github.com/glyphkit/glyphkit-server/internal/store/sqlite"
)

// testEnv bundles the services under test over one temp database.
type testEnv struct {
	store      store.Store
	icons      *IconService
	categories *CategoryService
	auth       *AuthService
	tokens     *auth.TokenService
}

// newTestEnv creates services backed by a fresh SQLite store.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, time.Hour)
	require.NoError(t, err)

	return &testEnv{
		store:      st,
		icons:      NewIconService(st, logger),
		categories: NewCategoryService(st, logger),
		auth:       NewAuthService(st, tokens, logger),
		tokens:     tokens,
	}
}

// seedUser provisions a login-capable user directly in the store.
func (e *testEnv) seedUser(t *testing.T, username, password string, active bool) *domain.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	now := time.Now()
	user := &domain.User{
		ID:           "usr-" + username,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		IsActive:     active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, e.store.CreateUser(context.Background(), user))
	return user
}

// seedCategory provisions a category directly in the store.
func (e *testEnv) seedCategory(t *testing.T, name, slug string) *domain.Category {
	t.Helper()

	now := time.Now()
	c := &domain.Category{
		ID:        "cat-" + slug,
		Name:      name,
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, e.store.CreateCategory(context.Background(), c))
	return c
}
