package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.createTestUser(t, "admin")

	claims, err := ts.tokenService.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "admin", claims.Username)
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := setupTestServer(t)
	ts.createTestUser(t, "admin")

	resp := ts.api.Post("/api/auth/login", map[string]any{
		"username": "admin",
		"password": "not-the-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogin_UnknownUser(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/auth/login", map[string]any{
		"username": "ghost",
		"password": testPassword,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogin_RateLimited(t *testing.T) {
	ts := setupTestServer(t)

	limited := false
	for i := 0; i < 20; i++ {
		resp := ts.api.Post("/api/auth/login", map[string]any{
			"username": "ghost",
			"password": "wrong",
		})
		if resp.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited, "expected repeated logins from one IP to be rate limited")
}

func TestGetCurrentUser(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.createTestUser(t, "admin")

	resp := ts.api.Get("/api/auth/me", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	var body UserResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, userID, body.ID)
	assert.Equal(t, "admin", body.Username)
	assert.Equal(t, "admin@glyphkit.dev", body.Email)
}

func TestGetCurrentUser_MissingToken(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/auth/me")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestGetCurrentUser_GarbageToken(t *testing.T) {
	ts := setupTestServer(t)

	// A presented-but-invalid token is forbidden, not unauthorized.
	resp := ts.api.Get("/api/auth/me", bearer("v4.local.garbage"))
	assert.Equal(t, http.StatusForbidden, resp.Code)
}
