package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) createTestCategory(t *testing.T, token, name string) CategoryResponse {
	t.Helper()

	resp := ts.api.Post("/api/categories", bearer(token), map[string]any{
		"name": name,
	})
	require.Equal(t, http.StatusCreated, resp.Code, "create category failed: %s", resp.Body.String())

	var body CategoryResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body
}

func TestCreateCategory(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.createTestUser(t, "admin")

	category := ts.createTestCategory(t, token, "User Interface")
	assert.Equal(t, "User Interface", category.Name)
	assert.Equal(t, "user-interface", category.Slug)
	assert.Equal(t, userID, category.CreatedBy)
}

func TestCreateCategory_Unauthorized(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/categories", map[string]any{"name": "Navigation"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCreateCategory_Duplicate(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.createTestUser(t, "admin")
	ts.createTestCategory(t, token, "Navigation")

	resp := ts.api.Post("/api/categories", bearer(token), map[string]any{
		"name": "Navigation",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestListCategories_Public(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.createTestUser(t, "admin")
	ts.createTestCategory(t, token, "Navigation")
	ts.createTestCategory(t, token, "Communication")

	resp := ts.api.Get("/api/categories")
	require.Equal(t, http.StatusOK, resp.Code)

	var body []CategoryResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "Communication", body[0].Name)
	assert.Equal(t, "Navigation", body[1].Name)
}

func TestGetCategory_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/categories/cat-missing")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpdateCategory(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.createTestUser(t, "admin")
	category := ts.createTestCategory(t, token, "Navigation")

	resp := ts.api.Patch("/api/categories/"+category.ID, bearer(token), map[string]any{
		"name":        "Wayfinding",
		"description": "Directional icons",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var body CategoryResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "Wayfinding", body.Name)
	assert.Equal(t, "Directional icons", body.Description)
	assert.Equal(t, "navigation", body.Slug, "slug stays stable on rename")
}

func TestDeleteCategory(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.createTestUser(t, "admin")
	category := ts.createTestCategory(t, token, "Navigation")

	resp := ts.api.Delete("/api/categories/"+category.ID, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/categories/" + category.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteCategory_InUse(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.createTestUser(t, "admin")
	category := ts.createTestCategory(t, token, "Navigation")
	ts.createTestIcon(t, token, map[string]any{
		"name":     "arrow-up",
		"svg":      "<svg/>",
		"category": category.Slug,
	})

	resp := ts.api.Delete("/api/categories/"+category.ID, bearer(token))
	assert.Equal(t, http.StatusConflict, resp.Code)

	var apiErr APIError
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &apiErr))
	details, ok := apiErr.Details.(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, details["iconCount"])
}
