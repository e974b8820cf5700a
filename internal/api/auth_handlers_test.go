package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupAndLogin(t *testing.T) {
	ts := setupTestServer(t)
	_, userID := ts.signup(t, "Reader@Example.com")

	resp := ts.api.Post("/api/auth/login", map[string]any{
		"email":    "reader@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	body := decode[AuthResponse](t, resp.Body.Bytes())
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, userID, body.User.ID)
	assert.Equal(t, "reader@example.com", body.User.Email)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	ts := setupTestServer(t)
	ts.signup(t, "dup@example.com")

	resp := ts.api.Post("/api/auth/signup", map[string]any{
		"email":    "dup@example.com",
		"password": "another password",
		"name":     "Someone",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Email already in use", errorMessage(t, resp.Body.Bytes()))
}

func TestSignup_Validation(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/auth/signup", map[string]any{
		"email":    "not-an-email",
		"password": "short",
		"name":     "X",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	// Missing fields fail schema validation, still reported as 400.
	resp = ts.api.Post("/api/auth/signup", map[string]any{"email": "a@example.com"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.NotEmpty(t, errorMessage(t, resp.Body.Bytes()))
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ts := setupTestServer(t)
	ts.signup(t, "user@example.com")

	for _, creds := range []map[string]any{
		{"email": "user@example.com", "password": "wrong password"},
		{"email": "nobody@example.com", "password": "correct horse battery"},
	} {
		resp := ts.api.Post("/api/auth/login", creds)
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Equal(t, "Invalid email or password", errorMessage(t, resp.Body.Bytes()))
	}
}

func TestMe(t *testing.T) {
	ts := setupTestServer(t)
	authHeader, userID := ts.signup(t, "me@example.com")

	resp := ts.api.Get("/api/auth/me", authHeader)
	require.Equal(t, http.StatusOK, resp.Code)

	body := decode[struct {
		User UserResponse `json:"user"`
	}](t, resp.Body.Bytes())
	assert.Equal(t, userID, body.User.ID)
	assert.Nil(t, body.User.Nickname)
	assert.Contains(t, resp.Body.String(), `"nickname":null`)
}

func TestMe_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/auth/me")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Authentication required", errorMessage(t, resp.Body.Bytes()))

	resp = ts.api.Get("/api/auth/me", "Authorization: Bearer v4.local.garbage")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestUpdateProfile(t *testing.T) {
	ts := setupTestServer(t)
	authHeader, _ := ts.signup(t, "profile@example.com")

	resp := ts.api.Put("/api/auth/profile", authHeader, map[string]any{
		"nickname": "bookworm",
		"bio":      "Reads at night",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	body := decode[struct {
		User UserResponse `json:"user"`
	}](t, resp.Body.Bytes())
	require.NotNil(t, body.User.Nickname)
	assert.Equal(t, "bookworm", *body.User.Nickname)
	assert.Equal(t, "Reader", body.User.Name)

	// A blank value clears the field.
	resp = ts.api.Put("/api/auth/profile", authHeader, map[string]any{"nickname": ""})
	require.Equal(t, http.StatusOK, resp.Code)
	body = decode[struct {
		User UserResponse `json:"user"`
	}](t, resp.Body.Bytes())
	assert.Nil(t, body.User.Nickname)
	require.NotNil(t, body.User.Bio)
}

func TestLogout(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/auth/logout")
	assert.Equal(t, http.StatusNoContent, resp.Code)
}
