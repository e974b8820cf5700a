package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booklens/booklens-server/internal/auth"
	domainerrors "github.com/booklens/booklens-server/internal/errors"
	"github.com/booklens/booklens-server/internal/store/sqlite"
)

func setupAuthService(t *testing.T) (*AuthService, *sqlite.Store) {
	t.Helper()
	s := newTestStore(t)
	tokens, err := auth.NewTokenService(make([]byte, 32), time.Hour)
	require.NoError(t, err)
	return NewAuthService(s, tokens, testLogger), s
}

func TestAuthService_SignupAndLogin(t *testing.T) {
	svc, _ := setupAuthService(t)
	ctx := context.Background()

	resp, err := svc.Signup(ctx, SignupRequest{Email: "Reader@Example.com", Password: "password123", Name: "Reader"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "reader@example.com", resp.User.Email)

	userID, err := svc.VerifyToken(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, userID)

	login, err := svc.Login(ctx, LoginRequest{Email: "reader@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestAuthService_SignupDuplicateEmail(t *testing.T) {
	svc, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupRequest{Email: "dup@example.com", Password: "password123", Name: "One"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, SignupRequest{Email: "DUP@example.com", Password: "password123", Name: "Two"})
	requireCode(t, err, domainerrors.CodeValidation)
	assert.Contains(t, err.Error(), "Email already in use")
}

func TestAuthService_SignupValidation(t *testing.T) {
	svc, _ := setupAuthService(t)

	_, err := svc.Signup(context.Background(), SignupRequest{Email: "not-an-email", Password: "password123", Name: "x"})
	requireCode(t, err, domainerrors.CodeValidation)

	_, err = svc.Signup(context.Background(), SignupRequest{Email: "a@b.co", Password: "short", Name: "x"})
	requireCode(t, err, domainerrors.CodeValidation)
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupRequest{Email: "login@example.com", Password: "password123", Name: "L"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "login@example.com", Password: "wrong-password"})
	requireCode(t, err, domainerrors.CodeInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "password123"})
	requireCode(t, err, domainerrors.CodeInvalidCredentials)
}

func TestAuthService_VerifyToken(t *testing.T) {
	svc, _ := setupAuthService(t)

	_, err := svc.VerifyToken(context.Background(), "v4.local.garbage")
	requireCode(t, err, domainerrors.CodeUnauthorized)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	svc, _ := setupAuthService(t)
	ctx := context.Background()

	resp, err := svc.Signup(ctx, SignupRequest{Email: "profile@example.com", Password: "password123", Name: "Before"})
	require.NoError(t, err)

	user, err := svc.UpdateProfile(ctx, resp.User.ID, UpdateProfileRequest{
		Name: strPtr("After"),
		Bio:  strPtr("Reads at night"),
	})
	require.NoError(t, err)
	assert.Equal(t, "After", user.Name)
	require.NotNil(t, user.Bio)
	assert.Equal(t, "Reads at night", *user.Bio)

	// A blank optional field clears it.
	user, err = svc.UpdateProfile(ctx, resp.User.ID, UpdateProfileRequest{Bio: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, user.Bio)

	_, err = svc.UpdateProfile(ctx, resp.User.ID, UpdateProfileRequest{Name: strPtr(" ")})
	requireCode(t, err, domainerrors.CodeValidation)

	me, err := svc.Me(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", me.Name)
}
