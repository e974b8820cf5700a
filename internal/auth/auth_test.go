package auth

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booklens/booklens-server/internal/domain"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	assert.True(t, VerifyPassword(hash, "correct horse battery staple"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword("not-a-hash", "anything"))
}

func TestHashPassword_Length(t *testing.T) {
	_, err := HashPassword("")
	assert.ErrorIs(t, err, ErrPasswordLength)

	_, err = HashPassword(strings.Repeat("a", maxPasswordLength+1))
	assert.ErrorIs(t, err, ErrPasswordLength)
}

func TestLoadOrGenerateKey(t *testing.T) {
	dir := t.TempDir()

	key, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, key, 32)

	again, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, key, again)

	require.NoError(t, os.WriteFile(filepath.Join(dir, KeyFileName), []byte("abc"), 0o600))
	_, err = LoadOrGenerateKey(dir)
	assert.Error(t, err)
}

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	svc, err := NewTokenService(key, time.Hour)
	require.NoError(t, err)
	return svc
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc := newTestTokenService(t)
	user := &domain.User{ID: 42, Email: "reader@example.com"}

	token, err := svc.Issue(user)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "v4.local."))

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "reader@example.com", claims.Email)
	assert.True(t, strings.HasPrefix(claims.TokenID, "tok-"))
}

func TestTokenService_Expired(t *testing.T) {
	svc := newTestTokenService(t)
	issued := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }

	token, err := svc.Issue(&domain.User{ID: 1, Email: "a@b.c"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Verify(token)
	assert.Error(t, err)
}

func TestTokenService_WrongKey(t *testing.T) {
	svc := newTestTokenService(t)
	token, err := svc.Issue(&domain.User{ID: 1, Email: "a@b.c"})
	require.NoError(t, err)

	other, err := NewTokenService(make([]byte, 32), time.Hour)
	require.NoError(t, err)
	_, err = other.Verify(token)
	assert.Error(t, err)

	_, err = NewTokenService([]byte("short"), time.Hour)
	assert.Error(t, err)
}
