package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/booklens/booklens-server/internal/domain"
	domainerrors "github.com/booklens/booklens-server/internal/errors"
	"github.com/booklens/booklens-server/internal/store/sqlite"
)

var testLogger = slog.New(slog.DiscardHandler)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), testLogger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createTestUser(t *testing.T, s *sqlite.Store, email string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, Name: "Reader", PasswordHash: "hash"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func createTestBook(t *testing.T, s *sqlite.Store, userID int64, title string, totalPage int) *domain.Book {
	t.Helper()
	b := &domain.Book{
		UserID:    userID,
		Title:     title,
		Author:    "Author",
		TotalPage: totalPage,
		Status:    domain.BookStatusReading,
	}
	require.NoError(t, s.CreateBook(context.Background(), b))
	return b
}

func intPtr(v int) *int           { return &v }
func int64Ptr(v int64) *int64     { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

// requireCode asserts err is a domain error with the given code.
func requireCode(t *testing.T, err error, code domainerrors.Code) {
	t.Helper()
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, code, domainErr.Code, "message: %s", domainErr.Message)
}
