package sqlite

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booklens/booklens-server/internal/domain"
	"github.com/booklens/booklens-server/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(dbPath, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestUser(t *testing.T, s *Store, email string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, Name: "Reader " + email, PasswordHash: "hash"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func createTestBook(t *testing.T, s *Store, userID int64, title string) *domain.Book {
	t.Helper()
	b := &domain.Book{
		UserID:    userID,
		Title:     title,
		Author:    "Author of " + title,
		TotalPage: 200,
		Status:    domain.BookStatusReading,
	}
	require.NoError(t, s.CreateBook(context.Background(), b))
	return b
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	var fk int
	require.NoError(t, s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	for _, table := range []string{"users", "books", "reading_sessions", "postings", "comments", "likes"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}

	assert.NoError(t, s.Ping(context.Background()))
}

func TestOpen_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(dbPath, nil)
	require.NoError(t, err)
	u := createTestUser(t, s, "a@example.com")
	require.NoError(t, s.Close())

	s, err = Open(dbPath, nil)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)
}

func TestInTx_RollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "tx@example.com")

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx store.Gateway) error {
		b := &domain.Book{UserID: u.ID, Title: "Lost", Author: "Nobody", Status: domain.BookStatusReading}
		require.NoError(t, tx.CreateBook(ctx, b))
		return boom
	})
	require.ErrorIs(t, err, boom)

	books, err := s.ListBooks(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestInTx_NestedJoinsOuter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "nested@example.com")

	err := s.InTx(ctx, func(tx store.Gateway) error {
		return tx.InTx(ctx, func(inner store.Gateway) error {
			assert.Same(t, tx, inner)
			b := &domain.Book{UserID: u.ID, Title: "Kept", Author: "Someone", Status: domain.BookStatusReading}
			return inner.CreateBook(ctx, b)
		})
	})
	require.NoError(t, err)

	books, err := s.ListBooks(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestTimeFormatSortsLexically(t *testing.T) {
	a, err := parseTime("2024-03-05T09:59:59.999Z")
	require.NoError(t, err)
	b, err := parseTime("2024-03-05T10:00:00.000Z")
	require.NoError(t, err)

	assert.True(t, a.Before(b))
	assert.Less(t, formatTime(a), formatTime(b))
	assert.Len(t, formatTime(a), len(timeLayout))
}
