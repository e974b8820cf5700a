package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booklens/booklens-server/internal/domain"
	"github.com/booklens/booklens-server/internal/store"
)

func TestCreateAndGetBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "owner@example.com")

	publisher := "Ace"
	book := &domain.Book{
		UserID:    u.ID,
		Title:     "Dune",
		Author:    "Frank Herbert",
		Publisher: &publisher,
		TotalPage: 412,
		ReadPage:  103,
		Progress:  25,
		Status:    domain.BookStatusReading,
	}
	require.NoError(t, s.CreateBook(ctx, book))
	assert.NotZero(t, book.ID)

	got, err := s.GetBook(ctx, u.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, "Ace", *got.Publisher)
	assert.Nil(t, got.ISBN)
	assert.Equal(t, 103, got.ReadPage)
	assert.Equal(t, float64(25), got.Progress)
	assert.Equal(t, domain.BookStatusReading, got.Status)
	assert.Equal(t, book.CreatedAt, got.CreatedAt)
}

func TestGetBook_ForeignOwnerIsNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := createTestUser(t, s, "owner@example.com")
	other := createTestUser(t, s, "other@example.com")
	book := createTestBook(t, s, owner.ID, "Private")

	_, err := s.GetBook(ctx, other.ID, book.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetBook(ctx, owner.ID, book.ID+100)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListBooks_OrderAndScope(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "lister@example.com")
	other := createTestUser(t, s, "other@example.com")

	first := createTestBook(t, s, u.ID, "First")
	time.Sleep(2 * time.Millisecond)
	second := createTestBook(t, s, u.ID, "Second")
	createTestBook(t, s, other.ID, "Not mine")

	books, err := s.ListBooks(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, second.ID, books[0].ID)

	// Touching the older book moves it to the front.
	time.Sleep(2 * time.Millisecond)
	first.Memo = new(string)
	require.NoError(t, s.UpdateBook(ctx, first))

	books, err = s.ListBooks(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, books[0].ID)

	all, err := s.ListAllBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListBooks_EmptyIsNotNil(t *testing.T) {
	s := newTestStore(t)
	u := createTestUser(t, s, "empty@example.com")

	books, err := s.ListBooks(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestUpdateBook_ForeignOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := createTestUser(t, s, "owner@example.com")
	other := createTestUser(t, s, "other@example.com")
	book := createTestBook(t, s, owner.ID, "Mine")

	book.UserID = other.ID
	book.Title = "Stolen"
	assert.ErrorIs(t, s.UpdateBook(ctx, book), store.ErrNotFound)

	got, err := s.GetBook(ctx, owner.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.Title)
}

func TestIncrementBookReading(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "inc@example.com")
	book := createTestBook(t, s, u.ID, "Counter")

	got, err := s.IncrementBookReading(ctx, u.ID, book.ID, 30, 600)
	require.NoError(t, err)
	assert.Equal(t, 30, got.ReadPage)
	assert.Equal(t, int64(600), got.TotalReadingTime)

	got, err = s.IncrementBookReading(ctx, u.ID, book.ID, 20, 60)
	require.NoError(t, err)
	assert.Equal(t, 50, got.ReadPage)
	assert.Equal(t, int64(660), got.TotalReadingTime)
	assert.Equal(t, domain.BookStatusReading, got.Status)

	require.NoError(t, s.SetBookProgress(ctx, book.ID, 25))
	reloaded, err := s.GetBook(ctx, u.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(25), reloaded.Progress)

	_, err = s.IncrementBookReading(ctx, u.ID+1, book.ID, 1, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteBook_RejectedWhileReferenced(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "del@example.com")
	book := createTestBook(t, s, u.ID, "Referenced")

	session := domain.NewReadingSession(u.ID, book.ID, time.Now(), 60, 3)
	require.NoError(t, s.CreateReadingSession(ctx, session))

	err := s.DeleteBook(ctx, u.ID, book.ID)
	assert.ErrorIs(t, err, store.ErrReferenced)

	n, err := s.DeleteReadingSessionsByBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, s.DeleteBook(ctx, u.ID, book.ID))
	assert.ErrorIs(t, s.DeleteBook(ctx, u.ID, book.ID), store.ErrNotFound)
}
