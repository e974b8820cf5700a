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

func TestPostingDetail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author := createTestUser(t, s, "author@example.com")
	fan := createTestUser(t, s, "fan@example.com")
	book := createTestBook(t, s, author.ID, "Dune")

	p := &domain.Posting{UserID: author.ID, BookID: &book.ID, Title: "Thoughts", Content: "Spice"}
	require.NoError(t, s.CreatePosting(ctx, p))

	liked, err := s.ToggleLike(ctx, p.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	c := &domain.Comment{UserID: fan.ID, PostingID: p.ID, Content: "Agreed"}
	require.NoError(t, s.CreateComment(ctx, c))
	assert.Equal(t, domain.UserSummary{ID: fan.ID, Name: fan.Name}, c.Author)

	d, err := s.GetPostingDetail(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Thoughts", d.Title)
	assert.Equal(t, author.Name, d.Author.Name)
	require.NotNil(t, d.Book)
	assert.Equal(t, "Dune", d.Book.Title)
	assert.Equal(t, 1, d.LikesCount)
	require.Len(t, d.Comments, 1)
	assert.Equal(t, "Agreed", d.Comments[0].Content)

	liked, err = s.ToggleLike(ctx, p.ID, fan.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	d, err = s.GetPostingDetail(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, d.LikesCount)
}

func TestListPostingDetails_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "poster@example.com")

	older := &domain.Posting{UserID: u.ID, Title: "Older", Content: "a"}
	require.NoError(t, s.CreatePosting(ctx, older))
	time.Sleep(2 * time.Millisecond)
	newer := &domain.Posting{UserID: u.ID, Title: "Newer", Content: "b"}
	require.NoError(t, s.CreatePosting(ctx, newer))

	require.NoError(t, s.CreateComment(ctx, &domain.Comment{UserID: u.ID, PostingID: older.ID, Content: "self reply"}))

	list, err := s.ListPostingDetails(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Nil(t, list[0].Book)
	assert.Empty(t, list[0].Comments)
	assert.Len(t, list[1].Comments, 1)
}

func TestClearPostingBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "clear@example.com")
	book := createTestBook(t, s, u.ID, "Gone soon")

	p := &domain.Posting{UserID: u.ID, BookID: &book.ID, Title: "Review", Content: "text"}
	require.NoError(t, s.CreatePosting(ctx, p))

	n, err := s.ClearPostingBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := s.GetPosting(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.BookID)
}

func TestDeletePosting_CascadesChildren(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "cascade@example.com")

	p := &domain.Posting{UserID: u.ID, Title: "Short lived", Content: "x"}
	require.NoError(t, s.CreatePosting(ctx, p))
	c := &domain.Comment{UserID: u.ID, PostingID: p.ID, Content: "y"}
	require.NoError(t, s.CreateComment(ctx, c))
	_, err := s.ToggleLike(ctx, p.ID, u.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeletePosting(ctx, p.ID))

	_, err = s.GetComment(ctx, c.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeletePosting(ctx, p.ID), store.ErrNotFound)
}

func TestToggleLike_UnknownPosting(t *testing.T) {
	s := newTestStore(t)
	u := createTestUser(t, s, "nolike@example.com")

	_, err := s.ToggleLike(context.Background(), 404, u.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := createTestUser(t, s, "Mixed@Example.com")
	assert.Equal(t, "mixed@example.com", u.Email)

	got, err := s.GetUserByEmail(ctx, "MIXED@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	dup := &domain.User{Email: "mixed@example.com", Name: "Dup", PasswordHash: "x"}
	assert.ErrorIs(t, s.CreateUser(ctx, dup), store.ErrAlreadyExists)

	bio := "Reads a lot"
	got.Bio = &bio
	require.NoError(t, s.UpdateUser(ctx, got))

	again, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Reads a lot", *again.Bio)

	_, err = s.GetUser(ctx, 9999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
