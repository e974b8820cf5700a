// Package store defines the persistence interface for the BookLens server.
package store

import (
	"context"
	"time"

	"github.com/booklens/booklens-server/internal/domain"
)

// Gateway defines every persistence operation the services use.
//
// All methods take the owning user where ownership matters; a row that exists
// but belongs to someone else is reported as ErrNotFound.
type Gateway interface {
	Users
	Books
	ReadingSessions
	Postings

	// InTx runs fn inside one transaction. Every write made through the tx
	// gateway commits together or not at all. Calling InTx on a tx gateway
	// joins the enclosing transaction.
	InTx(ctx context.Context, fn func(tx Gateway) error) error

	// Ping checks the database connection.
	Ping(ctx context.Context) error
}

// Users persists accounts.
type Users interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
}

// Books persists books scoped to their owner.
type Books interface {
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, userID, id int64) (*domain.Book, error)
	// ListBooks orders by updated_at desc, then created_at desc, then id desc.
	ListBooks(ctx context.Context, userID int64) ([]*domain.Book, error)
	ListAllBooks(ctx context.Context) ([]*domain.Book, error)
	UpdateBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, userID, id int64) error

	// IncrementBookReading atomically adds pages and seconds to the book's
	// counters and returns the row as it stands after the increment.
	IncrementBookReading(ctx context.Context, userID, id int64, pages int, seconds int64) (*domain.Book, error)
	// SetBookProgress overwrites progress without touching other columns.
	SetBookProgress(ctx context.Context, id int64, progress float64) error
}

// ReadingSessions persists the write-once session log.
type ReadingSessions interface {
	CreateReadingSession(ctx context.Context, session *domain.ReadingSession) error
	// ListReadingSessionsBetween returns the user's sessions whose start time
	// lies in [from, to], ascending by start time, each with its book.
	ListReadingSessionsBetween(ctx context.Context, userID int64, from, to time.Time) ([]domain.SessionWithBook, error)
	DeleteReadingSessionsByBook(ctx context.Context, bookID int64) (int64, error)
}

// Postings persists postings, their likes and comments.
type Postings interface {
	CreatePosting(ctx context.Context, posting *domain.Posting) error
	GetPosting(ctx context.Context, id int64) (*domain.Posting, error)
	GetPostingDetail(ctx context.Context, id int64) (*domain.PostingDetail, error)
	// ListPostingDetails orders newest first.
	ListPostingDetails(ctx context.Context) ([]*domain.PostingDetail, error)
	UpdatePosting(ctx context.Context, posting *domain.Posting) error
	DeletePosting(ctx context.Context, id int64) error
	// ClearPostingBook sets book_id to NULL on every posting of the book.
	ClearPostingBook(ctx context.Context, bookID int64) (int64, error)

	// ToggleLike flips the user's like on a posting and reports the new state.
	ToggleLike(ctx context.Context, postingID, userID int64) (bool, error)

	CreateComment(ctx context.Context, comment *domain.Comment) error
	GetComment(ctx context.Context, id int64) (*domain.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
}

// SearchIndexer is the interface for updating the search index.
// Services call it after a write commits; failures are logged, not returned.
type SearchIndexer interface {
	IndexBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, bookID int64) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexBook is a no-op.
func (NoopSearchIndexer) IndexBook(context.Context, *domain.Book) error { return nil }

// DeleteBook is a no-op.
func (NoopSearchIndexer) DeleteBook(context.Context, int64) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer { return NoopSearchIndexer{} }
