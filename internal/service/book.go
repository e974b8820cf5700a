package service

import (
	"context"
	"log/slog"

	"github.com/booklens/booklens-server/internal/domain"
	domainerrors "github.com/booklens/booklens-server/internal/errors"
	"github.com/booklens/booklens-server/internal/normalize"
	"github.com/booklens/booklens-server/internal/search"
	"github.com/booklens/booklens-server/internal/store"
)

// BookSearcher finds a user's books by free text.
type BookSearcher interface {
	SearchBooks(ctx context.Context, userID int64, q string, limit int) ([]search.BookHit, error)
}

// BookService manages a user's books.
type BookService struct {
	store    store.Gateway
	cascade  *CascadeCoordinator
	indexer  store.SearchIndexer
	searcher BookSearcher
	logger   *slog.Logger
}

// NewBookService creates a new book service. indexer and searcher may be nil.
func NewBookService(
	gw store.Gateway,
	cascade *CascadeCoordinator,
	indexer store.SearchIndexer,
	searcher BookSearcher,
	logger *slog.Logger,
) *BookService {
	if indexer == nil {
		indexer = store.NewNoopSearchIndexer()
	}
	return &BookService{
		store:    gw,
		cascade:  cascade,
		indexer:  indexer,
		searcher: searcher,
		logger:   logger,
	}
}

// CreateBookInput holds the fields accepted when adding a book.
type CreateBookInput struct {
	Title         string  `json:"title" validate:"required,max=500"`
	Author        string  `json:"author" validate:"required,max=500"`
	Publisher     *string `json:"publisher"`
	PublishDate   *string `json:"publish_date"`
	TotalPage     *int    `json:"total_page" validate:"required,gte=0"`
	ReadPage      *int    `json:"read_page" validate:"omitempty,gte=0"`
	Status        *string `json:"status"`
	StartDate     *string `json:"start_date"`
	CompletedDate *string `json:"completed_date"`
	Memo          *string `json:"memo"`
	Thumbnail     *string `json:"thumbnail"`
	ISBN          *string `json:"isbn"`
}

// UpdateBookInput holds a partial update. Nil fields keep their stored value.
type UpdateBookInput struct {
	Title            *string  `json:"title" validate:"omitempty,max=500"`
	Author           *string  `json:"author" validate:"omitempty,max=500"`
	Publisher        *string  `json:"publisher"`
	PublishDate      *string  `json:"publish_date"`
	TotalPage        *int     `json:"total_page" validate:"omitempty,gte=0"`
	ReadPage         *int     `json:"read_page" validate:"omitempty,gte=0"`
	Progress         *float64 `json:"progress" validate:"omitempty,gte=0,lte=100"`
	Status           *string  `json:"status"`
	StartDate        *string  `json:"start_date"`
	CompletedDate    *string  `json:"completed_date"`
	TotalReadingTime *int64   `json:"total_reading_time" validate:"omitempty,gte=0"`
	Memo             *string  `json:"memo"`
	Thumbnail        *string  `json:"thumbnail"`
	ISBN             *string  `json:"isbn"`
}

// Create adds a book for userID. Progress is derived from the page counts;
// status defaults to reading unless completed or not_started is given.
func (s *BookService) Create(ctx context.Context, userID int64, in CreateBookInput) (*domain.Book, error) {
	in.Title = normalize.Text(in.Title)
	in.Author = normalize.Text(in.Author)
	if err := validate.Validate(in); err != nil {
		return nil, err
	}

	readPage := 0
	if in.ReadPage != nil {
		readPage = *in.ReadPage
	}

	status := domain.BookStatusReading
	if in.Status != nil {
		if parsed, ok := domain.ParseBookStatus(*in.Status); ok {
			status = parsed
		}
	}

	book := &domain.Book{
		UserID:        userID,
		Title:         in.Title,
		Author:        in.Author,
		Publisher:     normalize.Optional(in.Publisher),
		PublishDate:   normalize.Optional(in.PublishDate),
		TotalPage:     *in.TotalPage,
		ReadPage:      readPage,
		Progress:      domain.CalculateProgress(readPage, *in.TotalPage, 0),
		Status:        status,
		StartDate:     normalize.Optional(in.StartDate),
		CompletedDate: normalize.Optional(in.CompletedDate),
		Memo:          markdownOptional(in.Memo),
		Thumbnail:     normalize.Optional(in.Thumbnail),
		ISBN:          normalize.Optional(in.ISBN),
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		s.logger.Error("failed to create book", "user_id", userID, "error", err)
		return nil, persistenceError(err, "failed to create book")
	}

	s.index(ctx, book)
	s.logger.Info("book created", "user_id", userID, "book_id", book.ID)
	return book, nil
}

// Get returns the book if userID owns it.
func (s *BookService) Get(ctx context.Context, userID, id int64) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, userID, id)
	if err != nil {
		return nil, notFoundOr(err, "Book not found")
	}
	return book, nil
}

// List returns the user's books, most recently updated first.
func (s *BookService) List(ctx context.Context, userID int64) ([]*domain.Book, error) {
	books, err := s.store.ListBooks(ctx, userID)
	if err != nil {
		return nil, persistenceError(err, "failed to list books")
	}
	return books, nil
}

// Update merges in into the stored book.
//
// Progress is taken from in.Progress when given; otherwise it is recomputed
// from the merged page counts, or kept when total_page is 0. A status other
// than reading, completed or not_started leaves the status unchanged.
func (s *BookService) Update(ctx context.Context, userID, id int64, in UpdateBookInput) (*domain.Book, error) {
	if err := validate.Validate(in); err != nil {
		return nil, err
	}
	if in.Title != nil {
		v := normalize.Text(*in.Title)
		if v == "" {
			return nil, domainerrors.Validation("title must not be empty")
		}
		in.Title = &v
	}
	if in.Author != nil {
		v := normalize.Text(*in.Author)
		if v == "" {
			return nil, domainerrors.Validation("author must not be empty")
		}
		in.Author = &v
	}

	var updated *domain.Book
	err := s.store.InTx(ctx, func(tx store.Gateway) error {
		book, err := tx.GetBook(ctx, userID, id)
		if err != nil {
			return notFoundOr(err, "Book not found")
		}

		applyBookUpdate(book, in)

		if err := tx.UpdateBook(ctx, book); err != nil {
			return notFoundOr(err, "Book not found")
		}
		updated = book
		return nil
	})
	if err != nil {
		return nil, persistenceError(err, "failed to update book")
	}

	s.index(ctx, updated)
	s.logger.Info("book updated", "user_id", userID, "book_id", id)
	return updated, nil
}

// applyBookUpdate merges the non-nil fields of in into book and recomputes progress.
func applyBookUpdate(book *domain.Book, in UpdateBookInput) {
	if in.Title != nil {
		book.Title = *in.Title
	}
	if in.Author != nil {
		book.Author = *in.Author
	}
	mergeOptional(&book.Publisher, in.Publisher)
	mergeOptional(&book.PublishDate, in.PublishDate)
	if in.TotalPage != nil {
		book.TotalPage = *in.TotalPage
	}
	if in.ReadPage != nil {
		book.ReadPage = *in.ReadPage
	}

	if in.Progress != nil {
		book.Progress = *in.Progress
	} else {
		book.Progress = domain.CalculateProgress(book.ReadPage, book.TotalPage, book.Progress)
	}

	if in.Status != nil {
		if parsed, ok := domain.ParseBookStatus(*in.Status); ok {
			book.Status = parsed
		}
	}

	mergeOptional(&book.StartDate, in.StartDate)
	mergeOptional(&book.CompletedDate, in.CompletedDate)
	if in.TotalReadingTime != nil {
		book.TotalReadingTime = *in.TotalReadingTime
	}
	if in.Memo != nil {
		book.Memo = markdownOptional(in.Memo)
	}
	mergeOptional(&book.Thumbnail, in.Thumbnail)
	mergeOptional(&book.ISBN, in.ISBN)
}

// mergeOptional overwrites *dst when v is supplied. A blank value clears the field.
func mergeOptional(dst **string, v *string) {
	if v != nil {
		*dst = normalize.Optional(v)
	}
}

func markdownOptional(v *string) *string {
	if v == nil {
		return nil
	}
	md := normalize.Markdown(*v)
	if md == "" {
		return nil
	}
	return &md
}

// Delete removes the book and its dependents through the cascade coordinator.
func (s *BookService) Delete(ctx context.Context, userID, id int64) error {
	_, err := s.cascade.DeleteBook(ctx, userID, id)
	return err
}

// Search returns the user's books matching q, best match first.
func (s *BookService) Search(ctx context.Context, userID int64, q string, limit int) ([]*domain.Book, error) {
	if normalize.Query(q) == "" {
		return nil, domainerrors.Validation("q is required")
	}
	if s.searcher == nil {
		return []*domain.Book{}, nil
	}

	hits, err := s.searcher.SearchBooks(ctx, userID, q, limit)
	if err != nil {
		s.logger.Error("book search failed", "user_id", userID, "error", err)
		return nil, domainerrors.Internal("search failed")
	}

	books := make([]*domain.Book, 0, len(hits))
	for _, hit := range hits {
		book, err := s.store.GetBook(ctx, userID, hit.BookID)
		if err != nil {
			// The index can briefly lag the database.
			s.logger.Debug("skipping stale search hit", "book_id", hit.BookID, "error", err)
			continue
		}
		books = append(books, book)
	}
	return books, nil
}

func (s *BookService) index(ctx context.Context, book *domain.Book) {
	if err := s.indexer.IndexBook(ctx, book); err != nil {
		s.logger.Warn("failed to index book", "book_id", book.ID, "error", err)
	}
}
