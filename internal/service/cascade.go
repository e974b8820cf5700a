package service

import (
	"context"
	"errors"
	"log/slog"

	domainerrors "github.com/booklens/booklens-server/internal/errors"
	"github.com/booklens/booklens-server/internal/store"
)

// CascadeCoordinator deletes a book together with everything that refers to it.
//
// Sessions of the book are removed, postings are detached (book_id cleared)
// and then the book row goes. All three steps share one transaction. The
// schema has no ON DELETE actions on these references, so skipping a step
// makes the final delete fail instead of leaving dangling rows.
type CascadeCoordinator struct {
	store  store.Gateway
	search store.SearchIndexer
	logger *slog.Logger
}

// NewCascadeCoordinator creates a cascade coordinator.
func NewCascadeCoordinator(gw store.Gateway, search store.SearchIndexer, logger *slog.Logger) *CascadeCoordinator {
	if search == nil {
		search = store.NewNoopSearchIndexer()
	}
	return &CascadeCoordinator{store: gw, search: search, logger: logger}
}

// CascadeResult counts what a book deletion touched.
type CascadeResult struct {
	SessionsDeleted  int64
	PostingsDetached int64
}

// DeleteBook removes the user's book. A book that is absent or owned by
// someone else yields NotFound and no writes.
func (c *CascadeCoordinator) DeleteBook(ctx context.Context, userID, bookID int64) (*CascadeResult, error) {
	var result CascadeResult

	err := c.store.InTx(ctx, func(tx store.Gateway) error {
		if _, err := tx.GetBook(ctx, userID, bookID); err != nil {
			return notFoundOr(err, "Book not found")
		}

		n, err := tx.DeleteReadingSessionsByBook(ctx, bookID)
		if err != nil {
			return persistenceError(err, "failed to delete reading sessions")
		}
		result.SessionsDeleted = n

		n, err = tx.ClearPostingBook(ctx, bookID)
		if err != nil {
			return persistenceError(err, "failed to detach postings")
		}
		result.PostingsDetached = n

		if err := tx.DeleteBook(ctx, userID, bookID); err != nil {
			return notFoundOr(err, "Book not found")
		}
		return nil
	})
	if err != nil {
		err = persistenceError(err, "failed to delete book")
		if !errors.Is(err, domainerrors.ErrNotFound) {
			c.logger.Error("book deletion rolled back",
				"user_id", userID,
				"book_id", bookID,
				"error", err,
			)
		}
		return nil, err
	}

	if err := c.search.DeleteBook(ctx, bookID); err != nil {
		c.logger.Warn("failed to remove book from search index", "book_id", bookID, "error", err)
	}

	c.logger.Info("book deleted",
		"user_id", userID,
		"book_id", bookID,
		"sessions_deleted", result.SessionsDeleted,
		"postings_detached", result.PostingsDetached,
	)
	return &result, nil
}
