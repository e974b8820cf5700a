package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/booklens/booklens-server/internal/domain"
	domainerrors "github.com/booklens/booklens-server/internal/errors"
	"github.com/booklens/booklens-server/internal/store"
)

// SessionSavedMessage acknowledges a recorded session.
const SessionSavedMessage = "Reading session saved"

// ReadingSessionService records reading sessions and rolls them into the book's counters.
type ReadingSessionService struct {
	store  store.Gateway
	logger *slog.Logger
}

// NewReadingSessionService creates a new reading session service.
func NewReadingSessionService(gw store.Gateway, logger *slog.Logger) *ReadingSessionService {
	return &ReadingSessionService{store: gw, logger: logger}
}

// RecordSessionInput describes one finished stretch of reading.
type RecordSessionInput struct {
	BookID          int64     `json:"bookId" validate:"gte=1,lte=2147483647"`
	PagesRead       int       `json:"pagesRead" validate:"gte=0,lte=2147483647"`
	DurationSeconds int64     `json:"duration" validate:"gte=0,lte=2147483647"`
	StartTime       time.Time `json:"startTime" validate:"required"`
}

// Record stores a session for a book the user owns and adds its pages and
// seconds to the book. Progress is recomputed from the incremented page
// count; status is left alone even when reading passes the last page.
//
// The counter increment happens in SQL inside the same transaction as the
// session insert, so concurrent recordings never lose an update and a failed
// insert leaves the counters untouched.
func (s *ReadingSessionService) Record(ctx context.Context, userID int64, in RecordSessionInput) (string, error) {
	if err := validate.Validate(in); err != nil {
		return "", err
	}

	if _, err := s.store.GetBook(ctx, userID, in.BookID); err != nil {
		return "", notFoundOr(err, "book not found")
	}

	session := domain.NewReadingSession(userID, in.BookID, in.StartTime, in.DurationSeconds, in.PagesRead)

	var book *domain.Book
	err := s.store.InTx(ctx, func(tx store.Gateway) error {
		var err error
		book, err = tx.IncrementBookReading(ctx, userID, in.BookID, in.PagesRead, in.DurationSeconds)
		if err != nil {
			return notFoundOr(err, "book not found")
		}

		progress := domain.CalculateProgress(book.ReadPage, book.TotalPage, book.Progress)
		if progress != book.Progress {
			if err := tx.SetBookProgress(ctx, book.ID, progress); err != nil {
				return persistenceError(err, "failed to update progress")
			}
			book.Progress = progress
		}

		if err := tx.CreateReadingSession(ctx, session); err != nil {
			return persistenceError(err, "failed to save reading session")
		}
		return nil
	})
	if err != nil {
		if !domainerrors.Is(err, domainerrors.ErrNotFound) {
			s.logger.Error("failed to record reading session",
				"user_id", userID,
				"book_id", in.BookID,
				"error", err,
			)
		}
		return "", persistenceError(err, "failed to save reading session")
	}

	s.logger.Info("reading session recorded",
		"user_id", userID,
		"book_id", in.BookID,
		"session_id", session.ID,
		"pages_read", in.PagesRead,
		"duration_seconds", in.DurationSeconds,
		"read_page", book.ReadPage,
		"progress", book.Progress,
	)
	return SessionSavedMessage, nil
}
