package service

import (
	"context"
	"log/slog"

	"github.com/booklens/booklens-server/internal/domain"
	domainerrors "github.com/booklens/booklens-server/internal/errors"
	"github.com/booklens/booklens-server/internal/normalize"
	"github.com/booklens/booklens-server/internal/store"
)

const postingNotFound = "Posting not found"

// PostingService manages postings, likes and comments.
// Reads are public; writes are limited to the author.
type PostingService struct {
	store  store.Gateway
	logger *slog.Logger
}

// NewPostingService creates a new posting service.
func NewPostingService(gw store.Gateway, logger *slog.Logger) *PostingService {
	return &PostingService{store: gw, logger: logger}
}

// CreatePostingInput is a new posting.
type CreatePostingInput struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
	BookID  *int64 `json:"book_id" validate:"omitempty,gte=1"`
}

// UpdatePostingInput is a partial update of a posting.
type UpdatePostingInput struct {
	Title   *string `json:"title" validate:"omitempty,max=200"`
	Content *string `json:"content"`
}

// List returns every posting, newest first.
func (s *PostingService) List(ctx context.Context) ([]*domain.PostingDetail, error) {
	postings, err := s.store.ListPostingDetails(ctx)
	if err != nil {
		return nil, persistenceError(err, "failed to list postings")
	}
	return postings, nil
}

// Get returns one posting with its likes and comments.
func (s *PostingService) Get(ctx context.Context, id int64) (*domain.PostingDetail, error) {
	p, err := s.store.GetPostingDetail(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, postingNotFound)
	}
	return p, nil
}

// Create publishes a posting. A referenced book must belong to the author.
// HTML content is stored as Markdown.
func (s *PostingService) Create(ctx context.Context, userID int64, in CreatePostingInput) (*domain.PostingDetail, error) {
	in.Title = normalize.Text(in.Title)
	in.Content = normalize.Markdown(in.Content)
	if err := validate.Validate(in); err != nil {
		return nil, err
	}

	if in.BookID != nil {
		if _, err := s.store.GetBook(ctx, userID, *in.BookID); err != nil {
			return nil, notFoundOr(err, "Book not found")
		}
	}

	p := &domain.Posting{UserID: userID, BookID: in.BookID, Title: in.Title, Content: in.Content}
	if err := s.store.CreatePosting(ctx, p); err != nil {
		s.logger.Error("failed to create posting", "user_id", userID, "error", err)
		return nil, persistenceError(err, "failed to create posting")
	}

	s.logger.Info("posting created", "user_id", userID, "posting_id", p.ID)
	return s.Get(ctx, p.ID)
}

// Update edits the author's posting. Someone else's posting is reported as not found.
func (s *PostingService) Update(ctx context.Context, userID, id int64, in UpdatePostingInput) (*domain.PostingDetail, error) {
	if err := validate.Validate(in); err != nil {
		return nil, err
	}

	err := s.store.InTx(ctx, func(tx store.Gateway) error {
		p, err := s.ownedPosting(ctx, tx, userID, id)
		if err != nil {
			return err
		}

		if in.Title != nil {
			title := normalize.Text(*in.Title)
			if title == "" {
				return domainerrors.Validation("title must not be empty")
			}
			p.Title = title
		}
		if in.Content != nil {
			content := normalize.Markdown(*in.Content)
			if content == "" {
				return domainerrors.Validation("content must not be empty")
			}
			p.Content = content
		}

		if err := tx.UpdatePosting(ctx, p); err != nil {
			return notFoundOr(err, postingNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, persistenceError(err, "failed to update posting")
	}

	return s.Get(ctx, id)
}

// Delete removes the author's posting with its likes and comments.
func (s *PostingService) Delete(ctx context.Context, userID, id int64) error {
	err := s.store.InTx(ctx, func(tx store.Gateway) error {
		if _, err := s.ownedPosting(ctx, tx, userID, id); err != nil {
			return err
		}
		if err := tx.DeletePosting(ctx, id); err != nil {
			return notFoundOr(err, postingNotFound)
		}
		return nil
	})
	if err != nil {
		return persistenceError(err, "failed to delete posting")
	}

	s.logger.Info("posting deleted", "user_id", userID, "posting_id", id)
	return nil
}

// ToggleLike likes the posting or withdraws an existing like, reporting the new state.
func (s *PostingService) ToggleLike(ctx context.Context, userID, postingID int64) (bool, error) {
	liked, err := s.store.ToggleLike(ctx, postingID, userID)
	if err != nil {
		return false, notFoundOr(err, postingNotFound)
	}
	return liked, nil
}

// AddComment replies to a posting.
func (s *PostingService) AddComment(ctx context.Context, userID, postingID int64, content string) (*domain.Comment, error) {
	content = normalize.Markdown(content)
	if content == "" {
		return nil, domainerrors.Validation("content is required")
	}

	c := &domain.Comment{UserID: userID, PostingID: postingID, Content: content}
	if err := s.store.CreateComment(ctx, c); err != nil {
		return nil, notFoundOr(err, postingNotFound)
	}
	return c, nil
}

// DeleteComment removes the user's own comment.
func (s *PostingService) DeleteComment(ctx context.Context, userID, commentID int64) error {
	err := s.store.InTx(ctx, func(tx store.Gateway) error {
		c, err := tx.GetComment(ctx, commentID)
		if err != nil {
			return notFoundOr(err, "Comment not found")
		}
		if c.UserID != userID {
			return domainerrors.NotFound("Comment not found")
		}
		if err := tx.DeleteComment(ctx, commentID); err != nil {
			return notFoundOr(err, "Comment not found")
		}
		return nil
	})
	if err != nil {
		return persistenceError(err, "failed to delete comment")
	}
	return nil
}

func (s *PostingService) ownedPosting(ctx context.Context, tx store.Gateway, userID, id int64) (*domain.Posting, error) {
	p, err := tx.GetPosting(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, postingNotFound)
	}
	if p.UserID != userID {
		return nil, domainerrors.NotFound(postingNotFound)
	}
	return p, nil
}
