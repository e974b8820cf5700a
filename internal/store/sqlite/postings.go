package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/booklens/booklens-server/internal/domain"
	"github.com/booklens/booklens-server/internal/store"
)

const postingColumns = `id, user_id, book_id, title, content, created_at, updated_at`

// postingDetailQuery selects a posting with its author, optional book and like count.
// Must match the scan order in scanPostingDetail.
const postingDetailQuery = `
	SELECT p.id, p.user_id, p.book_id, p.title, p.content, p.created_at, p.updated_at,
		u.name,
		b.title, b.author, b.thumbnail,
		(SELECT COUNT(*) FROM likes l WHERE l.posting_id = p.id)
	FROM postings p
	JOIN users u ON u.id = p.user_id
	LEFT JOIN books b ON b.id = p.book_id`

type scanner interface{ Scan(dest ...any) error }

func scanPosting(row scanner) (*domain.Posting, error) {
	var (
		p         domain.Posting
		bookID    sql.NullInt64
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&p.ID, &p.UserID, &bookID, &p.Title, &p.Content, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.BookID = int64Ptr(bookID)

	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPostingDetail(row scanner) (*domain.PostingDetail, error) {
	var (
		d          domain.PostingDetail
		bookID     sql.NullInt64
		createdAt  string
		updatedAt  string
		bookTitle  sql.NullString
		bookAuthor sql.NullString
		bookThumb  sql.NullString
	)
	err := row.Scan(
		&d.ID, &d.UserID, &bookID, &d.Title, &d.Content, &createdAt, &updatedAt,
		&d.Author.Name,
		&bookTitle, &bookAuthor, &bookThumb,
		&d.LikesCount,
	)
	if err != nil {
		return nil, err
	}

	d.Author.ID = d.UserID
	d.BookID = int64Ptr(bookID)
	if d.BookID != nil && bookTitle.Valid {
		d.Book = &domain.BookSummary{
			ID:        *d.BookID,
			Title:     bookTitle.String,
			Author:    bookAuthor.String,
			Thumbnail: stringPtr(bookThumb),
		}
	}

	if d.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if d.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	d.Comments = []domain.Comment{}
	return &d, nil
}

// CreatePosting inserts a posting and fills in its ID and timestamps.
func (s *Store) CreatePosting(ctx context.Context, posting *domain.Posting) error {
	ts := now()
	posting.CreatedAt = ts
	posting.UpdatedAt = ts

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO postings (user_id, book_id, title, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		posting.UserID,
		nullableInt64(posting.BookID),
		posting.Title,
		posting.Content,
		formatTime(posting.CreatedAt),
		formatTime(posting.UpdatedAt),
	)
	if err != nil {
		return mapConstraintError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("posting last insert id: %w", err)
	}
	posting.ID = id
	return nil
}

// GetPosting returns the bare posting row.
func (s *Store) GetPosting(ctx context.Context, id int64) (*domain.Posting, error) {
	p, err := scanPosting(s.q.QueryRowContext(ctx,
		`SELECT `+postingColumns+` FROM postings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return p, err
}

// GetPostingDetail returns a posting with author, book, likes and comments.
func (s *Store) GetPostingDetail(ctx context.Context, id int64) (*domain.PostingDetail, error) {
	d, err := scanPostingDetail(s.q.QueryRowContext(ctx, postingDetailQuery+` WHERE p.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	comments, err := s.listComments(ctx, `WHERE c.posting_id = ?`, id)
	if err != nil {
		return nil, err
	}
	d.Comments = append(d.Comments, comments...)
	return d, nil
}

// ListPostingDetails returns every posting, newest first, with details resolved.
func (s *Store) ListPostingDetails(ctx context.Context) ([]*domain.PostingDetail, error) {
	rows, err := s.q.QueryContext(ctx, postingDetailQuery+` ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	postings := []*domain.PostingDetail{}
	byID := make(map[int64]*domain.PostingDetail)
	for rows.Next() {
		d, err := scanPostingDetail(rows)
		if err != nil {
			return nil, err
		}
		postings = append(postings, d)
		byID[d.ID] = d
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(postings) == 0 {
		return postings, nil
	}

	comments, err := s.listComments(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		if d, ok := byID[c.PostingID]; ok {
			d.Comments = append(d.Comments, c)
		}
	}
	return postings, nil
}

// UpdatePosting overwrites title and content and bumps updated_at.
func (s *Store) UpdatePosting(ctx context.Context, posting *domain.Posting) error {
	posting.UpdatedAt = now()
	result, err := s.q.ExecContext(ctx, `
		UPDATE postings SET title = ?, content = ?, updated_at = ? WHERE id = ?`,
		posting.Title, posting.Content, formatTime(posting.UpdatedAt), posting.ID)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// DeletePosting removes a posting; its likes and comments go with it.
func (s *Store) DeletePosting(ctx context.Context, id int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM postings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// ClearPostingBook detaches every posting from a book.
func (s *Store) ClearPostingBook(ctx context.Context, bookID int64) (int64, error) {
	result, err := s.q.ExecContext(ctx, `UPDATE postings SET book_id = NULL WHERE book_id = ?`, bookID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ToggleLike removes the user's like if present, otherwise adds it.
func (s *Store) ToggleLike(ctx context.Context, postingID, userID int64) (bool, error) {
	liked := false
	err := s.InTx(ctx, func(g store.Gateway) error {
		tx := g.(*Store)

		result, err := tx.q.ExecContext(ctx,
			`DELETE FROM likes WHERE posting_id = ? AND user_id = ?`, postingID, userID)
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		_, err = tx.q.ExecContext(ctx,
			`INSERT INTO likes (user_id, posting_id, created_at) VALUES (?, ?, ?)`,
			userID, postingID, formatTime(now()))
		if err != nil {
			err = mapConstraintError(err)
			if errors.Is(err, store.ErrReferenced) {
				return store.ErrNotFound
			}
			return err
		}
		liked = true
		return nil
	})
	return liked, err
}

// CreateComment inserts a comment; the author summary is filled in from users.
func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) error {
	comment.CreatedAt = now()
	result, err := s.q.ExecContext(ctx, `
		INSERT INTO comments (user_id, posting_id, content, created_at) VALUES (?, ?, ?, ?)`,
		comment.UserID, comment.PostingID, comment.Content, formatTime(comment.CreatedAt))
	if err != nil {
		err = mapConstraintError(err)
		if errors.Is(err, store.ErrReferenced) {
			return store.ErrNotFound
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("comment last insert id: %w", err)
	}
	comment.ID = id

	if err := s.q.QueryRowContext(ctx, `SELECT name FROM users WHERE id = ?`, comment.UserID).
		Scan(&comment.Author.Name); err != nil {
		return err
	}
	comment.Author.ID = comment.UserID
	return nil
}

// GetComment returns a comment by ID.
func (s *Store) GetComment(ctx context.Context, id int64) (*domain.Comment, error) {
	comments, err := s.listComments(ctx, `WHERE c.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return nil, store.ErrNotFound
	}
	return &comments[0], nil
}

// DeleteComment removes a comment.
func (s *Store) DeleteComment(ctx context.Context, id int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (s *Store) listComments(ctx context.Context, where string, args ...any) ([]domain.Comment, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT c.id, c.user_id, c.posting_id, c.content, c.created_at, u.name
		FROM comments c
		JOIN users u ON u.id = c.user_id
		`+where+`
		ORDER BY c.created_at ASC, c.id ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var (
			c         domain.Comment
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.PostingID, &c.Content, &createdAt, &c.Author.Name); err != nil {
			return nil, err
		}
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		c.Author.ID = c.UserID
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
