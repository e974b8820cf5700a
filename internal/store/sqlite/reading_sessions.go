package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/booklens/booklens-server/internal/domain"
)

// CreateReadingSession inserts a session and fills in its ID.
func (s *Store) CreateReadingSession(ctx context.Context, session *domain.ReadingSession) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now()
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO reading_sessions (
			user_id, book_id, start_time, end_time, pages_read, created_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		session.UserID,
		session.BookID,
		formatTime(session.StartTime),
		formatTime(session.EndTime),
		session.PagesRead,
		formatTime(session.CreatedAt),
	)
	if err != nil {
		return mapConstraintError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading session last insert id: %w", err)
	}
	session.ID = id
	return nil
}

// ListReadingSessionsBetween returns the user's sessions starting within
// [from, to] inclusive, ordered by start time, joined with their books.
func (s *Store) ListReadingSessionsBetween(ctx context.Context, userID int64, from, to time.Time) ([]domain.SessionWithBook, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT rs.id, rs.user_id, rs.book_id, rs.start_time, rs.end_time,
			rs.pages_read, rs.created_at,
			b.title, b.author, b.thumbnail
		FROM reading_sessions rs
		JOIN books b ON b.id = rs.book_id
		WHERE rs.user_id = ? AND rs.start_time >= ? AND rs.start_time <= ?
		ORDER BY rs.start_time ASC, rs.id ASC`,
		userID, formatTime(from), formatTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []domain.SessionWithBook{}
	for rows.Next() {
		var (
			sw        domain.SessionWithBook
			startTime string
			endTime   string
			createdAt string
			thumbnail sql.NullString
		)
		if err := rows.Scan(
			&sw.ID,
			&sw.UserID,
			&sw.BookID,
			&startTime,
			&endTime,
			&sw.PagesRead,
			&createdAt,
			&sw.Book.Title,
			&sw.Book.Author,
			&thumbnail,
		); err != nil {
			return nil, err
		}

		if sw.StartTime, err = parseTime(startTime); err != nil {
			return nil, err
		}
		if sw.EndTime, err = parseTime(endTime); err != nil {
			return nil, err
		}
		if sw.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		sw.Book.ID = sw.BookID
		sw.Book.Thumbnail = stringPtr(thumbnail)

		sessions = append(sessions, sw)
	}
	return sessions, rows.Err()
}

// DeleteReadingSessionsByBook removes every session of a book and reports how many.
func (s *Store) DeleteReadingSessionsByBook(ctx context.Context, bookID int64) (int64, error) {
	result, err := s.q.ExecContext(ctx, `DELETE FROM reading_sessions WHERE book_id = ?`, bookID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
