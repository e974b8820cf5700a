package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/booklens/booklens-server/internal/domain"
	"github.com/booklens/booklens-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, user_id, title, author, publisher, publish_date,
	total_page, read_page, progress, status, start_date, completed_date,
	total_reading_time, memo, thumbnail, isbn, created_at, updated_at`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		publisher     sql.NullString
		publishDate   sql.NullString
		status        string
		startDate     sql.NullString
		completedDate sql.NullString
		memo          sql.NullString
		thumbnail     sql.NullString
		isbn          sql.NullString
		createdAt     string
		updatedAt     string
	)

	err := scanner.Scan(
		&b.ID,
		&b.UserID,
		&b.Title,
		&b.Author,
		&publisher,
		&publishDate,
		&b.TotalPage,
		&b.ReadPage,
		&b.Progress,
		&status,
		&startDate,
		&completedDate,
		&b.TotalReadingTime,
		&memo,
		&thumbnail,
		&isbn,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Publisher = stringPtr(publisher)
	b.PublishDate = stringPtr(publishDate)
	b.Status = domain.BookStatus(status)
	b.StartDate = stringPtr(startDate)
	b.CompletedDate = stringPtr(completedDate)
	b.Memo = stringPtr(memo)
	b.Thumbnail = stringPtr(thumbnail)
	b.ISBN = stringPtr(isbn)

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// CreateBook inserts a book and fills in its ID and timestamps.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	ts := now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = ts
	}
	book.UpdatedAt = book.CreatedAt

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO books (
			user_id, title, author, publisher, publish_date,
			total_page, read_page, progress, status, start_date, completed_date,
			total_reading_time, memo, thumbnail, isbn, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.UserID,
		book.Title,
		book.Author,
		nullableString(book.Publisher),
		nullableString(book.PublishDate),
		book.TotalPage,
		book.ReadPage,
		book.Progress,
		string(book.Status),
		nullableString(book.StartDate),
		nullableString(book.CompletedDate),
		book.TotalReadingTime,
		nullableString(book.Memo),
		nullableString(book.Thumbnail),
		nullableString(book.ISBN),
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
	)
	if err != nil {
		return mapConstraintError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("book last insert id: %w", err)
	}
	book.ID = id
	return nil
}

// GetBook returns the book only if userID owns it.
func (s *Store) GetBook(ctx context.Context, userID, id int64) (*domain.Book, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ? AND user_id = ?`, id, userID)
	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListBooks returns the user's books, most recently updated first.
func (s *Store) ListBooks(ctx context.Context, userID int64) ([]*domain.Book, error) {
	return s.queryBooks(ctx, `SELECT `+bookColumns+` FROM books
		WHERE user_id = ?
		ORDER BY updated_at DESC, created_at DESC, id DESC`, userID)
}

// ListAllBooks returns every book, used to rebuild the search index.
func (s *Store) ListAllBooks(ctx context.Context) ([]*domain.Book, error) {
	return s.queryBooks(ctx, `SELECT `+bookColumns+` FROM books ORDER BY id`)
}

func (s *Store) queryBooks(ctx context.Context, query string, args ...any) ([]*domain.Book, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// UpdateBook overwrites every mutable column of an owned book and bumps updated_at.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	book.UpdatedAt = now()

	result, err := s.q.ExecContext(ctx, `
		UPDATE books SET
			title = ?, author = ?, publisher = ?, publish_date = ?,
			total_page = ?, read_page = ?, progress = ?, status = ?,
			start_date = ?, completed_date = ?, total_reading_time = ?,
			memo = ?, thumbnail = ?, isbn = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		book.Title,
		book.Author,
		nullableString(book.Publisher),
		nullableString(book.PublishDate),
		book.TotalPage,
		book.ReadPage,
		book.Progress,
		string(book.Status),
		nullableString(book.StartDate),
		nullableString(book.CompletedDate),
		book.TotalReadingTime,
		nullableString(book.Memo),
		nullableString(book.Thumbnail),
		nullableString(book.ISBN),
		formatTime(book.UpdatedAt),
		book.ID,
		book.UserID,
	)
	if err != nil {
		return mapConstraintError(err)
	}
	return requireAffected(result)
}

// DeleteBook removes an owned book. It fails with store.ErrReferenced while
// sessions or postings still point at it.
func (s *Store) DeleteBook(ctx context.Context, userID, id int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM books WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return mapConstraintError(err)
	}
	return requireAffected(result)
}

// IncrementBookReading adds to read_page and total_reading_time in a single
// statement and returns the updated row.
func (s *Store) IncrementBookReading(ctx context.Context, userID, id int64, pages int, seconds int64) (*domain.Book, error) {
	row := s.q.QueryRowContext(ctx, `
		UPDATE books SET
			read_page = read_page + ?,
			total_reading_time = total_reading_time + ?,
			updated_at = ?
		WHERE id = ? AND user_id = ?
		RETURNING `+bookColumns,
		pages, seconds, formatTime(now()), id, userID)
	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, mapConstraintError(err)
	}
	return b, nil
}

// SetBookProgress overwrites a book's progress.
func (s *Store) SetBookProgress(ctx context.Context, id int64, progress float64) error {
	result, err := s.q.ExecContext(ctx, `UPDATE books SET progress = ? WHERE id = ?`, progress, id)
	if err != nil {
		return mapConstraintError(err)
	}
	return requireAffected(result)
}

// requireAffected maps a zero-row write to store.ErrNotFound.
func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
