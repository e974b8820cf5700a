package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/booklens/booklens-server/internal/domain"
	"github.com/booklens/booklens-server/internal/store"
)

const userColumns = `id, email, name, password_hash, nickname, alias, bio,
	profile_image_url, created_at, updated_at`

func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var (
		u               domain.User
		nickname        sql.NullString
		alias           sql.NullString
		bio             sql.NullString
		profileImageURL sql.NullString
		createdAt       string
		updatedAt       string
	)

	err := scanner.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&nickname,
		&alias,
		&bio,
		&profileImageURL,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.Nickname = stringPtr(nickname)
	u.Alias = stringPtr(alias)
	u.Bio = stringPtr(bio)
	u.ProfileImageURL = stringPtr(profileImageURL)

	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user. Emails are compared case-insensitively.
// Returns store.ErrAlreadyExists if the email is taken.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	ts := now()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = ts
	user.UpdatedAt = ts

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO users (
			email, name, password_hash, nickname, alias, bio,
			profile_image_url, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Email,
		user.Name,
		user.PasswordHash,
		nullableString(user.Nickname),
		nullableString(user.Alias),
		nullableString(user.Bio),
		nullableString(user.ProfileImageURL),
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	if err != nil {
		return mapConstraintError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("user last insert id: %w", err)
	}
	user.ID = id
	return nil
}

// GetUser returns a user by ID.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	u, err := scanUser(s.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return u, err
}

// GetUserByEmail returns a user by email, ignoring case.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(s.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(strings.TrimSpace(email))))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return u, err
}

// UpdateUser overwrites the profile columns of a user.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = now()

	result, err := s.q.ExecContext(ctx, `
		UPDATE users SET
			name = ?, password_hash = ?, nickname = ?, alias = ?, bio = ?,
			profile_image_url = ?, updated_at = ?
		WHERE id = ?`,
		user.Name,
		user.PasswordHash,
		nullableString(user.Nickname),
		nullableString(user.Alias),
		nullableString(user.Bio),
		nullableString(user.ProfileImageURL),
		formatTime(user.UpdatedAt),
		user.ID,
	)
	if err != nil {
		return mapConstraintError(err)
	}
	return requireAffected(result)
}
