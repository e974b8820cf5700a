package domain

import "time"

// User owns books, sessions and postings.
type User struct {
	ID              int64
	Email           string
	Name            string
	PasswordHash    string
	Nickname        *string
	Alias           *string
	Bio             *string
	ProfileImageURL *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UserSummary is the public identity shown on postings and comments.
type UserSummary struct {
	ID   int64
	Name string
}

// Summary returns the user's public identity.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name}
}
