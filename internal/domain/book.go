package domain

import (
	"math"
	"time"
)

// MaxBookID is the largest book identifier the API accepts (signed 32-bit range).
const MaxBookID = 2147483647

// BookStatus is the reading state of a book.
type BookStatus string

// Book statuses as stored.
const (
	BookStatusNotStarted BookStatus = "NOT_STARTED"
	BookStatusReading    BookStatus = "READING"
	BookStatusCompleted  BookStatus = "COMPLETED"
)

// ParseBookStatus maps the API spelling (reading, completed, not_started) to a status.
// Matching is exact; the second result is false for anything else,
// including other casings.
func ParseBookStatus(s string) (BookStatus, bool) {
	switch s {
	case "reading":
		return BookStatusReading, true
	case "completed":
		return BookStatusCompleted, true
	case "not_started":
		return BookStatusNotStarted, true
	default:
		return "", false
	}
}

// APIValue returns the lowercase spelling used in JSON responses.
// Unknown stored values render as not_started.
func (s BookStatus) APIValue() string {
	switch s {
	case BookStatusReading:
		return "reading"
	case BookStatusCompleted:
		return "completed"
	default:
		return "not_started"
	}
}

// Valid reports whether s is one of the stored statuses.
func (s BookStatus) Valid() bool {
	switch s {
	case BookStatusNotStarted, BookStatusReading, BookStatusCompleted:
		return true
	}
	return false
}

// Book is a title a user is tracking.
//
// Progress is derived from ReadPage/TotalPage whenever TotalPage > 0. ReadPage
// may exceed TotalPage; progress is capped at 100 but the page count is kept.
type Book struct {
	ID               int64
	UserID           int64
	Title            string
	Author           string
	Publisher        *string
	PublishDate      *string
	TotalPage        int
	ReadPage         int
	Progress         float64
	Status           BookStatus
	StartDate        *string
	CompletedDate    *string
	TotalReadingTime int64 // seconds
	Memo             *string
	Thumbnail        *string
	ISBN             *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CalculateProgress returns the completion percentage for readPage out of
// totalPage, rounded to two decimals and capped at 100. When totalPage is not
// positive the fallback is returned unchanged.
func CalculateProgress(readPage, totalPage int, fallback float64) float64 {
	if totalPage <= 0 {
		return fallback
	}
	pct := math.Round(float64(readPage)/float64(totalPage)*100*100) / 100
	return math.Min(100, pct)
}

// BookSummary is the slice of a book shown next to sessions and postings.
type BookSummary struct {
	ID        int64
	Title     string
	Author    string
	Thumbnail *string
}

// Summary returns the book's summary view.
func (b *Book) Summary() BookSummary {
	return BookSummary{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		Thumbnail: b.Thumbnail,
	}
}
