package domain

import "time"

// Upper bounds for a single session. Larger values would overflow the
// book's counters or the end-time arithmetic.
const (
	MaxSessionPages   = 2147483647
	MaxSessionSeconds = 2147483647
)

// ReadingSession is one recorded stretch of reading. Sessions are write-once;
// they disappear only when their book is deleted.
type ReadingSession struct {
	ID        int64
	UserID    int64
	BookID    int64
	StartTime time.Time
	EndTime   time.Time
	PagesRead int
	CreatedAt time.Time
}

// NewReadingSession builds a session whose end is start plus the given seconds.
func NewReadingSession(userID, bookID int64, start time.Time, durationSeconds int64, pagesRead int) *ReadingSession {
	start = start.UTC().Truncate(time.Millisecond)
	return &ReadingSession{
		UserID:    userID,
		BookID:    bookID,
		StartTime: start,
		EndTime:   start.Add(time.Duration(durationSeconds) * time.Second),
		PagesRead: pagesRead,
	}
}

// DurationSeconds is the whole seconds between start and end, never negative.
func (s *ReadingSession) DurationSeconds() int64 {
	d := s.EndTime.Sub(s.StartTime)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}

// SessionWithBook pairs a session with the book it belongs to, for aggregation.
type SessionWithBook struct {
	ReadingSession
	Book BookSummary
}

// CalendarSession is one entry in a day's aggregation.
type CalendarSession struct {
	BookID        int64
	BookTitle     string
	BookAuthor    string
	BookThumbnail *string
	PagesRead     int
	Duration      int64
	StartTime     time.Time
}

// DaySummary aggregates the sessions that started on one calendar date.
type DaySummary struct {
	Date      string // YYYY-MM-DD
	TotalTime int64  // seconds
	Sessions  []CalendarSession
}

// Add appends a session and accumulates its duration.
func (d *DaySummary) Add(s SessionWithBook) {
	duration := s.DurationSeconds()
	d.TotalTime += duration
	d.Sessions = append(d.Sessions, CalendarSession{
		BookID:        s.Book.ID,
		BookTitle:     s.Book.Title,
		BookAuthor:    s.Book.Author,
		BookThumbnail: s.Book.Thumbnail,
		PagesRead:     s.PagesRead,
		Duration:      duration,
		StartTime:     s.StartTime,
	})
}
