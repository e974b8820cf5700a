package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/booklens/booklens-server/internal/domain"
	"github.com/booklens/booklens-server/internal/service"
)

// isoMillis is the timestamp layout of session start times on the wire.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

func (s *Server) registerReadingSessionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "saveReadingSession",
		Method:      http.MethodPost,
		Path:        "/api/reading-sessions/save",
		Summary:     "Record reading session",
		Description: "Stores a finished reading session and adds its pages and time to the book",
		Tags:        []string{"Reading Sessions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSaveReadingSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "readingCalendar",
		Method:      http.MethodGet,
		Path:        "/api/reading-sessions/calendar",
		Summary:     "Monthly reading calendar",
		Description: "Returns the caller's reading days in a month keyed by YYYY-MM-DD. Defaults to the current month.",
		Tags:        []string{"Reading Sessions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReadingCalendar)

	huma.Register(s.api, huma.Operation{
		OperationID: "readingDay",
		Method:      http.MethodGet,
		Path:        "/api/reading-sessions/date",
		Summary:     "Reading sessions of a day",
		Description: "Returns every session started on the given date with their summed duration",
		Tags:        []string{"Reading Sessions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReadingDay)
}

// === DTOs ===

// SaveReadingSessionRequest is the body of a recorded session. The book
// title, author and thumbnail are what the client displayed; the stored
// session references the book by ID only.
type SaveReadingSessionRequest struct {
	_             struct{}  `json:"-" additionalProperties:"true"`
	BookID        int64     `json:"bookId" doc:"Book ID"`
	BookTitle     string    `json:"bookTitle" minLength:"1" doc:"Book title as shown to the reader"`
	BookAuthor    string    `json:"bookAuthor" minLength:"1" doc:"Book author as shown to the reader"`
	BookThumbnail *string   `json:"bookThumbnail,omitempty" nullable:"true" doc:"Cover image URL"`
	PagesRead     int       `json:"pagesRead" maximum:"2147483647" doc:"Pages read in this session"`
	Duration      int64     `json:"duration" maximum:"2147483647" doc:"Session length in seconds"`
	StartTime     time.Time `json:"startTime" doc:"Session start (ISO 8601)"`
}

// SaveReadingSessionInput wraps the save request for huma.
type SaveReadingSessionInput struct {
	Authorization string `header:"Authorization"`
	Body          SaveReadingSessionRequest
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// MessageOutput wraps a message for huma.
type MessageOutput struct {
	Body MessageResponse
}

// CalendarInput selects a month.
type CalendarInput struct {
	Authorization string `header:"Authorization"`
	Year          int    `query:"year" doc:"Year (1900-2100), defaults to the current year"`
	Month         int    `query:"month" doc:"Month (1-12), defaults to the current month"`
}

// DateInput selects a day.
type DateInput struct {
	Authorization string `header:"Authorization"`
	Date          string `query:"date" doc:"Date as YYYY-MM-DD"`
}

// CalendarSessionResponse is one session within a day.
type CalendarSessionResponse struct {
	BookID        int64   `json:"bookId"`
	BookTitle     string  `json:"bookTitle"`
	BookAuthor    string  `json:"bookAuthor"`
	BookThumbnail *string `json:"bookThumbnail"`
	PagesRead     int     `json:"pagesRead"`
	Duration      int64   `json:"duration" doc:"Seconds"`
	StartTime     string  `json:"startTime" doc:"UTC start time with millisecond precision"`
}

// DayResponse aggregates one day.
type DayResponse struct {
	Date      string                    `json:"date"`
	TotalTime int64                     `json:"totalTime" doc:"Summed duration in seconds"`
	Sessions  []CalendarSessionResponse `json:"sessions"`
}

// CalendarOutput wraps the month map.
type CalendarOutput struct {
	Body struct {
		Data map[string]DayResponse `json:"data"`
	}
}

// DayOutput wraps a single day.
type DayOutput struct {
	Body struct {
		Data DayResponse `json:"data"`
	}
}

func toDayResponse(d *domain.DaySummary) DayResponse {
	sessions := make([]CalendarSessionResponse, len(d.Sessions))
	for i, cs := range d.Sessions {
		sessions[i] = CalendarSessionResponse{
			BookID:        cs.BookID,
			BookTitle:     cs.BookTitle,
			BookAuthor:    cs.BookAuthor,
			BookThumbnail: cs.BookThumbnail,
			PagesRead:     cs.PagesRead,
			Duration:      cs.Duration,
			StartTime:     cs.StartTime.UTC().Format(isoMillis),
		}
	}
	return DayResponse{Date: d.Date, TotalTime: d.TotalTime, Sessions: sessions}
}

// === Handlers ===

func (s *Server) handleSaveReadingSession(ctx context.Context, input *SaveReadingSessionInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	req := input.Body
	msg, err := s.services.ReadingSession.Record(ctx, userID, service.RecordSessionInput{
		BookID:          req.BookID,
		PagesRead:       req.PagesRead,
		DurationSeconds: req.Duration,
		StartTime:       req.StartTime,
	})
	if err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: msg}}, nil
}

func (s *Server) handleReadingCalendar(ctx context.Context, input *CalendarInput) (*CalendarOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	year, month := s.services.Calendar.CurrentMonth()
	if input.Year != 0 {
		year = input.Year
	}
	if input.Month != 0 {
		month = input.Month
	}

	days, err := s.services.Calendar.ByMonth(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}

	out := &CalendarOutput{}
	out.Body.Data = make(map[string]DayResponse, len(days))
	for key, day := range days {
		out.Body.Data[key] = toDayResponse(day)
	}
	return out, nil
}

func (s *Server) handleReadingDay(ctx context.Context, input *DateInput) (*DayOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	day, err := s.services.Calendar.ByDate(ctx, userID, input.Date)
	if err != nil {
		return nil, err
	}

	out := &DayOutput{}
	out.Body.Data = toDayResponse(day)
	return out, nil
}
