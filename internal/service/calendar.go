package service

import (
	"context"
	"log/slog"
	"regexp"
	"time"

	"github.com/booklens/booklens-server/internal/domain"
	domainerrors "github.com/booklens/booklens-server/internal/errors"
	"github.com/booklens/booklens-server/internal/store"
)

const (
	minCalendarYear = 1900
	maxCalendarYear = 2100

	dateLayout = "2006-01-02"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// CalendarService aggregates reading sessions into per-day summaries.
//
// Query windows (a month, a day) are computed in the service's location.
// Within a month, sessions are bucketed by the UTC date of their start so
// bucket keys match the ISO timestamps returned with each session.
type CalendarService struct {
	store  store.Gateway
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time
}

// NewCalendarService creates a calendar service. A nil loc means time.Local.
func NewCalendarService(gw store.Gateway, loc *time.Location, logger *slog.Logger) *CalendarService {
	if loc == nil {
		loc = time.Local
	}
	return &CalendarService{store: gw, loc: loc, logger: logger, now: time.Now}
}

// CurrentMonth returns the year and month to use when a request omits them.
func (s *CalendarService) CurrentMonth() (int, int) {
	n := s.now().In(s.loc)
	return n.Year(), int(n.Month())
}

// ByMonth returns the user's reading days in the given month keyed by
// YYYY-MM-DD. Days without sessions are absent.
func (s *CalendarService) ByMonth(ctx context.Context, userID int64, year, month int) (map[string]*domain.DaySummary, error) {
	if year < minCalendarYear || year > maxCalendarYear {
		return nil, domainerrors.Validationf("year must be between %d and %d", minCalendarYear, maxCalendarYear)
	}
	if month < 1 || month > 12 {
		return nil, domainerrors.Validation("month must be between 1 and 12")
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, s.loc)
	to := from.AddDate(0, 1, 0).Add(-time.Millisecond)

	sessions, err := s.store.ListReadingSessionsBetween(ctx, userID, from, to)
	if err != nil {
		s.logger.Error("failed to load month sessions", "user_id", userID, "year", year, "month", month, "error", err)
		return nil, persistenceError(err, "failed to load reading sessions")
	}

	days := make(map[string]*domain.DaySummary)
	for _, rs := range sessions {
		key := rs.StartTime.UTC().Format(dateLayout)
		day, ok := days[key]
		if !ok {
			day = &domain.DaySummary{Date: key, Sessions: []domain.CalendarSession{}}
			days[key] = day
		}
		day.Add(rs)
	}
	return days, nil
}

// ByDate returns every session the user started on date (YYYY-MM-DD),
// ascending by start time, with their summed duration.
func (s *CalendarService) ByDate(ctx context.Context, userID int64, date string) (*domain.DaySummary, error) {
	if date == "" {
		return nil, domainerrors.Validation("date is required (YYYY-MM-DD)")
	}
	if !datePattern.MatchString(date) {
		return nil, domainerrors.Validation("date must use the YYYY-MM-DD format")
	}
	day, err := time.ParseInLocation(dateLayout, date, s.loc)
	if err != nil {
		return nil, domainerrors.Validation("date is not a valid calendar date")
	}

	from := day
	to := day.AddDate(0, 0, 1).Add(-time.Millisecond)

	sessions, err := s.store.ListReadingSessionsBetween(ctx, userID, from, to)
	if err != nil {
		s.logger.Error("failed to load day sessions", "user_id", userID, "date", date, "error", err)
		return nil, persistenceError(err, "failed to load reading sessions")
	}

	summary := &domain.DaySummary{Date: date, Sessions: make([]domain.CalendarSession, 0, len(sessions))}
	for _, rs := range sessions {
		summary.Add(rs)
	}
	return summary, nil
}
