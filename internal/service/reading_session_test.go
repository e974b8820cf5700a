package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booklens/booklens-server/internal/domain"
	domainerrors "github.com/booklens/booklens-server/internal/errors"
	"github.com/booklens/booklens-server/internal/store"
)

func TestRecord_AccumulatesCounters(t *testing.T) {
	s := newTestStore(t)
	svc := NewReadingSessionService(s, testLogger)
	ctx := context.Background()
	u := createTestUser(t, s, "record@example.com")
	book := createTestBook(t, s, u.ID, "Counted", 200)

	msg, err := svc.Record(ctx, u.ID, RecordSessionInput{
		BookID:          book.ID,
		PagesRead:       30,
		DurationSeconds: 1200,
		StartTime:       time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, SessionSavedMessage, msg)

	got, err := s.GetBook(ctx, u.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, got.ReadPage)
	assert.Equal(t, int64(1200), got.TotalReadingTime)
	assert.Equal(t, float64(15), got.Progress)
	assert.Equal(t, domain.BookStatusReading, got.Status)

	sessions, err := s.ListReadingSessionsBetween(ctx, u.ID,
		time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, int64(1200), sessions[0].DurationSeconds())
	assert.Equal(t, 30, sessions[0].PagesRead)
}

func TestRecord_PastLastPageKeepsStatus(t *testing.T) {
	s := newTestStore(t)
	svc := NewReadingSessionService(s, testLogger)
	ctx := context.Background()
	u := createTestUser(t, s, "overshoot@example.com")
	book := createTestBook(t, s, u.ID, "Short", 10)

	_, err := svc.Record(ctx, u.ID, RecordSessionInput{BookID: book.ID, PagesRead: 15, DurationSeconds: 60, StartTime: time.Now()})
	require.NoError(t, err)

	got, err := s.GetBook(ctx, u.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, got.ReadPage)
	assert.Equal(t, float64(100), got.Progress)
	assert.Equal(t, domain.BookStatusReading, got.Status)
}

func TestRecord_ZeroValuesAccepted(t *testing.T) {
	s := newTestStore(t)
	svc := NewReadingSessionService(s, testLogger)
	ctx := context.Background()
	u := createTestUser(t, s, "zero@example.com")
	book := createTestBook(t, s, u.ID, "Reread", 100)

	_, err := svc.Record(ctx, u.ID, RecordSessionInput{BookID: book.ID, PagesRead: 0, DurationSeconds: 0, StartTime: time.Now()})
	require.NoError(t, err)

	got, err := s.GetBook(ctx, u.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.ReadPage)
}

func TestRecord_Validation(t *testing.T) {
	s := newTestStore(t)
	svc := NewReadingSessionService(s, testLogger)
	u := createTestUser(t, s, "invalid@example.com")
	now := time.Now()

	tests := []struct {
		name string
		in   RecordSessionInput
	}{
		{"zero book id", RecordSessionInput{BookID: 0, StartTime: now}},
		{"book id too large", RecordSessionInput{BookID: domain.MaxBookID + 1, StartTime: now}},
		{"negative pages", RecordSessionInput{BookID: 1, PagesRead: -1, StartTime: now}},
		{"negative duration", RecordSessionInput{BookID: 1, DurationSeconds: -1, StartTime: now}},
		{"missing start", RecordSessionInput{BookID: 1}},
		{"pages too large", RecordSessionInput{BookID: 1, PagesRead: domain.MaxSessionPages + 1, StartTime: now}},
		{"duration too large", RecordSessionInput{BookID: 1, DurationSeconds: domain.MaxSessionSeconds + 1, StartTime: now}},
		{"duration overflows end time", RecordSessionInput{BookID: 1, DurationSeconds: 10_000_000_000, StartTime: now}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), u.ID, tt.in)
			requireCode(t, err, domainerrors.CodeValidation)
		})
	}
}

func TestRecord_ForeignBookIsNotFound(t *testing.T) {
	s := newTestStore(t)
	svc := NewReadingSessionService(s, testLogger)
	ctx := context.Background()
	owner := createTestUser(t, s, "owner@example.com")
	other := createTestUser(t, s, "other@example.com")
	book := createTestBook(t, s, owner.ID, "Private", 100)

	_, err := svc.Record(ctx, other.ID, RecordSessionInput{BookID: book.ID, PagesRead: 5, DurationSeconds: 60, StartTime: time.Now()})
	requireCode(t, err, domainerrors.CodeNotFound)

	got, err := s.GetBook(ctx, owner.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.ReadPage)
}

// failingSessionGateway rejects session inserts inside transactions.
type failingSessionGateway struct {
	store.Gateway
}

func (g failingSessionGateway) InTx(ctx context.Context, fn func(tx store.Gateway) error) error {
	return g.Gateway.InTx(ctx, func(tx store.Gateway) error {
		return fn(failingSessionGateway{tx})
	})
}

func (failingSessionGateway) CreateReadingSession(context.Context, *domain.ReadingSession) error {
	return errors.New("disk I/O error")
}

func TestRecord_FailedInsertRollsBackCounters(t *testing.T) {
	s := newTestStore(t)
	svc := NewReadingSessionService(failingSessionGateway{s}, testLogger)
	ctx := context.Background()
	u := createTestUser(t, s, "rollback@example.com")
	book := createTestBook(t, s, u.ID, "Untouched", 100)

	_, err := svc.Record(ctx, u.ID, RecordSessionInput{BookID: book.ID, PagesRead: 10, DurationSeconds: 60, StartTime: time.Now()})
	requireCode(t, err, domainerrors.CodePersistence)

	got, err := s.GetBook(ctx, u.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.ReadPage)
	assert.Equal(t, int64(0), got.TotalReadingTime)
	assert.Equal(t, float64(0), got.Progress)
}

func TestRecord_ConcurrentSessionsAllCount(t *testing.T) {
	s := newTestStore(t)
	svc := NewReadingSessionService(s, testLogger)
	ctx := context.Background()
	u := createTestUser(t, s, "concurrent@example.com")
	book := createTestBook(t, s, u.ID, "Busy", 1000)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Record(ctx, u.ID, RecordSessionInput{BookID: book.ID, PagesRead: 5, DurationSeconds: 30, StartTime: time.Now()})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := s.GetBook(ctx, u.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, workers*5, got.ReadPage)
	assert.Equal(t, int64(workers*30), got.TotalReadingTime)
	assert.Equal(t, float64(4), got.Progress)
}
