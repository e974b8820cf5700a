package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booklens/booklens-server/internal/auth"
	"github.com/booklens/booklens-server/internal/ratelimit"
	"github.com/booklens/booklens-server/internal/search"
	"github.com/booklens/booklens-server/internal/service"
	"github.com/booklens/booklens-server/internal/store/sqlite"
)

type testServer struct {
	*Server
	api   humatest.TestAPI
	store *sqlite.Store
}

type testServerOption func(*Options)

func withAuthLimit(l *ratelimit.KeyedRateLimiter) testServerOption {
	return func(o *Options) { o.AuthRateLimiter = l }
}

// setupTestServer builds the full API over a temp-dir SQLite store and an
// in-memory search index. Calendar windows use UTC.
func setupTestServer(t *testing.T, opts ...testServerOption) *testServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	idx, err := search.NewMemOnly(logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	tokens, err := auth.NewTokenService([]byte("test-secret-key-for-testing-32b!"), time.Hour)
	require.NoError(t, err)

	cascade := service.NewCascadeCoordinator(st, idx, logger)
	services := &Services{
		Auth:           service.NewAuthService(st, tokens, logger),
		Book:           service.NewBookService(st, cascade, idx, idx, logger),
		ReadingSession: service.NewReadingSessionService(st, logger),
		Calendar:       service.NewCalendarService(st, time.UTC, logger),
		Posting:        service.NewPostingService(st, logger),
		Search:         idx,
	}

	options := Options{AllowedOrigins: []string{"http://localhost:5173"}}
	for _, opt := range opts {
		opt(&options)
	}

	s := NewServer(st, services, options, logger)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.API()),
		store:  st,
	}
}

// signup creates an account and returns its bearer header and user ID.
func (ts *testServer) signup(t *testing.T, email string) (string, int64) {
	t.Helper()

	resp := ts.api.Post("/api/auth/signup", map[string]any{
		"email":    email,
		"password": "correct horse battery",
		"name":     "Reader",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var body AuthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	return "Authorization: Bearer " + body.Token, body.User.ID
}

// createBook adds a book through the API and returns it.
func (ts *testServer) createBook(t *testing.T, authHeader, title string, totalPage int) BookResponse {
	t.Helper()

	resp := ts.api.Post("/api/books", authHeader, map[string]any{
		"title":      title,
		"author":     "Frank Herbert",
		"total_page": totalPage,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var book BookResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &book))
	return book
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v))
	return v
}

func errorMessage(t *testing.T, data []byte) string {
	t.Helper()
	body := decode[map[string]any](t, data)
	msg, ok := body["error"].(string)
	require.True(t, ok, "missing error field in %s", string(data))
	return msg
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/health")
	require.Equal(t, http.StatusOK, resp.Code)

	body := decode[HealthResponse](t, resp.Body.Bytes())
	assert.True(t, body.OK)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Components["database"].Status)
	assert.Equal(t, "healthy", body.Components["search"].Status)
}

func TestRoot(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/")
	require.Equal(t, http.StatusOK, resp.Code)

	body := decode[RootResponse](t, resp.Body.Bytes())
	assert.Equal(t, Version, body.Version)
	assert.Equal(t, "/api/health", body.Endpoints["health"])
}

func TestUnknownEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/nope")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Endpoint not found", errorMessage(t, resp.Body.Bytes()))
}

func TestRequestIDHeader(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/health")
	assert.Len(t, resp.Header().Get(middleware.RequestIDHeader), 12)

	resp = ts.api.Get("/api/health", middleware.RequestIDHeader+": trace-abc")
	assert.Equal(t, "trace-abc", resp.Header().Get(middleware.RequestIDHeader))
}

func TestAuthRateLimit(t *testing.T) {
	limiter := ratelimit.New(0.001, 1, time.Minute)
	t.Cleanup(limiter.Stop)
	ts := setupTestServer(t, withAuthLimit(limiter))

	ts.signup(t, "first@example.com")

	resp := ts.api.Post("/api/auth/login", map[string]any{
		"email":    "first@example.com",
		"password": "correct horse battery",
	})
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.NotEmpty(t, errorMessage(t, resp.Body.Bytes()))

	// Other routes are not throttled.
	assert.Equal(t, http.StatusOK, ts.api.Get("/api/health").Code)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.1:1234", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.2"}, "10.0.0.1:1234", "198.51.100.2"},
		{"remote addr", nil, "192.0.2.9:5555", "192.0.2.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := http.NewRequest(http.MethodGet, "/", nil)
			require.NoError(t, err)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(r))
		})
	}
}
