package api

import (
	"github.com/booklens/booklens-server/internal/search"
	"github.com/booklens/booklens-server/internal/service"
)

// Services groups all business logic services used by the API server.
type Services struct {
	Auth           *service.AuthService
	Book           *service.BookService
	ReadingSession *service.ReadingSessionService
	Calendar       *service.CalendarService
	Posting        *service.PostingService
	Search         *search.SearchIndex // optional, reported by /api/health
}
