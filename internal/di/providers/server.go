package providers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/booklens/booklens-server/internal/api"
	"github.com/booklens/booklens-server/internal/config"
	"github.com/booklens/booklens-server/internal/logger"
	"github.com/booklens/booklens-server/internal/ratelimit"
	"github.com/booklens/booklens-server/internal/service"
)

// shutdownTimeout bounds how long in-flight requests get to finish on shutdown.
const shutdownTimeout = 30 * time.Second

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// AuthRateLimiterHandle wraps the auth endpoint limiter with Shutdownable.
type AuthRateLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// ProvideAuthRateLimiter provides the per-IP limiter for signup and login.
func ProvideAuthRateLimiter(i do.Injector) (*AuthRateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return &AuthRateLimiterHandle{KeyedRateLimiter: ratelimit.PerMinute(cfg.Auth.RatePerMinute)}, nil
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	limiter := do.MustInvoke[*AuthRateLimiterHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Auth:           do.MustInvoke[*service.AuthService](i),
		Book:           do.MustInvoke[*service.BookService](i),
		ReadingSession: do.MustInvoke[*service.ReadingSessionService](i),
		Calendar:       do.MustInvoke[*service.CalendarService](i),
		Posting:        do.MustInvoke[*service.PostingService](i),
		Search:         indexHandle.SearchIndex,
	}

	handler := api.NewServer(storeHandle.Store, services, api.Options{
		AllowedOrigins:  cfg.Server.AllowedOrigins(),
		AuthRateLimiter: limiter.KeyedRateLimiter,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
