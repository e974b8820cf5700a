package providers

import (
	"github.com/samber/do/v2"

	"github.com/booklens/booklens-server/internal/auth"
	"github.com/booklens/booklens-server/internal/config"
	"github.com/booklens/booklens-server/internal/logger"
	"github.com/booklens/booklens-server/internal/service"
)

// ProvideCascadeCoordinator provides the book deletion coordinator.
func ProvideCascadeCoordinator(i do.Injector) (*service.CascadeCoordinator, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCascadeCoordinator(storeHandle.Store, indexHandle.SearchIndex, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideBookService provides the book service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	cascade := do.MustInvoke[*service.CascadeCoordinator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, cascade, indexHandle.SearchIndex, indexHandle.SearchIndex, log.Logger), nil
}

// ProvideReadingSessionService provides the session recorder.
func ProvideReadingSessionService(i do.Injector) (*service.ReadingSessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReadingSessionService(storeHandle.Store, log.Logger), nil
}

// ProvideCalendarService provides the reading calendar aggregation.
func ProvideCalendarService(i do.Injector) (*service.CalendarService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	loc, err := cfg.Reading.Location()
	if err != nil {
		return nil, err
	}

	return service.NewCalendarService(storeHandle.Store, loc, log.Logger), nil
}

// ProvidePostingService provides the posting service.
func ProvidePostingService(i do.Injector) (*service.PostingService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPostingService(storeHandle.Store, log.Logger), nil
}
