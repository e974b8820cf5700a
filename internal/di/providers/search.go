package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/booklens/booklens-server/internal/config"
	"github.com/booklens/booklens-server/internal/logger"
	"github.com/booklens/booklens-server/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewSearchIndex(search.Options{
		Path:   cfg.Storage.SearchIndexPath(),
		Logger: log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// TriggerSearchReindex rebuilds the index from the database in the background.
// SQLite is the source of truth; the index only has to catch up with it.
// Should be called after all services are wired.
func TriggerSearchReindex(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx := context.Background()
	books, err := storeHandle.ListAllBooks(ctx)
	if err != nil {
		log.Error("Failed to load books for search reindex", "error", err)
		return
	}

	log.Info("Rebuilding search index", "book_count", len(books))

	go func() {
		if err := indexHandle.Rebuild(ctx, books); err != nil {
			log.Error("Search reindex failed", "error", err)
			return
		}
		count, _ := indexHandle.DocumentCount()
		log.Info("Search reindex completed", "documents", count)
	}()
}
