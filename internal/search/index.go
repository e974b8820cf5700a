package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/booklens/booklens-server/internal/domain"
)

// SearchIndex wraps a Bleve index of books.
//
// All public methods are safe for concurrent use; Rebuild takes the
// write lock and blocks other operations while it runs.
type SearchIndex struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	Path   string       // Directory of the on-disk index
	Logger *slog.Logger // Uses discard if nil
}

// mappingVersion is bumped whenever buildIndexMapping changes.
// A mismatch on startup discards the index so it is rebuilt.
const mappingVersion = "1"

// batchSize bounds memory during bulk indexing.
const batchSize = 500

// NewSearchIndex opens the index at opts.Path, recreating it when it is
// missing, unreadable or built with an older mapping. A recreated index is
// empty; callers follow up with Rebuild.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	versionPath := opts.Path + ".version"

	var index bleve.Index
	if _, err := os.Stat(opts.Path); err == nil {
		version, readErr := os.ReadFile(versionPath) //#nosec G304 -- derived from configured data path
		switch {
		case readErr != nil || string(version) != mappingVersion:
			logger.Info("search index mapping changed, recreating",
				"old_version", string(version),
				"new_version", mappingVersion,
			)
		default:
			index, err = bleve.Open(opts.Path)
			if err != nil {
				logger.Warn("failed to open search index, recreating", "path", opts.Path, "error", err)
				index = nil
			}
		}
	}

	if index == nil {
		if err := os.RemoveAll(opts.Path); err != nil {
			return nil, fmt.Errorf("remove old index: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create index directory: %w", err)
		}

		var err error
		index, err = bleve.New(opts.Path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil { //#nosec G306
			logger.Warn("failed to write search version file", "error", err)
		}
		logger.Info("created search index", "path", opts.Path, "mapping_version", mappingVersion)
	}

	return &SearchIndex{index: index, path: opts.Path, logger: logger}, nil
}

// NewMemOnly creates an in-memory index. Rebuild keeps it in memory.
func NewMemOnly(logger *slog.Logger) (*SearchIndex, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create in-memory index: %w", err)
	}
	return &SearchIndex{index: index, logger: logger}, nil
}

// Close closes the index and releases resources.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexBook adds or replaces a book in the index.
func (s *SearchIndex) IndexBook(_ context.Context, b *domain.Book) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := NewBookDocument(b)
	if err := s.index.Index(doc.ID, doc.ToMap()); err != nil {
		return fmt.Errorf("index book %d: %w", b.ID, err)
	}
	return nil
}

// DeleteBook removes a book from the index. Unknown IDs are not an error.
func (s *SearchIndex) DeleteBook(_ context.Context, bookID int64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.index.Delete(docID(bookID)); err != nil {
		return fmt.Errorf("delete book %d: %w", bookID, err)
	}
	return nil
}

// DocumentCount returns the number of indexed books.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild replaces the index contents with books.
func (s *SearchIndex) Rebuild(ctx context.Context, books []*domain.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	var (
		index bleve.Index
		err   error
	)
	if s.path == "" {
		index, err = bleve.NewMemOnly(buildIndexMapping())
	} else {
		if err = os.RemoveAll(s.path); err != nil {
			return fmt.Errorf("remove index: %w", err)
		}
		index, err = bleve.New(s.path, buildIndexMapping())
	}
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	s.index = index

	for start := 0; start < len(books); start += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(start+batchSize, len(books))
		batch := s.index.NewBatch()
		for _, b := range books[start:end] {
			doc := NewBookDocument(b)
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", start, end, err)
		}
	}

	s.logger.Info("search index rebuilt", "books", len(books))
	return nil
}
