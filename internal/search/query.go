package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/booklens/booklens-server/internal/normalize"
)

// DefaultLimit caps the number of hits when the caller passes no limit.
const DefaultLimit = 20

// BookHit is one search result.
type BookHit struct {
	BookID int64   `json:"book_id"`
	Score  float64 `json:"score"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
}

// SearchBooks returns the books of userID matching q, best match first.
// An empty query yields no hits.
func (s *SearchIndex) SearchBooks(ctx context.Context, userID int64, q string, limit int) ([]BookHit, error) {
	q = normalize.Query(q)
	if q == "" {
		return []BookHit{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildBookQuery(userID, q), limit, 0, false)
	req.Fields = []string{"title", "author"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	hits := make([]BookHit, 0, len(res.Hits))
	for _, h := range res.Hits {
		id, err := strconv.ParseInt(h.ID, 10, 64)
		if err != nil {
			s.logger.Warn("skipping malformed search hit", "id", h.ID)
			continue
		}
		hit := BookHit{BookID: id, Score: h.Score}
		if v, ok := h.Fields["title"].(string); ok {
			hit.Title = v
		}
		if v, ok := h.Fields["author"].(string); ok {
			hit.Author = v
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// buildBookQuery scopes q to one owner and matches it against the text
// fields. Title matches weigh most; the last word also matches as a prefix
// so results appear while the user is still typing.
func buildBookQuery(userID int64, q string) query.Query {
	owner := bleve.NewTermQuery(strconv.FormatInt(userID, 10))
	owner.SetField("user_id")

	title := bleve.NewMatchQuery(q)
	title.SetField("title")
	title.SetBoost(3)

	author := bleve.NewMatchQuery(q)
	author.SetField("author")
	author.SetBoost(2)

	publisher := bleve.NewMatchQuery(q)
	publisher.SetField("publisher")

	isbn := bleve.NewTermQuery(strings.ReplaceAll(strings.ToUpper(q), "-", ""))
	isbn.SetField("isbn")
	isbn.SetBoost(5)

	text := bleve.NewDisjunctionQuery(title, author, publisher, isbn)

	words := strings.Fields(q)
	if last := words[len(words)-1]; len([]rune(last)) >= 2 {
		titlePrefix := bleve.NewPrefixQuery(last)
		titlePrefix.SetField("title")
		authorPrefix := bleve.NewPrefixQuery(last)
		authorPrefix.SetField("author")
		text.AddQuery(titlePrefix, authorPrefix)
	}

	return bleve.NewConjunctionQuery(owner, text)
}
