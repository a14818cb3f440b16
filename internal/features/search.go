package features

import (
	"context"
	"net/url"
	"strings"

	"go.trai.ch/quill/internal/adapters/httpclient"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/engine/query"
)

// Search runs full-text searches across posts, categories and tags.
type Search struct {
	set *Set
}

func newSearch(s *Set) *Search {
	return &Search{set: s}
}

// Query returns the results for term. Surrounding whitespace is ignored so
// equivalent terms share a cache entry.
func (s *Search) Query(term string) *query.Query[[]domain.SearchResult] {
	term = strings.TrimSpace(term)
	return query.Bind(s.set.client, SearchResultsKey(term), func(ctx context.Context) ([]domain.SearchResult, error) {
		if term == "" {
			return []domain.SearchResult{}, nil
		}
		return httpclient.Get[[]domain.SearchResult](ctx, s.set.api, "search", url.Values{"q": {term}})
	})
}
