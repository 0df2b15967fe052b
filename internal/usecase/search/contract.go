package search

import (
	"context"

	"github.com/biblioteca-labs/acervo/internal/elastic"
)

// Searcher runs compiled queries against a named index.
type Searcher interface {
	Search(ctx context.Context, index string, q elastic.Query) (*elastic.SearchResponse, error)
}
