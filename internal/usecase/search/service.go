// Package search executes catalog searches: criteria compilation, the
// backend round-trip, and hit normalization.
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/biblioteca-labs/acervo/internal/domain"
	"github.com/biblioteca-labs/acervo/internal/domain/search/criteria"
	"github.com/biblioteca-labs/acervo/internal/domain/search/result"
	"github.com/biblioteca-labs/acervo/internal/elastic"
)

// Service handles catalog searches against one target index.
type Service struct {
	es          Searcher
	index       string
	maxPageSize int
}

// New creates a search service.
func New(es Searcher, index string) *Service {
	return &Service{es: es, index: index, maxPageSize: 200}
}

// WithMaxPageSize caps the per-request page size.
func (s *Service) WithMaxPageSize(size int) *Service {
	if size > 0 {
		s.maxPageSize = size
	}
	return s
}

// Search compiles the criteria, runs the query, and normalizes the hits.
// A target index that has never been created yields zero results and no
// error; any transport or server-side failure is returned as
// domain.ErrConnectionUnavailable with the cause attached; callers treat it
// as "search unavailable", never as absence of data.
func (s *Service) Search(ctx context.Context, c criteria.Criteria) ([]result.Record, int64, error) {
	c = c.Normalized()
	if c.PageSize > s.maxPageSize {
		c.PageSize = s.maxPageSize
	}

	resp, err := s.es.Search(ctx, s.index, elastic.Compile(c))
	if errors.Is(err, domain.ErrIndexNotFound) {
		return []result.Record{}, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("search: %w", err)
	}

	return Normalize(resp.Hits.Hits), resp.Hits.Total.Value, nil
}
