// Package ingest validates raw catalog payloads and bulk-indexes them with
// partial-failure tolerance.
package ingest

import (
	"context"
	"errors"
	"sort"

	"github.com/biblioteca-labs/acervo/internal/domain/catalog"
	dsingest "github.com/biblioteca-labs/acervo/internal/domain/ingest"
	"github.com/biblioteca-labs/acervo/internal/elastic"
)

// Service handles catalog ingestion into one target index.
type Service struct {
	es    BulkWriter
	index string
}

// New creates an ingest service.
func New(es BulkWriter, index string) *Service {
	return &Service{es: es, index: index}
}

// Ingest parses, validates, and indexes a raw payload, returning the
// per-call ingestion report. Validation rejections and write failures share
// the report, ordered by payload offset; only a structurally unusable
// payload returns an error (domain.ErrParse).
func (s *Service) Ingest(ctx context.Context, payload []byte) (dsingest.Report, error) {
	records, offsets, rejected, err := Parse(payload)
	if err != nil {
		return dsingest.Report{}, err
	}

	accepted := 0
	for i, res := range s.Index(ctx, records) {
		if res.Status() == dsingest.StatusOK {
			accepted++
			continue
		}
		rejected = append(rejected, dsingest.NewRejection(
			offsets[i], dsingest.ReasonWriteFailed, res.Err().Error()))
	}

	sort.SliceStable(rejected, func(i, j int) bool {
		return rejected[i].Offset() < rejected[j].Offset()
	})

	return dsingest.NewReport(accepted, rejected), nil
}

// Index writes records to the index in a single bulk round-trip with
// per-record outcomes. A record keeps its own identifier when present, so
// re-ingesting the same logical record overwrites instead of duplicating;
// records without one get an engine-assigned identifier. An empty input is
// a no-op success. A failed round-trip marks every record failed rather than
// returning an error: bulk results are per-record, never all-or-nothing.
func (s *Service) Index(ctx context.Context, records []catalog.Record) []dsingest.ItemResult {
	results := make([]dsingest.ItemResult, len(records))
	if len(records) == 0 {
		return results
	}

	docs := make([]elastic.BulkDoc, len(records))
	for i, rec := range records {
		docs[i] = elastic.BulkDoc{ID: rec.ID, Source: rec}
	}

	resp, err := s.es.Bulk(ctx, s.index, docs)
	if err != nil {
		for i, rec := range records {
			results[i] = dsingest.NewError(rec.ID, err)
		}
		return results
	}

	for i, rec := range records {
		if i >= len(resp.Items) {
			// The engine answered with fewer items than submitted; treat the
			// unaccounted tail as failed.
			results[i] = dsingest.NewError(rec.ID, errors.New("no bulk response item"))
			continue
		}
		item := resp.Items[i].Index
		if item.Error != nil {
			results[i] = dsingest.NewError(item.ID, errors.New(item.Error.String()))
			continue
		}
		id := item.ID
		if id == "" {
			id = rec.ID
		}
		results[i] = dsingest.NewOK(id)
	}
	return results
}
