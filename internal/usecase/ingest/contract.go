package ingest

import (
	"context"

	"github.com/biblioteca-labs/acervo/internal/elastic"
)

// BulkWriter submits a batched document write to a named index.
type BulkWriter interface {
	Bulk(ctx context.Context, index string, docs []elastic.BulkDoc) (*elastic.BulkResponse, error)
}
