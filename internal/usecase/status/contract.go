package status

import "context"

// IndexInspector reads index existence and document counts.
type IndexInspector interface {
	IndexExists(ctx context.Context, index string) (bool, error)
	Count(ctx context.Context, index string) (int64, error)
}
