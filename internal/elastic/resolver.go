package elastic

import (
	"context"
	"sync"

	"github.com/biblioteca-labs/acervo/internal/config"
)

// Resolver lazily builds the backend client from connection settings and
// memoizes it for the life of the process. Resolution does not touch the
// network; reachability surfaces on the first real operation. The zero-state
// Resolver is created once at the composition root and shared by every
// request handler.
type Resolver struct {
	cfg config.ElasticConfig

	mu     sync.Mutex
	client *Client
}

// NewResolver creates a resolver for the given connection settings.
func NewResolver(cfg config.ElasticConfig) *Resolver {
	return &Resolver{cfg: cfg}
}

// Resolve returns the cached client handle, building it on first use.
// It fails with domain.ErrMissingCredentials until the configuration is
// fixed; a later call retries once credentials appear valid.
func (r *Resolver) Resolve() (*Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		return r.client, nil
	}

	client, err := NewClient(r.cfg)
	if err != nil {
		return nil, err
	}
	r.client = client
	return client, nil
}

// Search resolves the client and runs a search round-trip.
func (r *Resolver) Search(ctx context.Context, index string, q Query) (*SearchResponse, error) {
	c, err := r.Resolve()
	if err != nil {
		return nil, err
	}
	return c.Search(ctx, index, q)
}

// Bulk resolves the client and runs a bulk write round-trip.
func (r *Resolver) Bulk(ctx context.Context, index string, docs []BulkDoc) (*BulkResponse, error) {
	c, err := r.Resolve()
	if err != nil {
		return nil, err
	}
	return c.Bulk(ctx, index, docs)
}

// Count resolves the client and counts index documents.
func (r *Resolver) Count(ctx context.Context, index string) (int64, error) {
	c, err := r.Resolve()
	if err != nil {
		return 0, err
	}
	return c.Count(ctx, index)
}

// IndexExists resolves the client and checks index existence.
func (r *Resolver) IndexExists(ctx context.Context, index string) (bool, error) {
	c, err := r.Resolve()
	if err != nil {
		return false, err
	}
	return c.IndexExists(ctx, index)
}

// EnsureIndex resolves the client and creates the index if absent.
func (r *Resolver) EnsureIndex(ctx context.Context, index string, mapping map[string]any) error {
	c, err := r.Resolve()
	if err != nil {
		return err
	}
	return c.EnsureIndex(ctx, index, mapping)
}

// Ping resolves the client and checks backend reachability.
func (r *Resolver) Ping(ctx context.Context) error {
	c, err := r.Resolve()
	if err != nil {
		return err
	}
	return c.Ping(ctx)
}
