// Package elastic wraps the search backend: connection resolution, the
// criteria-to-query compiler, and the typed request/response surface.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/biblioteca-labs/acervo/internal/config"
	"github.com/biblioteca-labs/acervo/internal/domain"
)

// DefaultRequestTimeout bounds every backend round-trip when the config
// supplies no explicit value.
const DefaultRequestTimeout = 10 * time.Second

// Client is the search backend handle. It has no per-call mutable state and
// is safe for concurrent use by simultaneous request handlers.
type Client struct {
	es      *elasticsearch.Client
	timeout time.Duration
}

// NewClient builds a backend client from resolved connection settings.
// Authentication picks whichever mode is fully populated, API key first,
// then username/password; with neither, resolution fails with
// domain.ErrMissingCredentials. Reachability is not checked here: the first
// real operation surfaces connectivity problems.
func NewClient(cfg config.ElasticConfig) (*Client, error) {
	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.URL},
	}

	switch {
	case cfg.APIKey != "":
		esCfg.APIKey = cfg.APIKey
	case cfg.Username != "" && cfg.Password != "":
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	default:
		return nil, fmt.Errorf(
			"%w: set ELASTIC_API_KEY or ELASTIC_USER/ELASTIC_PASSWORD",
			domain.ErrMissingCredentials,
		)
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	timeout := DefaultRequestTimeout
	if cfg.RequestTimeoutSec > 0 {
		timeout = time.Duration(cfg.RequestTimeoutSec) * time.Second
	}

	return &Client{es: es, timeout: timeout}, nil
}

// Search issues a compiled query against the named index.
// A missing index is reported as domain.ErrIndexNotFound so callers can
// distinguish "empty corpus" from "backend down".
func (c *Client) Search(ctx context.Context, index string, q Query) (*SearchResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConnectionUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, domain.ErrIndexNotFound
	}
	if res.IsError() {
		return nil, apiError("search", res)
	}

	var out SearchResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", domain.ErrConnectionUnavailable, err)
	}
	return &out, nil
}

// Bulk writes all documents in a single round-trip and asks the engine to
// refresh the index before returning, so an immediately following search
// observes the new records. Explicit IDs make re-ingestion an overwrite.
func (c *Client) Bulk(ctx context.Context, index string, docs []BulkDoc) (*BulkResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, d := range docs {
		action := map[string]any{}
		if d.ID != "" {
			action["_id"] = d.ID
		}
		if err := enc.Encode(map[string]any{"index": action}); err != nil {
			return nil, fmt.Errorf("encode bulk action: %w", err)
		}
		if err := enc.Encode(d.Source); err != nil {
			return nil, fmt.Errorf("encode bulk document: %w", err)
		}
	}

	res, err := c.es.Bulk(
		bytes.NewReader(buf.Bytes()),
		c.es.Bulk.WithContext(ctx),
		c.es.Bulk.WithIndex(index),
		c.es.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConnectionUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apiError("bulk", res)
	}

	var out BulkResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode bulk response: %v", domain.ErrConnectionUnavailable, err)
	}
	return &out, nil
}

// Count returns the number of documents in the index; a missing index counts
// as zero, not as an error.
func (c *Client) Count(ctx context.Context, index string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.es.Count(
		c.es.Count.WithContext(ctx),
		c.es.Count.WithIndex(index),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrConnectionUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return 0, nil
	}
	if res.IsError() {
		return 0, apiError("count", res)
	}

	var out struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("%w: decode count response: %v", domain.ErrConnectionUnavailable, err)
	}
	return out.Count, nil
}

// IndexExists reports whether the named index has been created.
func (c *Client) IndexExists(ctx context.Context, index string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.es.Indices.Exists(
		[]string{index},
		c.es.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrConnectionUnavailable, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, apiError("index exists", res)
	}
}

// EnsureIndex creates the index with the given mapping unless it already exists.
func (c *Client) EnsureIndex(ctx context.Context, index string, mapping map[string]any) error {
	exists, err := c.IndexExists(ctx, index)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("marshal mapping: %w", err)
	}

	res, err := c.es.Indices.Create(
		index,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConnectionUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apiError("create index", res)
	}
	return nil
}

// Ping checks backend reachability.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConnectionUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apiError("ping", res)
	}
	return nil
}

// apiError converts a non-2xx backend response into the transport error
// taxonomy, carrying a bounded slice of the response body as the cause.
func apiError(op string, res *esapi.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	return fmt.Errorf("%w: %s: %s %s",
		domain.ErrConnectionUnavailable, op, res.Status(), bytes.TrimSpace(snippet))
}
