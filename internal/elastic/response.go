package elastic

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SearchResponse is the decoded body of a search round-trip.
type SearchResponse struct {
	Hits HitList `json:"hits"`
}

// HitList carries the ordered hits and the total match count.
type HitList struct {
	Total TotalHits `json:"total"`
	Hits  []Hit     `json:"hits"`
}

// Hit is a single raw search hit: identifier, relevance score, and the
// source document as loosely typed fields.
type Hit struct {
	ID     string         `json:"_id"`
	Score  float64        `json:"_score"`
	Source map[string]any `json:"_source"`
}

// TotalHits decodes the total match count, which the wire reports either as
// a bare integer (older servers) or as an object with a value field.
type TotalHits struct {
	Value int64
}

// UnmarshalJSON accepts both total-count shapes.
func (t *TotalHits) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj struct {
			Value int64 `json:"value"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return fmt.Errorf("decode total hits object: %w", err)
		}
		t.Value = obj.Value
		return nil
	}

	var n int64
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("decode total hits: %w", err)
	}
	t.Value = n
	return nil
}

// BulkDoc is one document in a bulk write: an optional explicit identifier
// plus the source document. An empty ID lets the engine assign one.
type BulkDoc struct {
	ID     string
	Source any
}

// BulkResponse is the decoded body of a bulk round-trip; items are reported
// per-document in submission order.
type BulkResponse struct {
	Errors bool           `json:"errors"`
	Items  []BulkRespItem `json:"items"`
}

// BulkRespItem wraps the per-action result envelope.
type BulkRespItem struct {
	Index BulkItemResult `json:"index"`
}

// BulkItemResult is the outcome of one bulk action.
type BulkItemResult struct {
	ID     string         `json:"_id"`
	Status int            `json:"status"`
	Error  *BulkItemError `json:"error,omitempty"`
}

// BulkItemError describes a per-item write failure.
type BulkItemError struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

func (e *BulkItemError) String() string {
	if e.Reason == "" {
		return e.Type
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Reason)
}
