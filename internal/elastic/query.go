package elastic

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/biblioteca-labs/acervo/internal/domain/search/criteria"
)

// Multi-match field weights: title dominates, author next, body fields last.
var rankedFields = []string{"titulo^3", "autor^2", "resumen", "tags"}

// Query is the engine-native search document. It is an opaque value type:
// callers obtain one from Compile and hand it to the client, nothing else.
type Query struct {
	body map[string]any
}

// MarshalJSON serializes the query document for the wire.
func (q Query) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.body)
}

// Compile translates search criteria into a bool query document. It is total:
// unparseable year bounds are dropped, an inverted year range collapses to no
// range clause, and criteria with no text or author clause fall back to
// match_all so a bare year filter still returns results.
func Compile(c criteria.Criteria) Query {
	c = c.Normalized()

	var must []any
	var filter []any

	if c.FreeText != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":     c.FreeText,
				"fields":    rankedFields,
				"fuzziness": "AUTO",
			},
		})
	}

	if c.Author != "" {
		// Exact phrase, kept out of the ranked multi_match: author filtering
		// stays precise even when free-text matching is fuzzy.
		must = append(must, map[string]any{
			"match_phrase": map[string]any{
				"autor": c.Author,
			},
		})
	}

	if r := yearRange(c.YearFrom, c.YearTo); len(r) > 0 {
		filter = append(filter, map[string]any{
			"range": map[string]any{"anio": r},
		})
	}

	if len(must) == 0 {
		must = append(must, map[string]any{"match_all": map[string]any{}})
	}

	boolQuery := map[string]any{"must": must}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}

	return Query{body: map[string]any{
		"query": map[string]any{"bool": boolQuery},
		"size":  c.PageSize,
	}}
}

// yearRange builds the gte/lte bounds from loosely typed year strings.
// Inverted bounds (from > to) yield an empty range by policy.
func yearRange(from, to string) map[string]any {
	gte, hasGte := parseYear(from)
	lte, hasLte := parseYear(to)

	if hasGte && hasLte && gte > lte {
		return nil
	}

	r := make(map[string]any, 2)
	if hasGte {
		r["gte"] = gte
	}
	if hasLte {
		r["lte"] = lte
	}
	return r
}

func parseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
