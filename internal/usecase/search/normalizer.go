package search

import (
	"strconv"
	"strings"

	"github.com/biblioteca-labs/acervo/internal/domain/search/result"
	"github.com/biblioteca-labs/acervo/internal/elastic"
)

// Normalize maps raw hits onto stable result records. Extraction is
// defensive: a missing or mistyped source field becomes the zero value,
// never a failure. Engine ordering and scores are preserved verbatim.
func Normalize(hits []elastic.Hit) []result.Record {
	out := make([]result.Record, 0, len(hits))
	for _, h := range hits {
		out = append(out, normalizeHit(h))
	}
	return out
}

func normalizeHit(h elastic.Hit) result.Record {
	return result.New(
		h.ID,
		h.Score,
		stringField(h.Source, "titulo"),
		stringField(h.Source, "autor"),
		yearField(h.Source),
		stringField(h.Source, "categoria"),
		stringField(h.Source, "resumen"),
	)
}

func stringField(src map[string]any, key string) string {
	if v, ok := src[key].(string); ok {
		return v
	}
	return ""
}

// yearField accepts the numeric shape JSON decoding produces, plus the
// string-typed years older documents carry.
func yearField(src map[string]any) *int {
	switch v := src["anio"].(type) {
	case float64:
		y := int(v)
		return &y
	case string:
		if y, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return &y
		}
	}
	return nil
}
