package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/biblioteca-labs/acervo/internal/domain"
	"github.com/biblioteca-labs/acervo/internal/domain/catalog"
	dsingest "github.com/biblioteca-labs/acervo/internal/domain/ingest"
)

// wrapperKey is the single recognized key when the payload is a top-level
// object wrapping the record array.
const wrapperKey = "libros"

// Parse decodes and validates a raw ingest payload. Three shapes are
// accepted, auto-detected from the first non-whitespace byte: a JSON array
// of objects, newline-delimited JSON (one object per non-blank line), or an
// object holding the array under "libros".
//
// Validation is per-record and never aborts the batch: each rejected record
// is reported with its 1-based payload offset. Only a structurally unusable
// top-level payload returns a domain.ErrParse error. Returned offsets run
// parallel to the accepted records.
func Parse(payload []byte) ([]catalog.Record, []int, []dsingest.Rejection, error) {
	items, err := splitItems(payload)
	if err != nil {
		return nil, nil, nil, err
	}

	var (
		records  []catalog.Record
		offsets  []int
		rejected []dsingest.Rejection
	)
	for i, item := range items {
		offset := i + 1

		var obj map[string]any
		if err := json.Unmarshal(item, &obj); err != nil {
			return nil, nil, nil, fmt.Errorf("%w: element %d is not a JSON object", domain.ErrParse, offset)
		}

		rec, rejection := validateRecord(offset, obj)
		if rejection != nil {
			rejected = append(rejected, *rejection)
			continue
		}
		records = append(records, rec)
		offsets = append(offsets, offset)
	}

	return records, offsets, rejected, nil
}

// splitItems detects the payload shape and returns the raw per-record elements.
func splitItems(payload []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimLeftFunc(payload, unicode.IsSpace)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty payload", domain.ErrParse)
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: invalid JSON array: %v", domain.ErrParse, err)
		}
		return items, nil

	case '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			// Not one JSON document; treat the payload as an NDJSON stream.
			return splitLines(trimmed)
		}
		raw, ok := wrapper[wrapperKey]
		if !ok {
			return nil, fmt.Errorf(
				"%w: top-level object must hold a %q array", domain.ErrParse, wrapperKey)
		}
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%w: %q must be a JSON array: %v", domain.ErrParse, wrapperKey, err)
		}
		return items, nil

	default:
		return nil, fmt.Errorf(
			"%w: payload must be a JSON array, an NDJSON stream, or a %q wrapper object",
			domain.ErrParse, wrapperKey)
	}
}

// splitLines parses newline-delimited JSON; blank lines are skipped and each
// remaining line must be a complete JSON value.
func splitLines(payload []byte) ([]json.RawMessage, error) {
	var items []json.RawMessage
	for n, line := range bytes.Split(payload, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			return nil, fmt.Errorf("%w: line %d is not valid JSON", domain.ErrParse, n+1)
		}
		items = append(items, json.RawMessage(line))
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty payload", domain.ErrParse)
	}
	return items, nil
}

// validateRecord checks one decoded record. The first failing rule wins:
// title, then author, then year.
func validateRecord(offset int, obj map[string]any) (catalog.Record, *dsingest.Rejection) {
	title := strings.TrimSpace(stringValue(obj["titulo"]))
	if title == "" {
		r := dsingest.NewRejection(offset, dsingest.ReasonMissingTitle,
			fmt.Sprintf("record %d has no titulo", offset))
		return catalog.Record{}, &r
	}

	author := strings.TrimSpace(stringValue(obj["autor"]))
	if author == "" {
		r := dsingest.NewRejection(offset, dsingest.ReasonMissingAuthor,
			fmt.Sprintf("record %d has no autor", offset))
		return catalog.Record{}, &r
	}

	year, ok := yearValue(obj["anio"])
	if !ok {
		r := dsingest.NewRejection(offset, dsingest.ReasonInvalidYear,
			fmt.Sprintf("record %d has an invalid anio", offset))
		return catalog.Record{}, &r
	}

	return catalog.Record{
		ID:       strings.TrimSpace(stringValue(obj["id"])),
		Title:    title,
		Author:   author,
		Year:     year,
		Category: strings.TrimSpace(stringValue(obj["categoria"])),
		Summary:  strings.TrimSpace(stringValue(obj["resumen"])),
		Tags:     tagsValue(obj["tags"]),
	}, nil
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// yearValue returns (nil, true) for an absent year, the parsed year for a
// numeric or numeric-string value, and ok=false for anything else.
func yearValue(v any) (*int, bool) {
	switch y := v.(type) {
	case nil:
		return nil, true
	case float64:
		n := int(y)
		return &n, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(y))
		if err != nil {
			return nil, false
		}
		return &n, true
	default:
		return nil, false
	}
}

// tagsValue collects the string members of a tags array; absent or mistyped
// tags default to an empty ordered sequence.
func tagsValue(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return []string{}
	}
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		if s, ok := t.(string); ok {
			tags = append(tags, s)
		}
	}
	return tags
}
