// Package criteria defines the user-facing search filters.
package criteria

import "strings"

// DefaultPageSize is the page size used when the caller supplies none.
const DefaultPageSize = 50

// Criteria captures search filters as loosely typed as the query string that
// carries them. Year bounds stay strings on purpose: an unparseable bound is
// treated as absent by the query compiler, never as an error.
type Criteria struct {
	FreeText string
	Author   string
	YearFrom string
	YearTo   string
	PageSize int
}

// Normalized returns a copy with all string fields trimmed and the page size
// defaulted. An empty string after trimming means "absent".
func (c Criteria) Normalized() Criteria {
	c.FreeText = strings.TrimSpace(c.FreeText)
	c.Author = strings.TrimSpace(c.Author)
	c.YearFrom = strings.TrimSpace(c.YearFrom)
	c.YearTo = strings.TrimSpace(c.YearTo)
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	return c
}

// IsEmpty reports whether no filter at all was supplied.
func (c Criteria) IsEmpty() bool {
	n := c.Normalized()
	return n.FreeText == "" && n.Author == "" && n.YearFrom == "" && n.YearTo == ""
}
