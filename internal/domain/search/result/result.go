// Package result defines the stable record shape returned by searches.
package result

// Record is a single search hit (immutable value object). It exposes fewer
// fields than an ingested catalog record: search results never round-trip
// back into ingestion.
type Record struct {
	id       string
	score    float64
	title    string
	author   string
	year     *int
	category string
	summary  string
}

// New creates a search result record. year may be nil when the source
// document carries no usable year.
func New(id string, score float64, title, author string, year *int, category, summary string) Record {
	return Record{
		id: id, score: score, title: title, author: author,
		year: year, category: category, summary: summary,
	}
}

// ID returns the document identifier.
func (r *Record) ID() string { return r.id }

// Score returns the engine-provided relevance score, verbatim.
func (r *Record) Score() float64 { return r.score }

// Title returns the record title.
func (r *Record) Title() string { return r.title }

// Author returns the record author.
func (r *Record) Author() string { return r.author }

// Year returns the publication year and whether one is present.
func (r *Record) Year() (int, bool) {
	if r.year == nil {
		return 0, false
	}
	return *r.year, true
}

// Category returns the record category.
func (r *Record) Category() string { return r.category }

// Summary returns the record summary.
func (r *Record) Summary() string { return r.summary }
