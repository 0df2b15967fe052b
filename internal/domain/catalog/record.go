// Package catalog defines the canonical record type stored in the index.
package catalog

// Record is one catalog entry. The JSON shape is the source document written
// to the index; field names match the historical Spanish schema. ID is index
// metadata, not part of the document body; when empty the engine assigns one.
type Record struct {
	ID       string   `json:"-"`
	Title    string   `json:"titulo"`
	Author   string   `json:"autor"`
	Year     *int     `json:"anio"`
	Category string   `json:"categoria"`
	Summary  string   `json:"resumen"`
	Tags     []string `json:"tags"`
}
