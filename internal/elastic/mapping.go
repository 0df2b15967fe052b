package elastic

// CatalogMapping returns the index mapping for catalog records.
// titulo/autor carry a keyword sub-field for exact lookups; anio is numeric
// so range filters work; categoria is keyword-only; resumen and tags are
// analyzed text.
func CatalogMapping() map[string]any {
	return map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"titulo": map[string]any{
					"type": "text",
					"fields": map[string]any{
						"keyword": map[string]any{"type": "keyword", "ignore_above": 512},
					},
				},
				"autor": map[string]any{
					"type": "text",
					"fields": map[string]any{
						"keyword": map[string]any{"type": "keyword", "ignore_above": 256},
					},
				},
				"anio":      map[string]any{"type": "integer"},
				"categoria": map[string]any{"type": "keyword"},
				"resumen":   map[string]any{"type": "text"},
				"tags":      map[string]any{"type": "text"},
			},
		},
	}
}
