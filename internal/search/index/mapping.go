package index

// Settings returns the index settings and mappings used when creating the product index.
func Settings() map[string]any {
	return map[string]any{
		"settings": map[string]any{
			"number_of_shards":   1,
			"number_of_replicas": 0,
			"analysis": map[string]any{
				"filter": map[string]any{
					"russian_stop": map[string]any{
						"type":      "stop",
						"stopwords": "_russian_",
					},
					"russian_stemmer": map[string]any{
						"type":     "stemmer",
						"language": "russian",
					},
				},
				"analyzer": map[string]any{
					"russian_analyzer": map[string]any{
						"type":      "custom",
						"tokenizer": "standard",
						"filter":    []string{"lowercase", "russian_stop", "russian_stemmer"},
					},
				},
			},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"article":    map[string]any{"type": "keyword"},
				"brand":      map[string]any{"type": "keyword"},
				"category":   map[string]any{"type": "keyword"},
				"color_name": map[string]any{"type": "keyword"},
				"sizes":      map[string]any{"type": "keyword"},
				"name": map[string]any{
					"type":     "text",
					"analyzer": "russian_analyzer",
					"fields": map[string]any{
						"raw": map[string]any{"type": "keyword"},
					},
				},
				"name_suggest": map[string]any{"type": "search_as_you_type"},
				"description": map[string]any{
					"type":     "text",
					"analyzer": "russian_analyzer",
				},
				"price": map[string]any{"type": "float"},
			},
		},
	}
}
