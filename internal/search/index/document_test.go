package index

import (
	"encoding/json"
	"testing"

	"github.com/KruASe76/look/pkg/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromProduct(t *testing.T) {
	id := uuid.New()
	doc := FromProduct(model.Product{
		ID:          id,
		Article:     "AB-1234",
		Name:        "Linen dress",
		Brand:       "Nord",
		Category:    "dress",
		ColorName:   "red",
		ColorCode:   "#ff0000",
		ImageURLs:   []string{"https://img/1.jpg"},
		Description: "Light summer dress",
		Price:       49.9,
	})

	assert.Equal(t, id.String(), doc.ID)
	assert.Equal(t, "Linen dress", doc.NameSuggest)
	assert.Equal(t, []string{}, doc.Sizes)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"article": "AB-1234",
		"name": "Linen dress",
		"name_suggest": "Linen dress",
		"brand": "Nord",
		"category": "dress",
		"color_name": "red",
		"sizes": [],
		"description": "Light summer dress",
		"price": 49.9
	}`, string(raw))
}

func TestSettings_MapsFilterFields(t *testing.T) {
	props := Settings()["mappings"].(map[string]any)["properties"].(map[string]any)

	for _, field := range []string{"article", "brand", "category", "color_name", "sizes"} {
		assert.Equal(t, "keyword", props[field].(map[string]any)["type"], field)
	}
	assert.Equal(t, "search_as_you_type", props["name_suggest"].(map[string]any)["type"])
	assert.Equal(t, "float", props["price"].(map[string]any)["type"])
}
