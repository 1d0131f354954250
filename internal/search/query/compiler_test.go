package query

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/KruASe76/look/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestIsArticle(t *testing.T) {
	tests := []struct {
		q    string
		want bool
	}{
		{"AB-1234", true},
		{"12345", true},
		{"x1", true},
		{"ab-cd-9-ef", true},
		{"dress", false},
		{"red dress 42", false},
		{"AB_1234", false},
		{"", false},
		{"-", false},
		{"платье1", false},
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			assert.Equal(t, tt.want, IsArticle(tt.q))
		})
	}
}

func TestCompile_NoTextNoFilters_IsRandom(t *testing.T) {
	plan := Compile(Criteria{Limit: 20, Offset: 40})

	assert.Nil(t, plan.Article)
	assert.Equal(t, KindRandom, plan.Main.Kind)
	assert.Equal(t, 40, plan.Main.From)
	assert.Equal(t, 20, plan.Main.Size)
	assert.Equal(t, false, plan.Main.Source)

	fs := plan.Main.Query["function_score"].(map[string]any)
	assert.Equal(t, map[string]any{"match_all": map[string]any{}}, fs["query"])
	assert.Equal(t, []any{map[string]any{"random_score": map[string]any{}}}, fs["functions"])
}

func TestCompile_WhitespaceQueryIsNoText(t *testing.T) {
	plan := Compile(Criteria{Query: "   ", Limit: 1})
	assert.Equal(t, KindRandom, plan.Main.Kind)
	assert.Nil(t, plan.Article)
}

func TestCompile_TextOnly(t *testing.T) {
	plan := Compile(Criteria{Query: "linen dress", Limit: 10})

	assert.Nil(t, plan.Article)
	assert.Equal(t, KindRanked, plan.Main.Kind)

	b := plan.Main.Query["bool"].(map[string]any)
	assert.NotContains(t, b, "filter")
	must := b["must"].([]any)
	require.Len(t, must, 1)

	mm := must[0].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "linen dress", mm["query"])
	assert.Equal(t, "AUTO", mm["fuzziness"])
	assert.Equal(t, []string{"name^3", "category^3", "color_name^2", "brand^2", "description^1"}, mm["fields"])
}

func TestCompile_ArticleAddsLookup(t *testing.T) {
	plan := Compile(Criteria{Query: " AB-1234 ", Limit: 10})

	require.NotNil(t, plan.Article)
	assert.Equal(t, KindArticle, plan.Article.Kind)
	assert.Equal(t, map[string]any{"term": map[string]any{"article": "AB-1234"}}, plan.Article.Query)
	assert.Equal(t, 2, plan.Article.Size)

	// The ranked fallback is still compiled for the same text.
	assert.Equal(t, KindRanked, plan.Main.Kind)
}

func TestCompile_FiltersOnly(t *testing.T) {
	plan := Compile(Criteria{
		Categories: []string{"dress"},
		Colors:     []string{"red", "blue"},
		Brands:     []string{"Nord"},
		Sizes:      []string{"M"},
		MinPrice:   ptr(20),
		MaxPrice:   ptr(50),
		Limit:      10,
	})

	assert.Equal(t, KindRanked, plan.Main.Kind)
	b := plan.Main.Query["bool"].(map[string]any)
	assert.NotContains(t, b, "must")

	assert.Equal(t, []any{
		map[string]any{"terms": map[string]any{"category": []string{"dress"}}},
		map[string]any{"terms": map[string]any{"color_name": []string{"red", "blue"}}},
		map[string]any{"terms": map[string]any{"brand": []string{"Nord"}}},
		map[string]any{"terms": map[string]any{"sizes": []string{"M"}}},
		map[string]any{"range": map[string]any{"price": map[string]any{"gte": 20.0, "lte": 50.0}}},
	}, b["filter"])
}

func TestCompile_HalfOpenPriceRange(t *testing.T) {
	plan := Compile(Criteria{MaxPrice: ptr(0), Limit: 1})

	b := plan.Main.Query["bool"].(map[string]any)
	assert.Equal(t, []any{
		map[string]any{"range": map[string]any{"price": map[string]any{"lte": 0.0}}},
	}, b["filter"])
}

func TestCompile_TextAndFilters(t *testing.T) {
	plan := Compile(Criteria{Query: "coat", Brands: []string{"Nord"}, Limit: 5})

	b := plan.Main.Query["bool"].(map[string]any)
	assert.Len(t, b["must"], 1)
	assert.Len(t, b["filter"], 1)
}

func TestCompile_IsFreshPerCall(t *testing.T) {
	c := Criteria{Brands: []string{"Nord"}, Limit: 5}
	a := Compile(c)
	b := Compile(c)

	a.Main.Query["bool"].(map[string]any)["filter"] = nil
	assert.NotNil(t, b.Main.Query["bool"].(map[string]any)["filter"])
}

func TestCompileSuggestions(t *testing.T) {
	d := CompileSuggestions("лин", 7)

	assert.Equal(t, KindSuggest, d.Kind)
	assert.Equal(t, 7, d.Size)
	assert.Equal(t, []string{"name_suggest"}, d.Source)

	mm := d.Query["multi_match"].(map[string]any)
	assert.Equal(t, "bool_prefix", mm["type"])
	assert.Equal(t, "лин", mm["query"])
	assert.Equal(t, []string{"name_suggest", "name_suggest._2gram", "name_suggest._3gram"}, mm["fields"])
}

func TestCompileSuggestions_EmptyIsRandom(t *testing.T) {
	d := CompileSuggestions("", 3)
	assert.Equal(t, KindRandom, d.Kind)
	assert.Contains(t, d.Query, "function_score")
	assert.Equal(t, 3, d.Size)
}

func TestDescriptor_MarshalJSON(t *testing.T) {
	d := ArticleLookup("AB-1")
	raw, err := json.Marshal(d)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"query": {"term": {"article": "AB-1"}},
		"_source": false,
		"from": 0,
		"size": 2
	}`, string(raw))
}

func TestCriteria_Validate(t *testing.T) {
	tests := []struct {
		name    string
		c       Criteria
		wantErr bool
	}{
		{"ok", Criteria{Limit: 10}, false},
		{"zero prices", Criteria{Limit: 10, MinPrice: ptr(0), MaxPrice: ptr(0)}, false},
		{"zero limit", Criteria{Limit: 0}, true},
		{"negative offset", Criteria{Limit: 1, Offset: -1}, true},
		{"window too deep", Criteria{Limit: 100, Offset: MaxWindow}, true},
		{"window at bound", Criteria{Limit: 100, Offset: MaxWindow - 100}, false},
		{"huge limit", Criteria{Limit: math.MaxInt, Offset: 1}, true},
		{"huge offset", Criteria{Limit: 1, Offset: math.MaxInt}, true},
		{"negative min", Criteria{Limit: 1, MinPrice: ptr(-1)}, true},
		{"negative max", Criteria{Limit: 1, MaxPrice: ptr(-0.01)}, true},
		{"NaN price", Criteria{Limit: 1, MinPrice: ptr(math.NaN())}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, model.ErrInvalidCriteria)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
