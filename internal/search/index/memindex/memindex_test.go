package memindex

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/KruASe76/look/internal/search/index"
	"github.com/KruASe76/look/internal/search/query"
	"github.com/KruASe76/look/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T) *Index {
	t.Helper()
	x := New(rand.NewPCG(1, 2))
	docs := []index.Document{
		{ID: "1", Article: "AB-1234", Name: "Linen summer dress", NameSuggest: "Linen summer dress", Brand: "Zara", Category: "dress", ColorName: "red", Sizes: []string{"S", "M"}, Price: 50},
		{ID: "2", Article: "CD-5678", Name: "Wool coat", NameSuggest: "Wool coat", Brand: "Mango", Category: "coat", ColorName: "black", Sizes: []string{"L"}, Price: 200},
		{ID: "3", Article: "EF-9012", Name: "Evening dress", NameSuggest: "Evening dress", Brand: "Mango", Category: "dress", ColorName: "black", Sizes: []string{"M"}, Price: 120, Description: "silk"},
		{ID: "4", Article: "AB-1234", Name: "Linen shirt", NameSuggest: "Linen shirt", Brand: "Zara", Category: "shirt", ColorName: "white", Sizes: []string{"M", "L"}, Price: 30},
	}
	for _, d := range docs {
		require.NoError(t, x.Upsert(context.Background(), d))
	}
	return x
}

func ids(hits []index.Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.ID
	}
	return out
}

func price(v float64) *float64 { return &v }

func TestSearch_ArticleLookup(t *testing.T) {
	x := fixture(t)

	hits, err := x.Search(context.Background(), query.ArticleLookup("CD-5678"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(hits))
	assert.Nil(t, hits[0].Source)

	hits, err = x.Search(context.Background(), query.ArticleLookup("AB-1234"))
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestSearch_Filters(t *testing.T) {
	x := fixture(t)

	plan := query.Compile(query.Criteria{
		Categories: []string{"dress", "shirt"},
		Sizes:      []string{"M"},
		MaxPrice:   price(100),
		Limit:      10,
	})
	hits, err := x.Search(context.Background(), plan.Main)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "4"}, ids(hits))

	plan = query.Compile(query.Criteria{Brands: []string{"Mango"}, MinPrice: price(150), Limit: 10})
	hits, err = x.Search(context.Background(), plan.Main)
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(hits))
}

func TestSearch_TextRanking(t *testing.T) {
	x := fixture(t)

	plan := query.Compile(query.Criteria{Query: "dress", Limit: 10})
	hits, err := x.Search(context.Background(), plan.Main)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "3"}, ids(hits))
	for _, h := range hits {
		assert.Greater(t, h.Score, 0.0)
	}
}

func TestSearch_Fuzzy(t *testing.T) {
	x := fixture(t)

	plan := query.Compile(query.Criteria{Query: "linnen", Limit: 10})
	hits, err := x.Search(context.Background(), plan.Main)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "4"}, ids(hits))
}

func TestSearch_TextWithFilters(t *testing.T) {
	x := fixture(t)

	plan := query.Compile(query.Criteria{Query: "linen", Categories: []string{"shirt"}, Limit: 10})
	hits, err := x.Search(context.Background(), plan.Main)
	require.NoError(t, err)
	assert.Equal(t, []string{"4"}, ids(hits))
}

func TestSearch_RandomWindow(t *testing.T) {
	x := fixture(t)

	plan := query.Compile(query.Criteria{Limit: 3, Offset: 0})
	hits, err := x.Search(context.Background(), plan.Main)
	require.NoError(t, err)
	assert.Len(t, hits, 3)

	plan = query.Compile(query.Criteria{Limit: 3, Offset: 3})
	hits, err = x.Search(context.Background(), plan.Main)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	plan = query.Compile(query.Criteria{Limit: 3, Offset: 10})
	hits, err = x.Search(context.Background(), plan.Main)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_Suggestions(t *testing.T) {
	x := fixture(t)

	hits, err := x.Search(context.Background(), query.CompileSuggestions("linen sh", 5))
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "4", hits[0].ID)
	assert.JSONEq(t, `{"name_suggest": "Linen shirt"}`, string(hits[0].Source))

	hits, err = x.Search(context.Background(), query.CompileSuggestions("", 2))
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestSearch_Malformed(t *testing.T) {
	x := fixture(t)

	_, err := x.Search(context.Background(), query.Descriptor{
		Query: map[string]any{"bogus": map[string]any{}},
		Size:  1,
	})
	assert.ErrorIs(t, err, model.ErrInvariantViolation)
}

func TestSearch_RecordsAndFails(t *testing.T) {
	x := fixture(t)
	boom := errors.New("boom")
	x.FailWith(boom)

	_, err := x.Search(context.Background(), query.ArticleLookup("AB-1234"))
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, x.Upsert(context.Background(), index.Document{ID: "9"}), boom)
	require.Len(t, x.Executed(), 1)
	assert.Equal(t, query.KindArticle, x.Executed()[0].Kind)

	x.FailWith(nil)
	_, err = x.Search(context.Background(), query.ArticleLookup("AB-1234"))
	assert.NoError(t, err)
}

func TestSearch_Canceled(t *testing.T) {
	x := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := x.Search(ctx, query.ArticleLookup("AB-1234"))
	assert.ErrorIs(t, err, model.ErrCanceled)
}

func TestUpsert_Replaces(t *testing.T) {
	x := fixture(t)

	require.NoError(t, x.Upsert(context.Background(), index.Document{ID: "2", Name: "Cashmere coat", Category: "coat"}))
	assert.Equal(t, 4, x.Len())
	assert.Equal(t, "Cashmere coat", x.Documents()["2"].Name)

	assert.ErrorIs(t, x.Upsert(context.Background(), index.Document{}), model.ErrInvariantViolation)
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("платье", "платье"))
	assert.Equal(t, 1, levenshtein("linen", "linnen"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
	assert.Equal(t, 2, autoFuzziness("платье"))
	assert.Equal(t, 0, autoFuzziness("ab"))
}
