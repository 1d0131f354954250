package query

// Field boosts for free-text matching. Name and category rank highest.
var textFields = []string{"name^3", "category^3", "color_name^2", "brand^2", "description^1"}

// Suggestion subfields of the search_as_you_type field.
var suggestFields = []string{"name_suggest", "name_suggest._2gram", "name_suggest._3gram"}

// SuggestField is the field suggestion hits carry in their source.
const SuggestField = "name_suggest"

// articleProbeSize is enough hits to tell "exactly one" from "more than one".
const articleProbeSize = 2

// Plan is the compiled form of a search request.
type Plan struct {
	// Article, when set, is tried first. If it yields exactly one hit that hit
	// is the whole result and Main is not executed.
	Article *Descriptor

	Main Descriptor
}

// Compile builds the plan for c. It does not validate c.
func Compile(c Criteria) Plan {
	var plan Plan
	text := c.text()

	if text != "" && IsArticle(text) {
		article := ArticleLookup(text)
		plan.Article = &article
	}

	filters := compileFilters(c)

	var q map[string]any
	kind := KindRanked
	switch {
	case text == "" && len(filters) == 0:
		q = randomScore()
		kind = KindRandom
	case text == "":
		q = map[string]any{"bool": map[string]any{"filter": filters}}
	default:
		b := map[string]any{"must": []any{multiMatch(text)}}
		if len(filters) > 0 {
			b["filter"] = filters
		}
		q = map[string]any{"bool": b}
	}

	plan.Main = Descriptor{
		Kind:   kind,
		Query:  q,
		Source: false,
		From:   c.Offset,
		Size:   c.Limit,
	}
	return plan
}

// ArticleLookup builds an exact-match lookup on the article field.
func ArticleLookup(article string) Descriptor {
	return Descriptor{
		Kind:   KindArticle,
		Query:  map[string]any{"term": map[string]any{"article": article}},
		Source: false,
		From:   0,
		Size:   articleProbeSize,
	}
}

// CompileSuggestions builds a prefix-completion query over the suggestion
// field, or a random sample when text is empty. limit is not validated here.
func CompileSuggestions(text string, limit int) Descriptor {
	d := Descriptor{
		Kind:   KindSuggest,
		Source: []string{SuggestField},
		From:   0,
		Size:   limit,
	}
	if text == "" {
		d.Kind = KindRandom
		d.Query = randomScore()
		return d
	}
	d.Query = map[string]any{
		"multi_match": map[string]any{
			"query":  text,
			"type":   "bool_prefix",
			"fields": suggestFields,
		},
	}
	return d
}

func multiMatch(text string) map[string]any {
	return map[string]any{
		"multi_match": map[string]any{
			"query":     text,
			"fields":    textFields,
			"fuzziness": "AUTO",
		},
	}
}

func compileFilters(c Criteria) []any {
	var filters []any
	for _, f := range []struct {
		field  string
		values []string
	}{
		{"category", c.Categories},
		{"color_name", c.Colors},
		{"brand", c.Brands},
		{"sizes", c.Sizes},
	} {
		if len(f.values) > 0 {
			filters = append(filters, map[string]any{"terms": map[string]any{f.field: f.values}})
		}
	}

	if c.MinPrice != nil || c.MaxPrice != nil {
		bounds := map[string]any{}
		if c.MinPrice != nil {
			bounds["gte"] = *c.MinPrice
		}
		if c.MaxPrice != nil {
			bounds["lte"] = *c.MaxPrice
		}
		filters = append(filters, map[string]any{"range": map[string]any{"price": bounds}})
	}
	return filters
}

func randomScore() map[string]any {
	return map[string]any{
		"function_score": map[string]any{
			"query":     map[string]any{"match_all": map[string]any{}},
			"functions": []any{map[string]any{"random_score": map[string]any{}}},
		},
	}
}
