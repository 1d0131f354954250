package memindex

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/KruASe76/look/internal/search/index"
	"github.com/KruASe76/look/pkg/model"
)

// evaluator reports whether a document matches and its score.
type evaluator func(doc index.Document) (bool, float64)

func malformed(format string, args ...any) error {
	return fmt.Errorf("memindex: %w: %s", model.ErrInvariantViolation, fmt.Sprintf(format, args...))
}

func (x *Index) compile(clause map[string]any) (evaluator, error) {
	if len(clause) != 1 {
		return nil, malformed("clause must have exactly one key, got %d", len(clause))
	}
	for name, body := range clause {
		switch name {
		case "match_all":
			return func(index.Document) (bool, float64) { return true, 1 }, nil
		case "term":
			return compileTerm(body)
		case "terms":
			return compileTerms(body)
		case "range":
			return compileRange(body)
		case "bool":
			return x.compileBool(body)
		case "multi_match":
			return compileMultiMatch(body)
		case "function_score":
			return x.compileFunctionScore(body)
		default:
			return nil, malformed("unknown query [%s]", name)
		}
	}
	return nil, nil
}

func singleField(kind string, body any) (string, any, error) {
	m, ok := body.(map[string]any)
	if !ok || len(m) != 1 {
		return "", nil, malformed("[%s] needs exactly one field", kind)
	}
	for f, v := range m {
		return f, v, nil
	}
	return "", nil, nil
}

func compileTerm(body any) (evaluator, error) {
	field, v, err := singleField("term", body)
	if err != nil {
		return nil, err
	}
	want, ok := v.(string)
	if !ok {
		return nil, malformed("[term] value for %s must be a string", field)
	}
	return func(doc index.Document) (bool, float64) {
		return slices.Contains(keywordValues(doc, field), want), 1
	}, nil
}

func compileTerms(body any) (evaluator, error) {
	field, v, err := singleField("terms", body)
	if err != nil {
		return nil, err
	}
	list, ok := v.([]any)
	if !ok {
		return nil, malformed("[terms] value for %s must be an array", field)
	}
	want := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, malformed("[terms] values for %s must be strings", field)
		}
		want = append(want, s)
	}
	return func(doc index.Document) (bool, float64) {
		for _, have := range keywordValues(doc, field) {
			if slices.Contains(want, have) {
				return true, 1
			}
		}
		return false, 0
	}, nil
}

func compileRange(body any) (evaluator, error) {
	field, v, err := singleField("range", body)
	if err != nil {
		return nil, err
	}
	if field != "price" {
		return nil, malformed("[range] unsupported field %s", field)
	}
	bounds, ok := v.(map[string]any)
	if !ok {
		return nil, malformed("[range] bounds must be an object")
	}
	var checks []func(float64) bool
	for op, raw := range bounds {
		limit, ok := raw.(float64)
		if !ok {
			return nil, malformed("[range] bound %s must be a number", op)
		}
		switch op {
		case "gte":
			checks = append(checks, func(p float64) bool { return p >= limit })
		case "lte":
			checks = append(checks, func(p float64) bool { return p <= limit })
		case "gt":
			checks = append(checks, func(p float64) bool { return p > limit })
		case "lt":
			checks = append(checks, func(p float64) bool { return p < limit })
		default:
			return nil, malformed("[range] unknown bound %s", op)
		}
	}
	return func(doc index.Document) (bool, float64) {
		for _, check := range checks {
			if !check(doc.Price) {
				return false, 0
			}
		}
		return true, 1
	}, nil
}

func (x *Index) compileBool(body any) (evaluator, error) {
	m, ok := body.(map[string]any)
	if !ok {
		return nil, malformed("[bool] must be an object")
	}
	var must, filter []evaluator
	for occur, clauses := range m {
		list, ok := clauses.([]any)
		if !ok {
			if single, isMap := clauses.(map[string]any); isMap {
				list = []any{single}
			} else {
				return nil, malformed("[bool] %s must be an array", occur)
			}
		}
		for _, c := range list {
			cm, ok := c.(map[string]any)
			if !ok {
				return nil, malformed("[bool] %s entries must be objects", occur)
			}
			eval, err := x.compile(cm)
			if err != nil {
				return nil, err
			}
			switch occur {
			case "must":
				must = append(must, eval)
			case "filter":
				filter = append(filter, eval)
			default:
				return nil, malformed("[bool] unsupported occurrence %s", occur)
			}
		}
	}
	return func(doc index.Document) (bool, float64) {
		for _, f := range filter {
			if ok, _ := f(doc); !ok {
				return false, 0
			}
		}
		var score float64
		for _, q := range must {
			ok, s := q(doc)
			if !ok {
				return false, 0
			}
			score += s
		}
		return true, score
	}, nil
}

func (x *Index) compileFunctionScore(body any) (evaluator, error) {
	m, ok := body.(map[string]any)
	if !ok {
		return nil, malformed("[function_score] must be an object")
	}
	inner, ok := m["query"].(map[string]any)
	if !ok {
		return nil, malformed("[function_score] needs a query")
	}
	eval, err := x.compile(inner)
	if err != nil {
		return nil, err
	}
	functions, _ := m["functions"].([]any)
	randomized := false
	for _, f := range functions {
		fm, _ := f.(map[string]any)
		if _, ok := fm["random_score"]; ok {
			randomized = true
			continue
		}
		return nil, malformed("[function_score] unsupported function %v", f)
	}
	if !randomized {
		return eval, nil
	}
	return func(doc index.Document) (bool, float64) {
		ok, _ := eval(doc)
		if !ok {
			return false, 0
		}
		return true, x.random()
	}, nil
}

type boostedField struct {
	name  string
	boost float64
}

func compileMultiMatch(body any) (evaluator, error) {
	m, ok := body.(map[string]any)
	if !ok {
		return nil, malformed("[multi_match] must be an object")
	}
	text, ok := m["query"].(string)
	if !ok {
		return nil, malformed("[multi_match] needs a query string")
	}
	rawFields, ok := m["fields"].([]any)
	if !ok || len(rawFields) == 0 {
		return nil, malformed("[multi_match] needs fields")
	}
	fields := make([]boostedField, 0, len(rawFields))
	for _, rf := range rawFields {
		s, ok := rf.(string)
		if !ok {
			return nil, malformed("[multi_match] fields must be strings")
		}
		f, err := parseField(s)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}

	fuzzy := false
	if fz, present := m["fuzziness"]; present {
		if fz != "AUTO" {
			return nil, malformed("[multi_match] unsupported fuzziness %v", fz)
		}
		fuzzy = true
	}

	var match func(field string, doc index.Document) float64
	switch m["type"] {
	case nil, "best_fields":
		terms := tokenize(text)
		match = func(field string, doc index.Document) float64 {
			if isKeyword(field) {
				// Keyword fields see the whole query as one term.
				return matchKeyword(text, keywordValues(doc, field), fuzzy)
			}
			return matchTerms(terms, tokenize(textValue(doc, field)), fuzzy)
		}
	case "bool_prefix":
		terms := tokenize(text)
		match = func(field string, doc index.Document) float64 {
			return matchPrefix(terms, tokenize(textValue(doc, field)))
		}
	default:
		return nil, malformed("[multi_match] unsupported type %v", m["type"])
	}

	return func(doc index.Document) (bool, float64) {
		var best float64
		for _, f := range fields {
			best = max(best, f.boost*match(f.name, doc))
		}
		return best > 0, best
	}, nil
}

func parseField(s string) (boostedField, error) {
	name, boost, found := strings.Cut(s, "^")
	if !found {
		return boostedField{name: name, boost: 1}, nil
	}
	var b float64
	if _, err := fmt.Sscanf(boost, "%g", &b); err != nil || b <= 0 {
		return boostedField{}, malformed("[multi_match] bad boost in %s", s)
	}
	return boostedField{name: name, boost: b}, nil
}

// matchTerms scores an OR of query terms: 1 per exact token hit, 0.5 per
// fuzzy hit.
func matchTerms(terms, tokens []string, fuzzy bool) float64 {
	var score float64
	for _, t := range terms {
		score += termScore(t, tokens, fuzzy)
	}
	return score
}

func termScore(term string, tokens []string, fuzzy bool) float64 {
	if slices.Contains(tokens, term) {
		return 1
	}
	if !fuzzy {
		return 0
	}
	allowed := autoFuzziness(term)
	if allowed == 0 {
		return 0
	}
	for _, tok := range tokens {
		if levenshtein(term, tok) <= allowed {
			return 0.5
		}
	}
	return 0
}

func matchKeyword(text string, values []string, fuzzy bool) float64 {
	return termScore(text, values, fuzzy)
}

// matchPrefix treats every term but the last as a whole term and the last as
// a prefix.
func matchPrefix(terms, tokens []string) float64 {
	if len(terms) == 0 {
		return 0
	}
	last := terms[len(terms)-1]
	score := matchTerms(terms[:len(terms)-1], tokens, false)
	for _, tok := range tokens {
		if strings.HasPrefix(tok, last) {
			score++
			break
		}
	}
	return score
}

// autoFuzziness mirrors AUTO: exact below 3 runes, one edit up to 5, two beyond.
func autoFuzziness(term string) int {
	switch n := len([]rune(term)); {
	case n < 3:
		return 0
	case n <= 5:
		return 1
	default:
		return 2
	}
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func isKeyword(field string) bool {
	switch field {
	case "article", "brand", "category", "color_name", "sizes", "name.raw":
		return true
	}
	return false
}

func keywordValues(doc index.Document, field string) []string {
	switch field {
	case "article":
		return []string{doc.Article}
	case "brand":
		return []string{doc.Brand}
	case "category":
		return []string{doc.Category}
	case "color_name":
		return []string{doc.ColorName}
	case "sizes":
		return doc.Sizes
	case "name.raw":
		return []string{doc.Name}
	}
	return nil
}

// textValue resolves analyzed fields. Subfields of name_suggest share its text.
func textValue(doc index.Document, field string) string {
	base, _, _ := strings.Cut(field, ".")
	switch base {
	case "name":
		return doc.Name
	case "name_suggest":
		return doc.NameSuggest
	case "description":
		return doc.Description
	}
	return strings.Join(keywordValues(doc, field), " ")
}
