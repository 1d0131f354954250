package query

import "regexp"

// articlePattern matches SKU-like codes: letters, digits and hyphens with at
// least one digit, e.g. "AB-1234".
var articlePattern = regexp.MustCompile(`^[A-Za-z0-9-]*[0-9][A-Za-z0-9-]*$`)

// IsArticle reports whether q looks like an article code.
func IsArticle(q string) bool {
	return articlePattern.MatchString(q)
}
