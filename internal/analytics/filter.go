package analytics

import "strings"

// MatchesFilter reports whether a parameter title passes the filter query.
// The query splits on whitespace into three term classes: "-term" must be
// absent, "+term" joins an OR group of which at least one must match, and
// any other term must be present. Matching is case-insensitive substring
// containment. An empty or all-whitespace query matches everything.
func MatchesFilter(title, query string) bool {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return true
	}
	lower := strings.ToLower(title)

	hasAlternatives := false
	anyAlternative := false
	for _, term := range terms {
		switch {
		case strings.HasPrefix(term, "-"):
			if strings.Contains(lower, term[1:]) {
				return false
			}
		case strings.HasPrefix(term, "+"):
			hasAlternatives = true
			if strings.Contains(lower, term[1:]) {
				anyAlternative = true
			}
		default:
			if !strings.Contains(lower, term) {
				return false
			}
		}
	}
	if hasAlternatives && !anyAlternative {
		return false
	}
	return true
}
