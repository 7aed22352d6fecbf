package analytics

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Polarity says whether higher raw values are semantically better or worse
// for a parameter. It is a stored attribute of the parameter, derived from
// the title marker once at create/rename time, never re-derived per render.
type Polarity string

const (
	// PolarityNegative: the parameter is framed as "bad things experienced",
	// lower is better. The default.
	PolarityNegative Polarity = "negative"
	// PolarityPositive: higher is better; the percent color scale inverts.
	PolarityPositive Polarity = "positive"
)

// positiveMarker is the case-insensitive title substring that flags a
// positive-framed parameter.
const positiveMarker = "pos"

// Parameter is a named, independently rated daily metric.
type Parameter struct {
	Key          string   `json:"key"`
	Title        string   `json:"title"`
	Polarity     Polarity `json:"polarity"`
	DefaultValue *int     `json:"default_value,omitempty"`
	Description  string   `json:"description,omitempty"`
	Active       bool     `json:"active"`
	// Position is the original registry order; it is what the unsorted
	// dashboard restores.
	Position int `json:"position"`
}

// DerivePolarity reads the polarity marker out of a title.
func DerivePolarity(title string) Polarity {
	if strings.Contains(strings.ToLower(title), positiveMarker) {
		return PolarityPositive
	}
	return PolarityNegative
}

var defaultHintRe = regexp.MustCompile(`(?i)def\s*(\d+)`)

// ParseDefaultHint extracts the "def N" default-value hint a title may
// carry (e.g. "Headache def 0").
func ParseDefaultHint(title string) (int, bool) {
	m := defaultHintRe.FindStringSubmatch(title)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return v, true
}

// SlugifyKey turns a display title into a stable parameter key:
// lowercase, runs of non-alphanumerics collapsed to single underscores.
// Returns "" when the title holds nothing usable.
func SlugifyKey(title string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}
