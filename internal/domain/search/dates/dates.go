// Package dates implements date resolution for filtering and ordering.
// Article dates are compared as strings: the corpus uses YYYY-MM-DD
// prefixes, so lexicographic order is chronological order.
package dates

import (
	"regexp"
	"strings"

	"github.com/corvusec/newsdex/internal/domain/article"
)

// SinceFormat is the accepted since_date shape.
var SinceFormat = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseablePrefix matches dates usable for range reporting.
var ParseablePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// missingSortKey sorts undated articles after every real date.
const missingSortKey = "0000-00-00"

// Policy rejects known-corrupt date values. Certain ingested records carry
// a literal placeholder or non-ASCII digit glyphs from bad OCR; those must
// be excluded from date filtering, not treated as epoch.
type Policy struct {
	badValues     map[string]struct{}
	badSubstrings []string
}

// NewPolicy creates a Policy from denylisted literal values and substrings.
func NewPolicy(values, substrings []string) Policy {
	bad := make(map[string]struct{}, len(values))
	for _, v := range values {
		bad[v] = struct{}{}
	}
	return Policy{badValues: bad, badSubstrings: substrings}
}

// Resolve returns the article's date truncated to its date portion, or
// ok=false when the date is missing or denylisted. Filtering excludes on
// ambiguity: an article that cannot be dated never passes a since gate.
func (p Policy) Resolve(a article.Article) (string, bool) {
	raw := a.Date()
	if raw == "" {
		return "", false
	}
	if _, denied := p.badValues[raw]; denied {
		return "", false
	}
	for _, sub := range p.badSubstrings {
		if sub != "" && strings.Contains(raw, sub) {
			return "", false
		}
	}
	return DatePart(raw), true
}

// DatePart truncates a raw date to its date portion (split on first space).
func DatePart(raw string) string {
	if i := strings.IndexByte(raw, ' '); i >= 0 {
		return raw[:i]
	}
	return raw
}

// SortKey returns the descending-sort key for an article. Undated articles
// sort last. The denylist does not apply here: corrupt dates only matter
// when they would satisfy a range gate.
func SortKey(a article.Article) string {
	raw := a.Date()
	if raw == "" {
		return missingSortKey
	}
	return DatePart(raw)
}
