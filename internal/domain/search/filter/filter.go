// Package filter implements structured field filtering: a candidate list
// per field, OR within a field, AND across fields.
package filter

import (
	"sort"
	"strings"

	"github.com/corvusec/newsdex/internal/domain/article"
)

// freeTextFields match by substring containment instead of equality; they
// hold prose, not enumerated values.
var freeTextFields = map[string]struct{}{
	article.FieldSummary: {},
	article.FieldTitle:   {},
	article.FieldBody:    {},
}

// Set maps field names to non-empty candidate value lists. A zero Set
// matches every article.
type Set struct {
	fields map[string][]string
}

// New creates a Set from raw field→candidates pairs. Fields with no
// candidates are dropped: they constrain nothing.
func New(fields map[string][]string) Set {
	if len(fields) == 0 {
		return Set{}
	}
	m := make(map[string][]string, len(fields))
	for name, candidates := range fields {
		if len(candidates) == 0 {
			continue
		}
		m[name] = append([]string(nil), candidates...)
	}
	if len(m) == 0 {
		return Set{}
	}
	return Set{fields: m}
}

// IsEmpty reports whether the Set constrains nothing.
func (s Set) IsEmpty() bool { return len(s.fields) == 0 }

// FieldNames returns the constrained field names in lexicographic order.
func (s Set) FieldNames() []string {
	names := make([]string, 0, len(s.fields))
	for name := range s.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Candidates returns the candidate list for a field.
func (s Set) Candidates(name string) []string { return s.fields[name] }

// Fields returns the raw field→candidates mapping for echoing back to
// callers. The result must be treated as read-only.
func (s Set) Fields() map[string][]string { return s.fields }

// Matches reports whether an article satisfies every field constraint.
// A field no article carries never matches, so a misspelled field name
// yields an empty result set rather than an error.
func (s Set) Matches(a article.Article) bool {
	for name, candidates := range s.fields {
		if !matchField(a, name, candidates) {
			return false
		}
	}
	return true
}

func matchField(a article.Article, name string, candidates []string) bool {
	switch name {
	case article.FieldPlatforms:
		return matchPlatforms(a, candidates)
	case article.FieldProducts:
		return matchProducts(a, candidates)
	}

	values := a.Strings(name)
	if len(values) == 0 {
		return false
	}

	if _, ok := freeTextFields[name]; ok {
		text := strings.ToLower(strings.Join(values, " "))
		for _, c := range candidates {
			c = strings.TrimSpace(c)
			if c != "" && strings.Contains(text, strings.ToLower(c)) {
				return true
			}
		}
		return false
	}

	for _, c := range candidates {
		if strings.TrimSpace(c) == "" {
			continue
		}
		for _, v := range values {
			if v == c {
				return true
			}
		}
	}
	return false
}

// matchPlatforms does case-insensitive membership: platform names vary in
// casing across sources but are otherwise exact tokens.
func matchPlatforms(a article.Article, candidates []string) bool {
	values := a.Strings(article.FieldPlatforms)
	if len(values) == 0 {
		return false
	}
	lowered := make([]string, len(values))
	for i, v := range values {
		lowered[i] = strings.ToLower(v)
	}
	for _, c := range candidates {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		for _, v := range lowered {
			if v == c {
				return true
			}
		}
	}
	return false
}

// matchProducts does case-insensitive substring containment over the joined
// product list: product mentions are free-form ("SophosXGfirewall").
func matchProducts(a article.Article, candidates []string) bool {
	text := strings.ToLower(a.JoinedText(article.FieldProducts))
	if text == "" {
		return false
	}
	for _, c := range candidates {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" && strings.Contains(text, c) {
			return true
		}
	}
	return false
}
