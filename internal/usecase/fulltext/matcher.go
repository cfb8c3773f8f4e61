package fulltext

import (
	"fmt"
	"regexp"
)

// termMatcher locates one search term in text. All matching goes through a
// compiled regexp so substring, whole-word, and case-insensitive variants
// share one code path and one definition of an occurrence.
type termMatcher struct {
	term string
	re   *regexp.Regexp
}

// newTermMatcher compiles a matcher for the literal term.
func newTermMatcher(term string, caseSensitive, wholeWord bool) (termMatcher, error) {
	pattern := regexp.QuoteMeta(term)
	if wholeWord {
		pattern = `\b` + pattern + `\b`
	}
	if !caseSensitive {
		pattern = `(?i)` + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return termMatcher{}, fmt.Errorf("compile term %q: %w", term, err)
	}
	return termMatcher{term: term, re: re}, nil
}

func compileTerms(terms []string, caseSensitive, wholeWord bool) ([]termMatcher, error) {
	out := make([]termMatcher, 0, len(terms))
	for _, t := range terms {
		m, err := newTermMatcher(t, caseSensitive, wholeWord)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (m termMatcher) matches(text string) bool {
	return text != "" && m.re.MatchString(text)
}

func (m termMatcher) count(text string) int {
	if text == "" {
		return 0
	}
	return len(m.re.FindAllStringIndex(text, -1))
}

// occurrences returns the [start, end) byte ranges of every match.
func (m termMatcher) occurrences(text string) [][]int {
	if text == "" {
		return nil
	}
	return m.re.FindAllStringIndex(text, -1)
}

// highlight wraps every occurrence in <mark> tags.
func (m termMatcher) highlight(text string) string {
	return m.re.ReplaceAllString(text, "<mark>$0</mark>")
}
