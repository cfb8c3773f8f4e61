package fulltext

import (
	"sort"
	"unicode/utf8"
)

const (
	snippetWindow = 200
	ellipsis      = "..."
	windowJoiner  = " ... "
)

// makeSnippet cuts a context window around the matched terms. When the
// first and last occurrence fit inside one window the snippet is a single
// span covering both; otherwise two half windows around the first and last
// occurrence are joined. Highlighting wraps matches in <mark> tags.
func makeSnippet(text string, matchers []termMatcher, highlight bool) string {
	var occ [][]int
	for _, m := range matchers {
		occ = append(occ, m.occurrences(text)...)
	}
	if len(occ) == 0 {
		return ""
	}
	sort.Slice(occ, func(i, j int) bool { return occ[i][0] < occ[j][0] })

	first, last := occ[0], occ[len(occ)-1]

	var snippet string
	if last[1]-first[0] <= snippetWindow {
		pad := (snippetWindow - (last[1] - first[0])) / 2
		snippet = cutWindow(text, first[0]-pad, last[1]+pad)
	} else {
		half := snippetWindow / 2
		head := cutWindow(text, first[0]-half/2, first[1]+half/2)
		tail := cutWindow(text, last[0]-half/2, last[1]+half/2)
		snippet = head + windowJoiner + tail
	}

	if highlight {
		for _, m := range matchers {
			snippet = m.highlight(snippet)
		}
	}
	return snippet
}

// cutWindow extracts text[start:end] clamped to the text bounds and
// aligned to rune boundaries, adding ellipses where the cut is interior.
func cutWindow(text string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	out := text[start:end]
	if start > 0 {
		out = ellipsis + out
	}
	if end < len(text) {
		out += ellipsis
	}
	return out
}
