// Package request holds validated query parameters for the structured and
// full-text search operations.
package request

import (
	"fmt"
	"strings"

	"github.com/corvusec/newsdex/internal/domain"
	"github.com/corvusec/newsdex/internal/domain/search/dates"
	"github.com/corvusec/newsdex/internal/domain/search/filter"
	"github.com/corvusec/newsdex/internal/domain/search/mode"
)

// Result limits. The ceiling applies regardless of the caller-requested
// value.
const (
	DefaultLimit = 30
	MaxLimit     = 1000
)

// Query is a validated structured-search request.
type Query struct {
	filters     filter.Set
	since       string
	limit       int
	summaryMode bool
}

// NewQuery validates and normalizes structured-search parameters.
// since must be YYYY-MM-DD when present; limit defaults to 30 and is
// clamped to 1000.
func NewQuery(filters filter.Set, since string, limit int, summaryMode bool) (Query, error) {
	if since != "" && !dates.SinceFormat.MatchString(since) {
		return Query{}, fmt.Errorf("%w: %q (want YYYY-MM-DD)", domain.ErrInvalidSince, since)
	}
	return Query{
		filters:     filters,
		since:       since,
		limit:       clampLimit(limit),
		summaryMode: summaryMode,
	}, nil
}

// Filters returns the structured field constraints.
func (q *Query) Filters() filter.Set { return q.filters }

// Since returns the inclusive lower date bound, or "".
func (q *Query) Since() string { return q.since }

// Limit returns the clamped result limit.
func (q *Query) Limit() int { return q.limit }

// SummaryMode reports whether results are projected to summaries.
func (q *Query) SummaryMode() bool { return q.summaryMode }

// Text is a validated full-text search request.
type Text struct {
	query         string
	searchMode    mode.Mode
	filters       filter.Set
	since         string
	caseSensitive bool
	wholeWord     bool
	limit         int
	highlight     bool
}

// NewText validates and normalizes full-text parameters. Defaults:
// mode=exact, limit=30, highlight up to the caller. An empty query is
// legal and matches nothing.
func NewText(
	query string,
	m mode.Mode,
	filters filter.Set,
	since string,
	caseSensitive, wholeWord bool,
	limit int,
	highlight bool,
) (Text, error) {
	if m == "" {
		m = mode.Exact
	}
	if !m.IsValid() {
		return Text{}, fmt.Errorf("invalid search mode: %q", m)
	}
	if since != "" && !dates.SinceFormat.MatchString(since) {
		return Text{}, fmt.Errorf("%w: %q (want YYYY-MM-DD)", domain.ErrInvalidSince, since)
	}
	return Text{
		query:         strings.TrimSpace(query),
		searchMode:    m,
		filters:       filters,
		since:         since,
		caseSensitive: caseSensitive,
		wholeWord:     wholeWord,
		limit:         clampLimit(limit),
		highlight:     highlight,
	}, nil
}

// Query returns the trimmed query text.
func (t *Text) Query() string { return t.query }

// Mode returns the match strategy.
func (t *Text) Mode() mode.Mode { return t.searchMode }

// Filters returns the structured field constraints applied before text
// matching.
func (t *Text) Filters() filter.Set { return t.filters }

// Since returns the inclusive lower date bound, or "".
func (t *Text) Since() string { return t.since }

// CaseSensitive reports whether matching preserves case.
func (t *Text) CaseSensitive() bool { return t.caseSensitive }

// WholeWord reports whether terms match only on word boundaries.
func (t *Text) WholeWord() bool { return t.wholeWord }

// Limit returns the clamped result limit.
func (t *Text) Limit() int { return t.limit }

// Highlight reports whether snippets wrap matches in markers.
func (t *Text) Highlight() bool { return t.highlight }

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
