// Package fulltext implements relevance-ranked free-text search across
// weighted article zones, with contextual snippets.
package fulltext

import (
	"context"
	"fmt"
	"sort"

	"github.com/corvusec/newsdex/internal/domain/article"
	"github.com/corvusec/newsdex/internal/domain/search/dates"
	"github.com/corvusec/newsdex/internal/domain/search/mode"
	"github.com/corvusec/newsdex/internal/domain/search/request"
	"github.com/corvusec/newsdex/internal/domain/search/result"
)

// Response carries ranked full-text results. TotalResults counts hits
// before the limit cut.
type Response struct {
	TotalResults  int                 `json:"total_results"`
	Query         string              `json:"query"`
	SearchMode    mode.Mode           `json:"search_mode"`
	Filters       map[string][]string `json:"filters,omitempty"`
	SinceDate     string              `json:"since_date,omitempty"`
	CaseSensitive bool                `json:"case_sensitive"`
	WholeWord     bool                `json:"whole_word"`
	Results       []result.Hit        `json:"results"`
}

// Service runs full-text searches.
type Service struct {
	snaps  SnapshotProvider
	policy dates.Policy
}

// New creates a full-text search service.
func New(snaps SnapshotProvider, policy dates.Policy) *Service {
	return &Service{snaps: snaps, policy: policy}
}

// Search scores every article that passes the date gate and field filters
// against the query terms, ranks by descending relevance, and cuts to the
// limit. An empty query matches nothing.
func (s *Service) Search(ctx context.Context, t request.Text) (*Response, error) {
	snap, err := s.snaps.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("full-text search: %w", err)
	}

	resp := &Response{
		Query:         t.Query(),
		SearchMode:    t.Mode(),
		Filters:       t.Filters().Fields(),
		SinceDate:     t.Since(),
		CaseSensitive: t.CaseSensitive(),
		WholeWord:     t.WholeWord(),
		Results:       []result.Hit{},
	}

	terms := t.Mode().Terms(t.Query())
	if len(terms) == 0 {
		return resp, nil
	}
	matchers, err := compileTerms(terms, t.CaseSensitive(), t.WholeWord())
	if err != nil {
		return nil, fmt.Errorf("full-text search: %w", err)
	}

	since := t.Since()
	filters := t.Filters()

	var hits []result.Hit
	for _, a := range snap.Articles() {
		if since != "" {
			d, ok := s.policy.Resolve(a)
			if !ok || d < since {
				continue
			}
		}
		if !filters.Matches(a) {
			continue
		}
		if hit, ok := s.scoreArticle(a, matchers, t); ok {
			hits = append(hits, hit)
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].RelevanceScore > hits[j].RelevanceScore
	})

	resp.TotalResults = len(hits)
	if len(hits) > t.Limit() {
		hits = hits[:t.Limit()]
	}
	resp.Results = hits
	return resp, nil
}

// scoreArticle scores one article: each term matching a zone contributes
// that zone's weight. In all_words mode every term must appear somewhere
// in the article or it is skipped entirely. Zero-score articles never
// become hits.
func (s *Service) scoreArticle(a article.Article, matchers []termMatcher, t request.Text) (result.Hit, bool) {
	texts := make(map[string]string, len(zones))
	for _, z := range zones {
		texts[z.name] = z.text(a)
	}

	if t.Mode() == mode.AllWords {
		union := texts[ZoneTitle] + "\n" + texts[ZoneSumm] + "\n" + texts[ZoneBody] + "\n" + texts[ZoneOther]
		for _, m := range matchers {
			if !m.matches(union) {
				return result.Hit{}, false
			}
		}
	}

	score := 0
	matchCount := 0
	var matchedIn []string
	for _, z := range zones {
		text := texts[z.name]
		zoneHit := false
		for _, m := range matchers {
			if !m.matches(text) {
				continue
			}
			score += z.weight
			matchCount += m.count(text)
			zoneHit = true
		}
		if zoneHit {
			matchedIn = append(matchedIn, z.name)
		}
	}
	if score == 0 {
		return result.Hit{}, false
	}

	snippet := ""
	for _, name := range snippetZones {
		if cut := makeSnippet(texts[name], matchers, t.Highlight()); cut != "" {
			snippet = cut
			break
		}
	}

	return result.Hit{
		Summary:        result.Summarize(a),
		RelevanceScore: score,
		MatchCount:     matchCount,
		MatchedIn:      matchedIn,
		Snippet:        snippet,
	}, true
}
