// Package query implements structured article search and single-article
// lookup over the current snapshot.
package query

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/corvusec/newsdex/internal/domain"
	"github.com/corvusec/newsdex/internal/domain/article"
	"github.com/corvusec/newsdex/internal/domain/search/dates"
	"github.com/corvusec/newsdex/internal/domain/search/request"
	"github.com/corvusec/newsdex/internal/domain/search/result"
)

// Response carries structured-search results. Exactly one of Articles and
// Summaries is populated, per the request's summary mode.
type Response struct {
	TotalResults int               `json:"total_results"`
	SummaryMode  bool              `json:"summary_mode"`
	Articles     []article.Article `json:"articles,omitempty"`
	Summaries    []result.Summary  `json:"summaries,omitempty"`
}

// Service runs structured searches and lookups.
type Service struct {
	snaps  SnapshotProvider
	policy dates.Policy
}

// New creates a query service.
func New(snaps SnapshotProvider, policy dates.Policy) *Service {
	return &Service{snaps: snaps, policy: policy}
}

// Search applies the date gate, then the field filters, sorts by date
// descending with undated articles last, and truncates to the limit.
// TotalResults counts matches before truncation.
func (s *Service) Search(ctx context.Context, q request.Query) (*Response, error) {
	snap, err := s.snaps.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}

	since := q.Since()
	filters := q.Filters()

	var matched []article.Article
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
		matched = append(matched, a)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return dates.SortKey(matched[i]) > dates.SortKey(matched[j])
	})

	total := len(matched)
	if len(matched) > q.Limit() {
		matched = matched[:q.Limit()]
	}

	resp := &Response{TotalResults: total, SummaryMode: q.SummaryMode()}
	if q.SummaryMode() {
		resp.Summaries = make([]result.Summary, len(matched))
		for i, a := range matched {
			resp.Summaries[i] = result.Summarize(a)
		}
	} else {
		resp.Articles = matched
	}
	return resp, nil
}

// Details returns the single article identified by id. The id is matched
// against the same fallback fields identity resolution uses: exact content
// locator, URL, or title, then locator or URL containment. Misses yield
// domain.ErrArticleNotFound.
func (s *Service) Details(ctx context.Context, id string) (article.Article, error) {
	if strings.TrimSpace(id) == "" {
		return article.Article{}, fmt.Errorf("%w: empty id", domain.ErrArticleNotFound)
	}

	snap, err := s.snaps.Snapshot(ctx)
	if err != nil {
		return article.Article{}, fmt.Errorf("article details: %w", err)
	}

	for _, a := range snap.Articles() {
		locator := a.Scalar(article.FieldLocator)
		url := a.Scalar(article.FieldURL)
		switch {
		case locator != "" && locator == id,
			url != "" && url == id,
			a.Scalar(article.FieldTitle) == id,
			locator != "" && strings.Contains(locator, id),
			url != "" && strings.Contains(url, id):
			return a, nil
		}
	}
	return article.Article{}, fmt.Errorf("%w: %q", domain.ErrArticleNotFound, id)
}
