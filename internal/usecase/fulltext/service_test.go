package fulltext

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/corvusec/newsdex/internal/domain"
	"github.com/corvusec/newsdex/internal/domain/article"
	"github.com/corvusec/newsdex/internal/domain/search/dates"
	"github.com/corvusec/newsdex/internal/domain/search/filter"
	"github.com/corvusec/newsdex/internal/domain/search/mode"
	"github.com/corvusec/newsdex/internal/domain/search/request"
	"github.com/corvusec/newsdex/internal/domain/snapshot"
)

// --- Mocks ---

type mockSnaps struct {
	snap *snapshot.Snapshot
	err  error
}

func (m *mockSnaps) Snapshot(_ context.Context) (*snapshot.Snapshot, error) {
	return m.snap, m.err
}

func fixtureSnapshot() *snapshot.Snapshot {
	articles := []article.Article{
		article.FromMap(map[string]any{
			"s3_path_html":             "articles/2024/lockbit-hospital.html",
			"title":                    "LockBit Ransomware Hits Hospital Chain",
			"summary":                  "The LockBit group deployed ransomware across hospital systems.",
			"article_text_md_original": "Incident responders confirmed the ransomware strain as LockBit 3.0.",
			"threat_actor_name":        []any{"LockBit"},
			"date_original":            "2024-12-01",
		}),
		article.FromMap(map[string]any{
			"s3_path_html":             "articles/2024/phishing-wave.html",
			"title":                    "Phishing Wave Targets Cloud Admins",
			"summary":                  "Attackers sent credential phishing emails to administrators.",
			"article_text_md_original": "The campaign used lookalike login pages. No ransomware was involved.",
			"date_original":            "2024-11-20",
		}),
		article.FromMap(map[string]any{
			"s3_path_html":  "articles/2024/quiet-patch.html",
			"title":         "Quiet Patch Tuesday",
			"summary":       "A routine update cycle with low-severity fixes.",
			"date_original": "2024-11-10",
		}),
	}
	return snapshot.New(articles, "", "", 0)
}

func newService(snap *snapshot.Snapshot) *Service {
	return New(&mockSnaps{snap: snap}, dates.NewPolicy(nil, nil))
}

func mustText(t *testing.T, query string, m mode.Mode, opts ...func(*textOpts)) request.Text {
	t.Helper()
	o := textOpts{limit: 0, highlight: true}
	for _, opt := range opts {
		opt(&o)
	}
	txt, err := request.NewText(query, m, filter.New(o.filters), o.since, o.caseSensitive, o.wholeWord, o.limit, o.highlight)
	if err != nil {
		t.Fatalf("request.NewText: %v", err)
	}
	return txt
}

type textOpts struct {
	filters       map[string][]string
	since         string
	caseSensitive bool
	wholeWord     bool
	limit         int
	highlight     bool
}

func withWholeWord() func(*textOpts) { return func(o *textOpts) { o.wholeWord = true } }

func withCaseSensitive() func(*textOpts) { return func(o *textOpts) { o.caseSensitive = true } }

func withSince(s string) func(*textOpts) { return func(o *textOpts) { o.since = s } }

func withLimit(n int) func(*textOpts) { return func(o *textOpts) { o.limit = n } }

func withNoHighlight() func(*textOpts) { return func(o *textOpts) { o.highlight = false } }

// --- Tests ---

func TestSearch_ZoneWeights(t *testing.T) {
	svc := newService(fixtureSnapshot())

	resp, err := svc.Search(context.Background(), mustText(t, "ransomware", mode.Exact))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalResults != 2 {
		t.Fatalf("expected 2 hits, got %d", resp.TotalResults)
	}

	top := resp.Results[0]
	if top.Title != "LockBit Ransomware Hits Hospital Chain" {
		t.Fatalf("unexpected top hit: %q", top.Title)
	}
	// title(10) + summary(5) + body(2) for one term.
	if top.RelevanceScore != 17 {
		t.Errorf("expected score 17, got %d", top.RelevanceScore)
	}
	wantZones := []string{"title", "summary", "article_text"}
	if len(top.MatchedIn) != 3 {
		t.Fatalf("expected 3 matched zones, got %v", top.MatchedIn)
	}
	for i, z := range wantZones {
		if top.MatchedIn[i] != z {
			t.Errorf("matched_in[%d]: expected %q, got %q", i, z, top.MatchedIn[i])
		}
	}

	// Body-only match scores 2 and ranks below.
	if resp.Results[1].RelevanceScore != 2 {
		t.Errorf("expected score 2 for body-only hit, got %d", resp.Results[1].RelevanceScore)
	}
}

func TestSearch_ZeroScoreExcluded(t *testing.T) {
	svc := newService(fixtureSnapshot())

	resp, err := svc.Search(context.Background(), mustText(t, "kubernetes", mode.Exact))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalResults != 0 || len(resp.Results) != 0 {
		t.Errorf("expected no hits, got %d", resp.TotalResults)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc := newService(fixtureSnapshot())

	resp, err := svc.Search(context.Background(), mustText(t, "   ", mode.AnyWord))
	if err != nil {
		t.Fatalf("empty query must not error: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("empty query matches nothing, got %d hits", len(resp.Results))
	}
}

func TestSearch_AnyWord(t *testing.T) {
	svc := newService(fixtureSnapshot())

	resp, err := svc.Search(context.Background(), mustText(t, "ransomware phishing", mode.AnyWord))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalResults != 2 {
		t.Errorf("expected 2 hits for any_word, got %d", resp.TotalResults)
	}
}

func TestSearch_AllWordsGate(t *testing.T) {
	svc := newService(fixtureSnapshot())

	// Both words appear in the LockBit article (across zones), only
	// "ransomware" appears in the phishing article.
	resp, err := svc.Search(context.Background(), mustText(t, "ransomware lockbit", mode.AllWords))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalResults != 1 {
		t.Fatalf("expected 1 hit for all_words, got %d", resp.TotalResults)
	}
	if resp.Results[0].ArticleID != "articles/2024/lockbit-hospital.html" {
		t.Errorf("unexpected hit: %q", resp.Results[0].ArticleID)
	}
}

func TestSearch_ExactPhrase(t *testing.T) {
	svc := newService(fixtureSnapshot())

	// As a phrase this never occurs, although both words do.
	resp, err := svc.Search(context.Background(), mustText(t, "ransomware phishing", mode.Exact))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalResults != 0 {
		t.Errorf("expected no phrase hits, got %d", resp.TotalResults)
	}
}

func TestSearch_CaseSensitive(t *testing.T) {
	svc := newService(fixtureSnapshot())

	resp, err := svc.Search(context.Background(), mustText(t, "lockbit", mode.Exact, withCaseSensitive()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalResults != 0 {
		t.Errorf("lowercase query must not match LockBit case-sensitively, got %d", resp.TotalResults)
	}
}

func TestSearch_WholeWord(t *testing.T) {
	svc := newService(fixtureSnapshot())

	// "ransom" is a substring of "ransomware" but not a whole word.
	resp, err := svc.Search(context.Background(), mustText(t, "ransom", mode.Exact, withWholeWord()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalResults != 0 {
		t.Errorf("whole-word search must not match substrings, got %d", resp.TotalResults)
	}

	resp, err = svc.Search(context.Background(), mustText(t, "ransomware", mode.Exact, withWholeWord()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalResults != 2 {
		t.Errorf("whole word present, expected 2 hits, got %d", resp.TotalResults)
	}
}

func TestSearch_SinceGate(t *testing.T) {
	svc := newService(fixtureSnapshot())

	resp, err := svc.Search(context.Background(), mustText(t, "ransomware", mode.Exact, withSince("2024-11-25")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalResults != 1 {
		t.Errorf("expected only the December article, got %d", resp.TotalResults)
	}
}

func TestSearch_Limit(t *testing.T) {
	svc := newService(fixtureSnapshot())

	resp, err := svc.Search(context.Background(), mustText(t, "ransomware", mode.Exact, withLimit(1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalResults != 2 {
		t.Errorf("total counts before the cut, got %d", resp.TotalResults)
	}
	if len(resp.Results) != 1 {
		t.Errorf("expected 1 returned hit, got %d", len(resp.Results))
	}
}

func TestSearch_SnippetHighlighting(t *testing.T) {
	svc := newService(fixtureSnapshot())

	resp, err := svc.Search(context.Background(), mustText(t, "ransomware", mode.Exact))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	top := resp.Results[0]
	if !strings.Contains(top.Snippet, "<mark>ransomware</mark>") {
		t.Errorf("snippet not highlighted: %q", top.Snippet)
	}
	// Snippets are cut from the summary onward, never the title.
	if strings.Contains(top.Snippet, "Hospital Chain") {
		t.Errorf("snippet should not come from the title: %q", top.Snippet)
	}
}

func TestSearch_SnippetWithoutHighlighting(t *testing.T) {
	svc := newService(fixtureSnapshot())

	resp, err := svc.Search(context.Background(), mustText(t, "ransomware", mode.Exact, withNoHighlight()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(resp.Results[0].Snippet, "<mark>") {
		t.Errorf("highlighting disabled but marks present: %q", resp.Results[0].Snippet)
	}
}

func TestSearch_MatchCount(t *testing.T) {
	svc := newService(fixtureSnapshot())

	resp, err := svc.Search(context.Background(), mustText(t, "ransomware", mode.Exact))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// One occurrence in each of title, summary and body.
	if resp.Results[0].MatchCount != 3 {
		t.Errorf("expected 3 occurrences, got %d", resp.Results[0].MatchCount)
	}
}

func TestSearch_CatchAllZone(t *testing.T) {
	svc := newService(fixtureSnapshot())

	resp, err := svc.Search(context.Background(), mustText(t, "LockBit 3.0", mode.AnyWord))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	top := resp.Results[0]
	found := false
	for _, z := range top.MatchedIn {
		if z == "other_fields" {
			found = true
		}
	}
	if !found {
		t.Errorf("threat actor zone should match: %v", top.MatchedIn)
	}
}

func TestSearch_SourceError(t *testing.T) {
	svc := New(&mockSnaps{err: domain.ErrSourceUnavailable}, dates.Policy{})

	_, err := svc.Search(context.Background(), mustText(t, "x", mode.Exact))
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestMakeSnippet_TwoWindows(t *testing.T) {
	head := "alpha breach at the perimeter. "
	filler := strings.Repeat("routine log lines with nothing of note. ", 20)
	tail := " final breach confirmed by the vendor."
	text := head + filler + tail

	m, err := newTermMatcher("breach", false, false)
	if err != nil {
		t.Fatalf("matcher: %v", err)
	}
	snippet := makeSnippet(text, []termMatcher{m}, false)

	if !strings.Contains(snippet, " ... ") {
		t.Errorf("distant occurrences should produce a joined snippet: %q", snippet)
	}
	if !strings.Contains(snippet, "alpha breach") || !strings.Contains(snippet, "final breach") {
		t.Errorf("snippet should cover both occurrences: %q", snippet)
	}
}

func TestMakeSnippet_NoMatch(t *testing.T) {
	m, err := newTermMatcher("absent", false, false)
	if err != nil {
		t.Fatalf("matcher: %v", err)
	}
	if got := makeSnippet("some text", []termMatcher{m}, true); got != "" {
		t.Errorf("expected empty snippet, got %q", got)
	}
}
