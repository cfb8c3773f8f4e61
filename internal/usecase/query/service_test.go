package query

import (
	"context"
	"errors"
	"testing"

	"github.com/corvusec/newsdex/internal/domain"
	"github.com/corvusec/newsdex/internal/domain/article"
	"github.com/corvusec/newsdex/internal/domain/search/dates"
	"github.com/corvusec/newsdex/internal/domain/search/filter"
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
			"s3_path_html":    "articles/2024/azure-keyvault.html",
			"url":             "https://example.com/azure-keyvault",
			"title":           "Microsoft Azure Key Vault Vulnerability",
			"summary":         "A critical flaw exposed secrets in Azure Key Vault.",
			"vendor":          "Microsoft",
			"severity_level":  "High",
			"cloud_platforms": []any{"Azure"},
			"date_original":   "2024-12-15 08:00:00",
		}),
		article.FromMap(map[string]any{
			"s3_path_html":    "articles/2024/aws-s3-leak.html",
			"url":             "https://example.com/aws-s3-leak",
			"title":           "AWS S3 Misconfiguration Leaks Records",
			"summary":         "Millions of records exposed through a public S3 bucket.",
			"vendor":          "Amazon",
			"severity_level":  "Critical",
			"cloud_platforms": []any{"AWS"},
			"date_original":   "2024-11-05",
		}),
		article.FromMap(map[string]any{
			"url":            "https://example.com/gcp-iam",
			"title":          "GCP IAM Privilege Escalation",
			"summary":        "Researchers found a privilege escalation path in GCP IAM.",
			"vendor":         "Google",
			"severity_level": "Medium",
			"article_date":   "2024-10-01",
		}),
		article.FromMap(map[string]any{
			"title":   "Undated Phishing Campaign Report",
			"summary": "A long-running phishing campaign targets cloud admins.",
			"vendor":  "Microsoft",
		}),
	}
	return snapshot.New(articles, "2024-12-20T06:00:00Z", "2024-12-20", 0)
}

func newService(snap *snapshot.Snapshot) *Service {
	return New(&mockSnaps{snap: snap}, dates.NewPolicy([]string{"YYYYMMDD"}, nil))
}

func mustQuery(t *testing.T, filters map[string][]string, since string, limit int, summary bool) request.Query {
	t.Helper()
	q, err := request.NewQuery(filter.New(filters), since, limit, summary)
	if err != nil {
		t.Fatalf("request.NewQuery: %v", err)
	}
	return q
}

// --- Tests ---

func TestSearch_FilterByVendor(t *testing.T) {
	svc := newService(fixtureSnapshot())

	resp, err := svc.Search(context.Background(), mustQuery(t, map[string][]string{"vendor": {"Microsoft"}}, "", 0, true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalResults != 2 {
		t.Fatalf("expected 2 results, got %d", resp.TotalResults)
	}
	// Dated article first, undated last.
	if resp.Summaries[0].Title != "Microsoft Azure Key Vault Vulnerability" {
		t.Errorf("unexpected first result: %q", resp.Summaries[0].Title)
	}
	if resp.Summaries[1].ArticleDate != "Unknown date" {
		t.Errorf("expected placeholder date, got %q", resp.Summaries[1].ArticleDate)
	}
}

func TestSearch_SinceDateGate(t *testing.T) {
	svc := newService(fixtureSnapshot())

	resp, err := svc.Search(context.Background(), mustQuery(t, nil, "2024-11-01", 0, true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The undated and the 2024-10-01 articles are excluded.
	if resp.TotalResults != 2 {
		t.Fatalf("expected 2 results, got %d", resp.TotalResults)
	}
	if resp.Summaries[0].ArticleDate != "2024-12-15 08:00:00" {
		t.Errorf("expected newest first, got %q", resp.Summaries[0].ArticleDate)
	}
	if resp.Summaries[1].ArticleDate != "2024-11-05" {
		t.Errorf("unexpected second result date: %q", resp.Summaries[1].ArticleDate)
	}
}

func TestSearch_LimitTruncatesAfterSort(t *testing.T) {
	svc := newService(fixtureSnapshot())

	resp, err := svc.Search(context.Background(), mustQuery(t, nil, "", 2, true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalResults != 4 {
		t.Errorf("total counts matches before the cut, got %d", resp.TotalResults)
	}
	if len(resp.Summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(resp.Summaries))
	}
	if resp.Summaries[0].ArticleDate != "2024-12-15 08:00:00" {
		t.Errorf("expected newest first, got %q", resp.Summaries[0].ArticleDate)
	}
}

func TestSearch_UnknownFilterFieldYieldsEmpty(t *testing.T) {
	svc := newService(fixtureSnapshot())

	resp, err := svc.Search(context.Background(), mustQuery(t, map[string][]string{"not_a_field": {"x"}}, "", 0, true))
	if err != nil {
		t.Fatalf("unknown field must not error: %v", err)
	}
	if resp.TotalResults != 0 {
		t.Errorf("expected empty result, got %d", resp.TotalResults)
	}
}

func TestSearch_FullArticles(t *testing.T) {
	svc := newService(fixtureSnapshot())

	resp, err := svc.Search(context.Background(), mustQuery(t, map[string][]string{"vendor": {"Amazon"}}, "", 0, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.SummaryMode {
		t.Error("summary mode should be off")
	}
	if len(resp.Articles) != 1 || len(resp.Summaries) != 0 {
		t.Fatalf("expected full articles, got %d articles, %d summaries", len(resp.Articles), len(resp.Summaries))
	}
	if resp.Articles[0].Scalar("vendor") != "Amazon" {
		t.Errorf("wrong article returned")
	}
}

func TestSearch_SourceError(t *testing.T) {
	svc := New(&mockSnaps{err: domain.ErrSourceUnavailable}, dates.Policy{})

	_, err := svc.Search(context.Background(), mustQuery(t, nil, "", 0, true))
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestDetails_ByEachIdentityField(t *testing.T) {
	svc := newService(fixtureSnapshot())
	ctx := context.Background()

	tests := []struct {
		name string
		id   string
	}{
		{"by locator", "articles/2024/azure-keyvault.html"},
		{"by url", "https://example.com/azure-keyvault"},
		{"by title", "Microsoft Azure Key Vault Vulnerability"},
		{"by locator fragment", "azure-keyvault.html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := svc.Details(ctx, tt.id)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if a.Scalar("vendor") != "Microsoft" {
				t.Errorf("wrong article for id %q", tt.id)
			}
		})
	}
}

func TestDetails_NotFound(t *testing.T) {
	svc := newService(fixtureSnapshot())

	_, err := svc.Details(context.Background(), "no/such/article.html")
	if !errors.Is(err, domain.ErrArticleNotFound) {
		t.Errorf("expected ErrArticleNotFound, got %v", err)
	}
}

func TestDetails_EmptyID(t *testing.T) {
	svc := newService(fixtureSnapshot())

	_, err := svc.Details(context.Background(), "  ")
	if !errors.Is(err, domain.ErrArticleNotFound) {
		t.Errorf("expected ErrArticleNotFound for blank id, got %v", err)
	}
}
