package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/corvusec/newsdex/internal/domain"
	"github.com/corvusec/newsdex/internal/domain/article"
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
			"title":           "Azure Key Vault Vulnerability",
			"summary":         "A flaw in Key Vault.",
			"severity_level":  "High",
			"cloud_platforms": []any{"Azure"},
			"date_original":   "2024-12-15",
		}),
		article.FromMap(map[string]any{
			"title":           "AWS S3 Leak",
			"summary":         "Bucket left public.",
			"severity_level":  "Critical",
			"cloud_platforms": []any{"AWS", "Azure"},
			"date_original":   "2024-10-01",
		}),
	}
	return snapshot.New(articles, "2024-12-20T06:00:00Z", "2024-12-20", 0)
}

// --- Tests ---

func TestListFields_OnlyObservedFields(t *testing.T) {
	svc := New(&mockSnaps{snap: fixtureSnapshot()})

	report, err := svc.ListFields(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[string]FieldInfo, len(report.Fields))
	for _, f := range report.Fields {
		seen[f.Field] = f
	}

	if _, ok := seen["cloud_platforms"]; !ok {
		t.Error("cloud_platforms should be reported")
	}
	if _, ok := seen["threat_actor_name"]; ok {
		t.Error("fields absent from the sample must be omitted")
	}
	if report.TotalFields != len(report.Fields) {
		t.Errorf("total_fields %d != len(fields) %d", report.TotalFields, len(report.Fields))
	}
}

func TestListFields_ExamplesDedupedAndBounded(t *testing.T) {
	svc := New(&mockSnaps{snap: fixtureSnapshot()})

	report, err := svc.ListFields(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, f := range report.Fields {
		if f.Field != "cloud_platforms" {
			continue
		}
		if len(f.Examples) != 2 {
			t.Fatalf("expected 2 distinct platform examples, got %v", f.Examples)
		}
		if f.Examples[0] != "Azure" || f.Examples[1] != "AWS" {
			t.Errorf("examples should keep first-seen order: %v", f.Examples)
		}
		if f.Type != "cloud_technology" {
			t.Errorf("unexpected category: %q", f.Type)
		}
		return
	}
	t.Fatal("cloud_platforms not found in report")
}

func TestListFields_DatasetInfo(t *testing.T) {
	svc := New(&mockSnaps{snap: fixtureSnapshot()})

	report, err := svc.ListFields(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info := report.DatasetInfo
	if info.TotalArticles != 2 {
		t.Errorf("expected 2 articles, got %d", info.TotalArticles)
	}
	if info.DateRange != "2024-10-01 to 2024-12-15" {
		t.Errorf("unexpected date range: %q", info.DateRange)
	}
	if info.LastUpdate != "2024-12-20" {
		t.Errorf("unexpected last update: %q", info.LastUpdate)
	}
}

func TestListFields_CategoriesAlwaysPresent(t *testing.T) {
	svc := New(&mockSnaps{snap: snapshot.New(nil, "", "", 0)})

	report, err := svc.ListFields(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.FieldCategories) != 6 {
		t.Errorf("expected 6 categories, got %d", len(report.FieldCategories))
	}
	if len(report.Fields) != 0 {
		t.Errorf("empty collection should yield no fields, got %d", len(report.Fields))
	}
	if report.DatasetInfo.DateRange != "Unknown" {
		t.Errorf("unexpected date range: %q", report.DatasetInfo.DateRange)
	}
}

func TestListFields_SourceError(t *testing.T) {
	svc := New(&mockSnaps{err: domain.ErrSourceUnavailable})

	if _, err := svc.ListFields(context.Background()); !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestWithSampling_BoundsExamples(t *testing.T) {
	svc := New(&mockSnaps{snap: fixtureSnapshot()}).WithSampling(1, 1)

	report, err := svc.ListFields(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, f := range report.Fields {
		if len(f.Examples) > 1 {
			t.Errorf("field %q: expected at most 1 example, got %v", f.Field, f.Examples)
		}
	}
}
