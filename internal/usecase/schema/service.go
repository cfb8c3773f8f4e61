// Package schema implements searchable-field discovery: the first step of
// the query workflow, telling a tool-calling client what it can filter on.
package schema

import (
	"context"
	"fmt"
	"sort"

	"github.com/corvusec/newsdex/internal/domain/article"
	"github.com/corvusec/newsdex/internal/domain/search/dates"
	"github.com/corvusec/newsdex/internal/domain/snapshot"
)

// Sampling defaults. Example collection samples a bounded prefix of the
// snapshot so discovery stays cheap on large collections.
const (
	DefaultSampleSize  = 100
	DefaultMaxExamples = 3
)

// category groups related fields under a stable name. Order is fixed so
// field listings are deterministic.
type category struct {
	name   string
	fields []string
}

var fieldCategories = []category{
	{"content_summary", []string{
		article.FieldSummary, article.FieldBody, article.FieldKeyPoints,
	}},
	{"threat_intelligence", []string{
		"threat_types", article.FieldThreatActors, article.FieldSeverity,
		"cve_identifiers", "related_incidents",
	}},
	{"cloud_technology", []string{
		article.FieldPlatforms, article.FieldProducts,
	}},
	{"business_context", []string{
		"sectors", "regions", article.FieldOrganizations, "article_type",
	}},
	{"temporal", []string{
		article.FieldTitle, article.FieldDate, article.FieldDateOriginal,
	}},
	{"sources", []string{
		article.FieldSourceName, article.FieldSourceURL,
	}},
}

var fieldDescriptions = map[string]string{
	article.FieldSummary:       "Article summary for quick understanding",
	article.FieldBody:          "Full markdown text of the article",
	article.FieldKeyPoints:     "Executive-level key points",
	"threat_types":             "Types of security threats",
	article.FieldThreatActors:  "Named threat actors or groups",
	article.FieldSeverity:      "Severity classification of the threat",
	"cve_identifiers":          "CVE identifiers referenced",
	"related_incidents":        "Links to related security incidents",
	article.FieldPlatforms:     "Cloud platforms affected",
	article.FieldProducts:      "Products or services impacted",
	"sectors":                  "Industry sectors affected",
	"regions":                  "Geographic regions impacted",
	article.FieldOrganizations: "Organizations mentioned",
	"article_type":             "Classification of article type",
	article.FieldTitle:         "Article title",
	article.FieldDate:          "Publication date",
	article.FieldDateOriginal:  "Original publication date",
	article.FieldSourceName:    "Original source name",
	article.FieldSourceURL:     "Original source URL",
}

// FieldInfo describes one searchable field.
type FieldInfo struct {
	Field       string `json:"field"`
	Type        string `json:"type"`
	Description string `json:"description"`
	// Always 0: a unique count would need a full scan, and field
	// discovery only samples. Clients get real counts from the value
	// enumeration endpoint.
	TotalUniqueValues int      `json:"total_unique_values"`
	Examples          []string `json:"examples"`
}

// DatasetInfo summarizes the collection behind the fields.
type DatasetInfo struct {
	TotalArticles int    `json:"total_articles"`
	DateRange     string `json:"date_range"`
	LastUpdate    string `json:"last_update"`
}

// Report is the field discovery result.
type Report struct {
	TotalFields     int                 `json:"total_fields"`
	DatasetInfo     DatasetInfo         `json:"dataset_info"`
	FieldCategories map[string][]string `json:"field_categories"`
	Fields          []FieldInfo         `json:"fields"`
}

// Service implements field discovery over the current snapshot.
type Service struct {
	snaps       SnapshotProvider
	sampleSize  int
	maxExamples int
}

// New creates a schema discovery service.
func New(snaps SnapshotProvider) *Service {
	return &Service{
		snaps:       snaps,
		sampleSize:  DefaultSampleSize,
		maxExamples: DefaultMaxExamples,
	}
}

// WithSampling overrides the sampling bounds.
func (s *Service) WithSampling(sampleSize, maxExamples int) *Service {
	if sampleSize > 0 {
		s.sampleSize = sampleSize
	}
	if maxExamples > 0 {
		s.maxExamples = maxExamples
	}
	return s
}

// ListFields partitions the known fields into categories and reports each
// field observed on at least one sampled article, with example values.
func (s *Service) ListFields(ctx context.Context) (*Report, error) {
	snap, err := s.snaps.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}

	samples := s.collectExamples(snap)

	categories := make(map[string][]string, len(fieldCategories))
	var fields []FieldInfo
	for _, cat := range fieldCategories {
		categories[cat.name] = cat.fields
		for _, name := range cat.fields {
			examples, ok := samples[name]
			if !ok || len(examples) == 0 {
				continue
			}
			fields = append(fields, FieldInfo{
				Field:       name,
				Type:        cat.name,
				Description: describeField(name),
				Examples:    examples,
			})
		}
	}

	return &Report{
		TotalFields: len(fields),
		DatasetInfo: DatasetInfo{
			TotalArticles: snap.TotalArticles(),
			DateRange:     dateRange(snap),
			LastUpdate:    snap.LastUpdate(),
		},
		FieldCategories: categories,
		Fields:          fields,
	}, nil
}

// collectExamples samples the snapshot prefix and gathers up to
// maxExamples distinct values per known field, flattening sequences.
func (s *Service) collectExamples(snap *snapshot.Snapshot) map[string][]string {
	articles := snap.Articles()
	if len(articles) > s.sampleSize {
		articles = articles[:s.sampleSize]
	}

	seen := make(map[string]map[string]struct{})
	examples := make(map[string][]string)
	for _, a := range articles {
		for _, cat := range fieldCategories {
			for _, name := range cat.fields {
				if len(examples[name]) >= s.maxExamples {
					continue
				}
				for _, v := range a.Strings(name) {
					if len(examples[name]) >= s.maxExamples {
						break
					}
					if seen[name] == nil {
						seen[name] = make(map[string]struct{})
					}
					if _, dup := seen[name][v]; dup {
						continue
					}
					seen[name][v] = struct{}{}
					examples[name] = append(examples[name], v)
				}
			}
		}
	}
	return examples
}

func describeField(name string) string {
	if d, ok := fieldDescriptions[name]; ok {
		return d
	}
	return fmt.Sprintf("Field: %s", name)
}

// dateRange computes the min/max over parseable article dates, scanning
// the whole snapshot.
func dateRange(snap *snapshot.Snapshot) string {
	var ds []string
	for _, a := range snap.Articles() {
		d := a.Date()
		if d != "" && dates.ParseablePrefix.MatchString(d) {
			ds = append(ds, d)
		}
	}
	if len(ds) == 0 {
		return "Unknown"
	}
	sort.Strings(ds)
	return fmt.Sprintf("%s to %s", ds[0], ds[len(ds)-1])
}
