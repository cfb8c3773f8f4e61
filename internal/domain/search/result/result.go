// Package result holds the projection shapes search operations hand to
// transports.
package result

import "github.com/corvusec/newsdex/internal/domain/article"

// Placeholder values for summary fields missing from a record.
const (
	NoTitle     = "No title"
	NoURL       = "No URL"
	UnknownDate = "Unknown date"
	Unknown     = "Unknown"
)

// Summary is the compact display projection of an article.
type Summary struct {
	ArticleID         string `json:"article_id"`
	Title             string `json:"title"`
	URL               string `json:"url"`
	ArticleDate       string `json:"article_date"`
	SeverityLevel     string `json:"severity_level"`
	Summary           string `json:"summary"`
	OriginalSourceURL string `json:"original_source_url"`
}

// Summarize projects an article to its summary shape, substituting
// placeholders for missing fields.
func Summarize(a article.Article) Summary {
	return Summary{
		ArticleID:         a.ID(),
		Title:             orDefault(a.Scalar(article.FieldTitle), NoTitle),
		URL:               orDefault(a.Scalar(article.FieldURL), NoURL),
		ArticleDate:       orDefault(a.Date(), UnknownDate),
		SeverityLevel:     orDefault(a.Scalar(article.FieldSeverity), Unknown),
		Summary:           a.Scalar(article.FieldSummary),
		OriginalSourceURL: a.Scalar(article.FieldSourceURL),
	}
}

// Hit is one ranked full-text search result.
type Hit struct {
	Summary
	RelevanceScore int      `json:"relevance_score"`
	MatchCount     int      `json:"match_count"`
	MatchedIn      []string `json:"matched_in"`
	Snippet        string   `json:"snippet"`
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
