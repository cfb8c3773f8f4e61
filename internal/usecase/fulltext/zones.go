package fulltext

import (
	"strings"

	"github.com/corvusec/newsdex/internal/domain/article"
)

// Zone names reported in matched_in.
const (
	ZoneTitle = "title"
	ZoneSumm  = "summary"
	ZoneBody  = "article_text"
	ZoneOther = "other_fields"
)

// zone is one weighted searchable region of an article.
type zone struct {
	name   string
	weight int
	text   func(a article.Article) string
}

// Zone weights express editorial priority: a term in the title outranks
// the same term buried in the body.
var zones = []zone{
	{ZoneTitle, 10, func(a article.Article) string { return a.Scalar(article.FieldTitle) }},
	{ZoneSumm, 5, func(a article.Article) string { return a.Scalar(article.FieldSummary) }},
	{ZoneBody, 2, func(a article.Article) string { return a.Scalar(article.FieldBody) }},
	{ZoneOther, 1, otherFieldsText},
}

// snippetZones are the zones snippets may be cut from, in preference
// order. Titles already appear on every hit, so they are skipped.
var snippetZones = []string{ZoneSumm, ZoneBody, ZoneOther}

var otherFields = []string{
	article.FieldOrganizations,
	article.FieldProducts,
	article.FieldThreatActors,
	article.FieldKeyPoints,
	article.FieldLessons,
}

func otherFieldsText(a article.Article) string {
	var parts []string
	for _, f := range otherFields {
		if t := a.JoinedText(f); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
