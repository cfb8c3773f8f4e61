// Package snapshot holds the immutable point-in-time article collection the
// engine computes over. A snapshot is produced wholesale by the document
// source and only ever replaced, never updated in place.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/corvusec/newsdex/internal/domain/article"
)

// Snapshot is an ordered article collection plus generation metadata.
type Snapshot struct {
	articles      []article.Article
	generatedAt   string
	lastUpdate    string
	totalArticles int
}

// New creates a Snapshot.
func New(articles []article.Article, generatedAt, lastUpdate string, totalArticles int) *Snapshot {
	if totalArticles <= 0 {
		totalArticles = len(articles)
	}
	return &Snapshot{
		articles:      articles,
		generatedAt:   generatedAt,
		lastUpdate:    lastUpdate,
		totalArticles: totalArticles,
	}
}

// Articles returns the article collection. Callers must treat it as
// read-only; snapshots are shared across concurrent queries.
func (s *Snapshot) Articles() []article.Article { return s.articles }

// Len returns the number of articles actually present.
func (s *Snapshot) Len() int { return len(s.articles) }

// GeneratedAt returns the source's generation timestamp.
func (s *Snapshot) GeneratedAt() string { return s.generatedAt }

// LastUpdate returns the source's last-update timestamp.
func (s *Snapshot) LastUpdate() string { return s.lastUpdate }

// TotalArticles returns the article count reported by the source.
func (s *Snapshot) TotalArticles() int { return s.totalArticles }

// payload is the wire shape of the source's metadata object.
type payload struct {
	GeneratedAt   string            `json:"generated_at"`
	LastUpdate    string            `json:"last_update"`
	TotalArticles int               `json:"total_articles"`
	Articles      []article.Article `json:"articles"`
}

// Decode parses the source metadata payload into a Snapshot.
func Decode(data []byte) (*Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var p payload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode snapshot payload: %w", err)
	}
	return New(p.Articles, p.GeneratedAt, p.LastUpdate, p.TotalArticles), nil
}

// Encode serializes the Snapshot back into the source payload shape, used
// by the spill cache.
func (s *Snapshot) Encode() ([]byte, error) {
	data, err := json.Marshal(payload{
		GeneratedAt:   s.generatedAt,
		LastUpdate:    s.lastUpdate,
		TotalArticles: s.totalArticles,
		Articles:      s.articles,
	})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot payload: %w", err)
	}
	return data, nil
}
