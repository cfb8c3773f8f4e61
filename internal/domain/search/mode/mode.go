// Package mode defines the full-text match strategies.
package mode

import "strings"

// Mode is the full-text match strategy.
type Mode string

// Match strategy constants.
const (
	// Exact treats the whole query as one phrase.
	Exact Mode = "exact"
	// AnyWord matches articles containing at least one query term.
	AnyWord Mode = "any_word"
	// AllWords matches articles containing every query term somewhere
	// across the combined search zones.
	AllWords Mode = "all_words"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Exact || m == AnyWord || m == AllWords
}

// Terms splits a query according to the strategy: Exact keeps the trimmed
// query as a single phrase, the word modes split on whitespace.
func (m Mode) Terms(query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if m == Exact {
		return []string{query}
	}
	return strings.Fields(query)
}
