package chi

import (
	"encoding/json"
	"fmt"
)

// queryRequest is the POST /query_articles body.
type queryRequest struct {
	Filters     map[string]json.RawMessage `json:"filters"`
	SinceDate   string                     `json:"since_date"`
	Limit       int                        `json:"limit"`
	SummaryMode *bool                      `json:"summary_mode"`
}

// fulltextRequest is the POST /search_full_text body.
type fulltextRequest struct {
	Query         string                     `json:"query"`
	SearchMode    string                     `json:"search_mode"`
	Filters       map[string]json.RawMessage `json:"filters"`
	SinceDate     string                     `json:"since_date"`
	CaseSensitive bool                       `json:"case_sensitive"`
	WholeWord     bool                       `json:"whole_word"`
	Limit         int                        `json:"limit"`
	Highlight     *bool                      `json:"highlight"`
}

// decodeFilters accepts each filter value as either a single string or an
// array of strings.
func decodeFilters(raw map[string]json.RawMessage) (map[string][]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string][]string, len(raw))
	for field, msg := range raw {
		var single string
		if err := json.Unmarshal(msg, &single); err == nil {
			out[field] = []string{single}
			continue
		}
		var many []string
		if err := json.Unmarshal(msg, &many); err != nil {
			return nil, fmt.Errorf("filter %q must be a string or an array of strings", field)
		}
		out[field] = many
	}
	return out, nil
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
