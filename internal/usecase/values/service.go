// Package values enumerates the distinct values of one field across the
// collection, with per-occurrence counts. Clients use it to learn exact
// filter values before querying.
package values

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/corvusec/newsdex/internal/domain"
)

// ValueCount is one distinct value with its occurrence count.
type ValueCount struct {
	Value string
	Count int
}

// ValueCounts marshals as a JSON object whose keys keep slice order, so
// the wire shape preserves the count-descending sort.
type ValueCounts []ValueCount

// MarshalJSON emits an ordered JSON object.
func (vc ValueCounts) MarshalJSON() ([]byte, error) {
	var buf strings.Builder
	buf.WriteByte('{')
	for i, v := range vc {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(v.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", v.Count)
	}
	buf.WriteByte('}')
	return []byte(buf.String()), nil
}

// Metadata describes the enumeration before and after term filtering.
type Metadata struct {
	TotalUniqueValues      int     `json:"total_unique_values"`
	FilterApplied          *string `json:"filter_applied"`
	TotalValuesAfterFilter int     `json:"total_values_after_filter"`
}

// Report is the field value enumeration result.
type Report struct {
	FieldName        string      `json:"field_name"`
	Metadata         Metadata    `json:"metadata"`
	ValuesWithCounts ValueCounts `json:"values_with_counts"`
	TotalValues      int         `json:"total_values"`
}

// Service enumerates field values over the current snapshot.
type Service struct {
	snaps SnapshotProvider
}

// New creates a value enumeration service.
func New(snaps SnapshotProvider) *Service {
	return &Service{snaps: snaps}
}

// FieldValues counts every occurrence of the field's values across all
// articles. Sequence fields contribute one count per element. searchTerm,
// when non-empty, keeps only values containing it case-insensitively.
// A field present on no article at all yields domain.ErrFieldNotFound.
func (s *Service) FieldValues(ctx context.Context, field, searchTerm string) (*Report, error) {
	snap, err := s.snaps.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("field values: %w", err)
	}

	counts := make(map[string]int)
	found := false
	for _, a := range snap.Articles() {
		if a.Has(field) {
			found = true
		}
		for _, v := range a.Strings(field) {
			counts[v]++
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", domain.ErrFieldNotFound, field)
	}

	all := make(ValueCounts, 0, len(counts))
	for v, c := range counts {
		all = append(all, ValueCount{Value: v, Count: c})
	}

	filtered := all
	var filterApplied *string
	if searchTerm != "" {
		term := strings.ToLower(searchTerm)
		filtered = filtered[:0:0]
		for _, v := range all {
			if strings.Contains(strings.ToLower(v.Value), term) {
				filtered = append(filtered, v)
			}
		}
		filterApplied = &searchTerm
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Count != filtered[j].Count {
			return filtered[i].Count > filtered[j].Count
		}
		return filtered[i].Value < filtered[j].Value
	})

	return &Report{
		FieldName: field,
		Metadata: Metadata{
			TotalUniqueValues:      len(counts),
			FilterApplied:          filterApplied,
			TotalValuesAfterFilter: len(filtered),
		},
		ValuesWithCounts: filtered,
		TotalValues:      len(filtered),
	}, nil
}
