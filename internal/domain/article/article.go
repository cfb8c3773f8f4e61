// Package article models one ingested security-news record. Articles are
// open-schema: any field may be absent, a scalar, or a sequence of scalars,
// and no field is guaranteed to exist on every record.
package article

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Well-known field names used by identity resolution, date resolution, and
// the search zones. Everything else is accessed dynamically.
const (
	FieldURL          = "url"
	FieldLocator      = "s3_path_html"
	FieldTitle        = "title"
	FieldSummary      = "summary"
	FieldBody         = "article_text_md_original"
	FieldDate         = "article_date"
	FieldDateOriginal = "date_original"
	FieldSeverity     = "severity_level"
	FieldSourceName   = "original_source_name"
	FieldSourceURL    = "original_source_url"
	FieldPlatforms    = "cloud_platforms"
	FieldProducts     = "products_impacted"

	FieldOrganizations = "affected_organizations"
	FieldThreatActors  = "threat_actor_name"
	FieldKeyPoints     = "ciso_summary_key_points"
	FieldLessons       = "lessons_learned"
)

// Article is an immutable open-schema record.
type Article struct {
	fields map[string]Value
}

// New creates an Article from pre-built field values.
func New(fields map[string]Value) Article {
	c := make(map[string]Value, len(fields))
	for k, v := range fields {
		c[k] = v
	}
	return Article{fields: c}
}

// FromMap converts a decoded JSON object into an Article. Numbers must be
// json.Number (decode with UseNumber) to survive a marshal round trip.
func FromMap(obj map[string]any) Article {
	fields := make(map[string]Value, len(obj))
	for k, v := range obj {
		fields[k] = valueFromJSON(v)
	}
	return Article{fields: fields}
}

// Value returns the tagged value for a field. Unknown fields yield an
// absent value.
func (a Article) Value(name string) Value {
	return a.fields[name]
}

// Has reports whether the field key exists on the record, even when its
// value is null.
func (a Article) Has(name string) bool {
	_, ok := a.fields[name]
	return ok
}

// FieldNames returns the record's field keys in lexicographic order.
func (a Article) FieldNames() []string {
	names := make([]string, 0, len(a.fields))
	for k := range a.fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of field keys present on the record.
func (a Article) Len() int { return len(a.fields) }

// ID resolves the article identity: the first non-empty of the content
// locator, the source URL, and the title. Lookups must match against the
// same fallback fields.
func (a Article) ID() string {
	for _, f := range []string{FieldLocator, FieldURL, FieldTitle} {
		if s := a.Scalar(f); s != "" {
			return s
		}
	}
	return ""
}

// Date resolves the raw date string: date_original preferred, else
// article_date. Returns "" when neither is populated.
func (a Article) Date() string {
	if s := a.Scalar(FieldDateOriginal); s != "" {
		return s
	}
	return a.Scalar(FieldDate)
}

// Scalar returns the display form of a scalar-valued field, or "" when the
// field is absent, null, or sequence-valued.
func (a Article) Scalar(name string) string {
	v := a.fields[name]
	if v.Kind() != KindScalar {
		return ""
	}
	return v.scalar.Display()
}

// Strings returns the flattened display forms of a field: a scalar becomes
// a one-element slice, a sequence yields one entry per element, and absent
// or null fields yield nil.
func (a Article) Strings(name string) []string {
	v := a.fields[name]
	switch v.Kind() {
	case KindScalar:
		return []string{v.scalar.Display()}
	case KindSequence:
		out := make([]string, len(v.seq))
		for i, s := range v.seq {
			out[i] = s.Display()
		}
		return out
	default:
		return nil
	}
}

// JoinedText returns the flattened field values joined with single spaces.
func (a Article) JoinedText(name string) string {
	parts := a.Strings(name)
	if len(parts) == 0 {
		return ""
	}
	var buf bytes.Buffer
	for i, p := range parts {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(p)
	}
	return buf.String()
}

// MarshalJSON emits the record as a JSON object with its original scalar
// kinds intact.
func (a Article) MarshalJSON() ([]byte, error) {
	obj := make(map[string]json.RawMessage, len(a.fields))
	for k, v := range a.fields {
		raw, err := v.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("marshal field %q: %w", k, err)
		}
		obj[k] = raw
	}
	return json.Marshal(obj)
}

// UnmarshalJSON decodes a JSON object into the record, preserving numeric
// literals verbatim.
func (a *Article) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return fmt.Errorf("decode article: %w", err)
	}
	*a = FromMap(obj)
	return nil
}
