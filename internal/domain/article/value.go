package article

import (
	"encoding/json"
	"strconv"
)

// Kind discriminates the forms an open-schema field value can take.
type Kind int

// Value kinds.
const (
	// KindAbsent covers both missing keys and explicit JSON nulls.
	KindAbsent Kind = iota
	KindScalar
	KindSequence
)

// ScalarKind discriminates scalar types.
type ScalarKind int

// Scalar kinds.
const (
	ScalarString ScalarKind = iota
	ScalarNumber
	ScalarBool
)

// Scalar is a single string, number, or boolean. Numbers keep their JSON
// literal text so marshalling round-trips exactly.
type Scalar struct {
	kind ScalarKind
	str  string
	num  json.Number
	b    bool
}

// StringScalar creates a string scalar.
func StringScalar(s string) Scalar { return Scalar{kind: ScalarString, str: s} }

// NumberScalar creates a number scalar from a JSON literal.
func NumberScalar(n json.Number) Scalar { return Scalar{kind: ScalarNumber, num: n} }

// BoolScalar creates a boolean scalar.
func BoolScalar(b bool) Scalar { return Scalar{kind: ScalarBool, b: b} }

// Kind returns the scalar type.
func (s Scalar) Kind() ScalarKind { return s.kind }

// Display returns the scalar's string form, the form indexing and matching
// operate on.
func (s Scalar) Display() string {
	switch s.kind {
	case ScalarNumber:
		return s.num.String()
	case ScalarBool:
		return strconv.FormatBool(s.b)
	default:
		return s.str
	}
}

// MarshalJSON emits the scalar in its original JSON type.
func (s Scalar) MarshalJSON() ([]byte, error) {
	switch s.kind {
	case ScalarNumber:
		return []byte(s.num.String()), nil
	case ScalarBool:
		return json.Marshal(s.b)
	default:
		return json.Marshal(s.str)
	}
}

// Value is the tagged union stored per field: absent, one scalar, or an
// ordered sequence of scalars.
type Value struct {
	kind   Kind
	scalar Scalar
	seq    []Scalar
}

// Absent is the zero Value.
var Absent = Value{}

// ScalarValue wraps a scalar.
func ScalarValue(s Scalar) Value { return Value{kind: KindScalar, scalar: s} }

// SequenceValue wraps a sequence of scalars.
func SequenceValue(seq []Scalar) Value { return Value{kind: KindSequence, seq: seq} }

// Kind returns the value form.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether the value is missing or null.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// MarshalJSON emits the value in its original JSON shape. Absent values
// marshal as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindScalar:
		return v.scalar.MarshalJSON()
	case KindSequence:
		return json.Marshal(v.seq)
	default:
		return []byte("null"), nil
	}
}

// valueFromJSON converts a decoded JSON value (UseNumber mode) into the
// tagged form. Non-scalar sequence elements and nested objects have no
// place in the data model and collapse to absent.
func valueFromJSON(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Absent
	case string:
		return ScalarValue(StringScalar(x))
	case bool:
		return ScalarValue(BoolScalar(x))
	case json.Number:
		return ScalarValue(NumberScalar(x))
	case float64:
		// Reachable only when the decoder ran without UseNumber.
		return ScalarValue(NumberScalar(json.Number(strconv.FormatFloat(x, 'f', -1, 64))))
	case []any:
		seq := make([]Scalar, 0, len(x))
		for _, item := range x {
			iv := valueFromJSON(item)
			if iv.kind == KindScalar {
				seq = append(seq, iv.scalar)
			}
		}
		return SequenceValue(seq)
	default:
		return Absent
	}
}
