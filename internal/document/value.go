// Package document models structured records (resumes and similar) as a tree of
// ordered mappings, sequences, and scalars, addressable by dot-separated paths.
package document

import "math"

// Kind identifies which variant a Value holds.
type Kind int

// Kind constants for the Value variants.
const (
	KindUndefined Kind = iota
	KindMapping
	KindSequence
	KindScalar
)

func (k Kind) String() string {
	switch k {
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	case KindScalar:
		return "scalar"
	default:
		return "undefined"
	}
}

// Value is one node of a document tree. Concrete variants are *Mapping,
// *Sequence, Scalar, and Undefined.
type Value interface {
	Kind() Kind
	// Clone returns a deep copy that shares no mutable state with the receiver.
	Clone() Value
}

type undefinedValue struct{}

func (undefinedValue) Kind() Kind     { return KindUndefined }
func (undefinedValue) Clone() Value   { return Undefined }
func (undefinedValue) String() string { return "undefined" }

// Undefined is the result of resolving a path that does not exist.
var Undefined Value = undefinedValue{}

// IsUndefined reports whether v is Undefined (or a nil interface).
func IsUndefined(v Value) bool {
	return v == nil || v.Kind() == KindUndefined
}

// Mapping is an ordered string-keyed collection. Key order is preserved from
// decoding and through mutation so that re-encoding is stable.
type Mapping struct {
	keys   []string
	fields map[string]Value
}

// NewMapping creates an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{fields: make(map[string]Value)}
}

// Kind implements Value.
func (m *Mapping) Kind() Kind { return KindMapping }

// Get returns the value stored under key, or Undefined.
func (m *Mapping) Get(key string) Value {
	if v, ok := m.fields[key]; ok {
		return v
	}
	return Undefined
}

// Set stores v under key. New keys are appended; existing keys keep their position.
func (m *Mapping) Set(key string, v Value) {
	if _, ok := m.fields[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.fields[key] = v
}

// Keys returns the keys in insertion order.
func (m *Mapping) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys.
func (m *Mapping) Len() int { return len(m.keys) }

// Clone implements Value.
func (m *Mapping) Clone() Value {
	out := &Mapping{
		keys:   make([]string, len(m.keys)),
		fields: make(map[string]Value, len(m.fields)),
	}
	copy(out.keys, m.keys)
	for k, v := range m.fields {
		out.fields[k] = v.Clone()
	}
	return out
}

// Sequence is an ordered list of values.
type Sequence struct {
	Items []Value
}

// NewSequence creates a sequence holding items.
func NewSequence(items ...Value) *Sequence {
	return &Sequence{Items: items}
}

// Kind implements Value.
func (s *Sequence) Kind() Kind { return KindSequence }

// Len returns the number of items.
func (s *Sequence) Len() int { return len(s.Items) }

// Clone implements Value.
func (s *Sequence) Clone() Value {
	out := &Sequence{Items: make([]Value, len(s.Items))}
	for i, item := range s.Items {
		out.Items[i] = item.Clone()
	}
	return out
}

// Scalar holds a leaf: string, bool, int, uint64 (beyond int64), float64,
// json.Number (JSON numbers that are not plain ints), or nil (null).
type Scalar struct {
	v any
}

// String creates a string scalar.
func String(s string) Scalar { return Scalar{v: s} }

// NewScalar wraps a decoded leaf value. Integer types are normalized to int.
func NewScalar(v any) Scalar {
	switch t := v.(type) {
	case int64:
		return Scalar{v: int(t)}
	case int32:
		return Scalar{v: int(t)}
	case uint64:
		if t <= math.MaxInt64 {
			return Scalar{v: int(t)}
		}
		return Scalar{v: t}
	case float32:
		return Scalar{v: float64(t)}
	}
	return Scalar{v: v}
}

// Kind implements Value.
func (s Scalar) Kind() Kind { return KindScalar }

// Clone implements Value. Scalars are immutable.
func (s Scalar) Clone() Value { return s }

// Interface returns the underlying Go value.
func (s Scalar) Interface() any { return s.v }

// Str returns the scalar as a string when it holds one.
func (s Scalar) Str() (string, bool) {
	str, ok := s.v.(string)
	return str, ok
}

// AsString reports the string held by v, if v is a string scalar.
func AsString(v Value) (string, bool) {
	s, ok := v.(Scalar)
	if !ok {
		return "", false
	}
	return s.Str()
}
