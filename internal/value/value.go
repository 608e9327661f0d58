package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindSet
	KindMap
)

var kindNames = [...]string{"null", "bool", "int", "float", "string", "list", "set", "map"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is the closed union of every payload the engine can carry between
// nodes. The set of implementations is fixed by this package.
type Value interface {
	Kind() Kind
	isValue()
}

// Null is the absence of a value.
type Null struct{}

// Bool is a boolean scalar.
type Bool bool

// Int is an integer scalar.
type Int int64

// Float is a floating point scalar.
type Float float64

// String is a string scalar.
type String string

// List is an ordered sequence of values.
type List []Value

// Map is a string-keyed mapping of values.
type Map map[string]Value

// Set is an ordered collection of values without duplicates. Two values are
// duplicates when their canonical keys match (see Key).
type Set struct {
	items []Value
	index map[string]struct{}
}

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (Int) Kind() Kind    { return KindInt }
func (Float) Kind() Kind  { return KindFloat }
func (String) Kind() Kind { return KindString }
func (List) Kind() Kind   { return KindList }
func (Set) Kind() Kind    { return KindSet }
func (Map) Kind() Kind    { return KindMap }

func (Null) isValue()   {}
func (Bool) isValue()   {}
func (Int) isValue()    {}
func (Float) isValue()  {}
func (String) isValue() {}
func (List) isValue()   {}
func (Set) isValue()    {}
func (Map) isValue()    {}

// NewSet builds a set from the given items, dropping duplicates while
// keeping first-seen order.
func NewSet(items ...Value) Set {
	s := Set{index: make(map[string]struct{}, len(items))}
	for _, item := range items {
		s = s.add(item)
	}
	return s
}

func (s Set) add(v Value) Set {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	k := Key(v)
	if _, ok := s.index[k]; ok {
		return s
	}
	s.index[k] = struct{}{}
	s.items = append(s.items, v)
	return s
}

// Items returns the set members in insertion order.
func (s Set) Items() []Value {
	out := make([]Value, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of members.
func (s Set) Len() int { return len(s.items) }

// Contains reports whether v is a member of the set.
func (s Set) Contains(v Value) bool {
	_, ok := s.index[Key(v)]
	return ok
}

// Union returns a new set with the members of s followed by the members of
// other that s does not already hold.
func (s Set) Union(other Set) Set {
	out := NewSet(s.items...)
	for _, item := range other.items {
		out = out.add(item)
	}
	return out
}

// Equal reports whether both sets hold the same members in the same order.
func (s Set) Equal(other Set) bool {
	if len(s.items) != len(other.items) {
		return false
	}
	for i := range s.items {
		if Key(s.items[i]) != Key(other.items[i]) {
			return false
		}
	}
	return true
}

// Get returns the value stored under key.
func (m Map) Get(key string) (Value, bool) {
	v, ok := m[key]
	return v, ok
}

// Int returns the integer stored under key. Floats with no fractional part
// are accepted.
func (m Map) Int(key string) (int64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	return AsInt(v)
}

// Str returns the string stored under key.
func (m Map) Str(key string) (string, bool) {
	v, ok := m[key].(String)
	return string(v), ok
}

// Sub returns the nested map stored under key.
func (m Map) Sub(key string) (Map, bool) {
	v, ok := m[key].(Map)
	return v, ok
}

// Keys returns the map keys in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// With returns a shallow copy of m with key set to v.
func (m Map) With(key string, v Value) Map {
	out := make(Map, len(m)+1)
	for k, existing := range m {
		out[k] = existing
	}
	out[key] = v
	return out
}

// Clone returns a deep copy of m.
func (m Map) Clone() Map {
	if m == nil {
		return nil
	}
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = Clone(v)
	}
	return out
}

// Clone returns a deep copy of v.
func Clone(v Value) Value {
	switch tv := v.(type) {
	case Map:
		return tv.Clone()
	case List:
		out := make(List, len(tv))
		for i, item := range tv {
			out[i] = Clone(item)
		}
		return out
	case Set:
		items := make([]Value, len(tv.items))
		for i, item := range tv.items {
			items[i] = Clone(item)
		}
		return NewSet(items...)
	default:
		return v
	}
}

// AsInt converts numeric values to int64.
func AsInt(v Value) (int64, bool) {
	switch tv := v.(type) {
	case Int:
		return int64(tv), true
	case Float:
		f := float64(tv)
		if f == math.Trunc(f) {
			return int64(f), true
		}
	}
	return 0, false
}

// AsFloat converts numeric values to float64.
func AsFloat(v Value) (float64, bool) {
	switch tv := v.(type) {
	case Int:
		return float64(tv), true
	case Float:
		return float64(tv), true
	}
	return 0, false
}

// Key returns a canonical string for v. Equal values produce equal keys,
// map keys are visited in sorted order.
func Key(v Value) string {
	var sb strings.Builder
	writeKey(&sb, v)
	return sb.String()
}

func writeKey(sb *strings.Builder, v Value) {
	switch tv := v.(type) {
	case nil, Null:
		sb.WriteString("null")
	case Bool:
		sb.WriteString(strconv.FormatBool(bool(tv)))
	case Int:
		sb.WriteString(strconv.FormatInt(int64(tv), 10))
	case Float:
		sb.WriteString(strconv.FormatFloat(float64(tv), 'g', -1, 64))
		sb.WriteString("f")
	case String:
		sb.WriteString(strconv.Quote(string(tv)))
	case List:
		sb.WriteByte('[')
		for i, item := range tv {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeKey(sb, item)
		}
		sb.WriteByte(']')
	case Set:
		sb.WriteString("set[")
		for i, item := range tv.items {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeKey(sb, item)
		}
		sb.WriteByte(']')
	case Map:
		sb.WriteByte('{')
		for i, k := range tv.Keys() {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Quote(k))
			sb.WriteByte(':')
			writeKey(sb, tv[k])
		}
		sb.WriteByte('}')
	default:
		sb.WriteString(fmt.Sprintf("%v", v))
	}
}

// Equal reports whether a and b hold the same data.
func Equal(a, b Value) bool {
	return Key(a) == Key(b)
}
