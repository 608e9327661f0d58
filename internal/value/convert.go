package value

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// FromGo converts plain Go data (as produced by decoders such as
// encoding/json or yaml.v3) into a Value.
func FromGo(v any) (Value, error) {
	switch tv := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return tv, nil
	case bool:
		return Bool(tv), nil
	case int:
		return Int(tv), nil
	case int8:
		return Int(tv), nil
	case int16:
		return Int(tv), nil
	case int32:
		return Int(tv), nil
	case int64:
		return Int(tv), nil
	case uint:
		return Int(tv), nil
	case uint8:
		return Int(tv), nil
	case uint16:
		return Int(tv), nil
	case uint32:
		return Int(tv), nil
	case uint64:
		return Int(tv), nil
	case float32:
		return Float(tv), nil
	case float64:
		return Float(tv), nil
	case string:
		return String(tv), nil
	case json.Number:
		if i, err := tv.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := tv.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", tv.String(), err)
		}
		return Float(f), nil
	case []any:
		out := make(List, 0, len(tv))
		for i, item := range tv {
			converted, err := FromGo(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out = append(out, converted)
		}
		return out, nil
	case map[string]any:
		out := make(Map, len(tv))
		for k, item := range tv {
			converted, err := FromGo(item)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = converted
		}
		return out, nil
	}
	return fromReflect(reflect.ValueOf(v))
}

// fromReflect handles typed slices and string-keyed maps such as []string
// or map[string]int.
func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make(List, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			converted, err := FromGo(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out = append(out, converted)
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("unsupported map key type %s", rv.Type().Key())
		}
		out := make(Map, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			converted, err := FromGo(iter.Value().Interface())
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = converted
		}
		return out, nil
	case reflect.Pointer:
		if rv.IsNil() {
			return Null{}, nil
		}
		return FromGo(rv.Elem().Interface())
	}
	return nil, fmt.Errorf("unsupported type %T", rv.Interface())
}

// MapFromGo converts a plain Go map into a Map.
func MapFromGo(m map[string]any) (Map, error) {
	if m == nil {
		return Map{}, nil
	}
	v, err := FromGo(m)
	if err != nil {
		return nil, err
	}
	return v.(Map), nil
}

// MustMap is like MapFromGo but panics on unsupported data. It is meant for
// literals in node implementations and tests.
func MustMap(m map[string]any) Map {
	out, err := MapFromGo(m)
	if err != nil {
		panic(fmt.Sprintf("value.MustMap: %v", err))
	}
	return out
}

// ToGo converts v back into plain Go data. Sets become slices.
func ToGo(v Value) any {
	switch tv := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(tv)
	case Int:
		return int64(tv)
	case Float:
		return float64(tv)
	case String:
		return string(tv)
	case List:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = ToGo(item)
		}
		return out
	case Set:
		out := make([]any, len(tv.items))
		for i, item := range tv.items {
			out[i] = ToGo(item)
		}
		return out
	case Map:
		out := make(map[string]any, len(tv))
		for k, item := range tv {
			out[k] = ToGo(item)
		}
		return out
	}
	return nil
}

// Format renders v as compact JSON, for logs and error messages.
func Format(v Value) string {
	b, err := json.Marshal(ToGo(v))
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
