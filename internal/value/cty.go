package value

import (
	"fmt"
	"math/big"

	"github.com/zclconf/go-cty/cty"
)

// ToCty converts v into a cty value. Lists and sets become tuples and maps
// become objects, so heterogeneous collections survive the conversion.
func ToCty(v Value) cty.Value {
	switch tv := v.(type) {
	case nil, Null:
		return cty.NullVal(cty.DynamicPseudoType)
	case Bool:
		return cty.BoolVal(bool(tv))
	case Int:
		return cty.NumberIntVal(int64(tv))
	case Float:
		return cty.NumberFloatVal(float64(tv))
	case String:
		return cty.StringVal(string(tv))
	case List:
		return tupleOf(tv)
	case Set:
		return tupleOf(tv.items)
	case Map:
		if len(tv) == 0 {
			return cty.EmptyObjectVal
		}
		attrs := make(map[string]cty.Value, len(tv))
		for k, item := range tv {
			attrs[k] = ToCty(item)
		}
		return cty.ObjectVal(attrs)
	}
	return cty.NullVal(cty.DynamicPseudoType)
}

func tupleOf(items []Value) cty.Value {
	if len(items) == 0 {
		return cty.EmptyTupleVal
	}
	elems := make([]cty.Value, len(items))
	for i, item := range items {
		elems[i] = ToCty(item)
	}
	return cty.TupleVal(elems)
}

// FromCty converts a known cty value into a Value.
func FromCty(v cty.Value) (Value, error) {
	if v.IsNull() {
		return Null{}, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("cannot convert unknown value of type %s", v.Type().FriendlyName())
	}
	v, _ = v.Unmark()

	ty := v.Type()
	switch {
	case ty == cty.Bool:
		return Bool(v.True()), nil
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return Int(i), nil
			}
		}
		f, _ := bf.Float64()
		return Float(f), nil
	case ty == cty.String:
		return String(v.AsString()), nil
	case ty.IsListType() || ty.IsTupleType():
		out := List{}
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			item, err := FromCty(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil
	case ty.IsSetType():
		var items []Value
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			item, err := FromCty(ev)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return NewSet(items...), nil
	case ty.IsMapType() || ty.IsObjectType():
		out := Map{}
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			item, err := FromCty(ev)
			if err != nil {
				return nil, fmt.Errorf("attribute %q: %w", k.AsString(), err)
			}
			out[k.AsString()] = item
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported cty type %s", ty.FriendlyName())
}

// MapFromCty converts an object or map cty value into a Map. A null value
// yields an empty map.
func MapFromCty(v cty.Value) (Map, error) {
	converted, err := FromCty(v)
	if err != nil {
		return nil, err
	}
	switch tv := converted.(type) {
	case Null:
		return Map{}, nil
	case Map:
		return tv, nil
	}
	return nil, fmt.Errorf("expected an object, got %s", converted.Kind())
}
