package value

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestFromGo(t *testing.T) {
	testCases := []struct {
		name     string
		input    any
		expected Value
	}{
		{name: "nil", input: nil, expected: Null{}},
		{name: "bool", input: true, expected: Bool(true)},
		{name: "int", input: 3, expected: Int(3)},
		{name: "uint8", input: uint8(7), expected: Int(7)},
		{name: "float", input: 1.5, expected: Float(1.5)},
		{name: "string", input: "x", expected: String("x")},
		{name: "json integer", input: json.Number("12"), expected: Int(12)},
		{name: "json float", input: json.Number("1.25"), expected: Float(1.25)},
		{name: "typed slice", input: []string{"a", "b"}, expected: List{String("a"), String("b")}},
		{name: "typed map", input: map[string]int{"a": 1}, expected: Map{"a": Int(1)}},
		{
			name:     "nested",
			input:    map[string]any{"list": []any{1, "two"}, "map": map[string]any{"k": false}},
			expected: Map{"list": List{Int(1), String("two")}, "map": Map{"k": Bool(false)}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromGo(tc.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("FromGo() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		_, err := FromGo(map[int]string{1: "x"})
		assert.ErrorContains(t, err, "unsupported map key type")

		_, err = FromGo(make(chan int))
		assert.ErrorContains(t, err, "unsupported type")
	})
}

func TestToGo(t *testing.T) {
	v := Map{
		"int":  Int(1),
		"list": List{String("a"), Null{}},
		"set":  NewSet(Int(1), Int(1), Int(2)),
	}
	expected := map[string]any{
		"int":  int64(1),
		"list": []any{"a", nil},
		"set":  []any{int64(1), int64(2)},
	}
	assert.Equal(t, expected, ToGo(v))
}

func TestSet(t *testing.T) {
	s := NewSet(String("a"), String("b"), String("a"))
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains(String("b")))
	assert.False(t, s.Contains(String("c")))
	assert.Equal(t, []Value{String("a"), String("b")}, s.Items())
}

func TestKeyDistinguishesKinds(t *testing.T) {
	assert.NotEqual(t, Key(Int(1)), Key(Float(1)))
	assert.NotEqual(t, Key(String("1")), Key(Int(1)))
	assert.NotEqual(t, Key(List{Int(1)}), Key(NewSet(Int(1))))
	assert.Equal(t, Key(Map{"a": Int(1), "b": Int(2)}), Key(Map{"b": Int(2), "a": Int(1)}))
}

func TestAsInt(t *testing.T) {
	i, ok := AsInt(Float(4))
	assert.True(t, ok)
	assert.Equal(t, int64(4), i)

	_, ok = AsInt(Float(4.5))
	assert.False(t, ok)

	_, ok = AsInt(String("4"))
	assert.False(t, ok)
}

func TestJSONRoundTrip(t *testing.T) {
	original := Map{
		"add":   Int(2),
		"ratio": Float(0.5),
		"name":  String("x"),
		"tags":  List{String("a")},
		"inner": Map{"flag": Bool(true)},
	}

	encoded, err := EncodeJSON(original)
	require.NoError(t, err)
	assert.JSONEq(t, `{"add":2,"ratio":0.5,"name":"x","tags":["a"],"inner":{"flag":true}}`, string(encoded))

	decoded, err := DecodeJSONMap(encoded)
	require.NoError(t, err)
	if diff := cmp.Diff(original, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeJSONMap(t *testing.T) {
	m, err := DecodeJSONMap([]byte("null"))
	require.NoError(t, err)
	assert.Equal(t, Map{}, m)

	m, err = DecodeJSONMap(nil)
	require.NoError(t, err)
	assert.Equal(t, Map{}, m)

	_, err = DecodeJSONMap([]byte("[1]"))
	assert.ErrorContains(t, err, "expected a JSON object")

	_, err = DecodeJSONMap([]byte("{"))
	assert.ErrorContains(t, err, "failed to decode JSON")
}

func TestCtyRoundTrip(t *testing.T) {
	original := Map{
		"count":   Int(3),
		"ratio":   Float(0.25),
		"label":   String("x"),
		"enabled": Bool(true),
		"items":   List{Int(1), String("two")},
		"nested":  Map{"k": String("v")},
		"empty":   Map{},
	}

	converted := ToCty(original)
	require.True(t, converted.Type().IsObjectType())

	back, err := MapFromCty(converted)
	require.NoError(t, err)
	if diff := cmp.Diff(original, back); diff != "" {
		t.Errorf("cty round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFromCty(t *testing.T) {
	t.Run("set", func(t *testing.T) {
		v, err := FromCty(cty.SetVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")}))
		require.NoError(t, err)
		s, ok := v.(Set)
		require.True(t, ok)
		assert.Equal(t, 2, s.Len())
	})

	t.Run("map type", func(t *testing.T) {
		v, err := FromCty(cty.MapVal(map[string]cty.Value{"a": cty.NumberIntVal(1)}))
		require.NoError(t, err)
		assert.Equal(t, Map{"a": Int(1)}, v)
	})

	t.Run("null", func(t *testing.T) {
		m, err := MapFromCty(cty.NullVal(cty.DynamicPseudoType))
		require.NoError(t, err)
		assert.Equal(t, Map{}, m)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := FromCty(cty.UnknownVal(cty.String))
		assert.ErrorContains(t, err, "unknown")
	})

	t.Run("not an object", func(t *testing.T) {
		_, err := MapFromCty(cty.StringVal("x"))
		assert.ErrorContains(t, err, "expected an object")
	})
}
