package value

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	testCases := []struct {
		name     string
		first    Map
		second   Map
		expected Map
	}{
		{
			name:     "disjoint keys are copied",
			first:    Map{"a": Int(1)},
			second:   Map{"b": Int(2)},
			expected: Map{"a": Int(1), "b": Int(2)},
		},
		{
			name:     "first wins on scalar conflict",
			first:    Map{"value": Int(1)},
			second:   Map{"value": Int(2)},
			expected: Map{"value": Int(1)},
		},
		{
			name:     "strings are scalars",
			first:    Map{"message": String("a")},
			second:   Map{"message": String("b")},
			expected: Map{"message": String("a")},
		},
		{
			name:     "lists concatenate",
			first:    Map{"docs": List{String("a")}},
			second:   Map{"docs": List{String("b"), String("c")}},
			expected: Map{"docs": List{String("a"), String("b"), String("c")}},
		},
		{
			name:     "mismatched kinds keep first",
			first:    Map{"docs": List{String("a")}},
			second:   Map{"docs": NewSet(String("b"))},
			expected: Map{"docs": List{String("a")}},
		},
		{
			name:     "maps recurse",
			first:    Map{"node": Map{"x": Int(1), "shared": Int(1)}},
			second:   Map{"node": Map{"y": Int(2), "shared": Int(2)}},
			expected: Map{"node": Map{"x": Int(1), "y": Int(2), "shared": Int(1)}},
		},
		{
			name:     "nil inputs",
			first:    nil,
			second:   Map{"a": Int(1)},
			expected: Map{"a": Int(1)},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Merge(tc.first, tc.second)
			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMerge_SetsUnion(t *testing.T) {
	got := Merge(
		Map{"tags": NewSet(String("a"), String("b"))},
		Map{"tags": NewSet(String("b"), String("c"))},
	)
	tags, ok := got["tags"].(Set)
	require.True(t, ok)
	assert.True(t, tags.Equal(NewSet(String("a"), String("b"), String("c"))))
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	first := Map{"node": Map{"x": Int(1)}, "list": List{Int(1)}}
	second := Map{"node": Map{"y": Int(2)}, "list": List{Int(2)}}

	_ = Merge(first, second)

	assert.Equal(t, Map{"node": Map{"x": Int(1)}, "list": List{Int(1)}}, first)
	assert.Equal(t, Map{"node": Map{"y": Int(2)}, "list": List{Int(2)}}, second)
}

func TestMergeWeighted(t *testing.T) {
	t.Run("higher weight dominates regardless of order", func(t *testing.T) {
		got := MergeWeighted([]Weighted{
			{Map: Map{"value": Int(1)}, Weight: 1},
			{Map: Map{"value": Int(2)}, Weight: 5},
			{Map: Map{"value": Int(3)}, Weight: 2},
		})
		assert.Equal(t, Map{"value": Int(2)}, got)
	})

	t.Run("ties keep arrival order", func(t *testing.T) {
		got := MergeWeighted([]Weighted{
			{Map: Map{"value": Int(1), "a": Int(1)}, Weight: 1},
			{Map: Map{"value": Int(2), "b": Int(2)}, Weight: 1},
		})
		assert.Equal(t, Map{"value": Int(1), "a": Int(1), "b": Int(2)}, got)
	})

	t.Run("lists follow weight order", func(t *testing.T) {
		got := MergeWeighted([]Weighted{
			{Map: Map{"docs": List{String("low")}}, Weight: 1},
			{Map: Map{"docs": List{String("high")}}, Weight: 3},
		})
		assert.Equal(t, Map{"docs": List{String("high"), String("low")}}, got)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, Map{}, MergeWeighted(nil))
	})
}
