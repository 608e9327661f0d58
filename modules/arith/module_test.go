package arith

import (
	"context"
	"testing"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/node"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/registry"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry() *registry.Registry {
	r := registry.New()
	(&Module{}).Register(r)
	return r
}

func build(t *testing.T, action string, init value.Map) node.Node {
	t.Helper()
	n, err := newRegistry().New(action, init)
	require.NoError(t, err)
	return n
}

func valueOf(v int64) value.Map {
	return value.Map{ValueKey: value.Int(v)}
}

func TestRegister(t *testing.T) {
	names := newRegistry().Names()
	for _, action := range []string{
		"add_value", "increment", "multiply", "sum", "below",
		"merge_last", "count", "noop", "parity", "add_message",
	} {
		assert.Contains(t, names, action)
	}

	testCases := []struct {
		name    string
		action  string
		init    value.Map
		errText string
	}{
		{name: "sum needs inputs", action: "sum", init: value.Map{"inputs": value.Int(0)}, errText: "'inputs' must be at least 1"},
		{name: "below edges differ", action: "below", init: value.Map{"above": value.String("x"), "below": value.String("x")}, errText: "must be different edges"},
		{name: "noop edges are strings", action: "noop", init: value.Map{"edges": value.List{value.Int(1)}}, errText: "edge names must be strings"},
		{name: "unknown parameter", action: "increment", init: value.Map{"step": value.Int(1)}, errText: "unknown parameter 'step'"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newRegistry().New(tc.action, tc.init)
			assert.ErrorContains(t, err, tc.errText)
		})
	}
}

func TestAddValue(t *testing.T) {
	n := build(t, "add_value", value.Map{"add": value.Int(2), "input": value.String("sum")})
	assert.Equal(t, node.Contract{Inputs: []string{"sum"}, Outputs: []string{"value"}}, node.ContractOf(n))

	out, err := n.Run(context.Background(), &node.Call{
		Name: "adder",
		Data: value.Map{ValueKey: value.Int(1), "other": value.String("kept")},
	})
	require.NoError(t, err)
	assert.Equal(t, value.Map{ValueKey: value.Int(3), "other": value.String("kept")}, out.Payload())

	_, err = n.Run(context.Background(), &node.Call{Name: "adder", Data: value.Map{ValueKey: value.String("x")}})
	assert.ErrorContains(t, err, "'value' must be an integer, got string")
}

func TestIncrementAndMultiply(t *testing.T) {
	inc := build(t, "increment", value.Map{"by": value.Int(3)})
	assert.False(t, node.ContractOf(inc).Declared())

	out, err := inc.Run(context.Background(), &node.Call{Name: "inc", Data: valueOf(1)})
	require.NoError(t, err)
	assert.Equal(t, valueOf(4), out.Payload())

	out, err = inc.Run(context.Background(), &node.Call{
		Name:       "inc",
		Data:       valueOf(1),
		Parameters: value.Map{"inc": value.Map{"by": value.Int(10)}},
	})
	require.NoError(t, err)
	assert.Equal(t, valueOf(11), out.Payload())

	mul := build(t, "multiply", nil)
	out, err = mul.Run(context.Background(), &node.Call{Name: "mul", Data: valueOf(21)})
	require.NoError(t, err)
	assert.Equal(t, valueOf(42), out.Payload())

	_, err = mul.Run(context.Background(), &node.Call{Name: "mul", Data: value.Map{}})
	assert.ErrorContains(t, err, "missing 'value' in input data")
}

func TestSum(t *testing.T) {
	n := build(t, "sum", value.Map{"inputs": value.Int(3)})
	assert.Equal(t, []string{"value", "value", "value"}, node.ContractOf(n).Inputs)

	out, err := n.Run(context.Background(), &node.Call{
		Name: "sum",
		Inputs: []node.Input{
			{From: "a", Edge: "value", Data: valueOf(2)},
			{From: "b", Edge: "value", Missing: true},
			{From: "c", Edge: "value", Data: valueOf(5)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, valueOf(7), out.Payload())

	_, err = n.Run(context.Background(), &node.Call{
		Name:   "sum",
		Inputs: []node.Input{{From: "a", Edge: "value", Data: value.Map{}}},
	})
	assert.ErrorContains(t, err, "input from 'a'")
}

func TestBelow(t *testing.T) {
	n := build(t, "below", value.Map{"threshold": value.Int(10)})
	assert.Equal(t, []string{"above", "below"}, node.ContractOf(n).Outputs)

	call := func(v int64) *node.Call {
		return &node.Call{
			Name:   "check",
			Data:   valueOf(v),
			Inputs: []node.Input{{From: "src", Edge: "value", Data: valueOf(v)}},
		}
	}

	out, err := n.Run(context.Background(), call(3))
	require.NoError(t, err)
	assert.Equal(t, []string{"below"}, out.Labels())

	out, err = n.Run(context.Background(), call(10))
	require.NoError(t, err)
	assert.Equal(t, []string{"above"}, out.Labels())

	_, err = n.Run(context.Background(), &node.Call{
		Name: "check",
		Data: valueOf(1),
		Inputs: []node.Input{
			{From: "a", Edge: "value", Data: valueOf(1)},
			{From: "b", Edge: "value", Data: valueOf(2)},
		},
	})
	assert.ErrorContains(t, err, "exactly one input, got 2")
}

func TestMergeLast(t *testing.T) {
	n := build(t, "merge_last", nil)

	out, err := n.Run(context.Background(), &node.Call{
		Name: "merge",
		Inputs: []node.Input{
			{From: "loop", Edge: "value", Data: valueOf(4)},
			{From: "entry", Edge: "value", Missing: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, valueOf(4), out.Payload())

	out, err = n.Run(context.Background(), &node.Call{Name: "merge"})
	require.NoError(t, err)
	assert.Equal(t, value.Map{}, out.Payload())
}

func TestCount(t *testing.T) {
	n := build(t, "count", nil)
	counter, ok := n.(*Count)
	require.True(t, ok)

	for i := 0; i < 3; i++ {
		out, err := counter.Run(context.Background(), &node.Call{Name: "count", Data: valueOf(int64(i))})
		require.NoError(t, err)
		assert.Equal(t, valueOf(int64(i)), out.Payload())
	}
	assert.Equal(t, int64(3), counter.Count())

	counter.Reset()
	assert.Equal(t, int64(0), counter.Count())
}

func TestNoOp(t *testing.T) {
	n := build(t, "noop", value.Map{"edges": value.List{value.String("a"), value.String("b")}})
	c := node.ContractOf(n)
	assert.Equal(t, []string{"a", "b"}, c.Inputs)
	assert.Equal(t, []string{"a", "b"}, c.Outputs)

	d, ok := n.(node.Describer)
	require.True(t, ok)
	assert.Equal(t, value.Map{"edges": value.List{value.String("a"), value.String("b")}}, d.Init())

	data := valueOf(4)
	out, err := n.Run(context.Background(), &node.Call{Name: "fork", Data: data, OutgoingEdges: []string{"a", "b", "a"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out.Labels())
	for _, label := range []string{"a", "b"} {
		e, ok := out.On(label)
		require.True(t, ok)
		assert.Equal(t, data, e.Data)
	}

	out, err = n.Run(context.Background(), &node.Call{Name: "fork", Data: data})
	require.NoError(t, err)
	assert.True(t, out.IsSingle(), "terminal forwards keep their data unkeyed")
	assert.Equal(t, data, out.Payload())
}

func TestParity(t *testing.T) {
	n := build(t, "parity", value.Map{"even": value.String("pair")})

	out, err := n.Run(context.Background(), &node.Call{Name: "p", Data: valueOf(4)})
	require.NoError(t, err)
	assert.Equal(t, []string{"pair"}, out.Labels())

	out, err = n.Run(context.Background(), &node.Call{Name: "p", Data: valueOf(-3)})
	require.NoError(t, err)
	assert.Equal(t, []string{"odd"}, out.Labels())
}

func TestAddMessage(t *testing.T) {
	n := build(t, "add_message", nil)

	out, err := n.Run(context.Background(), &node.Call{
		Name:       "even",
		Data:       valueOf(0),
		Parameters: value.Map{"even": value.Map{"message": value.String("The number was even!")}},
	})
	require.NoError(t, err)
	assert.Equal(t, value.Map{ValueKey: value.Int(0), "message": value.String("The number was even!")}, out.Payload())

	_, err = n.Run(context.Background(), &node.Call{Name: "even", Data: valueOf(0)})
	require.Error(t, err)
	assert.ErrorContains(t, err, "no 'message' parameter given")
}
