package pipeline

import (
	"context"
	"testing"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/registry"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
	"github.com/ZanSara/new-haystack-pipeline-draft/modules/arith"
	"github.com/stretchr/testify/require"
)

func newRegistry() *registry.Registry {
	reg := registry.New()
	(&arith.Module{}).Register(reg)
	return reg
}

func mapOf(pairs ...any) value.Map {
	m := value.Map{}
	for i := 0; i+1 < len(pairs); i += 2 {
		v, err := value.FromGo(pairs[i+1])
		if err != nil {
			panic(err)
		}
		m[pairs[i].(string)] = v
	}
	return m
}

// linearPipeline computes ((value + 2) * 2) + 1.
func linearPipeline(t *testing.T, ctx context.Context, opts ...Option) *Pipeline {
	t.Helper()
	p := New(newRegistry(), opts...)
	require.NoError(t, p.AddAction(ctx, "add2", "increment", mapOf("by", 2)))
	require.NoError(t, p.AddAction(ctx, "double", "multiply", mapOf("by", 2)))
	require.NoError(t, p.AddAction(ctx, "add1", "increment", mapOf("by", 1)))
	require.NoError(t, p.Connect(ctx, []string{"add2", "double", "add1"}))
	return p
}

// mergingPipeline runs one add_value instance in three positions and sums
// two branches before a final increment.
func mergingPipeline(t *testing.T, ctx context.Context) *Pipeline {
	t.Helper()
	reg := newRegistry()
	p := New(reg)

	add, err := reg.New("add_value", mapOf("add", 2))
	require.NoError(t, err)
	require.NoError(t, p.AddNode(ctx, "first_addition", add))
	require.NoError(t, p.AddNode(ctx, "second_addition", add))
	require.NoError(t, p.AddNode(ctx, "third_addition", add))
	require.NoError(t, p.AddAction(ctx, "sum", "sum", nil))
	require.NoError(t, p.AddAction(ctx, "fourth_addition", "add_value", mapOf("add", 1, "input", "sum")))

	require.NoError(t, p.Connect(ctx, []string{"first_addition", "second_addition", "sum"}))
	require.NoError(t, p.Connect(ctx, []string{"third_addition", "sum", "fourth_addition"}))
	return p
}

// pruningPipeline tags the value with its parity, then adds one and ten.
func pruningPipeline(t *testing.T, ctx context.Context) *Pipeline {
	t.Helper()
	p := New(newRegistry())
	require.NoError(t, p.AddAction(ctx, "classifier", "parity", nil))
	require.NoError(t, p.AddAction(ctx, "even_number", "add_message", nil,
		WithParameters(value.Map{"message": value.String("The number was even!")})))
	require.NoError(t, p.AddAction(ctx, "odd_number", "add_message", nil,
		WithParameters(value.Map{"message": value.String("The number was odd!")})))
	require.NoError(t, p.AddAction(ctx, "add_one_even", "increment", mapOf("by", 1)))
	require.NoError(t, p.AddAction(ctx, "add_one_odd", "increment", mapOf("by", 1)))
	require.NoError(t, p.AddAction(ctx, "add_ten", "increment", mapOf("by", 10)))

	require.NoError(t, p.Connect(ctx, []string{"classifier.even", "even_number", "add_one_even", "add_ten"}))
	require.NoError(t, p.Connect(ctx, []string{"classifier.odd", "odd_number", "add_one_odd", "add_ten"}))
	return p
}

// loopingPipeline adds one until the value reaches the threshold, then adds
// two. The counter records how many times the loop body ran.
func loopingPipeline(t *testing.T, ctx context.Context, threshold int, opts ...Option) (*Pipeline, *arith.Count) {
	t.Helper()
	reg := newRegistry()
	p := New(reg, opts...)

	counter, err := reg.New("count", nil)
	require.NoError(t, err)

	require.NoError(t, p.AddAction(ctx, "entry_point", "noop", nil))
	require.NoError(t, p.AddAction(ctx, "merge", "merge_last", nil))
	require.NoError(t, p.AddAction(ctx, "below_10", "below", mapOf("threshold", threshold)))
	require.NoError(t, p.AddAction(ctx, "add_one", "add_value", mapOf("add", 1, "input", "below")))
	require.NoError(t, p.AddNode(ctx, "counter", counter))
	require.NoError(t, p.AddAction(ctx, "add_two", "add_value", mapOf("add", 2, "input", "above")))

	require.NoError(t, p.Connect(ctx, []string{"entry_point", "merge", "below_10.below", "add_one", "counter", "merge"}))
	require.NoError(t, p.Connect(ctx, []string{"below_10.above", "add_two"}))
	return p, counter.(*arith.Count)
}
