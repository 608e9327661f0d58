package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/node"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/testutil"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/topologystore"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passThrough(action string) *node.Func {
	return node.NewFunc(action, func(ctx context.Context, call *node.Call) (node.Output, error) {
		return node.Emit(call.Data, call.Parameters), nil
	})
}

func TestNew(t *testing.T) {
	p := New(nil)
	assert.NotNil(t, p.Registry())
	assert.Equal(t, DefaultMaxLoops, p.MaxLoops())

	assert.Equal(t, 5, New(nil, WithMaxLoops(5)).MaxLoops())
	assert.Equal(t, DefaultMaxLoops, New(nil, WithMaxLoops(0)).MaxLoops())
}

func TestAddNode(t *testing.T) {
	ctx, _ := testutil.NewContext(t)
	p := New(newRegistry())
	require.NoError(t, p.AddNode(ctx, "a", passThrough(""), WithParameters(value.Map{"k": value.Int(1)}), AsInputNode()))

	record, err := p.GetNode(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, value.Map{"k": value.Int(1)}, record.Parameters)
	assert.True(t, record.InputNode)
	assert.False(t, record.OutputNode)

	record.Parameters["k"] = value.Int(2)
	again, err := p.GetNode(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, value.Map{"k": value.Int(1)}, again.Parameters, "GetNode returns a copy")

	_, err = p.GetNode(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNodeNotFound))

	testCases := []struct {
		name    string
		add     func() error
		errText string
	}{
		{
			name:    "duplicate name",
			add:     func() error { return p.AddNode(ctx, "a", passThrough("")) },
			errText: "node already exists",
		},
		{
			name:    "empty name",
			add:     func() error { return p.AddNode(ctx, " ", passThrough("")) },
			errText: "node name cannot be empty",
		},
		{
			name:    "dotted name",
			add:     func() error { return p.AddNode(ctx, "a.b", passThrough("")) },
			errText: "cannot contain '.'",
		},
		{
			name:    "nil node",
			add:     func() error { return p.AddNode(ctx, "b", nil) },
			errText: "node is nil",
		},
		{
			name:    "parameters that are not a mapping",
			add:     func() error { return p.AddNode(ctx, "b", passThrough(""), WithParametersFrom([]int{1, 2})) },
			errText: "parameters must be a mapping, got list",
		},
		{
			name:    "unknown action",
			add:     func() error { return p.AddAction(ctx, "b", "mystery", nil) },
			errText: "unknown action: 'mystery'",
		},
		{
			name:    "invalid init",
			add:     func() error { return p.AddAction(ctx, "b", "increment", value.Map{"by": value.String("two")}) },
			errText: "action 'increment'",
		},
		{
			name:    "sharing an unknown node",
			add:     func() error { return p.AddShared(ctx, "b", "nobody") },
			errText: "cannot share the instance of 'nobody'",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.add()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConstruction), "got %v", err)
			assert.ErrorContains(t, err, tc.errText)

			var nodeErr *NodeError
			assert.ErrorAs(t, err, &nodeErr)
		})
	}

	t.Run("parameters from plain Go data", func(t *testing.T) {
		require.NoError(t, p.AddNode(ctx, "c", passThrough(""), WithParametersFrom(map[string]any{"top_k": 3})))
		record, err := p.GetNode(ctx, "c")
		require.NoError(t, err)
		assert.Equal(t, value.Map{"top_k": value.Int(3)}, record.Parameters)
	})

	t.Run("describer nodes record their action", func(t *testing.T) {
		require.NoError(t, p.AddAction(ctx, "inc", "increment", mapOf("by", 4)))
		record, err := p.GetNode(ctx, "inc")
		require.NoError(t, err)
		assert.Equal(t, "increment", record.Action)
		assert.Equal(t, value.Map{"by": value.Int(4)}, record.Init)
	})

	t.Run("shared instances", func(t *testing.T) {
		require.NoError(t, p.AddShared(ctx, "inc_again", "inc"))
		first, err := p.GetNode(ctx, "inc")
		require.NoError(t, err)
		second, err := p.GetNode(ctx, "inc_again")
		require.NoError(t, err)
		assert.Same(t, first.Instance, second.Instance)
	})
}

func TestAddAction_QualifiedName(t *testing.T) {
	ctx, _ := testutil.NewContext(t)
	p := New(newRegistry())
	require.NoError(t, p.AddAction(ctx, "bare", "add_value", nil))
	require.NoError(t, p.AddAction(ctx, "qualified", "arith.add_value", value.Map{"add": value.Int(5)}))
	require.NoError(t, p.Connect(ctx, []string{"bare", "qualified"}))

	res, err := p.Run(ctx, value.Map{"value": value.Int(1)}, nil)
	require.NoError(t, err)
	assert.Equal(t, value.Map{"value": value.Int(7)}, res.Unwrap())
}

func TestConnect(t *testing.T) {
	t.Run("labels come from the upstream contract", func(t *testing.T) {
		ctx, _ := testutil.NewContext(t)
		p := pruningPipeline(t, ctx)
		d := p.Describe(ctx)

		labels := map[string]string{}
		for _, e := range d.Edges {
			labels[e.From+"->"+e.To] = e.Label
		}
		assert.Equal(t, "even", labels["classifier->even_number"])
		assert.Equal(t, "odd", labels["classifier->odd_number"])
		assert.Equal(t, node.DefaultEdge, labels["even_number->add_one_even"])
	})

	t.Run("reconnecting is a no-op", func(t *testing.T) {
		ctx, _ := testutil.NewContext(t)
		p := linearPipeline(t, ctx)
		before := len(p.Describe(ctx).Edges)

		require.NoError(t, p.Connect(ctx, []string{"add2", "double"}))
		assert.Len(t, p.Describe(ctx).Edges, before)
	})

	t.Run("weights are stored on the edges", func(t *testing.T) {
		ctx, _ := testutil.NewContext(t)
		p := New(newRegistry())
		for _, name := range []string{"a", "b", "c"} {
			require.NoError(t, p.AddNode(ctx, name, passThrough("")))
		}
		require.NoError(t, p.Connect(ctx, []string{"a", "b", "c"}, 2, 5))
		assert.Equal(t, []topologystore.Edge{
			{From: "a", To: "b", Label: node.DefaultEdge, Weight: 2},
			{From: "b", To: "c", Label: node.DefaultEdge, Weight: 5},
		}, p.Describe(ctx).Edges)
	})

	testCases := []struct {
		name    string
		refs    []string
		weights []int
		errText string
	}{
		{name: "single reference", refs: []string{"first_addition"}, errText: "at least two nodes"},
		{name: "weights count", refs: []string{"first_addition", "sum"}, weights: []int{1, 1}, errText: "2 weights given for 1 edges"},
		{name: "weight below one", refs: []string{"first_addition", "sum"}, weights: []int{0}, errText: "weights must be at least 1"},
		{name: "malformed reference", refs: []string{"first_addition.", "sum"}, errText: "first_addition."},
		{name: "label on the last node", refs: []string{"first_addition", "sum.value"}, errText: "ends the path"},
		{name: "unknown upstream", refs: []string{"nobody", "sum"}, errText: "node not found: 'nobody'"},
		{name: "unknown downstream", refs: []string{"sum", "nobody"}, errText: "node not found: 'nobody'"},
		{name: "undeclared output", refs: []string{"first_addition.edge", "sum"}, errText: "'first_addition' has no output named 'edge'"},
		{
			name:    "full output slot",
			refs:    []string{"first_addition", "sum"},
			errText: "'first_addition' has no free output slot named 'value'",
		},
		{
			name:    "full input slot",
			refs:    []string{"fourth_addition", "sum"},
			errText: "'sum' has no free input slot named 'value'",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, _ := testutil.NewContext(t)
			p := mergingPipeline(t, ctx)

			err := p.Connect(ctx, tc.refs, tc.weights...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConnection), "got %v", err)
			assert.ErrorContains(t, err, tc.errText)
		})
	}

	t.Run("slot report", func(t *testing.T) {
		ctx, _ := testutil.NewContext(t)
		p := mergingPipeline(t, ctx)

		err := p.Connect(ctx, []string{"fourth_addition", "sum"})
		var connErr *ConnectError
		require.ErrorAs(t, err, &connErr)
		assert.Equal(t, "fourth_addition", connErr.From)
		assert.Equal(t, "sum", connErr.To)
		assert.Equal(t, "value", connErr.Label)
		assert.Equal(t,
			"outputs of 'fourth_addition': value (free)\n"+
				"inputs of 'sum': value (taken by second_addition), value (taken by third_addition)",
			connErr.Slots)
	})

	t.Run("ambiguous output", func(t *testing.T) {
		ctx, _ := testutil.NewContext(t)
		p := New(newRegistry())
		require.NoError(t, p.AddAction(ctx, "classifier", "parity", nil))
		require.NoError(t, p.AddNode(ctx, "sink", passThrough("")))

		err := p.Connect(ctx, []string{"classifier", "sink"})
		assert.True(t, errors.Is(err, ErrConnection))
		assert.ErrorContains(t, err, "'classifier' has several outputs (even, odd)")
		assert.ErrorContains(t, err, "outputs of 'classifier': even (free), odd (free)")
		assert.ErrorContains(t, err, "inputs of 'sink': any (no contract declared)")
	})

	t.Run("a failing path adds no edges", func(t *testing.T) {
		ctx, _ := testutil.NewContext(t)
		p := New(newRegistry())
		for _, name := range []string{"a", "b"} {
			require.NoError(t, p.AddNode(ctx, name, passThrough("")))
		}

		err := p.Connect(ctx, []string{"a", "b", "nobody"})
		assert.True(t, errors.Is(err, ErrNodeNotFound))
		assert.Empty(t, p.Describe(ctx).Edges)
	})

	t.Run("slots taken earlier in the same path count", func(t *testing.T) {
		ctx, _ := testutil.NewContext(t)
		p := New(newRegistry())
		require.NoError(t, p.AddAction(ctx, "one", "add_value", nil))
		for _, name := range []string{"s1", "s2"} {
			require.NoError(t, p.AddNode(ctx, name, passThrough("")))
		}

		err := p.Connect(ctx, []string{"one", "s1.value", "one", "s2"})
		assert.True(t, errors.Is(err, ErrConnection))
		assert.ErrorContains(t, err, "'one' has no free output slot named 'value'")
		assert.Empty(t, p.Describe(ctx).Edges)
	})

	t.Run("nodes without contract accept anything", func(t *testing.T) {
		ctx, _ := testutil.NewContext(t)
		p := New(newRegistry())
		require.NoError(t, p.AddAction(ctx, "classifier", "parity", nil))
		require.NoError(t, p.AddNode(ctx, "sink", passThrough("")))
		require.NoError(t, p.Connect(ctx, []string{"classifier.even", "sink"}))
		require.NoError(t, p.Connect(ctx, []string{"classifier.odd", "sink"}))
		assert.Len(t, p.Describe(ctx).Edges, 2)
	})
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		ctx, _ := testutil.NewContext(t)
		assert.NoError(t, mergingPipeline(t, ctx).Validate(ctx))
	})

	t.Run("single node", func(t *testing.T) {
		ctx, _ := testutil.NewContext(t)
		p := New(newRegistry())
		require.NoError(t, p.AddAction(ctx, "only", "increment", nil))
		assert.NoError(t, p.Validate(ctx))
	})

	testCases := []struct {
		name    string
		build   func(ctx context.Context, p *Pipeline)
		errText string
	}{
		{
			name:    "empty",
			build:   func(ctx context.Context, p *Pipeline) {},
			errText: "the pipeline has no nodes",
		},
		{
			name: "disconnected",
			build: func(ctx context.Context, p *Pipeline) {
				_ = p.AddAction(ctx, "a", "increment", nil)
				_ = p.AddAction(ctx, "b", "increment", nil)
			},
			errText: "not connected",
		},
		{
			name: "no entry node",
			build: func(ctx context.Context, p *Pipeline) {
				_ = p.AddNode(ctx, "a", passThrough(""))
				_ = p.AddNode(ctx, "b", passThrough(""))
				_ = p.Connect(ctx, []string{"a", "b", "a"})
			},
			errText: "there is no entry node",
		},
		{
			name: "unregistered action",
			build: func(ctx context.Context, p *Pipeline) {
				_ = p.AddNode(ctx, "custom", passThrough("mystery"))
			},
			errText: "node 'custom': action 'mystery' is not registered",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, _ := testutil.NewContext(t)
			p := New(newRegistry())
			tc.build(ctx, p)

			err := p.Validate(ctx)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation), "got %v", err)
			assert.ErrorContains(t, err, tc.errText)
		})
	}

	t.Run("misplaced input and output flags warn", func(t *testing.T) {
		ctx, logs := testutil.NewContext(t)
		p := New(newRegistry())
		require.NoError(t, p.AddAction(ctx, "a", "increment", nil, AsOutputNode()))
		require.NoError(t, p.AddAction(ctx, "b", "increment", nil, AsInputNode()))
		require.NoError(t, p.Connect(ctx, []string{"a", "b"}))

		require.NoError(t, p.Validate(ctx))
		assert.Contains(t, logs.String(), "Input node has incoming edges.")
		assert.Contains(t, logs.String(), "Output node has outgoing edges.")
	})
}

func TestStores(t *testing.T) {
	logs := &testutil.SafeBuffer{}
	p := New(newRegistry(), WithLogger(slog.New(slog.NewTextHandler(logs, nil))))

	require.NoError(t, p.AddStore("documents", []string{"doc"}))
	require.NoError(t, p.AddStore("cache", map[string]int{}))
	assert.Equal(t, []string{"cache", "documents"}, p.ListStores())

	s, err := p.GetStore("documents")
	require.NoError(t, err)
	assert.Equal(t, []string{"doc"}, s)

	_, err = p.GetStore("missing")
	assert.True(t, errors.Is(err, ErrNoSuchStore))
	assert.ErrorContains(t, err, "no store named 'missing'")

	assert.True(t, errors.Is(p.AddStore("", 1), ErrConstruction))
	assert.True(t, errors.Is(p.AddStore("nil", nil), ErrConstruction))

	require.NoError(t, p.AddStore("documents", []string{"other"}))
	assert.Contains(t, logs.String(), "Replacing store.")
}

func TestDescribe(t *testing.T) {
	ctx, _ := testutil.NewContext(t)
	p := mergingPipeline(t, ctx)
	require.NoError(t, p.AddStore("documents", "store"))

	d := p.Describe(ctx)
	assert.Equal(t, DefaultMaxLoops, d.MaxLoops)
	assert.Equal(t, []string{"documents"}, d.Stores)
	require.Len(t, d.Nodes, 5)

	byName := map[string]NodeInfo{}
	for _, n := range d.Nodes {
		byName[n.Name] = n
	}

	first := byName["first_addition"]
	assert.Equal(t, "add_value", first.Action)
	assert.Empty(t, first.SharedWith)
	assert.True(t, first.Entry)
	assert.False(t, first.Terminal)

	assert.Equal(t, "first_addition", byName["second_addition"].SharedWith)
	assert.Equal(t, "first_addition", byName["third_addition"].SharedWith)
	assert.True(t, byName["third_addition"].Entry)

	sum := byName["sum"]
	assert.Equal(t, []string{"value", "value"}, sum.Inputs)
	assert.Equal(t, []string{"sum"}, sum.Outputs)

	assert.True(t, byName["fourth_addition"].Terminal)
	assert.Len(t, d.Edges, 4)
}
