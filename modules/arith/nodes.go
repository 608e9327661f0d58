package arith

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/ctxlog"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/node"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
)

// ValueKey is the data key every arithmetic node reads and writes.
const ValueKey = "value"

func readValue(data value.Map) (int64, error) {
	v, ok := data[ValueKey]
	if !ok {
		return 0, fmt.Errorf("missing '%s' in input data", ValueKey)
	}
	i, ok := value.AsInt(v)
	if !ok {
		return 0, fmt.Errorf("'%s' must be an integer, got %s", ValueKey, v.Kind())
	}
	return i, nil
}

func overlay(data value.Map, v int64) value.Map {
	return data.With(ValueKey, value.Int(v))
}

// AddValue adds a constant to the value. Its single input and output slots
// are named by the init parameters.
type AddValue struct {
	add    int64
	input  string
	output string
}

func (a *AddValue) Run(ctx context.Context, call *node.Call) (node.Output, error) {
	v, err := readValue(call.Data)
	if err != nil {
		return node.Output{}, err
	}
	return node.Emit(overlay(call.Data, v+a.add), call.Parameters), nil
}

func (a *AddValue) Contract() node.Contract {
	return node.Contract{Inputs: []string{a.input}, Outputs: []string{a.output}}
}

func (a *AddValue) Action() string { return "add_value" }

func (a *AddValue) Init() value.Map {
	return value.Map{"add": value.Int(a.add), "input": value.String(a.input), "output": value.String(a.output)}
}

// Increment adds to the value without declaring any slot. The amount can be
// overridden per run with the "by" parameter.
type Increment struct {
	by int64
}

func (n *Increment) Run(ctx context.Context, call *node.Call) (node.Output, error) {
	v, err := readValue(call.Data)
	if err != nil {
		return node.Output{}, err
	}
	by := n.by
	if override, ok := call.Params().Int("by"); ok {
		by = override
	}
	return node.Emit(overlay(call.Data, v+by), call.Parameters), nil
}

func (n *Increment) Action() string  { return "increment" }
func (n *Increment) Init() value.Map { return value.Map{"by": value.Int(n.by)} }

// Multiply scales the value.
type Multiply struct {
	by int64
}

func (n *Multiply) Run(ctx context.Context, call *node.Call) (node.Output, error) {
	v, err := readValue(call.Data)
	if err != nil {
		return node.Output{}, err
	}
	return node.Emit(overlay(call.Data, v*n.by), call.Parameters), nil
}

func (n *Multiply) Action() string  { return "multiply" }
func (n *Multiply) Init() value.Map { return value.Map{"by": value.Int(n.by)} }

// Sum adds up the values of every input it received, one input per edge.
type Sum struct {
	inputs int64
	label  string
	output string
}

func (s *Sum) Run(ctx context.Context, call *node.Call) (node.Output, error) {
	var total int64
	for _, in := range call.Present() {
		v, err := readValue(in.Data)
		if err != nil {
			return node.Output{}, fmt.Errorf("input from '%s': %w", in.From, err)
		}
		total += v
	}
	return node.Emit(value.Map{ValueKey: value.Int(total)}, call.Parameters), nil
}

func (s *Sum) Contract() node.Contract {
	inputs := make([]string, s.inputs)
	for i := range inputs {
		inputs[i] = s.label
	}
	return node.Contract{Inputs: inputs, Outputs: []string{s.output}}
}

func (s *Sum) Action() string { return "sum" }

func (s *Sum) Init() value.Map {
	return value.Map{"inputs": value.Int(s.inputs), "label": value.String(s.label), "output": value.String(s.output)}
}

// Below routes the data on its "below" output while the value is under the
// threshold, and on its "above" output otherwise.
type Below struct {
	threshold int64
	input     string
	above     string
	below     string
}

func (b *Below) Run(ctx context.Context, call *node.Call) (node.Output, error) {
	if present := call.Present(); len(present) != 1 {
		return node.Output{}, fmt.Errorf("below takes exactly one input, got %d", len(present))
	}
	v, err := readValue(call.Data)
	if err != nil {
		return node.Output{}, err
	}
	label := b.above
	if v < b.threshold {
		label = b.below
	}
	ctxlog.FromContext(ctx).Debug("Below: Value compared.", "value", v, "threshold", b.threshold, "edge", label)
	return node.Route(map[string]node.Emission{
		label: {Data: call.Data, Parameters: call.Parameters},
	}), nil
}

func (b *Below) Contract() node.Contract {
	return node.Contract{Inputs: []string{b.input}, Outputs: []string{b.above, b.below}}
}

func (b *Below) Action() string { return "below" }

func (b *Below) Init() value.Map {
	return value.Map{
		"threshold": value.Int(b.threshold),
		"input":     value.String(b.input),
		"above":     value.String(b.above),
		"below":     value.String(b.below),
	}
}

// MergeLast forwards the data of the last input that actually arrived.
type MergeLast struct {
	inputs int64
	label  string
	output string
}

func (m *MergeLast) Run(ctx context.Context, call *node.Call) (node.Output, error) {
	present := call.Present()
	if len(present) == 0 {
		return node.Emit(value.Map{}, call.Parameters), nil
	}
	last := present[len(present)-1]
	return node.Emit(last.Data, call.Parameters), nil
}

func (m *MergeLast) Contract() node.Contract {
	inputs := make([]string, m.inputs)
	for i := range inputs {
		inputs[i] = m.label
	}
	return node.Contract{Inputs: inputs, Outputs: []string{m.output}}
}

func (m *MergeLast) Action() string { return "merge_last" }

func (m *MergeLast) Init() value.Map {
	return value.Map{"inputs": value.Int(m.inputs), "label": value.String(m.label), "output": value.String(m.output)}
}

// Count passes its data through and counts how often it ran. The counter
// lives on the instance and survives across runs.
type Count struct {
	edge  string
	count atomic.Int64
}

func (c *Count) Run(ctx context.Context, call *node.Call) (node.Output, error) {
	c.count.Add(1)
	return node.Emit(call.Data, call.Parameters), nil
}

// Count returns how many times the node ran.
func (c *Count) Count() int64 { return c.count.Load() }

// Reset zeroes the counter.
func (c *Count) Reset() { c.count.Store(0) }

func (c *Count) Contract() node.Contract {
	return node.Contract{Inputs: []string{c.edge}, Outputs: []string{c.edge}}
}

func (c *Count) Action() string  { return "count" }
func (c *Count) Init() value.Map { return value.Map{"edge": value.String(c.edge)} }

// NoOp forwards its data unchanged on the given edges.
type NoOp struct {
	edges []string
}

func (n *NoOp) Run(ctx context.Context, call *node.Call) (node.Output, error) {
	routes := make(map[string]node.Emission, len(call.OutgoingEdges))
	for _, label := range call.OutgoingEdges {
		routes[label] = node.Emission{Data: call.Data, Parameters: call.Parameters}
	}
	if len(routes) > 1 {
		return node.Route(routes), nil
	}
	return node.Emit(call.Data, call.Parameters), nil
}

func (n *NoOp) Contract() node.Contract {
	return node.Contract{Inputs: n.edges, Outputs: n.edges}
}

func (n *NoOp) Action() string { return "noop" }

func (n *NoOp) Init() value.Map {
	edges := make(value.List, len(n.edges))
	for i, e := range n.edges {
		edges[i] = value.String(e)
	}
	return value.Map{"edges": edges}
}

// Parity sends the data along its "even" or "odd" output.
type Parity struct {
	even string
	odd  string
}

func (p *Parity) Run(ctx context.Context, call *node.Call) (node.Output, error) {
	v, err := readValue(call.Data)
	if err != nil {
		return node.Output{}, err
	}
	label := p.odd
	if v%2 == 0 {
		label = p.even
	}
	return node.Route(map[string]node.Emission{
		label: {Data: call.Data, Parameters: call.Parameters},
	}), nil
}

func (p *Parity) Contract() node.Contract {
	return node.Contract{Outputs: []string{p.even, p.odd}}
}

func (p *Parity) Action() string { return "parity" }

func (p *Parity) Init() value.Map {
	return value.Map{"even": value.String(p.even), "odd": value.String(p.odd)}
}

// NewAddMessage returns a node copying its "message" parameter into the data.
func NewAddMessage() *node.Simple {
	return node.NewSimple("add_message", []string{"message"}, func(ctx context.Context, args value.Map) (value.Map, error) {
		msg, ok := args["message"]
		if !ok {
			return nil, fmt.Errorf("no 'message' parameter given")
		}
		return value.Map{"message": msg}, nil
	})
}
