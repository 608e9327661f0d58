package node

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
)

// DefaultEdge is the label used for edges leaving a node that declares no
// outputs of its own.
const DefaultEdge = "all"

// ErrNoSuchStore is returned when a node asks for a store that was never
// attached to the pipeline.
var ErrNoSuchStore = errors.New("no such store")

// Node is a single unit of computation in a pipeline graph. The engine only
// ever talks to nodes through Run.
type Node interface {
	Run(ctx context.Context, call *Call) (Output, error)
}

// Input is one contribution received by a node, in arrival order. Missing
// inputs stand for edges whose producer ran but pruned them.
type Input struct {
	From    string
	Edge    string
	Data    value.Map
	Missing bool
}

// Call carries everything a node receives for one invocation.
type Call struct {
	// Name is the name the node has in the graph.
	Name string
	// Data is the weight-ordered merge of every received contribution.
	Data value.Map
	// Inputs lists the same contributions one by one.
	Inputs []Input
	// Parameters is keyed by node name, so nodes may read their peers' values.
	Parameters value.Map
	// OutgoingEdges lists the labels of the edges leaving this node.
	OutgoingEdges []string
	Stores        Stores
}

// Params returns the parameters addressed to the called node.
func (c *Call) Params() value.Map {
	p, _ := c.Parameters.Sub(c.Name)
	return p
}

// Present returns the inputs that actually carry data.
func (c *Call) Present() []Input {
	out := make([]Input, 0, len(c.Inputs))
	for _, in := range c.Inputs {
		if !in.Missing {
			out = append(out, in)
		}
	}
	return out
}

// Contract lists the input and output slots a node declares. A label listed
// twice counts as two slots.
type Contract struct {
	Inputs  []string
	Outputs []string
}

// Declared reports whether the contract says anything at all. Nodes without
// a declared contract accept any edge.
func (c Contract) Declared() bool {
	return c.Inputs != nil || c.Outputs != nil
}

// ContractProvider is implemented by nodes that declare their slots.
type ContractProvider interface {
	Contract() Contract
}

// ContractOf returns the contract declared by n, or an empty one.
func ContractOf(n Node) Contract {
	if cp, ok := n.(ContractProvider); ok {
		return cp.Contract()
	}
	return Contract{}
}

// Describer is implemented by nodes that can report the registry action they
// were built from and their construction parameters. Only such nodes can be
// saved.
type Describer interface {
	Action() string
	Init() value.Map
}

// WarmUpper is implemented by nodes that need preparation before a run. The
// hook is called before every Run and once before the runs of a RunBatch
// start. It must tolerate repeated calls.
type WarmUpper interface {
	WarmUp(ctx context.Context) error
}

// Emission is a (data, parameters) pair sent along an edge.
type Emission struct {
	Data       value.Map
	Parameters value.Map
}

// Output is what a node returns: either a single emission on the implicit
// default edge, or one emission per chosen outgoing label.
type Output struct {
	single *Emission
	routes map[string]Emission
}

// Emit returns an output travelling along every outgoing edge. The edges
// must share a single label; nodes with several distinct outgoing labels
// choose among them with Route, and an Emit from such a node fails the run.
func Emit(data, params value.Map) Output {
	return Output{single: &Emission{Data: data, Parameters: params}}
}

// Route returns an output for the given labels only. Labels left out are
// pruned.
func Route(routes map[string]Emission) Output {
	if routes == nil {
		routes = map[string]Emission{}
	}
	return Output{routes: routes}
}

// IsSingle reports whether the output was built with Emit.
func (o Output) IsSingle() bool {
	return o.single != nil
}

// On returns the emission for label.
func (o Output) On(label string) (Emission, bool) {
	if o.single != nil {
		return *o.single, true
	}
	e, ok := o.routes[label]
	return e, ok
}

// Labels returns the routed labels in sorted order. It is empty for single
// outputs.
func (o Output) Labels() []string {
	labels := make([]string, 0, len(o.routes))
	for label := range o.routes {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Payload is the data a terminal node contributes to the pipeline result.
// Routed outputs are keyed by label.
func (o Output) Payload() value.Map {
	if o.single != nil {
		return o.single.Data
	}
	out := make(value.Map, len(o.routes))
	for label, e := range o.routes {
		out[label] = e.Data
	}
	return out
}

// Stores maps store names to the external resources passed to every node.
type Stores map[string]any

// Get returns the store called name.
func (s Stores) Get(name string) (any, error) {
	store, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("%w: no store named '%s' is connected to this pipeline", ErrNoSuchStore, name)
	}
	return store, nil
}
