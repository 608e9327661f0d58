package scheduler

import (
	"context"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/graph"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/nodestore"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
)

// NodeReport summarizes what happened to one node during a run.
type NodeReport struct {
	Name   string
	Visits int
	Status nodestore.Status
}

// Result holds the payloads emitted by terminal nodes, in emission order.
type Result struct {
	order   []string
	outputs map[string][]value.Map
	// Nodes reports every node of the graph in insertion order.
	Nodes []NodeReport
}

func newResult() *Result {
	return &Result{outputs: make(map[string][]value.Map)}
}

func (r *Result) add(name string, payload value.Map) {
	if _, ok := r.outputs[name]; !ok {
		r.order = append(r.order, name)
	}
	r.outputs[name] = append(r.outputs[name], payload)
}

func (r *Result) report(ctx context.Context, g graph.Graph) {
	for _, n := range g.Nodes(ctx) {
		r.Nodes = append(r.Nodes, NodeReport{
			Name:   n.Name,
			Visits: g.Visits(ctx, n.Name),
			Status: g.NodeStatus(ctx, n.Name),
		})
	}
}

// Terminals returns the names of the nodes that produced results, in the
// order they first did.
func (r *Result) Terminals() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Outputs returns every payload keyed by terminal node name.
func (r *Result) Outputs() map[string][]value.Map {
	out := make(map[string][]value.Map, len(r.outputs))
	for name, payloads := range r.outputs {
		out[name] = append([]value.Map(nil), payloads...)
	}
	return out
}

// Get returns the payloads emitted by one terminal node.
func (r *Result) Get(name string) []value.Map {
	return r.outputs[name]
}

// Unwrap simplifies the result: a single terminal with a single payload
// yields that payload, a single terminal with several payloads yields the
// list, anything else yields the map of every terminal to its payloads.
func (r *Result) Unwrap() value.Value {
	if len(r.order) == 1 {
		payloads := r.outputs[r.order[0]]
		if len(payloads) == 1 {
			return payloads[0]
		}
		list := make(value.List, len(payloads))
		for i, p := range payloads {
			list[i] = p
		}
		return list
	}

	out := make(value.Map, len(r.order))
	for _, name := range r.order {
		payloads := r.outputs[name]
		list := make(value.List, len(payloads))
		for i, p := range payloads {
			list[i] = p
		}
		out[name] = list
	}
	return out
}
