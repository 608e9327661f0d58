package pipeline

import (
	"context"
	"reflect"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/topologystore"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
)

// NodeInfo is a read-only view of one node.
type NodeInfo struct {
	Name       string
	Action     string
	Init       value.Map
	Parameters value.Map
	Inputs     []string
	Outputs    []string
	// SharedWith names the first node holding the same instance.
	SharedWith string
	InputNode  bool
	OutputNode bool
	Entry      bool
	Terminal   bool
}

// Description is a snapshot of the pipeline topology.
type Description struct {
	Nodes    []NodeInfo
	Edges    []topologystore.Edge
	Stores   []string
	MaxLoops int
}

// Describe returns a snapshot of the nodes, edges and stores.
func (p *Pipeline) Describe(ctx context.Context) *Description {
	d := &Description{
		Edges:    p.graph.Edges(ctx),
		Stores:   p.ListStores(),
		MaxLoops: p.maxLoops,
	}

	type owner struct {
		name     string
		instance any
	}
	var owners []owner
	for _, n := range p.graph.Nodes(ctx) {
		c := contractOf(n)
		info := NodeInfo{
			Name:       n.Name,
			Action:     n.Action,
			Init:       n.Init.Clone(),
			Parameters: n.Parameters.Clone(),
			Inputs:     c.Inputs,
			Outputs:    c.Outputs,
			SharedWith: n.SharedWith,
			InputNode:  n.InputNode,
			OutputNode: n.OutputNode,
			Entry:      len(p.graph.InEdges(ctx, n.Name)) == 0,
			Terminal:   len(p.graph.OutEdges(ctx, n.Name)) == 0,
		}
		if n.Instance != nil {
			info.SharedWith = ""
			for _, o := range owners {
				if sameNode(o.instance, n.Instance) {
					info.SharedWith = o.name
					break
				}
			}
			if info.SharedWith == "" {
				owners = append(owners, owner{name: n.Name, instance: n.Instance})
			}
		}
		d.Nodes = append(d.Nodes, info)
	}
	return d
}

// sameNode compares two instances by identity. Values of types that cannot
// be compared are never the same.
func sameNode(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || ta == nil || !ta.Comparable() {
		return false
	}
	return a == b
}
