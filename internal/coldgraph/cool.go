package coldgraph

import (
	"context"
	"fmt"
	"reflect"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/ctxlog"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/graph"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/node"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
)

// CoolDown converts a graph into a document. Nodes are walked in insertion
// order; an instance already seen under another name is stored as a
// back-reference to that name. Live nodes must implement node.Describer.
func CoolDown(ctx context.Context, g graph.Graph) (*Document, error) {
	logger := ctxlog.FromContext(ctx)

	doc := &Document{Directed: true, Multigraph: false}
	type seenInstance struct {
		name     string
		instance node.Node
	}
	var seen []seenInstance

	for _, n := range g.Nodes(ctx) {
		cold := Node{
			ID:         n.Name,
			Action:     n.Action,
			InputNode:  n.InputNode,
			OutputNode: n.OutputNode,
		}

		switch {
		case n.Instance == nil:
			// Already cold: keep what was loaded.
			cold.InstanceID = n.SharedWith
			if n.SharedWith == "" {
				cold.Init = initToGo(n.Init)
			}
		default:
			describer, ok := n.Instance.(node.Describer)
			if !ok {
				return nil, fmt.Errorf("%w: node '%s' (%T) cannot report the action it was built from", ErrSerialization, n.Name, n.Instance)
			}
			cold.Action = describer.Action()
			if cold.Action == "" {
				return nil, fmt.Errorf("%w: node '%s' reports an empty action name", ErrSerialization, n.Name)
			}

			for _, s := range seen {
				if sameInstance(s.instance, n.Instance) {
					cold.InstanceID = s.name
					break
				}
			}
			if cold.InstanceID == "" {
				cold.Init = initToGo(describer.Init())
				seen = append(seen, seenInstance{name: n.Name, instance: n.Instance})
			} else {
				logger.Debug("CoolDown: Node shares its instance.", "node", n.Name, "instance_id", cold.InstanceID)
			}
		}

		if len(n.Parameters) > 0 {
			encoded, err := value.EncodeJSON(n.Parameters)
			if err != nil {
				return nil, fmt.Errorf("%w: node '%s': failed to encode parameters: %w", ErrSerialization, n.Name, err)
			}
			cold.Parameters = string(encoded)
		}
		doc.Nodes = append(doc.Nodes, cold)
	}

	for _, e := range g.Edges(ctx) {
		doc.Links = append(doc.Links, Link{Source: e.From, Target: e.To, Label: e.Label, Weight: e.Weight})
	}
	logger.Debug("CoolDown: Graph serialized.", "nodes", len(doc.Nodes), "links", len(doc.Links))
	return doc, nil
}

func initToGo(init value.Map) map[string]any {
	if len(init) == 0 {
		return nil
	}
	return value.ToGo(init).(map[string]any)
}

// sameInstance compares by identity. Values of non-comparable types are
// never considered shared.
func sameInstance(a, b node.Node) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
