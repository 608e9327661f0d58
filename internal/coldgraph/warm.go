package coldgraph

import (
	"context"
	"fmt"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/ctxlog"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/graph"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/inmemorystore"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/inmemorytopology"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/node"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/registry"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/topologystore"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
)

// FromDocument rebuilds a cold graph: every node keeps its action name and
// init parameters, no instance is created yet. Links without a label or a
// weight get node.DefaultEdge and topologystore.DefaultWeight.
func FromDocument(ctx context.Context, doc *Document) (graph.Graph, error) {
	g := graph.New(inmemorytopology.New(), inmemorystore.New())

	for _, cold := range doc.Nodes {
		if cold.ID == "" {
			return nil, fmt.Errorf("%w: a node has no id", ErrDeserialization)
		}
		init, err := value.MapFromGo(cold.Init)
		if err != nil {
			return nil, fmt.Errorf("%w: node '%s': failed to read init parameters: %w", ErrDeserialization, cold.ID, err)
		}
		params := value.Map{}
		if cold.Parameters != "" {
			params, err = value.DecodeJSONMap([]byte(cold.Parameters))
			if err != nil {
				return nil, fmt.Errorf("%w: node '%s': failed to decode parameters: %w", ErrDeserialization, cold.ID, err)
			}
		}
		if cold.Action == "" && cold.InstanceID == "" {
			return nil, fmt.Errorf("%w: node '%s' has no action", ErrDeserialization, cold.ID)
		}

		record := &topologystore.Node{
			Name:       cold.ID,
			Action:     cold.Action,
			Init:       init,
			SharedWith: cold.InstanceID,
			Parameters: params,
			InputNode:  cold.InputNode,
			OutputNode: cold.OutputNode,
		}
		if err := g.AddNode(ctx, record); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDeserialization, err)
		}
	}

	for _, link := range doc.Links {
		label := link.Label
		if label == "" {
			label = node.DefaultEdge
		}
		weight := link.Weight
		switch {
		case weight < 0:
			return nil, fmt.Errorf("%w: link %s -> %s: weight must be at least 1, got %d", ErrDeserialization, link.Source, link.Target, weight)
		case weight == 0:
			weight = topologystore.DefaultWeight
		}
		if _, err := g.AddEdge(ctx, topologystore.Edge{From: link.Source, To: link.Target, Label: label, Weight: weight}); err != nil {
			return nil, fmt.Errorf("%w: link %s -> %s: %w", ErrDeserialization, link.Source, link.Target, err)
		}
	}
	return g, nil
}

// WarmUp instantiates every cold node of g through the registry, in place.
// Back-referenced nodes are rebound to the instance of the node they point
// at, which must come earlier in the graph.
func WarmUp(ctx context.Context, g graph.Graph, reg *registry.Registry) error {
	logger := ctxlog.FromContext(ctx)

	for _, n := range g.Nodes(ctx) {
		if n.Instance != nil {
			continue
		}
		warm := n.Copy()

		if n.SharedWith != "" {
			owner, ok := g.Node(ctx, n.SharedWith)
			if !ok || owner.Instance == nil {
				return fmt.Errorf("%w: node '%s': shared instance '%s' is not available", ErrDeserialization, n.Name, n.SharedWith)
			}
			warm.Instance = owner.Instance
			if warm.Action == "" {
				warm.Action = owner.Action
			}
			warm.Init = owner.Init.Clone()
			logger.Debug("WarmUp: Rebound shared instance.", "node", n.Name, "instance_id", n.SharedWith)
		} else {
			instance, err := reg.New(n.Action, n.Init)
			if err != nil {
				return fmt.Errorf("%w: node '%s': %w", ErrDeserialization, n.Name, err)
			}
			warm.Instance = instance
			if d, ok := instance.(node.Describer); ok {
				warm.Init = d.Init()
			}
			logger.Debug("WarmUp: Node instantiated.", "node", n.Name, "action", n.Action)
		}

		if err := g.ReplaceNode(ctx, warm); err != nil {
			return fmt.Errorf("%w: node '%s': %w", ErrDeserialization, n.Name, err)
		}
	}
	return nil
}
