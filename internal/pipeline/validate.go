package pipeline

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/ctxlog"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/node"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/topologystore"
)

// Validate checks the graph before it runs: it must be non-empty, weakly
// connected and have an entry node, and every node must resolve to a
// registered action whose init parameters pass its checks. Edges of warm
// nodes must sit on declared slots.
func (p *Pipeline) Validate(ctx context.Context) error {
	ctx = p.withLogger(ctx)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Validate: Starting.")

	nodes := p.graph.Nodes(ctx)
	if len(nodes) == 0 {
		return fmt.Errorf("%w: the pipeline has no nodes", ErrValidation)
	}
	if !p.graph.WeaklyConnected(ctx) {
		return fmt.Errorf("%w: the pipeline graph is not connected, inspect it to find the parts that are not linked", ErrValidation)
	}
	if len(p.graph.EntryNodes(ctx)) == 0 {
		return fmt.Errorf("%w: every node has incoming edges, there is no entry node to send the input to", ErrValidation)
	}

	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		switch {
		case n.SharedWith != "" && n.Instance == nil:
			if !seen[n.SharedWith] {
				return &NodeError{Node: n.Name, Kind: ErrValidation, Err: fmt.Errorf("shares the instance of '%s', which is not defined before it", n.SharedWith)}
			}
		case n.Instance == nil:
			if _, err := p.registry.Check(n.Action, n.Init); err != nil {
				return &NodeError{Node: n.Name, Kind: ErrValidation, Err: err}
			}
		case n.Action != "":
			if _, ok := p.registry.Lookup(n.Action); !ok {
				return &NodeError{Node: n.Name, Kind: ErrValidation, Err: fmt.Errorf("action '%s' is not registered", n.Action)}
			}
		}
		seen[n.Name] = true

		if n.InputNode && len(p.graph.InEdges(ctx, n.Name)) > 0 {
			logger.Warn("Validate: Input node has incoming edges.", "node", n.Name)
		}
		if n.OutputNode && len(p.graph.OutEdges(ctx, n.Name)) > 0 {
			logger.Warn("Validate: Output node has outgoing edges.", "node", n.Name)
		}
	}

	if err := p.checkEdges(ctx); err != nil {
		return err
	}

	logger.Debug("Validate: Pipeline is valid.", "nodes", len(nodes))
	return nil
}

// checkEdges verifies that every edge of a warm node declaring a contract
// carries one of its declared labels, with no more edges per label than
// declared slots.
func (p *Pipeline) checkEdges(ctx context.Context) error {
	for _, n := range p.graph.Nodes(ctx) {
		if n.Instance == nil {
			continue
		}
		c := node.ContractOf(n.Instance)
		if c.Outputs != nil {
			err := checkSlots(c.Outputs, p.graph.OutEdges(ctx, n.Name), "output", func(e topologystore.Edge) string { return "to '" + e.To + "'" })
			if err != nil {
				return &NodeError{Node: n.Name, Kind: ErrValidation, Err: err}
			}
		}
		if c.Inputs != nil {
			err := checkSlots(c.Inputs, p.graph.InEdges(ctx, n.Name), "input", func(e topologystore.Edge) string { return "from '" + e.From + "'" })
			if err != nil {
				return &NodeError{Node: n.Name, Kind: ErrValidation, Err: err}
			}
		}
	}
	return nil
}

func checkSlots(declared []string, edges []topologystore.Edge, side string, peer func(topologystore.Edge) string) error {
	free := slices.Clone(declared)
	for _, e := range edges {
		i := slices.Index(free, e.Label)
		switch {
		case i >= 0:
			free = slices.Delete(free, i, i+1)
		case slices.Contains(declared, e.Label):
			return fmt.Errorf("edge %s takes %s '%s', which has no free slot left", peer(e), side, e.Label)
		default:
			return fmt.Errorf("edge %s is labelled '%s', which is not a declared %s (%s)",
				peer(e), e.Label, side, strings.Join(unique(declared), ", "))
		}
	}
	return nil
}
