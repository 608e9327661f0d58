package pipeline

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/ctxlog"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/node"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/nodeid"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/topologystore"
)

// Connect links a path of node references such as
// ["a.out", "b", "c.other", "d"]: a to b along a's "out" output, b to c
// along b's only output, c to d along "other". Weights, when given, apply to
// the edges in order and must number one less than the references.
//
// Reconnecting an edge that already exists with the same label is a no-op.
// Nodes that declare a contract only accept edges on free declared slots.
// Every edge is checked before any is added, so a failing path leaves the
// graph unchanged.
func (p *Pipeline) Connect(ctx context.Context, refs []string, weights ...int) error {
	ctx = p.withLogger(ctx)

	if len(refs) < 2 {
		return fmt.Errorf("%w: a path needs at least two nodes, got %v", ErrConnection, refs)
	}
	if len(weights) != 0 && len(weights) != len(refs)-1 {
		return fmt.Errorf("%w: %d weights given for %d edges", ErrConnection, len(weights), len(refs)-1)
	}
	for _, w := range weights {
		if w < 1 {
			return fmt.Errorf("%w: weights must be at least 1, got %v", ErrConnection, weights)
		}
	}

	parsed, err := nodeid.ParseAll(refs)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
	if last := parsed[len(parsed)-1]; last.HasEdge() {
		return fmt.Errorf("%w: '%s' ends the path and cannot name an output", ErrConnection, last)
	}

	var planned []topologystore.Edge
	for i := 0; i < len(parsed)-1; i++ {
		weight := topologystore.DefaultWeight
		if len(weights) > 0 {
			weight = weights[i]
		}
		e, ok, err := p.plan(ctx, parsed[i], parsed[i+1].Node, weight, planned)
		if err != nil {
			return err
		}
		if ok {
			planned = append(planned, e)
		}
	}

	logger := ctxlog.FromContext(ctx)
	for _, e := range planned {
		if _, err := p.graph.AddEdge(ctx, e); err != nil {
			return &ConnectError{From: e.From, To: e.To, Label: e.Label, Err: err}
		}
		logger.Debug("Connect: Edge added.", "from", e.From, "to", e.To, "edge", e.Label, "weight", e.Weight)
	}
	return nil
}

// plan checks one edge of a path against the graph and the edges planned
// before it in the same path. It reports false for edges that already exist.
func (p *Pipeline) plan(ctx context.Context, from nodeid.Ref, to string, weight int, planned []topologystore.Edge) (topologystore.Edge, bool, error) {
	logger := ctxlog.FromContext(ctx)

	upstream, ok := p.graph.Node(ctx, from.Node)
	if !ok {
		return topologystore.Edge{}, false, &ConnectError{From: from.Node, To: to, Label: from.Edge, Err: fmt.Errorf("%w: '%s'", ErrNodeNotFound, from.Node)}
	}
	downstream, ok := p.graph.Node(ctx, to)
	if !ok {
		return topologystore.Edge{}, false, &ConnectError{From: from.Node, To: to, Label: from.Edge, Err: fmt.Errorf("%w: '%s'", ErrNodeNotFound, to)}
	}

	outputs := contractOf(upstream).Outputs
	inputs := contractOf(downstream).Inputs

	label, err := edgeLabel(from, outputs)
	if err != nil {
		return topologystore.Edge{}, false, &ConnectError{From: from.Node, To: to, Err: err, Slots: p.slotReport(ctx, from.Node, to)}
	}

	for _, e := range slices.Concat(p.graph.OutEdges(ctx, from.Node), planned) {
		if e.From == from.Node && e.To == to && e.Label == label {
			logger.Debug("Connect: Edge already exists, nothing to do.", "from", from.Node, "to", to, "edge", label)
			return topologystore.Edge{}, false, nil
		}
	}

	freeOut := takeSlots(p.graph.FreeOutputs(ctx, from.Node), planned, func(e topologystore.Edge) bool { return e.From == from.Node })
	if outputs != nil && !contains(freeOut, label) {
		return topologystore.Edge{}, false, &ConnectError{
			From: from.Node, To: to, Label: label,
			Err:   fmt.Errorf("'%s' has no free output slot named '%s'", from.Node, label),
			Slots: p.slotReport(ctx, from.Node, to),
		}
	}
	freeIn := takeSlots(p.graph.FreeInputs(ctx, to), planned, func(e topologystore.Edge) bool { return e.To == to })
	if inputs != nil && !contains(freeIn, label) {
		return topologystore.Edge{}, false, &ConnectError{
			From: from.Node, To: to, Label: label,
			Err:   fmt.Errorf("'%s' has no free input slot named '%s'", to, label),
			Slots: p.slotReport(ctx, from.Node, to),
		}
	}

	return topologystore.Edge{From: from.Node, To: to, Label: label, Weight: weight}, true, nil
}

// takeSlots removes one free slot per planned edge selected by match.
func takeSlots(free []string, planned []topologystore.Edge, match func(topologystore.Edge) bool) []string {
	for _, e := range planned {
		if !match(e) {
			continue
		}
		for i, slot := range free {
			if slot == e.Label {
				free = append(free[:i:i], free[i+1:]...)
				break
			}
		}
	}
	return free
}

// edgeLabel picks the label of an edge leaving from. Without an explicit
// label the node must declare exactly one distinct output; nodes declaring
// nothing use node.DefaultEdge.
func edgeLabel(from nodeid.Ref, outputs []string) (string, error) {
	if from.HasEdge() {
		if outputs != nil && !contains(outputs, from.Edge) {
			return "", fmt.Errorf("'%s' has no output named '%s'", from.Node, from.Edge)
		}
		return from.Edge, nil
	}
	if outputs == nil {
		return node.DefaultEdge, nil
	}
	distinct := unique(outputs)
	switch len(distinct) {
	case 1:
		return distinct[0], nil
	case 0:
		return "", fmt.Errorf("'%s' declares no outputs", from.Node)
	default:
		return "", fmt.Errorf("'%s' has several outputs (%s), name one as '%s.<output>'",
			from.Node, strings.Join(distinct, ", "), from.Node)
	}
}

func contractOf(n *topologystore.Node) node.Contract {
	if n.Instance == nil {
		return node.Contract{}
	}
	return node.ContractOf(n.Instance)
}

// slotReport lists the declared slots on both ends of an edge and what
// occupies them.
func (p *Pipeline) slotReport(ctx context.Context, from, to string) string {
	var lines []string
	if up, ok := p.graph.Node(ctx, from); ok {
		lines = append(lines, fmt.Sprintf("outputs of '%s': %s", from,
			describeSlots(contractOf(up).Outputs, p.graph.OutEdges(ctx, from), func(e topologystore.Edge) string { return e.To })))
	}
	if down, ok := p.graph.Node(ctx, to); ok {
		lines = append(lines, fmt.Sprintf("inputs of '%s': %s", to,
			describeSlots(contractOf(down).Inputs, p.graph.InEdges(ctx, to), func(e topologystore.Edge) string { return e.From })))
	}
	return strings.Join(lines, "\n")
}

func describeSlots(declared []string, edges []topologystore.Edge, peer func(topologystore.Edge) string) string {
	if declared == nil {
		return "any (no contract declared)"
	}
	if len(declared) == 0 {
		return "none"
	}
	takenBy := make([]string, len(declared))
	for _, e := range edges {
		for i, slot := range declared {
			if slot == e.Label && takenBy[i] == "" {
				takenBy[i] = peer(e)
				break
			}
		}
	}
	parts := make([]string, len(declared))
	for i, slot := range declared {
		if takenBy[i] == "" {
			parts[i] = fmt.Sprintf("%s (free)", slot)
		} else {
			parts[i] = fmt.Sprintf("%s (taken by %s)", slot, takenBy[i])
		}
	}
	return strings.Join(parts, ", ")
}

func contains(items []string, item string) bool {
	for _, i := range items {
		if i == item {
			return true
		}
	}
	return false
}

func unique(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, i := range items {
		if _, ok := seen[i]; ok {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, i)
	}
	return out
}
